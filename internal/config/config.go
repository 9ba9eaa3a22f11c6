package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Clark-Hu/course-conditions/internal/aggregate"
)

// Config captures all runtime configuration. Values come from environment
// variables, optionally layered over a YAML file named by CONFIG_FILE.
type Config struct {
	Port              string
	DBURL             string
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int

	ConditionsMaxReports       int
	ConditionsDailyPenaltyRate float64
	ConditionsMinWeight        float64
	ConditionsMaxAgeDays       int
	BulkConcurrency            int
	DimensionsFile             string

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	Verbose       bool
}

// Loader reads a Config. File overrides CONFIG_FILE when set.
type Loader struct {
	File string
	// RequireDB makes DB_URL mandatory. The embedded dev server supplies its own.
	RequireDB bool
}

// Load reads configuration from the environment, applying defaults and validation.
func Load() (Config, error) {
	return Loader{RequireDB: true}.Load()
}

// Load reads and validates the configuration.
func (l Loader) Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	file := l.File
	if file == "" {
		file = v.GetString("config_file")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE %s: %w", file, err)
		}
	}

	cfg := Config{
		Port:              v.GetString("port"),
		DBURL:             v.GetString("db_url"),
		ReadTimeoutSecs:   v.GetInt("server_read_timeout"),
		WriteTimeoutSecs:  v.GetInt("server_write_timeout"),
		IdleTimeoutSecs:   v.GetInt("server_idle_timeout"),
		DBMaxConns:        v.GetInt("db_max_conns"),
		DBMinConns:        v.GetInt("db_min_conns"),
		DBMaxIdleSecs:     v.GetInt("db_max_conn_idle_secs"),
		DBMaxLifeSecs:     v.GetInt("db_max_conn_lifetime_secs"),
		DBConnTimeoutSecs: v.GetInt("db_conn_timeout_secs"),
		DBStatementCache:  v.GetInt("db_statement_cache_capacity"),

		ConditionsMaxReports:       v.GetInt("conditions_max_reports"),
		ConditionsDailyPenaltyRate: v.GetFloat64("conditions_daily_penalty_rate"),
		ConditionsMinWeight:        v.GetFloat64("conditions_min_weight"),
		ConditionsMaxAgeDays:       v.GetInt("conditions_max_age_days"),
		BulkConcurrency:            v.GetInt("bulk_concurrency"),
		DimensionsFile:             v.GetString("dimensions_file"),

		LogLevel:      strings.ToLower(v.GetString("log_level")),
		LogFormat:     strings.ToLower(v.GetString("log_format")),
		LogFile:       v.GetString("log_file"),
		LogMaxSizeMB:  v.GetInt("log_max_size_mb"),
		LogMaxBackups: v.GetInt("log_max_backups"),
		LogMaxAgeDays: v.GetInt("log_max_age_days"),
		Verbose:       v.GetBool("verbose"),
	}

	if err := cfg.validate(l.RequireDB); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_url", "")
	v.SetDefault("server_read_timeout", 15)
	v.SetDefault("server_write_timeout", 15)
	v.SetDefault("server_idle_timeout", 60)
	v.SetDefault("db_max_conns", 20)
	v.SetDefault("db_min_conns", 2)
	v.SetDefault("db_max_conn_idle_secs", 300)
	v.SetDefault("db_max_conn_lifetime_secs", 3600)
	v.SetDefault("db_conn_timeout_secs", 10)
	v.SetDefault("db_statement_cache_capacity", 256)

	weights := aggregate.DefaultWeightConfig()
	v.SetDefault("conditions_max_reports", weights.MaxReports)
	v.SetDefault("conditions_daily_penalty_rate", weights.DailyPenaltyRate)
	v.SetDefault("conditions_min_weight", weights.MinWeight)
	v.SetDefault("conditions_max_age_days", weights.MaxAgeDays)
	v.SetDefault("bulk_concurrency", 8)
	v.SetDefault("dimensions_file", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 30)
	v.SetDefault("verbose", false)
	v.SetDefault("config_file", "")
}

func (c Config) validate(requireDB bool) error {
	if requireDB && c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if c.ConditionsMaxReports <= 0 {
		return fmt.Errorf("CONDITIONS_MAX_REPORTS must be positive")
	}
	if c.ConditionsDailyPenaltyRate < 0 {
		return fmt.Errorf("CONDITIONS_DAILY_PENALTY_RATE must be non-negative")
	}
	if c.ConditionsMinWeight < 0 || c.ConditionsMinWeight > 1 {
		return fmt.Errorf("CONDITIONS_MIN_WEIGHT must be between 0 and 1")
	}
	if c.ConditionsMaxAgeDays < 0 {
		return fmt.Errorf("CONDITIONS_MAX_AGE_DAYS must be non-negative")
	}
	if c.BulkConcurrency <= 0 {
		return fmt.Errorf("BULK_CONCURRENCY must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}
	return nil
}

// Weights returns the condition weighting settings.
func (c Config) Weights() aggregate.WeightConfig {
	return aggregate.WeightConfig{
		MaxReports:       c.ConditionsMaxReports,
		DailyPenaltyRate: c.ConditionsDailyPenaltyRate,
		MinWeight:        c.ConditionsMinWeight,
		MaxAgeDays:       c.ConditionsMaxAgeDays,
	}
}

// Package aggregate turns raw ratings and condition reports into the
// per-course summaries served by the API. Everything here is pure: callers
// supply the rows and the evaluation time.
package aggregate

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// WeightConfig controls how condition reports decay with age.
type WeightConfig struct {
	// MaxReports bounds how many of the newest reports are considered.
	MaxReports int `validate:"gt=0"`
	// DailyPenaltyRate is subtracted from the weight for every day of age.
	DailyPenaltyRate float64 `validate:"gte=0"`
	// MinWeight is the floor for reports that are not yet too old.
	MinWeight float64 `validate:"gte=0,lte=1"`
	// MaxAgeDays excludes reports strictly older than this.
	MaxAgeDays int `validate:"gte=0"`
}

// DefaultWeightConfig returns the stock decay settings.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		MaxReports:       3,
		DailyPenaltyRate: 0.25,
		MinWeight:        0.01,
		MaxAgeDays:       60,
	}
}

// Validate checks the configuration bounds.
func (c WeightConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid weight config: %w", err)
	}
	return nil
}

// Weight maps a report's age in days to its decay weight in [0, 1].
// Reports older than MaxAgeDays get exactly 0; everything else gets at least
// MinWeight.
func Weight(ageDays int, cfg WeightConfig) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	if ageDays > cfg.MaxAgeDays {
		return 0
	}
	w := math.Max(cfg.MinWeight, 1-float64(ageDays)*cfg.DailyPenaltyRate)
	return math.Min(w, 1)
}

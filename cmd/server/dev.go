package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/course-conditions/internal/config"
	"github.com/Clark-Hu/course-conditions/internal/store"
)

func newDevCommand(configFile *string) *cobra.Command {
	var (
		dataDir string
		port    uint32
	)
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the API against a throwaway embedded Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Loader{File: *configFile}.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			if dataDir == "" {
				dataDir = filepath.Join(".dev", "postgres")
			}
			db, err := store.StartEmbedded(store.EmbeddedConfig{BaseDir: dataDir, Port: port})
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Stop(); err != nil {
					logger.Error("stop embedded postgres", "error", err)
				}
			}()
			logger.Info("embedded postgres started", "port", port, "dir", dataDir)

			cfg.DBURL = db.URL()
			return serve(cmd.Context(), cfg, logger.Logger)
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for the embedded database (default .dev/postgres)")
	cmd.Flags().Uint32Var(&port, "db-port", 5433, "port for the embedded database")
	return cmd
}

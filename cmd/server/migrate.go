package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/course-conditions/internal/config"
	"github.com/Clark-Hu/course-conditions/internal/store"
)

func newMigrateCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(action func(cmd *cobra.Command, st *store.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Loader{File: *configFile, RequireDB: true}.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			st, err := openStore(cmd.Context(), cfg, logger.Logger)
			if err != nil {
				return err
			}
			defer st.Close()
			return action(cmd, st)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, st *store.Store) error {
				return st.Migrate(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, st *store.Store) error {
				return store.MigrateDown(cmd.Context(), st.Pool())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, st *store.Store) error {
				statuses, err := store.MigrationStatuses(cmd.Context(), st.Pool())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tAPPLIED\tFILE")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Path)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}

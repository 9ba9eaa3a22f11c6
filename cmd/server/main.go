package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	serveCmd := newServeCommand(&configFile)
	root := &cobra.Command{
		Use:          "course-conditions",
		Short:        "Course ratings and conditions API",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(
		serveCmd,
		newMigrateCommand(&configFile),
		newDevCommand(&configFile),
		newRequestCommand(),
	)
	return root
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/cityguide-bot/internal/app"
	"github.com/heartmarshall/cityguide-bot/internal/config"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cityguide",
		Short:        "Conversational city and place directory bot",
		Version:      app.BuildVersion(),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default ./config.yaml, or $CONFIG_PATH).")
	cmd.SetUsageTemplate(cmd.UsageTemplate() + "\nEnvironment variables:\n" + config.Usage())

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newReconcileCmd())

	return cmd
}

// loadConfig resolves --config, then CONFIG_PATH.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Package cmd provides the CLI commands for the padplug application.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/padplug/padplug/internal/config"
	"github.com/padplug/padplug/internal/logging"
)

var (
	debug    bool
	jsonLogs bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "padplug",
	Short: "Physical controller backend plugin host",
	Long: `A host for interchangeable game controller hardware backends. Backends are
delivered as plugin modules which padplug loads, validates, and queries by name.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}

		cfg := config.Get()
		logging.InitLogger(
			debug || cfg.Log.Level == "debug",
			!jsonLogs && cfg.Log.Format == "human",
		)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "log in JSON format")
}

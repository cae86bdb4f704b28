package cmd

import (
	"fmt"
	"math/bits"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/padplug/padplug/internal/backend/xinput"
	"github.com/padplug/padplug/internal/config"
	"github.com/padplug/padplug/internal/registry"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered controller backends",
	Long:  `Load all configured plugin modules and list the registered physical controller backends.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := registry.New(cmd.Context(), config.PluginFilenames, xinput.New())
		reg.LoadConfigured()
		defer func() { _ = reg.Close() }()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "Name\tControllers\tSticks\tTriggers\tButtons\tActuators")
		fmt.Fprintln(w, "----\t-----------\t------\t--------\t-------\t---------")

		for _, backend := range reg.Backends() {
			if err := backend.Initialize(); err != nil {
				fmt.Fprintf(w, "%s\t(initialization failed: %v)\t\t\t\t\n",
					backend.PluginName(), err)

				continue
			}

			caps := backend.Capabilities()
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
				backend.PluginName(),
				backend.MaxControllerCount(),
				bits.OnesCount8(caps.Sticks),
				bits.OnesCount8(caps.Triggers),
				bits.OnesCount16(caps.Buttons),
				bits.OnesCount8(caps.Actuators),
			)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/padplug/padplug/internal/backend/xinput"
	"github.com/padplug/padplug/internal/config"
	"github.com/padplug/padplug/internal/registry"
	"github.com/padplug/padplug/pkg/pad"
)

var (
	pollBackend    string
	pollController int
	pollInterval   time.Duration
	pollCount      int
)

// pollCmd represents the poll command.
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll a controller's input state",
	Long:  `Read the physical input state of one controller through a registered backend at a fixed interval.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := registry.New(cmd.Context(), config.PluginFilenames, xinput.New())
		reg.LoadConfigured()
		defer func() { _ = reg.Close() }()

		backend, err := resolveBackend(reg, pollBackend, pollController)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i := 0; pollCount == 0 || i < pollCount; i++ {
			state := backend.ReadState(pollController)
			if state.Status != pad.DeviceStatusOk {
				fmt.Fprintf(out, "controller %d: %s\n", pollController, state.Status)
			} else {
				fmt.Fprintf(out, "controller %d: sticks=%v triggers=%v buttons=%#04x\n",
					pollController, state.Sticks, state.Triggers, state.Buttons)
			}

			select {
			case <-cmd.Context().Done():
				return nil
			case <-time.After(pollInterval):
			}
		}

		return nil
	},
}

// resolveBackend looks up a backend by name, initializes it, and validates the
// controller index against its slot count.
func resolveBackend(reg *registry.Registry, name string, controller int) (pad.Backend, error) {
	backend, ok := reg.Backend(name)
	if !ok {
		return nil, fmt.Errorf("no backend registered under name %q", name)
	}

	if err := backend.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize backend %q: %w", name, err)
	}

	if max := backend.MaxControllerCount(); controller < 0 || controller >= max {
		return nil, fmt.Errorf("backend %q addresses %d controller(s), index %d is out of range",
			name, max, controller)
	}

	return backend, nil
}

func init() {
	pollCmd.Flags().StringVarP(&pollBackend, "backend", "b", "XInput (built-in)", "backend name")
	pollCmd.Flags().IntVarP(&pollController, "controller", "c", 0, "controller index")
	pollCmd.Flags().DurationVarP(&pollInterval, "interval", "i", 250*time.Millisecond, "polling interval")
	pollCmd.Flags().IntVarP(&pollCount, "count", "n", 0, "number of polls, 0 for unlimited")
	rootCmd.AddCommand(pollCmd)
}

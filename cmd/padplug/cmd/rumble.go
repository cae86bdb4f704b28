package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/padplug/padplug/internal/backend/xinput"
	"github.com/padplug/padplug/internal/config"
	"github.com/padplug/padplug/internal/registry"
	"github.com/padplug/padplug/pkg/pad"
)

var (
	rumbleBackend    string
	rumbleController int
	rumbleLeft       uint16
	rumbleRight      uint16
	rumbleLT         uint16
	rumbleRT         uint16
	rumbleDuration   time.Duration
)

// rumbleCmd represents the rumble command.
var rumbleCmd = &cobra.Command{
	Use:   "rumble",
	Short: "Drive a controller's force feedback actuators",
	Long: `Send force feedback magnitudes to one controller through a registered backend,
hold them for the given duration, then reset all actuators to zero.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := registry.New(cmd.Context(), config.PluginFilenames, xinput.New())
		reg.LoadConfigured()
		defer func() { _ = reg.Close() }()

		backend, err := resolveBackend(reg, rumbleBackend, rumbleController)
		if err != nil {
			return err
		}

		state := pad.ForceFeedbackState{
			LeftMotor:           rumbleLeft,
			RightMotor:          rumbleRight,
			LeftImpulseTrigger:  rumbleLT,
			RightImpulseTrigger: rumbleRT,
		}
		if !backend.WriteForceFeedback(rumbleController, state) {
			return errors.New("force feedback write failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "actuating controller %d for %s\n",
			rumbleController, rumbleDuration)

		select {
		case <-cmd.Context().Done():
		case <-time.After(rumbleDuration):
		}

		// Backends hold the last written magnitudes until told otherwise.
		if !backend.WriteForceFeedback(rumbleController, pad.ForceFeedbackState{}) {
			return errors.New("force feedback reset failed")
		}

		return nil
	},
}

func init() {
	rumbleCmd.Flags().StringVarP(&rumbleBackend, "backend", "b", "XInput (built-in)", "backend name")
	rumbleCmd.Flags().IntVarP(&rumbleController, "controller", "c", 0, "controller index")
	rumbleCmd.Flags().Uint16Var(&rumbleLeft, "left", 0xFFFF, "left motor magnitude")
	rumbleCmd.Flags().Uint16Var(&rumbleRight, "right", 0xFFFF, "right motor magnitude")
	rumbleCmd.Flags().Uint16Var(&rumbleLT, "left-trigger", 0, "left impulse trigger magnitude")
	rumbleCmd.Flags().Uint16Var(&rumbleRT, "right-trigger", 0, "right impulse trigger magnitude")
	rumbleCmd.Flags().DurationVarP(&rumbleDuration, "duration", "d", time.Second, "actuation duration")
	rootCmd.AddCommand(rumbleCmd)
}

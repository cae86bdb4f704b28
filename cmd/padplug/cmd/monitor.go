package cmd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/padplug/padplug/internal/backend/xinput"
	"github.com/padplug/padplug/internal/config"
	"github.com/padplug/padplug/internal/registry"
	"github.com/padplug/padplug/pkg/pad"
)

var (
	monitorBackend    string
	monitorController int
	monitorInterval   time.Duration
)

// monitorCmd represents the monitor command.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live view of a controller's input state",
	Long:  `Continuously poll one controller through a registered backend and render its state in the terminal.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// The TUI owns the terminal; keep log output out of it.
		log.Logger = log.Logger.Level(zerolog.Disabled)

		reg := registry.New(cmd.Context(), config.PluginFilenames, xinput.New())
		reg.LoadConfigured()
		defer func() { _ = reg.Close() }()

		backend, err := resolveBackend(reg, monitorBackend, monitorController)
		if err != nil {
			return err
		}

		model := monitorModel{
			backend:    backend,
			controller: monitorController,
			interval:   monitorInterval,
		}
		_, err = tea.NewProgram(model).Run()

		return err
	},
}

type pollTickMsg time.Time

type monitorModel struct {
	backend    pad.Backend
	controller int
	interval   time.Duration
	state      pad.PhysicalState
}

func (m monitorModel) pollTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return m.pollTick()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case pollTickMsg:
		m.state = m.backend.ReadState(m.controller)

		return m, m.pollTick()
	}

	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s, controller %d: %s\n\n",
		m.backend.PluginName(), m.controller, m.state.Status)

	if m.state.Status == pad.DeviceStatusOk {
		for s := pad.StickLeftX; s < pad.StickCount; s++ {
			fmt.Fprintf(&b, "  %-7s %s %+6d\n", stickLabel(s),
				axisBar(m.state.Stick(s)), m.state.Stick(s))
		}
		b.WriteString("\n")
		for t := pad.TriggerLT; t < pad.TriggerCount; t++ {
			fmt.Fprintf(&b, "  %-7s %s %3d\n", triggerLabel(t),
				triggerBar(m.state.Trigger(t)), m.state.Trigger(t))
		}
		fmt.Fprintf(&b, "\n  buttons %#04x %s\n", m.state.Buttons, buttonRow(m.state))
	}

	b.WriteString("\npress q to quit\n")

	return b.String()
}

const barWidth = 21

// axisBar renders a stick axis as a bar centered on neutral.
func axisBar(v int16) string {
	cells := [barWidth]rune{}
	for i := range cells {
		cells[i] = '·'
	}
	pos := (int(v) - pad.AnalogValueMin) * (barWidth - 1) / (pad.AnalogValueMax - pad.AnalogValueMin)
	cells[pos] = '█'

	return "[" + string(cells[:]) + "]"
}

// triggerBar renders a trigger as a fill bar.
func triggerBar(v uint8) string {
	filled := int(v) * barWidth / pad.TriggerValueMax

	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", barWidth-filled) + "]"
}

func buttonRow(s pad.PhysicalState) string {
	labels := []struct {
		button pad.Button
		label  string
	}{
		{pad.ButtonA, "A"}, {pad.ButtonB, "B"}, {pad.ButtonX, "X"}, {pad.ButtonY, "Y"},
		{pad.ButtonLB, "LB"}, {pad.ButtonRB, "RB"}, {pad.ButtonLS, "LS"}, {pad.ButtonRS, "RS"},
		{pad.ButtonStart, "Start"}, {pad.ButtonBack, "Back"},
		{pad.ButtonDpadUp, "↑"}, {pad.ButtonDpadDown, "↓"},
		{pad.ButtonDpadLeft, "←"}, {pad.ButtonDpadRight, "→"},
	}

	pressed := make([]string, 0, len(labels))
	for _, l := range labels {
		if s.Button(l.button) {
			pressed = append(pressed, l.label)
		}
	}

	return strings.Join(pressed, " ")
}

func stickLabel(s pad.Stick) string {
	switch s {
	case pad.StickLeftX:
		return "LX"
	case pad.StickLeftY:
		return "LY"
	case pad.StickRightX:
		return "RX"
	case pad.StickRightY:
		return "RY"
	default:
		return "?"
	}
}

func triggerLabel(t pad.Trigger) string {
	switch t {
	case pad.TriggerLT:
		return "LT"
	case pad.TriggerRT:
		return "RT"
	default:
		return "?"
	}
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorBackend, "backend", "b", "XInput (built-in)", "backend name")
	monitorCmd.Flags().IntVarP(&monitorController, "controller", "c", 0, "controller index")
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 50*time.Millisecond, "polling interval")
	rootCmd.AddCommand(monitorCmd)
}

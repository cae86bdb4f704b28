// Command loopback is an example padplug plugin module. It offers a single synthetic
// backend with one always-connected controller whose stick readings sweep through the
// analog range, which makes it handy for exercising a host without real hardware.
//
// Build as a WASI reactor so registration runs from the module initializers:
//
//	tinygo build -o loopback.wasm -target=wasip1 -buildmode=c-shared ./plugins/loopback
package main

import (
	"github.com/padplug/padplug/pkg/pad"
	"github.com/padplug/padplug/pkg/padplugin"
)

// loopbackBackend is a physical controller backend with no physical controller behind
// it. Force feedback writes are accepted and remembered so a host can read back the
// effect of its own commands during testing.
type loopbackBackend struct {
	polls    uint32
	feedback pad.ForceFeedbackState
}

func (b *loopbackBackend) PluginType() pad.PluginType {
	return pad.PluginTypePhysicalControllerBackend
}

func (b *loopbackBackend) PluginName() string { return "Loopback" }

func (b *loopbackBackend) Initialize() error { return nil }

func (b *loopbackBackend) MaxControllerCount() int { return 1 }

func (b *loopbackBackend) SupportsController(identity string) bool {
	// Nothing real to claim; the loopback controller only ever appears as a virtual
	// device, never in native enumeration.
	return false
}

func (b *loopbackBackend) Capabilities() pad.Capabilities {
	return pad.Capabilities{
		Sticks:    pad.CapabilityAllSticks,
		Triggers:  pad.CapabilityAllTriggers,
		Buttons:   pad.CapabilityStandardXInputButtons,
		Actuators: pad.CapabilityAllActuators,
	}
}

func (b *loopbackBackend) ReadState(controller int) pad.PhysicalState {
	if controller != 0 {
		return pad.PhysicalState{Status: pad.DeviceStatusNotConnected}
	}

	b.polls++

	// Triangle sweep across the stick range, 256 polls per period.
	phase := int16(b.polls % 256)
	sweep := pad.AnalogValueMin + int32(phase)*(pad.AnalogValueMax-pad.AnalogValueMin)/255

	return pad.PhysicalState{
		Status:   pad.DeviceStatusOk,
		Sticks:   [pad.StickCount]int16{int16(sweep), int16(-sweep), int16(sweep / 2), int16(-sweep / 2)},
		Triggers: [pad.TriggerCount]uint8{uint8(b.polls), uint8(255 - uint8(b.polls))},
		Buttons:  uint16(1) << (b.polls % 16) & pad.CapabilityStandardXInputButtons,
	}
}

func (b *loopbackBackend) WriteForceFeedback(controller int, state pad.ForceFeedbackState) bool {
	if controller != 0 {
		return false
	}

	b.feedback = state

	return true
}

func init() {
	padplugin.Register(&loopbackBackend{})
}

func main() {}

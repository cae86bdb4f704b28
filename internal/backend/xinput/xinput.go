// Package xinput implements the built-in XInput physical controller backend.
package xinput

import (
	"strings"

	"github.com/padplug/padplug/pkg/pad"
)

// PluginName under which the built-in backend registers.
const pluginName = "XInput (built-in)"

// XInput error codes relevant to the status mapping.
const (
	errorSuccess            uint32 = 0
	errorDeviceNotConnected uint32 = 1167
)

// XINPUT_GAMEPAD button masks, as defined by the vendor API.
const (
	xinputGamepadDpadUp        = 0x0001
	xinputGamepadDpadDown      = 0x0002
	xinputGamepadDpadLeft      = 0x0004
	xinputGamepadDpadRight     = 0x0008
	xinputGamepadStart         = 0x0010
	xinputGamepadBack          = 0x0020
	xinputGamepadLeftThumb     = 0x0040
	xinputGamepadRightThumb    = 0x0080
	xinputGamepadLeftShoulder  = 0x0100
	xinputGamepadRightShoulder = 0x0200
	xinputGamepadA             = 0x1000
	xinputGamepadB             = 0x2000
	xinputGamepadX             = 0x4000
	xinputGamepadY             = 0x8000
)

// Directly copying wButtons into the button bit-set assumes the bit layout is identical
// on both sides. The conversions below fail to compile if any bit position drifts in
// either direction; should that ever happen, the copy in mapGamepadState must become a
// per-bit translation.
const (
	_ = uint(xinputGamepadDpadUp - 1<<pad.ButtonDpadUp)
	_ = uint(1<<pad.ButtonDpadUp - xinputGamepadDpadUp)
	_ = uint(xinputGamepadDpadDown - 1<<pad.ButtonDpadDown)
	_ = uint(1<<pad.ButtonDpadDown - xinputGamepadDpadDown)
	_ = uint(xinputGamepadDpadLeft - 1<<pad.ButtonDpadLeft)
	_ = uint(1<<pad.ButtonDpadLeft - xinputGamepadDpadLeft)
	_ = uint(xinputGamepadDpadRight - 1<<pad.ButtonDpadRight)
	_ = uint(1<<pad.ButtonDpadRight - xinputGamepadDpadRight)
	_ = uint(xinputGamepadStart - 1<<pad.ButtonStart)
	_ = uint(1<<pad.ButtonStart - xinputGamepadStart)
	_ = uint(xinputGamepadBack - 1<<pad.ButtonBack)
	_ = uint(1<<pad.ButtonBack - xinputGamepadBack)
	_ = uint(xinputGamepadLeftThumb - 1<<pad.ButtonLS)
	_ = uint(1<<pad.ButtonLS - xinputGamepadLeftThumb)
	_ = uint(xinputGamepadRightThumb - 1<<pad.ButtonRS)
	_ = uint(1<<pad.ButtonRS - xinputGamepadRightThumb)
	_ = uint(xinputGamepadLeftShoulder - 1<<pad.ButtonLB)
	_ = uint(1<<pad.ButtonLB - xinputGamepadLeftShoulder)
	_ = uint(xinputGamepadRightShoulder - 1<<pad.ButtonRB)
	_ = uint(1<<pad.ButtonRB - xinputGamepadRightShoulder)
	_ = uint(xinputGamepadA - 1<<pad.ButtonA)
	_ = uint(1<<pad.ButtonA - xinputGamepadA)
	_ = uint(xinputGamepadB - 1<<pad.ButtonB)
	_ = uint(1<<pad.ButtonB - xinputGamepadB)
	_ = uint(xinputGamepadX - 1<<pad.ButtonX)
	_ = uint(1<<pad.ButtonX - xinputGamepadX)
	_ = uint(xinputGamepadY - 1<<pad.ButtonY)
	_ = uint(1<<pad.ButtonY - xinputGamepadY)
)

// unusedButtonMask clears the Guide and Share positions. XInput does not expose those
// buttons, so whatever the raw word carries there is noise.
const unusedButtonMask = ^uint16(1<<pad.ButtonUnusedGuide | 1<<pad.ButtonUnusedShare)

// gamepadState mirrors the XINPUT_GAMEPAD fields the status mapping consumes.
type gamepadState struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// vibration mirrors XINPUT_VIBRATION.
type vibration struct {
	LeftMotorSpeed  uint16
	RightMotorSpeed uint16
}

// importAPI is the imported vendor API surface. The real implementation binds the
// native XInput library lazily; other platforms get a stub that reports every
// controller as not connected.
type importAPI interface {
	Initialize() error
	GetState(controller int) (gamepadState, uint32)
	SetState(controller int, v vibration) uint32
}

// Backend is the built-in XInput backend. Safe for concurrent use across distinct
// controller indices; the host serializes calls targeting the same index.
type Backend struct {
	api importAPI
}

// New returns the built-in XInput backend for the current platform. The vendor library
// is not touched until Initialize.
func New() *Backend {
	return &Backend{api: platformAPI()}
}

// PluginType implements pad.Plugin.
func (b *Backend) PluginType() pad.PluginType { return pad.PluginTypePhysicalControllerBackend }

// PluginName implements pad.Plugin.
func (b *Backend) PluginName() string { return pluginName }

// Initialize loads the native XInput library and resolves its functions. All the
// expensive setup happens here, not at construction.
func (b *Backend) Initialize() error {
	return b.api.Initialize()
}

// MaxControllerCount implements pad.Backend. XInput addresses at most four user slots.
func (b *Backend) MaxControllerCount() int { return maxControllerCount }

// SupportsController implements pad.Backend. The documented "best" way of determining
// whether a device speaks XInput is to look for "&IG_" in its identity string. A
// heuristic, not a guarantee.
func (b *Backend) SupportsController(identity string) bool {
	return strings.Contains(strings.ToUpper(identity), "&IG_")
}

// Capabilities implements pad.Backend. Fixed for the lifetime of the backend: XInput
// exposes every stick axis and trigger, the standard buttons, and the two rumble
// motors. Impulse triggers are not addressable through XInput.
func (b *Backend) Capabilities() pad.Capabilities {
	return pad.Capabilities{
		Sticks:    pad.CapabilityAllSticks,
		Triggers:  pad.CapabilityAllTriggers,
		Buttons:   pad.CapabilityStandardXInputButtons,
		Actuators: pad.CapabilityStandardXInputActuators,
	}
}

// ReadState implements pad.Backend by mapping one XInputGetState result onto the
// physical state shape.
func (b *Backend) ReadState(controller int) pad.PhysicalState {
	raw, code := b.api.GetState(controller)

	switch code {
	case errorSuccess:
		return mapGamepadState(raw)
	case errorDeviceNotConnected:
		return pad.PhysicalState{Status: pad.DeviceStatusNotConnected}
	default:
		return pad.PhysicalState{Status: pad.DeviceStatusError}
	}
}

// mapGamepadState copies a successful vendor snapshot verbatim, except that the unused
// Guide and Share bit positions are forced to zero.
func mapGamepadState(raw gamepadState) pad.PhysicalState {
	return pad.PhysicalState{
		Status:   pad.DeviceStatusOk,
		Sticks:   [pad.StickCount]int16{raw.ThumbLX, raw.ThumbLY, raw.ThumbRX, raw.ThumbRY},
		Triggers: [pad.TriggerCount]uint8{raw.LeftTrigger, raw.RightTrigger},
		Buttons:  raw.Buttons & unusedButtonMask,
	}
}

// WriteForceFeedback implements pad.Backend. Only the two motors are addressable;
// impulse trigger magnitudes are ignored.
func (b *Backend) WriteForceFeedback(controller int, state pad.ForceFeedbackState) bool {
	code := b.api.SetState(controller, vibration{
		LeftMotorSpeed:  state.LeftMotor,
		RightMotorSpeed: state.RightMotor,
	})

	return code == errorSuccess
}

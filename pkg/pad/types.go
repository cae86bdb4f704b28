// Package pad defines the data model and contract shared between the padplug host and
// physical controller backend plugins.
package pad

import "unsafe"

// Analog range constants. Values follow the XInput documentation; the minimum is derived
// from the maximum so that the stick range is symmetric around zero.
const (
	AnalogValueMax     = 32767
	AnalogValueMin     = -AnalogValueMax
	AnalogValueNeutral = (AnalogValueMax + AnalogValueMin) / 2

	TriggerValueMax = 255
	TriggerValueMin = 0
	TriggerValueMid = (TriggerValueMax + TriggerValueMin) / 2
)

// DeviceStatus indicates whether a physical state snapshot was successfully read from a
// controller device.
type DeviceStatus uint8

const (
	// DeviceStatusOk means the device is connected and functioning correctly.
	DeviceStatusOk DeviceStatus = iota

	// DeviceStatusNotConnected means the device is not connected and has not reported an
	// error. This is a normal state, not an error.
	DeviceStatusNotConnected

	// DeviceStatusError means the device has experienced an error.
	DeviceStatusError

	deviceStatusCount
)

// Stick identifies an analog stick axis that might be present on a physical controller.
type Stick uint8

const (
	StickLeftX Stick = iota
	StickLeftY
	StickRightX
	StickRightY

	// StickCount is the total number of stick axis enumerators.
	StickCount
)

// Trigger identifies an analog trigger that might be present on a physical controller.
type Trigger uint8

const (
	TriggerLT Trigger = iota
	TriggerRT

	// TriggerCount is the total number of trigger enumerators.
	TriggerCount
)

// Button identifies a digital button that might be present on a physical controller.
// The order of enumerators corresponds to the bit ordering used by XInput, which is what
// allows backends that speak XInput to copy the button word directly. Guide and Share
// have space allocated on a speculative basis but are never reported.
type Button uint8

const (
	ButtonDpadUp Button = iota
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight
	ButtonStart
	ButtonBack
	ButtonLS
	ButtonRS
	ButtonLB
	ButtonRB
	ButtonUnusedGuide
	ButtonUnusedShare
	ButtonA
	ButtonB
	ButtonX
	ButtonY

	// ButtonCount is the total number of button enumerators.
	ButtonCount
)

// Actuator identifies a force feedback actuator present on physical controllers.
type Actuator uint8

const (
	// ActuatorLeftMotor is the left motor (low-frequency rumble).
	ActuatorLeftMotor Actuator = iota

	// ActuatorRightMotor is the right motor (high-frequency rumble).
	ActuatorRightMotor

	// ActuatorLeftImpulseTrigger is the left impulse trigger (embedded in LT).
	ActuatorLeftImpulseTrigger

	// ActuatorRightImpulseTrigger is the right impulse trigger (embedded in RT).
	ActuatorRightImpulseTrigger

	// ActuatorCount is the total number of actuator enumerators.
	ActuatorCount
)

// Capabilities describes which physical components of a controller a backend actually
// supports, one bit per possible enumerator of each component type. Queried once after
// initialization and treated as immutable for the backend's lifetime.
type Capabilities struct {
	Sticks    uint8
	Triggers  uint8
	Buttons   uint16
	Actuators uint8
}

// Per-controller metadata must stay cache friendly.
const _ = 16 - unsafe.Sizeof(Capabilities{})

// Pre-defined capability masks. The button and actuator "standard" masks cover the
// components documented in the XInput API; the "all" masks additionally include the
// speculative Guide and Share buttons and the impulse triggers.
const (
	CapabilityAllSticks = uint8(1<<StickLeftX | 1<<StickLeftY | 1<<StickRightX | 1<<StickRightY)

	CapabilityAllTriggers = uint8(1<<TriggerLT | 1<<TriggerRT)

	CapabilityStandardXInputButtons = uint16(1<<ButtonDpadUp | 1<<ButtonDpadDown |
		1<<ButtonDpadLeft | 1<<ButtonDpadRight | 1<<ButtonStart | 1<<ButtonBack |
		1<<ButtonLS | 1<<ButtonRS | 1<<ButtonLB | 1<<ButtonRB |
		1<<ButtonA | 1<<ButtonB | 1<<ButtonX | 1<<ButtonY)

	CapabilityAllButtons = CapabilityStandardXInputButtons |
		uint16(1<<ButtonUnusedGuide|1<<ButtonUnusedShare)

	CapabilityStandardXInputActuators = uint8(1<<ActuatorLeftMotor | 1<<ActuatorRightMotor)

	CapabilityAllActuators = CapabilityStandardXInputActuators |
		uint8(1<<ActuatorLeftImpulseTrigger|1<<ActuatorRightImpulseTrigger)
)

// HasStick reports whether the backend supports the given stick axis.
func (c Capabilities) HasStick(s Stick) bool { return c.Sticks&(1<<s) != 0 }

// HasTrigger reports whether the backend supports the given trigger.
func (c Capabilities) HasTrigger(t Trigger) bool { return c.Triggers&(1<<t) != 0 }

// HasButton reports whether the backend supports the given button.
func (c Capabilities) HasButton(b Button) bool { return c.Buttons&(1<<b) != 0 }

// HasActuator reports whether the backend supports the given actuator.
func (c Capabilities) HasActuator(a Actuator) bool { return c.Actuators&(1<<a) != 0 }

// SetStick marks the given stick axis as supported.
func (c *Capabilities) SetStick(s Stick) { c.Sticks |= 1 << s }

// SetTrigger marks the given trigger as supported.
func (c *Capabilities) SetTrigger(t Trigger) { c.Triggers |= 1 << t }

// SetButton marks the given button as supported.
func (c *Capabilities) SetButton(b Button) { c.Buttons |= 1 << b }

// SetActuator marks the given actuator as supported.
func (c *Capabilities) SetActuator(a Actuator) { c.Actuators |= 1 << a }

// PhysicalState is one snapshot of controller state per poll, as received from a
// controller device and before any remapping. Whenever Status is anything other than
// DeviceStatusOk every other field is zero and carries no meaning.
type PhysicalState struct {
	Status   DeviceStatus
	Sticks   [StickCount]int16
	Triggers [TriggerCount]uint8
	Buttons  uint16
}

// Polled at high frequency; the snapshot must stay compact.
const _ = 16 - unsafe.Sizeof(PhysicalState{})

// Stick returns the reading for the given stick axis.
func (s PhysicalState) Stick(st Stick) int16 { return s.Sticks[st] }

// Trigger returns the reading for the given trigger.
func (s PhysicalState) Trigger(t Trigger) uint8 { return s.Triggers[t] }

// Button reports whether the given button is pressed.
func (s PhysicalState) Button(b Button) bool { return s.Buttons&(1<<b) != 0 }

// ForceFeedbackState holds the magnitudes for all possible force feedback actuators on a
// physical controller. Written by the host and sent to the backend; backends ignore
// actuators they do not support.
type ForceFeedbackState struct {
	LeftMotor           uint16
	RightMotor          uint16
	LeftImpulseTrigger  uint16
	RightImpulseTrigger uint16
}

// Actuator returns the magnitude for the given actuator.
func (f ForceFeedbackState) Actuator(a Actuator) uint16 {
	switch a {
	case ActuatorLeftMotor:
		return f.LeftMotor
	case ActuatorRightMotor:
		return f.RightMotor
	case ActuatorLeftImpulseTrigger:
		return f.LeftImpulseTrigger
	case ActuatorRightImpulseTrigger:
		return f.RightImpulseTrigger
	default:
		return 0
	}
}

// String returns the human-readable name of a device status.
func (d DeviceStatus) String() string {
	switch d {
	case DeviceStatusOk:
		return "ok"
	case DeviceStatusNotConnected:
		return "not connected"
	case DeviceStatusError:
		return "error"
	default:
		return "(unknown)"
	}
}

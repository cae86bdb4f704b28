package pad

import (
	"encoding/binary"
	"fmt"
)

// Wire encodings used across the plugin module boundary. Multi-byte fields are
// little-endian, matching WebAssembly linear memory. The physical state encoding is a
// fixed 16 bytes so that one poll result always occupies the same, cache-friendly
// footprint regardless of which components the backend fills in.
const (
	// PhysicalStateSize is the size in bytes of an encoded PhysicalState.
	PhysicalStateSize = 16

	stateOffsetStatus   = 0
	stateOffsetSticks   = 2
	stateOffsetTriggers = 10
	stateOffsetButtons  = 12
)

// EncodePhysicalState encodes a physical state snapshot into its fixed 16-byte wire
// form.
func EncodePhysicalState(s PhysicalState) [PhysicalStateSize]byte {
	var buf [PhysicalStateSize]byte
	buf[stateOffsetStatus] = byte(s.Status)
	for i, v := range s.Sticks {
		binary.LittleEndian.PutUint16(buf[stateOffsetSticks+2*i:], uint16(v))
	}
	copy(buf[stateOffsetTriggers:], s.Triggers[:])
	binary.LittleEndian.PutUint16(buf[stateOffsetButtons:], s.Buttons)

	return buf
}

// DecodePhysicalState decodes a physical state snapshot from its wire form. The input
// length is checked explicitly: a module handing back a buffer of the wrong size is a
// broken module, not a shorter snapshot.
func DecodePhysicalState(data []byte) (PhysicalState, error) {
	if len(data) != PhysicalStateSize {
		return PhysicalState{}, fmt.Errorf(
			"physical state encoding is %d bytes, got %d", PhysicalStateSize, len(data),
		)
	}

	status := DeviceStatus(data[stateOffsetStatus])
	if status >= deviceStatusCount {
		return PhysicalState{}, fmt.Errorf("invalid device status %d", data[stateOffsetStatus])
	}

	// Anything other than Ok carries no payload, regardless of what raw bytes are
	// present in the buffer.
	if status != DeviceStatusOk {
		return PhysicalState{Status: status}, nil
	}

	s := PhysicalState{Status: status}
	for i := range s.Sticks {
		s.Sticks[i] = int16(binary.LittleEndian.Uint16(data[stateOffsetSticks+2*i:]))
	}
	copy(s.Triggers[:], data[stateOffsetTriggers:])
	s.Buttons = binary.LittleEndian.Uint16(data[stateOffsetButtons:])

	return s, nil
}

// PackCapabilities packs a capability set into a single uint32: sticks in bits 0-3,
// triggers in bits 4-5, buttons in bits 6-21, actuators in bits 22-25.
func PackCapabilities(c Capabilities) uint32 {
	return uint32(c.Sticks&0x0F) |
		uint32(c.Triggers&0x03)<<4 |
		uint32(c.Buttons)<<6 |
		uint32(c.Actuators&0x0F)<<22
}

// UnpackCapabilities reverses PackCapabilities.
func UnpackCapabilities(packed uint32) Capabilities {
	return Capabilities{
		Sticks:    uint8(packed & 0x0F),
		Triggers:  uint8(packed >> 4 & 0x03),
		Buttons:   uint16(packed >> 6),
		Actuators: uint8(packed >> 22 & 0x0F),
	}
}

// PackForceFeedback packs the four actuator magnitudes into a single uint64, left motor
// in the lowest 16 bits.
func PackForceFeedback(f ForceFeedbackState) uint64 {
	return uint64(f.LeftMotor) |
		uint64(f.RightMotor)<<16 |
		uint64(f.LeftImpulseTrigger)<<32 |
		uint64(f.RightImpulseTrigger)<<48
}

// UnpackForceFeedback reverses PackForceFeedback.
func UnpackForceFeedback(packed uint64) ForceFeedbackState {
	return ForceFeedbackState{
		LeftMotor:           uint16(packed),
		RightMotor:          uint16(packed >> 16),
		LeftImpulseTrigger:  uint16(packed >> 32),
		RightImpulseTrigger: uint16(packed >> 48),
	}
}

package pad

import "testing"

func TestCapabilityBitRoundTrip(t *testing.T) {
	t.Parallel()

	var caps Capabilities
	caps.SetButton(Button(2))

	if !caps.HasButton(Button(2)) {
		t.Fatal("button bit 2 not set after SetButton")
	}
	for b := Button(0); b < ButtonCount; b++ {
		if b == 2 {
			continue
		}
		if caps.HasButton(b) {
			t.Errorf("button bit %d unexpectedly set", b)
		}
	}
	if caps.Sticks != 0 || caps.Triggers != 0 || caps.Actuators != 0 {
		t.Error("setting a button bit must not touch other component sets")
	}
}

func TestCapabilityMasks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		caps Capabilities
		want map[Button]bool
	}{
		{
			name: "standard buttons exclude reserved positions",
			caps: Capabilities{Buttons: CapabilityStandardXInputButtons},
			want: map[Button]bool{
				ButtonDpadUp:      true,
				ButtonY:           true,
				ButtonUnusedGuide: false,
				ButtonUnusedShare: false,
			},
		},
		{
			name: "all buttons include reserved positions",
			caps: Capabilities{Buttons: CapabilityAllButtons},
			want: map[Button]bool{
				ButtonUnusedGuide: true,
				ButtonUnusedShare: true,
			},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for button, want := range tc.want {
				if got := tc.caps.HasButton(button); got != want {
					t.Errorf("HasButton(%d) = %v, want %v", button, got, want)
				}
			}
		})
	}

	full := Capabilities{
		Sticks:    CapabilityAllSticks,
		Triggers:  CapabilityAllTriggers,
		Actuators: CapabilityAllActuators,
	}
	for s := Stick(0); s < StickCount; s++ {
		if !full.HasStick(s) {
			t.Errorf("stick %d missing from all-sticks mask", s)
		}
	}
	for tr := Trigger(0); tr < TriggerCount; tr++ {
		if !full.HasTrigger(tr) {
			t.Errorf("trigger %d missing from all-triggers mask", tr)
		}
	}
	for a := Actuator(0); a < ActuatorCount; a++ {
		if !full.HasActuator(a) {
			t.Errorf("actuator %d missing from all-actuators mask", a)
		}
	}
}

func TestAnalogRangeSymmetry(t *testing.T) {
	t.Parallel()

	if AnalogValueMin != -AnalogValueMax {
		t.Error("stick range must be symmetric around zero")
	}
	if AnalogValueNeutral != 0 {
		t.Error("neutral stick value must be zero")
	}
	if TriggerValueMid != 127 {
		t.Errorf("trigger midpoint = %d, want 127", TriggerValueMid)
	}
}

func TestPhysicalStateAccessors(t *testing.T) {
	t.Parallel()

	s := PhysicalState{
		Status:   DeviceStatusOk,
		Sticks:   [StickCount]int16{100, -200, 300, -400},
		Triggers: [TriggerCount]uint8{10, 20},
		Buttons:  1<<ButtonA | 1<<ButtonDpadUp,
	}

	if s.Stick(StickRightX) != 300 {
		t.Errorf("Stick(RightX) = %d, want 300", s.Stick(StickRightX))
	}
	if s.Trigger(TriggerRT) != 20 {
		t.Errorf("Trigger(RT) = %d, want 20", s.Trigger(TriggerRT))
	}
	if !s.Button(ButtonA) || !s.Button(ButtonDpadUp) {
		t.Error("pressed buttons not reported")
	}
	if s.Button(ButtonB) {
		t.Error("unpressed button reported as pressed")
	}
}

func TestForceFeedbackActuatorAccessor(t *testing.T) {
	t.Parallel()

	f := ForceFeedbackState{
		LeftMotor:           1,
		RightMotor:          2,
		LeftImpulseTrigger:  3,
		RightImpulseTrigger: 4,
	}

	for a, want := range map[Actuator]uint16{
		ActuatorLeftMotor:           1,
		ActuatorRightMotor:          2,
		ActuatorLeftImpulseTrigger:  3,
		ActuatorRightImpulseTrigger: 4,
		ActuatorCount:               0,
	} {
		if got := f.Actuator(a); got != want {
			t.Errorf("Actuator(%d) = %d, want %d", a, got, want)
		}
	}
}

//go:build !windows

package xinput

// maxControllerCount matches XUSER_MAX_COUNT so behavior is uniform across platforms.
const maxControllerCount = 4

// stubAPI stands in for the native XInput library on platforms that do not have one.
// Every controller reports as not connected, which is a normal state, so the backend
// stays registered and simply exposes no live devices.
type stubAPI struct{}

func platformAPI() importAPI {
	return stubAPI{}
}

func (stubAPI) Initialize() error { return nil }

func (stubAPI) GetState(int) (gamepadState, uint32) {
	return gamepadState{}, errorDeviceNotConnected
}

func (stubAPI) SetState(int, vibration) uint32 {
	return errorDeviceNotConnected
}

//go:build windows

package xinput

import (
	"errors"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// maxControllerCount is XUSER_MAX_COUNT from the XInput headers.
const maxControllerCount = 4

// xinputState mirrors XINPUT_STATE: a packet number followed by the gamepad snapshot.
// Field order and widths must match the native struct because it is filled by the
// library through a raw pointer.
type xinputState struct {
	PacketNumber uint32
	Gamepad      gamepadState
}

// windowsAPI binds the native XInput library. Resolution happens on Initialize, not at
// construction, and is performed once regardless of how many callers race into it.
type windowsAPI struct {
	initOnce sync.Once
	initErr  error

	getState *windows.LazyProc
	setState *windows.LazyProc
}

func platformAPI() importAPI {
	return &windowsAPI{}
}

// Initialize loads the newest available XInput DLL and resolves the two calls the
// backend needs. xinput1_4 ships with Windows 8 and later; xinput9_1_0 is the
// compatibility fallback present since Windows Vista.
func (a *windowsAPI) Initialize() error {
	a.initOnce.Do(func() {
		for _, name := range []string{"xinput1_4.dll", "xinput9_1_0.dll"} {
			dll := windows.NewLazySystemDLL(name)
			if err := dll.Load(); err != nil {
				continue
			}

			getState := dll.NewProc("XInputGetState")
			setState := dll.NewProc("XInputSetState")
			if getState.Find() != nil || setState.Find() != nil {
				continue
			}

			a.getState = getState
			a.setState = setState

			return
		}

		a.initErr = errors.New("no usable XInput library found")
	})

	return a.initErr
}

func (a *windowsAPI) GetState(controller int) (gamepadState, uint32) {
	if a.getState == nil {
		return gamepadState{}, errorDeviceNotConnected
	}

	var state xinputState
	ret, _, _ := a.getState.Call(
		uintptr(uint32(controller)),
		uintptr(unsafe.Pointer(&state)),
	)

	return state.Gamepad, uint32(ret)
}

func (a *windowsAPI) SetState(controller int, v vibration) uint32 {
	if a.setState == nil {
		return errorDeviceNotConnected
	}

	ret, _, _ := a.setState.Call(
		uintptr(uint32(controller)),
		uintptr(unsafe.Pointer(&v)),
	)

	return uint32(ret)
}

// Package padplugin provides the guest-side glue for building padplug plugin modules.
// A plugin is an ordinary Go program compiled to WebAssembly: it registers its
// pad.Plugin implementations from a package initializer and relies on the exported
// functions in this package to answer the host's enumeration and backend calls.
package padplugin

import (
	"github.com/padplug/padplug/pkg/pad"
)

// registered holds every plugin interface this module offers, in registration order.
// Handles handed to the host are 1-based indexes into this slice; 0 stays reserved as
// the null sentinel.
var registered []pad.Plugin

// Register adds a plugin interface to the set this module offers. Call from an init
// function so registration completes before the host starts enumerating; registration
// is not synchronized.
func Register(p pad.Plugin) {
	registered = append(registered, p)
}

func byHandle(handle uint32) pad.Plugin {
	if handle == 0 || handle > uint32(len(registered)) {
		return nil
	}

	return registered[handle-1]
}

func backendByHandle(handle uint32) pad.Backend {
	backend, ok := byHandle(handle).(pad.Backend)
	if !ok {
		return nil
	}

	return backend
}

//export PadPluginAbiVersion
func abiVersion() uint32 {
	return pad.AbiVersion
}

//export PadPluginGetCount
func getCount() uint32 {
	return uint32(len(registered))
}

//export PadPluginGetInterface
func getInterface(index uint32) uint32 {
	if index >= uint32(len(registered)) {
		return 0
	}

	return index + 1
}

//export PadPluginInterfaceType
func interfaceType(handle uint32) uint32 {
	p := byHandle(handle)
	if p == nil {
		return uint32(pad.PluginTypeCount)
	}

	return uint32(p.PluginType())
}

//export PadPluginInterfaceName
func interfaceName(handle uint32) uint64 {
	resetAlloc()

	p := byHandle(handle)
	if p == nil {
		return 0
	}

	name := []byte(p.PluginName())
	ptr := Alloc(uint32(len(name)))
	writeBytes(ptr, name)

	return pad.PackResult(ptr, uint32(len(name)))
}

//export PadPluginInterfaceInit
func interfaceInit(handle uint32) uint32 {
	p := byHandle(handle)
	if p == nil {
		return pad.InitFailed
	}
	if err := p.Initialize(); err != nil {
		return pad.InitFailed
	}

	return pad.InitOk
}

//export PadBackendControllerCount
func backendControllerCount(handle uint32) uint32 {
	b := backendByHandle(handle)
	if b == nil {
		return 0
	}

	return uint32(b.MaxControllerCount())
}

//export PadBackendSupportsController
func backendSupportsController(handle, ptr, length uint32) uint32 {
	// The identity buffer the host just wrote sits above the rewound pointer and is
	// consumed before anything else allocates.
	resetAlloc()

	b := backendByHandle(handle)
	if b == nil {
		return 0
	}

	if b.SupportsController(string(readBytes(ptr, length))) {
		return 1
	}

	return 0
}

//export PadBackendCapabilities
func backendCapabilities(handle uint32) uint32 {
	b := backendByHandle(handle)
	if b == nil {
		return 0
	}

	return pad.PackCapabilities(b.Capabilities())
}

//export PadBackendReadState
func backendReadState(handle, controller uint32) uint64 {
	resetAlloc()

	b := backendByHandle(handle)
	if b == nil {
		return 0
	}

	encoded := pad.EncodePhysicalState(b.ReadState(int(controller)))
	ptr := Alloc(uint32(len(encoded)))
	writeBytes(ptr, encoded[:])

	return pad.PackResult(ptr, uint32(len(encoded)))
}

//export PadBackendWriteForceFeedback
func backendWriteForceFeedback(handle, controller uint32, packed uint64) uint32 {
	b := backendByHandle(handle)
	if b == nil {
		return 0
	}

	if b.WriteForceFeedback(int(controller), pad.UnpackForceFeedback(packed)) {
		return 1
	}

	return 0
}

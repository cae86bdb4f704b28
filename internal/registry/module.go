package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/padplug/padplug/pkg/pad"
)

// wasmModule wraps one instantiated plugin module together with its resolved export
// table. The base exports are mandatory for every module; the backend function table is
// only required of interfaces that declare the physical controller backend type and is
// checked when such an interface is fetched.
type wasmModule struct {
	//nolint:containedctx // Context is stored in the struct intentionally to allow reuse across plugin operations.
	ctx    context.Context
	module api.Module

	getCount      api.Function
	getInterface  api.Function
	interfaceType api.Function
	interfaceName api.Function
	interfaceInit api.Function
	alloc         api.Function

	backend backendFuncs
}

// backendFuncs is the resolved physical controller backend function table. Fields are
// nil when the module does not export them.
type backendFuncs struct {
	controllerCount    api.Function
	supportsController api.Function
	capabilities       api.Function
	readState          api.Function
	writeForceFeedback api.Function
}

func (b backendFuncs) complete() bool {
	return b.controllerCount != nil && b.supportsController != nil &&
		b.capabilities != nil && b.readState != nil && b.writeForceFeedback != nil
}

// ensureRuntime creates the shared wasm runtime on first use. Only ever called from the
// load phase, which is single-threaded behind the registry's once gate.
func (r *Registry) ensureRuntime() wazero.Runtime {
	if r.runtime == nil {
		r.runtime = wazero.NewRuntime(r.ctx)
		wasi_snapshot_preview1.MustInstantiate(r.ctx, r.runtime)
	}

	return r.runtime
}

// loadWasmModule reads, compiles, and instantiates one plugin module file, then
// resolves and validates its exported entry points. On any failure the module is closed
// before the error is returned, so a rejected module is never left instantiated.
func (r *Registry) loadWasmModule(ctx context.Context, filename string) (pluginModule, error) {
	wasmBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read plugin file: %w", err)
	}

	rt := r.ensureRuntime()

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile plugin module: %w", err)
	}

	// Instance names must be unique within the runtime, and nothing stops two
	// configured files from sharing a basename.
	name := strings.TrimSuffix(filepath.Base(filename), ".wasm")
	cfg := wazero.NewModuleConfig().
		WithName(name + "-" + uuid.NewString()).
		WithStartFunctions() // Empty list means don't run any start functions.

	module, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("instantiate plugin module: %w", err)
	}

	// Reactor-style modules register their interfaces from package initializers, which
	// only run once _initialize is called.
	if initFn := module.ExportedFunction("_initialize"); initFn != nil {
		if _, err := initFn.Call(ctx); err != nil {
			_ = module.Close(ctx)

			return nil, fmt.Errorf("run module initializers: %w", err)
		}
	}

	m := &wasmModule{
		ctx:           ctx,
		module:        module,
		getCount:      module.ExportedFunction(pad.ExportGetCount),
		getInterface:  module.ExportedFunction(pad.ExportGetInterface),
		interfaceType: module.ExportedFunction(pad.ExportInterfaceType),
		interfaceName: module.ExportedFunction(pad.ExportInterfaceName),
		interfaceInit: module.ExportedFunction(pad.ExportInterfaceInit),
		alloc:         module.ExportedFunction(pad.ExportAlloc),
		backend: backendFuncs{
			controllerCount:    module.ExportedFunction(pad.ExportControllerCount),
			supportsController: module.ExportedFunction(pad.ExportSupportsController),
			capabilities:       module.ExportedFunction(pad.ExportCapabilities),
			readState:          module.ExportedFunction(pad.ExportReadState),
			writeForceFeedback: module.ExportedFunction(pad.ExportWriteForceFeedback),
		},
	}

	required := []struct {
		name string
		fn   api.Function
	}{
		{pad.ExportAbiVersion, module.ExportedFunction(pad.ExportAbiVersion)},
		{pad.ExportGetCount, m.getCount},
		{pad.ExportGetInterface, m.getInterface},
		{pad.ExportInterfaceType, m.interfaceType},
		{pad.ExportInterfaceName, m.interfaceName},
		{pad.ExportInterfaceInit, m.interfaceInit},
		{pad.ExportAlloc, m.alloc},
	}
	for _, req := range required {
		if req.fn == nil {
			_ = module.Close(ctx)

			return nil, fmt.Errorf("%w: %s", ErrMissingEntryPoint, req.name)
		}
	}

	results, err := module.ExportedFunction(pad.ExportAbiVersion).Call(ctx)
	if err != nil {
		_ = module.Close(ctx)

		return nil, fmt.Errorf("query plugin ABI version: %w", err)
	}
	if len(results) == 0 {
		_ = module.Close(ctx)

		return nil, fmt.Errorf("%s returned no results", pad.ExportAbiVersion)
	}
	if version := uint32(results[0]); version != pad.AbiVersion {
		_ = module.Close(ctx)

		return nil, fmt.Errorf("%w: module reports %d, host speaks %d",
			ErrAbiVersionMismatch, version, pad.AbiVersion)
	}

	return m, nil
}

func (m *wasmModule) InterfaceCount() (uint32, error) {
	results, err := m.getCount.Call(m.ctx)
	if err != nil {
		return 0, fmt.Errorf("%s failed: %w", pad.ExportGetCount, err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("%s returned no results", pad.ExportGetCount)
	}

	return uint32(results[0]), nil
}

// Interface fetches the interface at the given index and wraps it in an in-process
// plugin value. The raw handle never escapes this boundary layer.
func (m *wasmModule) Interface(index uint32) (pad.Plugin, error) {
	results, err := m.getInterface.Call(m.ctx, uint64(index))
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", pad.ExportGetInterface, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s returned no results", pad.ExportGetInterface)
	}

	handle := uint32(results[0])
	if handle == 0 {
		return nil, nil
	}

	results, err = m.interfaceType.Call(m.ctx, uint64(handle))
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", pad.ExportInterfaceType, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s returned no results", pad.ExportInterfaceType)
	}
	declaredType := pad.PluginType(uint32(results[0]))

	results, err = m.interfaceName.Call(m.ctx, uint64(handle))
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", pad.ExportInterfaceName, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s returned no results", pad.ExportInterfaceName)
	}
	nameBytes, err := m.readPacked(results[0])
	if err != nil {
		return nil, fmt.Errorf("read plugin name: %w", err)
	}
	if len(nameBytes) == 0 {
		return nil, errors.New("plugin interface declared an empty name")
	}

	backend := &wasmBackend{
		module: m,
		handle: handle,
		typ:    declaredType,
		name:   string(nameBytes),
	}

	// A declared backend without the backend function table cannot honor the contract.
	if declaredType == pad.PluginTypePhysicalControllerBackend && !m.backend.complete() {
		return nil, fmt.Errorf("%w: backend function table incomplete", ErrMissingEntryPoint)
	}

	return backend, nil
}

// readPacked reads the guest memory region described by a packed ptr/len result word.
func (m *wasmModule) readPacked(packed uint64) ([]byte, error) {
	ptr, length := pad.UnpackResult(packed)
	if length == 0 {
		return nil, nil
	}

	data, ok := m.module.Memory().Read(ptr, length)
	if !ok {
		return nil, errors.New("memory read failed: bounds exceeded")
	}

	// The region belongs to the guest allocator; copy before it can be reused.
	out := make([]byte, length)
	copy(out, data)

	return out, nil
}

// writeBytes allocates guest memory via the module's Alloc export and copies data into
// it, returning the guest pointer.
func (m *wasmModule) writeBytes(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}

	results, err := m.alloc.Call(m.ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("guest alloc failed: %w", err)
	}
	if len(results) == 0 {
		return 0, errors.New("guest alloc returned no results")
	}

	ptr := uint32(results[0])
	if !m.module.Memory().Write(ptr, data) {
		return 0, errors.New("memory write failed: bounds exceeded")
	}

	return ptr, nil
}

func (m *wasmModule) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}

// wasmBackend adapts one enumerated interface handle to the in-process backend
// contract. On the polling path every module-side failure degrades to a value the
// caller already has to handle: an Error status snapshot or a false write result.
// Calls into the same module instance execute on the caller's goroutine; the host is
// expected to serialize polls targeting the same controller index.
type wasmBackend struct {
	module *wasmModule
	handle uint32
	typ    pad.PluginType
	name   string
}

func (b *wasmBackend) PluginType() pad.PluginType { return b.typ }

func (b *wasmBackend) PluginName() string { return b.name }

func (b *wasmBackend) Initialize() error {
	results, err := b.module.interfaceInit.Call(b.module.ctx, uint64(b.handle))
	if err != nil {
		return fmt.Errorf("%s failed: %w", pad.ExportInterfaceInit, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("%s returned no results", pad.ExportInterfaceInit)
	}
	if uint32(results[0]) != pad.InitOk {
		return fmt.Errorf("plugin %q reported initialization failure", b.name)
	}

	return nil
}

func (b *wasmBackend) MaxControllerCount() int {
	results, err := b.module.backend.controllerCount.Call(b.module.ctx, uint64(b.handle))
	if err != nil || len(results) == 0 {
		log.Debug().Err(err).Str("backend", b.name).Msg("controller count call failed")

		return 0
	}

	return int(uint32(results[0]))
}

func (b *wasmBackend) SupportsController(identity string) bool {
	ptr, err := b.module.writeBytes([]byte(identity))
	if err != nil {
		log.Debug().Err(err).Str("backend", b.name).Msg("identity transfer failed")

		return false
	}

	results, err := b.module.backend.supportsController.Call(
		b.module.ctx, uint64(b.handle), uint64(ptr), uint64(len(identity)),
	)
	if err != nil || len(results) == 0 {
		log.Debug().Err(err).Str("backend", b.name).Msg("supports controller call failed")

		return false
	}

	return uint32(results[0]) != 0
}

func (b *wasmBackend) Capabilities() pad.Capabilities {
	results, err := b.module.backend.capabilities.Call(b.module.ctx, uint64(b.handle))
	if err != nil || len(results) == 0 {
		log.Debug().Err(err).Str("backend", b.name).Msg("capabilities call failed")

		return pad.Capabilities{}
	}

	return pad.UnpackCapabilities(uint32(results[0]))
}

func (b *wasmBackend) ReadState(controller int) pad.PhysicalState {
	results, err := b.module.backend.readState.Call(
		b.module.ctx, uint64(b.handle), uint64(uint32(controller)),
	)
	if err != nil || len(results) == 0 {
		return pad.PhysicalState{Status: pad.DeviceStatusError}
	}

	encoded, err := b.module.readPacked(results[0])
	if err != nil {
		return pad.PhysicalState{Status: pad.DeviceStatusError}
	}

	state, err := pad.DecodePhysicalState(encoded)
	if err != nil {
		return pad.PhysicalState{Status: pad.DeviceStatusError}
	}

	return state
}

func (b *wasmBackend) WriteForceFeedback(controller int, state pad.ForceFeedbackState) bool {
	results, err := b.module.backend.writeForceFeedback.Call(
		b.module.ctx,
		uint64(b.handle), uint64(uint32(controller)), pad.PackForceFeedback(state),
	)
	if err != nil || len(results) == 0 {
		return false
	}

	return uint32(results[0]) != 0
}

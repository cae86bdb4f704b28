package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero/api"

	"github.com/padplug/padplug/pkg/pad"
)

// fakeFunction scripts one exported wasm function with a fixed outcome.
type fakeFunction struct {
	api.Function

	results []uint64
	err     error
}

func (f fakeFunction) Definition() api.FunctionDefinition { return nil }

func (f fakeFunction) Call(context.Context, ...uint64) ([]uint64, error) {
	return f.results, f.err
}

func (f fakeFunction) CallWithStack(context.Context, []uint64) error { return f.err }

func TestInterfaceRejectsResultlessCalls(t *testing.T) {
	t.Parallel()

	// A call that succeeds but produces no result word violates the export signature.
	// The error must name the export and must not try to wrap a nil error.
	m := &wasmModule{
		ctx:           context.Background(),
		getInterface:  fakeFunction{results: []uint64{1}},
		interfaceType: fakeFunction{results: []uint64{}},
	}

	_, err := m.Interface(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), pad.ExportInterfaceType)
	assert.NotContains(t, err.Error(), "%!w")

	m.interfaceType = fakeFunction{results: []uint64{uint64(pad.PluginTypePhysicalControllerBackend)}}
	m.interfaceName = fakeFunction{results: []uint64{}}

	_, err = m.Interface(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), pad.ExportInterfaceName)
	assert.NotContains(t, err.Error(), "%!w")
}

func TestInterfaceWrapsCallErrors(t *testing.T) {
	t.Parallel()

	trap := errors.New("wasm trap")
	m := &wasmModule{
		ctx:           context.Background(),
		getInterface:  fakeFunction{results: []uint64{1}},
		interfaceType: fakeFunction{err: trap},
	}

	_, err := m.Interface(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, trap)
}

func TestBackendInitializeResults(t *testing.T) {
	t.Parallel()

	newBackend := func(init fakeFunction) *wasmBackend {
		return &wasmBackend{
			module: &wasmModule{ctx: context.Background(), interfaceInit: init},
			handle: 1,
			typ:    pad.PluginTypePhysicalControllerBackend,
			name:   "Scripted",
		}
	}

	assert.NoError(t, newBackend(fakeFunction{results: []uint64{uint64(pad.InitOk)}}).Initialize())

	err := newBackend(fakeFunction{results: []uint64{uint64(pad.InitFailed)}}).Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Scripted")

	// An empty result list is a broken module, not a successful initialization.
	err = newBackend(fakeFunction{results: []uint64{}}).Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), pad.ExportInterfaceInit)
}

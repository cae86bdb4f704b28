package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padplug/padplug/pkg/pad"
)

// fakePlugin is a minimal in-process plugin for exercising registration paths.
type fakePlugin struct {
	typ         pad.PluginType
	name        string
	initialized int
}

func (p *fakePlugin) PluginType() pad.PluginType { return p.typ }
func (p *fakePlugin) PluginName() string         { return p.name }
func (p *fakePlugin) Initialize() error          { p.initialized++; return nil }

// fakeModule enumerates a fixed interface slice. A nil entry stands for the null
// sentinel, an entry error for a broken interface at that index.
type fakeModule struct {
	interfaces []pad.Plugin
	errAt      map[uint32]error
	closed     bool
}

func (m *fakeModule) InterfaceCount() (uint32, error) { return uint32(len(m.interfaces)), nil }

func (m *fakeModule) Interface(index uint32) (pad.Plugin, error) {
	if err, ok := m.errAt[index]; ok {
		return nil, err
	}

	return m.interfaces[index], nil
}

func (m *fakeModule) Close(context.Context) error {
	m.closed = true

	return nil
}

// fakeLoader maps filenames to modules or load errors and counts invocations.
type fakeLoader struct {
	mu      sync.Mutex
	modules map[string]*fakeModule
	errors  map[string]error
	calls   map[string]int
}

func (l *fakeLoader) load(_ context.Context, filename string) (pluginModule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[filename]++

	if err, ok := l.errors[filename]; ok {
		return nil, err
	}
	mod, ok := l.modules[filename]
	if !ok {
		return nil, errors.New("no such module")
	}

	return mod, nil
}

func newTestRegistry(t *testing.T, loader *fakeLoader, filenames []string, builtins ...pad.Plugin) *Registry {
	t.Helper()

	r := New(context.Background(), func() []string { return filenames }, builtins...)
	if loader != nil {
		r.loadFile = loader.load
	}

	return r
}

func TestLoadConfiguredIdempotent(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{
		modules: map[string]*fakeModule{
			"a.wasm": {interfaces: []pad.Plugin{
				&fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "Alpha"},
			}},
		},
	}
	r := newTestRegistry(t, loader, []string{"a.wasm"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.LoadConfigured()
		}()
	}
	wg.Wait()
	r.LoadConfigured()

	assert.Equal(t, 1, loader.calls["a.wasm"], "per-module load work must execute exactly once")

	_, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "Alpha")
	assert.True(t, ok)
}

func TestRegisterNameCollisionFirstWins(t *testing.T) {
	t.Parallel()

	first := &fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "Foo"}
	second := &fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "foo"}

	loader := &fakeLoader{
		modules: map[string]*fakeModule{
			"m.wasm": {interfaces: []pad.Plugin{first, second}},
		},
	}
	r := newTestRegistry(t, loader, []string{"m.wasm"})
	r.LoadConfigured()

	table := r.tables[pad.PluginTypePhysicalControllerBackend]
	require.Len(t, table, 1, "colliding names must not grow the table")

	got, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "FOO")
	require.True(t, ok)
	assert.Same(t, pad.Plugin(first), got, "the first registrant is retained")
}

func TestLookupUnregisteredName(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, &fakeLoader{}, nil)
	r.LoadConfigured()

	p, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "nothing")
	assert.False(t, ok)
	assert.Nil(t, p)

	backend, ok := r.Backend("nothing")
	assert.False(t, ok)
	assert.Nil(t, backend)

	// Out-of-range types are a lookup miss, not a panic.
	p, ok = r.Plugin(pad.PluginTypeCount, "anything")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestLoadResilienceBrokenModule(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{
		modules: map[string]*fakeModule{
			"first.wasm": {interfaces: []pad.Plugin{
				&fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "First"},
			}},
			"third.wasm": {interfaces: []pad.Plugin{
				&fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "Third"},
			}},
		},
		errors: map[string]error{
			"second.wasm": errors.New("file missing"),
		},
	}
	r := newTestRegistry(t, loader, []string{"first.wasm", "second.wasm", "third.wasm"})
	r.LoadConfigured()

	assert.Equal(t, 1, loader.calls["first.wasm"])
	assert.Equal(t, 1, loader.calls["second.wasm"])
	assert.Equal(t, 1, loader.calls["third.wasm"], "a broken module must not abort the sequence")

	_, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "first")
	assert.True(t, ok)
	_, ok = r.Plugin(pad.PluginTypePhysicalControllerBackend, "third")
	assert.True(t, ok)
	assert.Len(t, r.tables[pad.PluginTypePhysicalControllerBackend], 2,
		"the failing module contributes no entries")
}

func TestRegisterSkipsNullAndUnrecognized(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{
		modules: map[string]*fakeModule{
			"m.wasm": {
				interfaces: []pad.Plugin{
					nil, // null sentinel at index 0.
					&fakePlugin{typ: pad.PluginTypeCount + 7, name: "Mystery"},
					&fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "Good"},
				},
				errAt: map[uint32]error{},
			},
		},
	}
	r := newTestRegistry(t, loader, []string{"m.wasm"})
	r.LoadConfigured()

	table := r.tables[pad.PluginTypePhysicalControllerBackend]
	assert.Len(t, table, 1)

	_, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "good")
	assert.True(t, ok)
}

func TestBuiltinsRegisterBeforeModules(t *testing.T) {
	t.Parallel()

	builtin := &fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "XInput (built-in)"}
	usurper := &fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "xinput (BUILT-IN)"}

	loader := &fakeLoader{
		modules: map[string]*fakeModule{
			"m.wasm": {interfaces: []pad.Plugin{usurper}},
		},
	}
	r := newTestRegistry(t, loader, []string{"m.wasm"}, builtin)
	r.LoadConfigured()

	got, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "XINPUT (built-in)")
	require.True(t, ok)
	assert.Same(t, pad.Plugin(builtin), got, "a module cannot displace a built-in name")

	// Neither registrant was initialized by the registry: registration never implies
	// initialization.
	assert.Zero(t, builtin.initialized)
	assert.Zero(t, usurper.initialized)
}

func TestBackendLookupRequiresBackendContract(t *testing.T) {
	t.Parallel()

	// A plugin declaring the backend type without satisfying pad.Backend is still
	// stored, but the typed accessor refuses it.
	notABackend := &fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "Hollow"}

	r := newTestRegistry(t, &fakeLoader{}, nil, notABackend)
	r.LoadConfigured()

	_, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, "hollow")
	assert.True(t, ok)

	backend, ok := r.Backend("hollow")
	assert.False(t, ok)
	assert.Nil(t, backend)
}

func TestInterfaceErrorSkipsOnlyThatIndex(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{
		modules: map[string]*fakeModule{
			"m.wasm": {
				interfaces: []pad.Plugin{
					&fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "One"},
					nil,
					&fakePlugin{typ: pad.PluginTypePhysicalControllerBackend, name: "Three"},
				},
				errAt: map[uint32]error{1: errors.New("trap")},
			},
		},
	}
	r := newTestRegistry(t, loader, []string{"m.wasm"})
	r.LoadConfigured()

	assert.Len(t, r.tables[pad.PluginTypePhysicalControllerBackend], 2)
}

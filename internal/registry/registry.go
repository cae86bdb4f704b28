// Package registry loads physical controller backend plugins and keeps track of them.
package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tetratelabs/wazero"

	"github.com/padplug/padplug/pkg/pad"
)

// Errors reported while validating a plugin module against the ABI. Every one of them
// is recovered locally: the offending module is skipped and loading continues.
var (
	// ErrMissingEntryPoint indicates a module does not export a required symbol.
	ErrMissingEntryPoint = errors.New("missing required entry point")

	// ErrAbiVersionMismatch indicates a module was built against a different ABI
	// version than this host speaks.
	ErrAbiVersionMismatch = errors.New("plugin ABI version mismatch")
)

// pluginModule is one successfully loaded plugin module, ready for interface
// enumeration. Interface returns (nil, nil) when the module reports the null sentinel
// for an index.
type pluginModule interface {
	InterfaceCount() (uint32, error)
	Interface(index uint32) (pad.Plugin, error)
	Close(ctx context.Context) error
}

// loadFileFunc turns a plugin filename into a loaded module. Swappable so that broken
// module handling is testable without wasm fixtures.
type loadFileFunc func(ctx context.Context, filename string) (pluginModule, error)

// tableEntry retains the plugin together with the name it declared, since table keys
// are folded for case-insensitive lookup.
type tableEntry struct {
	name   string
	plugin pad.Plugin
}

// Registry turns a configured list of plugin module filenames into queryable per-type
// name tables, tolerating individually broken modules. The load phase runs exactly once
// per Registry regardless of how many goroutines call LoadConfigured; after it
// completes the tables are never mutated again, so lookups require no locking.
type Registry struct {
	//nolint:containedctx // Context is stored in the struct intentionally to allow reuse across plugin operations.
	ctx      context.Context
	source   func() []string
	builtins []pad.Plugin
	loadFile loadFileFunc
	runtime  wazero.Runtime

	loadOnce sync.Once
	tables   [pad.PluginTypeCount]map[string]tableEntry
}

// New returns a Registry that will load the plugin module filenames produced by source,
// in the order presented. Resolution of the filenames themselves is the configuration
// layer's concern. Builtins are in-process plugins registered through the same name
// tables ahead of any external module, so a later module colliding with a built-in name
// loses.
func New(ctx context.Context, source func() []string, builtins ...pad.Plugin) *Registry {
	r := &Registry{
		ctx:      ctx,
		source:   source,
		builtins: builtins,
	}
	r.loadFile = r.loadWasmModule

	return r
}

// LoadConfigured performs the one-time load phase. It is idempotent and callable from
// any goroutine: the work executes exactly once per Registry, and every caller returns
// only after the effects of that work are visible to it.
func (r *Registry) LoadConfigured() {
	r.loadOnce.Do(r.loadAll)
}

func (r *Registry) loadAll() {
	for i := range r.tables {
		r.tables[i] = make(map[string]tableEntry)
	}

	for _, p := range r.builtins {
		r.registerInterface("(built-in)", 0, p)
	}

	if r.source == nil {
		return
	}
	for _, filename := range r.source() {
		r.loadSingle(filename)
	}
}

// loadSingle loads and registers one plugin module. No outcome here is fatal: a module
// that cannot be loaded or validated is logged and skipped, and a broken interface at
// one index never affects the others.
func (r *Registry) loadSingle(filename string) {
	mod, err := r.loadFile(r.ctx, filename)
	if err != nil {
		log.Info().Err(err).Str("plugin", filename).Msg("failed to load plugin module")

		return
	}

	count, err := mod.InterfaceCount()
	if err != nil {
		log.Info().Err(err).Str("plugin", filename).Msg("failed to enumerate plugin interfaces")
		if closeErr := mod.Close(r.ctx); closeErr != nil {
			log.Debug().Err(closeErr).Str("plugin", filename).Msg("failed to close plugin module")
		}

		return
	}

	log.Info().Str("plugin", filename).Uint32("interfaces", count).
		Msg("successfully loaded plugin module")

	for i := uint32(0); i < count; i++ {
		p, err := mod.Interface(i)
		if err != nil {
			log.Info().Err(err).Str("plugin", filename).Uint32("index", i).
				Msg("failed to fetch plugin interface")

			continue
		}

		r.registerInterface(filename, i, p)
	}
}

// registerInterface classifies one enumerated interface and attempts to file it into
// the name table for its declared type. The first registrant of a name is retained; a
// colliding interface is discarded without being initialized.
func (r *Registry) registerInterface(filename string, index uint32, p pad.Plugin) {
	evt := log.Info().Str("plugin", filename).Uint32("index", index)

	if p == nil {
		evt.Msg("skipping null plugin interface")

		return
	}

	typ := p.PluginType()
	if typ >= pad.PluginTypeCount {
		evt.Uint32("declared_type", uint32(typ)).Msg("skipping plugin interface with unrecognized type")

		return
	}

	name := p.PluginName()
	key := strings.ToLower(name)
	evt = evt.Str("type", typ.String()).Str("name", name)

	if _, exists := r.tables[typ][key]; exists {
		evt.Msg("plugin interface not registered due to a name collision")

		return
	}

	r.tables[typ][key] = tableEntry{name: name, plugin: p}
	evt.Msg("plugin interface registered")
}

// Plugin looks up a registered plugin of the given type by name. Names compare
// case-insensitively. Valid only after LoadConfigured has returned; reads take no locks
// because the tables are immutable by then.
func (r *Registry) Plugin(typ pad.PluginType, name string) (pad.Plugin, bool) {
	if typ >= pad.PluginTypeCount {
		return nil, false
	}

	entry, ok := r.tables[typ][strings.ToLower(name)]
	if !ok {
		return nil, false
	}

	return entry.plugin, true
}

// Backend looks up a registered physical controller backend by name.
func (r *Registry) Backend(name string) (pad.Backend, bool) {
	p, ok := r.Plugin(pad.PluginTypePhysicalControllerBackend, name)
	if !ok {
		return nil, false
	}

	backend, ok := p.(pad.Backend)

	return backend, ok
}

// Backends returns all registered physical controller backends, sorted by name.
func (r *Registry) Backends() []pad.Backend {
	table := r.tables[pad.PluginTypePhysicalControllerBackend]

	backends := make([]pad.Backend, 0, len(table))
	for _, entry := range table {
		if backend, ok := entry.plugin.(pad.Backend); ok {
			backends = append(backends, backend)
		}
	}
	sort.Slice(backends, func(i, j int) bool {
		return strings.ToLower(backends[i].PluginName()) < strings.ToLower(backends[j].PluginName())
	})

	return backends
}

// Close releases the wasm runtime and every module instantiated in it. Intended for
// process teardown only; plugins are never unloaded during normal operation.
func (r *Registry) Close() error {
	if r.runtime == nil {
		return nil
	}

	return r.runtime.Close(r.ctx)
}

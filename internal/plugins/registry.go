// Package plugins implements the interface factory: a registry of plugin
// descriptors mapping (kind, type name) pairs to constructors.
//
// The loading mechanism is deliberately a narrow seam. A plugin is
// anything that provides a Descriptor; built-in plugins register a
// provider from their package init, and an external loader could feed
// descriptors through the same Provide call.
package plugins

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mkalland/simworld/internal/iface"
)

// Domain errors. Absence of a type is a normal, queryable condition;
// a failing constructor is not the same thing.
var (
	// ErrNotFound indicates no loaded plugin provides the requested type.
	ErrNotFound = errors.New("plugins: interface type not registered")

	// ErrConstruction indicates a plugin constructor failed to produce an
	// instance.
	ErrConstruction = errors.New("plugins: constructor failed")
)

// Constructor builds a fresh, unbound interface instance.
type Constructor func() iface.Interface

// Descriptor advertises one plugin: its name and the interface types it
// can construct, per kind.
type Descriptor struct {
	Name         string
	Constructors map[iface.Kind]map[string]Constructor
}

// Info is the read-only summary of a loaded plugin.
type Info struct {
	Name  string
	Types map[iface.Kind][]string
}

// Provider produces a plugin descriptor when the plugin is loaded.
type Provider func() *Descriptor

var (
	providersMu sync.Mutex
	providers   = map[string]Provider{}
)

// Provide announces that a plugin with the given name is available for
// loading. Built-in plugin packages call this from init.
func Provide(name string, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = p
}

func provider(name string) (Provider, bool) {
	providersMu.Lock()
	defer providersMu.Unlock()
	p, ok := providers[name]
	return p, ok
}

func providerNames() []string {
	providersMu.Lock()
	defer providersMu.Unlock()
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Registry holds the currently loaded plugins of one environment. Lookup
// is first-registered-wins when two plugins provide the same type name.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	plugins map[string]*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: map[string]*Descriptor{}}
}

// NewLoadedRegistry returns a registry with every available plugin loaded.
func NewLoadedRegistry() *Registry {
	r := NewRegistry()
	r.LoadAll()
	return r
}

// Load loads the named plugin. It reports whether a plugin with that name
// is available; loading an already-loaded plugin refreshes its descriptor.
func (r *Registry) Load(name string) bool {
	p, ok := provider(name)
	if !ok {
		return false
	}
	d := p()
	if d == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, loaded := r.plugins[name]; !loaded {
		r.order = append(r.order, name)
	}
	r.plugins[name] = d
	return true
}

// LoadAll loads every available plugin.
func (r *Registry) LoadAll() {
	for _, name := range providerNames() {
		r.Load(name)
	}
}

// Reload refreshes the descriptors of all loaded plugins. Instances
// created before the reload keep running against the code they were
// constructed with.
func (r *Registry) Reload() {
	r.mu.RLock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	r.mu.RUnlock()
	for _, name := range names {
		r.Load(name)
	}
}

// Create constructs a fresh instance of the given kind and type name.
// It returns ErrNotFound if no loaded plugin provides the type, and
// ErrConstruction if the plugin's constructor fails.
func (r *Registry) Create(kind iface.Kind, typeName string) (iface.Interface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		d := r.plugins[name]
		ctor, ok := d.Constructors[kind][typeName]
		if !ok {
			continue
		}
		inst := ctor()
		if inst == nil {
			return nil, fmt.Errorf("%w: %s %q from plugin %q", ErrConstruction, kind, typeName, name)
		}
		if named, ok := inst.(interface{ SetPluginName(string) }); ok {
			named.SetPluginName(name)
		}
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, typeName)
}

// Has reports whether some loaded plugin provides the type.
func (r *Registry) Has(kind iface.Kind, typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if _, ok := r.plugins[name].Constructors[kind][typeName]; ok {
			return true
		}
	}
	return false
}

// Types lists the registered type names for a kind, in plugin load order.
func (r *Registry) Types(kind iface.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range r.order {
		types := make([]string, 0, len(r.plugins[name].Constructors[kind]))
		for t := range r.plugins[name].Constructors[kind] {
			types = append(types, t)
		}
		sort.Strings(types)
		out = append(out, types...)
	}
	return out
}

// Info returns the loaded plugins and the interface types they support.
func (r *Registry) Info() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		d := r.plugins[name]
		info := Info{Name: name, Types: map[iface.Kind][]string{}}
		for kind, ctors := range d.Constructors {
			types := make([]string, 0, len(ctors))
			for t := range ctors {
				types = append(types, t)
			}
			sort.Strings(types)
			info.Types[kind] = types
		}
		out = append(out, info)
	}
	return out
}

// Package registry holds the named macro registry: every macro a document
// can invoke, with its constructor and the metadata `quill list` shows.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quillforge/quill/internal/types"
)

// Registry maps macro names to constructors and metadata. Registration
// happens once at startup; lookups happen on every document expansion, so
// access is guarded for the preview server's concurrent requests.
type Registry struct {
	mutex  sync.RWMutex
	macros map[string]registration
}

type registration struct {
	info types.MacroInfo
	ctor types.Constructor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{macros: make(map[string]registration)}
}

// Register adds a macro. Registering the same name twice is a programming
// error and is reported rather than silently overwritten.
func (r *Registry) Register(info types.MacroInfo, ctor types.Constructor) error {
	if info.Name == "" {
		return fmt.Errorf("macro with empty name")
	}
	if ctor == nil {
		return fmt.Errorf("macro %q has no constructor", info.Name)
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.macros[info.Name]; exists {
		return fmt.Errorf("macro %q already registered", info.Name)
	}
	r.macros[info.Name] = registration{info: info, ctor: ctor}
	return nil
}

// Lookup returns the constructor for name.
func (r *Registry) Lookup(name string) (types.Constructor, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	reg, ok := r.macros[name]
	if !ok {
		return nil, false
	}
	return reg.ctor, true
}

// Info returns the metadata for name.
func (r *Registry) Info(name string) (types.MacroInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	reg, ok := r.macros[name]
	return reg.info, ok
}

// List returns all macro metadata sorted by name.
func (r *Registry) List() []types.MacroInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]types.MacroInfo, 0, len(r.macros))
	for _, reg := range r.macros {
		out = append(out, reg.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered macros.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.macros)
}

// Package plugin defines the transform contract every configuration plugin
// implements, a registry of known plugins and the runner that folds a
// settings document through an ordered list of them.
package plugin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
)

// Plugin transforms a settings document. Transform receives a normalized
// document it may modify and returns the document to pass on. It must not
// remove anything the document already held and must not perform I/O.
type Plugin interface {
	Name() string
	Version() string
	Description() string
	Transform(s *config.Settings) (*config.Settings, error)
}

// Meta describes a plugin
type Meta struct {
	Name        string
	Version     string
	Description string
}

// TransformFunc is the function form of Plugin.Transform
type TransformFunc func(s *config.Settings) (*config.Settings, error)

type funcPlugin struct {
	meta Meta
	fn   TransformFunc
}

func (p *funcPlugin) Name() string        { return p.meta.Name }
func (p *funcPlugin) Version() string     { return p.meta.Version }
func (p *funcPlugin) Description() string { return p.meta.Description }

func (p *funcPlugin) Transform(s *config.Settings) (*config.Settings, error) {
	return p.fn(s)
}

// New creates a plugin from a transform function
func New(meta Meta, fn TransformFunc) Plugin {
	return &funcPlugin{meta: meta, fn: fn}
}

// Mutate creates a plugin whose transform edits the document in place
func Mutate(meta Meta, fn func(s *config.Settings) error) Plugin {
	return New(meta, func(s *config.Settings) (*config.Settings, error) {
		if err := fn(s); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Registry holds plugins by name
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds p. Names must be unique.
func (r *Registry) Register(p Plugin) error {
	name := p.Name()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("plugin has no name")
	}
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("%w: %s", herrors.ErrDuplicatePlugin, name)
	}
	r.plugins[name] = p
	return nil
}

// Get returns the plugin registered under name
func (r *Registry) Get(name string) (Plugin, error) {
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", herrors.ErrPluginNotFound, name)
	}
	return p, nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.plugins[name]
	return ok
}

// Names returns the registered plugin names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// List returns the registered plugins sorted by name
func (r *Registry) List() []Plugin {
	names := r.Names()
	out := make([]Plugin, 0, len(names))
	for _, name := range names {
		out = append(out, r.plugins[name])
	}
	return out
}

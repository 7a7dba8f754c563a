package compose

import (
	"github.com/hugsylabs/hugsy/internal/logging"
	"github.com/hugsylabs/hugsy/internal/plugin"
	"github.com/hugsylabs/hugsy/internal/preset"
)

// PresetLookup returns the descriptor for a preset name
type PresetLookup func(name string) (*preset.Descriptor, error)

// Resolver turns preset and plugin names into an ordered plugin list
type Resolver struct {
	registry *plugin.Registry
	lookup   PresetLookup
}

// NewResolver creates a resolver over a plugin registry and preset lookup
func NewResolver(registry *plugin.Registry, lookup PresetLookup) *Resolver {
	return &Resolver{registry: registry, lookup: lookup}
}

// Resolve returns the plugins for the given presets followed by the explicit
// plugins. Each preset contributes itself, then the registered plugins and
// command packages it lists. Ids a preset lists that are not registered are
// only recorded in the settings plugin list. Unknown explicit plugins are an
// error. A plugin is scheduled at most once, at its first position.
func (r *Resolver) Resolve(presets, plugins []string) ([]plugin.Plugin, error) {
	var out []plugin.Plugin
	seen := make(map[string]bool)
	schedule := func(p plugin.Plugin) {
		if seen[p.Name()] {
			logging.Debug("Compose", "skipping %s, already scheduled", p.Name())
			return
		}
		seen[p.Name()] = true
		out = append(out, p)
	}

	for _, name := range presets {
		d, err := r.lookup(name)
		if err != nil {
			return nil, err
		}
		schedule(preset.AsPlugin(d))

		ids := append([]string{}, d.Plugins...)
		if d.SlashCommands != nil {
			ids = append(ids, d.SlashCommands.Packages...)
		}
		for _, id := range ids {
			p, err := r.registry.Get(id)
			if err != nil {
				logging.Warn("Preset", "preset %s lists unknown plugin %s; recording it for the host only", d.Name, id)
				continue
			}
			schedule(p)
		}
	}

	for _, name := range plugins {
		p, err := r.registry.Get(name)
		if err != nil {
			return nil, err
		}
		schedule(p)
	}

	return out, nil
}

// Package builtin provides the plugins and presets shipped with hugsy.
// Their content is embedded data; the transforms only merge it.
package builtin

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hugsylabs/hugsy/internal/config"
	"github.com/hugsylabs/hugsy/internal/plugin"
	"github.com/hugsylabs/hugsy/internal/preset"
)

//go:embed plugins/*.yaml commands/*.md agents/*.md presets/*.yaml
var content embed.FS

// Definition is a data-only plugin. Permission rules are added once, env
// values are defaults the caller can override and hooks are appended.
type Definition struct {
	Name        string                              `yaml:"name"`
	Version     string                              `yaml:"version"`
	Description string                              `yaml:"description"`
	Permissions preset.Permissions                  `yaml:"permissions"`
	Env         map[string]string                   `yaml:"env,omitempty"`
	Hooks       map[config.HookType]config.HookList `yaml:"hooks,omitempty"`
}

// Apply merges the definition into s
func (d *Definition) Apply(s *config.Settings) {
	s.AddAllow(d.Permissions.Allow...)
	s.AddAsk(d.Permissions.Ask...)
	s.AddDeny(d.Permissions.Deny...)
	s.DefaultEnv(d.Env)
	for _, phase := range sortedPhases(d.Hooks) {
		hooks := make([]config.Hook, len(d.Hooks[phase]))
		copy(hooks, d.Hooks[phase])
		s.AddHooks(phase, hooks...)
	}
}

// Plugin wraps the definition as a pipeline plugin
func (d *Definition) Plugin() plugin.Plugin {
	return plugin.Mutate(plugin.Meta{
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
	}, func(s *config.Settings) error {
		d.Apply(s)
		return nil
	})
}

// Definitions returns the embedded plugin definitions sorted by name
func Definitions() ([]*Definition, error) {
	files, err := fs.Glob(content, "plugins/*.yaml")
	if err != nil {
		return nil, err
	}

	defs := make([]*Definition, 0, len(files))
	for _, file := range files {
		data, err := content.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var d Definition
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		defs = append(defs, &d)
	}
	slices.SortFunc(defs, func(a, b *Definition) int { return strings.Compare(a.Name, b.Name) })
	return defs, nil
}

// Plugins returns every built-in plugin
func Plugins() ([]plugin.Plugin, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}

	plugins := make([]plugin.Plugin, 0, len(defs)+2)
	for _, d := range defs {
		plugins = append(plugins, d.Plugin())
	}

	dev, err := DevCommands()
	if err != nil {
		return nil, err
	}
	plugins = append(plugins, dev)

	security, err := SecurityEngineer()
	if err != nil {
		return nil, err
	}
	return append(plugins, security), nil
}

// Register adds every built-in plugin to reg
func Register(reg *plugin.Registry) error {
	plugins, err := Plugins()
	if err != nil {
		return err
	}
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in plugins
func NewRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Presets returns the built-in preset descriptors sorted by name
func Presets() ([]*preset.Descriptor, error) {
	files, err := fs.Glob(content, "presets/*.yaml")
	if err != nil {
		return nil, err
	}

	presets := make([]*preset.Descriptor, 0, len(files))
	for _, file := range files {
		data, err := content.ReadFile(file)
		if err != nil {
			return nil, err
		}
		d, err := preset.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		presets = append(presets, d)
	}
	slices.SortFunc(presets, func(a, b *preset.Descriptor) int { return strings.Compare(a.Name, b.Name) })
	return presets, nil
}

// Preset returns the built-in preset with the given name
func Preset(name string) (*preset.Descriptor, bool, error) {
	presets, err := Presets()
	if err != nil {
		return nil, false, err
	}
	for _, d := range presets {
		if d.Name == name || d.PluginName() == name {
			return d, true, nil
		}
	}
	return nil, false, nil
}

func readDocs(dir string) (map[string]string, error) {
	files, err := fs.Glob(content, dir+"/*.md")
	if err != nil {
		return nil, err
	}
	docs := make(map[string]string, len(files))
	for _, file := range files {
		data, err := content.ReadFile(file)
		if err != nil {
			return nil, err
		}
		docs[strings.TrimSuffix(path.Base(file), ".md")] = string(data)
	}
	return docs, nil
}

func sortedPhases(hooks map[config.HookType]config.HookList) []config.HookType {
	phases := make([]config.HookType, 0, len(hooks))
	for phase := range hooks {
		phases = append(phases, phase)
	}
	slices.Sort(phases)
	return phases
}

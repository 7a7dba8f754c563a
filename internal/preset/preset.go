// Package preset loads preset descriptors and applies them to settings
// documents. A preset is a named bundle of plugin ids, command packages,
// permission rules, env variables and hooks.
package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/plugin"
)

// PluginPrefix is prepended to a preset name to form its plugin name
const PluginPrefix = "preset-"

// Descriptor is a preset definition file
type Descriptor struct {
	Name          string                              `json:"name" yaml:"name"`
	Version       string                              `json:"version,omitempty" yaml:"version,omitempty"`
	Description   string                              `json:"description,omitempty" yaml:"description,omitempty"`
	Plugins       []string                            `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Permissions   Permissions                         `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Env           map[string]string                   `json:"env,omitempty" yaml:"env,omitempty"`
	Hooks         map[config.HookType]config.HookList `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	SlashCommands *SlashCommands                      `json:"slashCommands,omitempty" yaml:"slashCommands,omitempty"`
	Commands      map[string]config.CommandSpec       `json:"commands,omitempty" yaml:"commands,omitempty"`
	Subagents     map[string]config.AgentSpec         `json:"subagents,omitempty" yaml:"subagents,omitempty"`
}

// Permissions are the rule lists a preset contributes
type Permissions struct {
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Ask   []string `json:"ask,omitempty" yaml:"ask,omitempty"`
	Deny  []string `json:"deny,omitempty" yaml:"deny,omitempty"`
}

func (p *Permissions) rules(b config.Bucket) []string {
	switch b {
	case config.BucketAllow:
		return p.Allow
	case config.BucketAsk:
		return p.Ask
	case config.BucketDeny:
		return p.Deny
	default:
		return nil
	}
}

// SlashCommands lists the command packages a preset enables
type SlashCommands struct {
	Packages []string `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// PluginName returns the plugin name the preset runs under
func (d *Descriptor) PluginName() string {
	if strings.HasPrefix(d.Name, PluginPrefix) {
		return d.Name
	}
	return PluginPrefix + d.Name
}

// Parse decodes a descriptor. JSON input is detected by a leading brace;
// anything else is read as YAML.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("preset has no name")
	}
	return &d, nil
}

// Load reads a descriptor from a .yaml, .yml or .json file
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, herrors.NewDocumentError(path, "read", err)
	}

	var d Descriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &d)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &d)
	default:
		return nil, herrors.NewDocumentError(path, "load", fmt.Errorf("unsupported preset format %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, herrors.NewDocumentError(path, "parse", err)
	}

	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &d, nil
}

// Expand applies the descriptor to a normalized document in a fixed order:
// plugin ids and command packages, permission rules, env variables, hooks,
// then inline command and subagent definitions.
func Expand(d *Descriptor, s *config.Settings) error {
	s.AddPlugins(d.Plugins...)
	if d.SlashCommands != nil && len(d.SlashCommands.Packages) > 0 {
		if err := s.AddCommandPresets(d.SlashCommands.Packages...); err != nil {
			return err
		}
	}

	for _, b := range config.AllBuckets() {
		if rules := d.Permissions.rules(b); len(rules) > 0 {
			s.AddRules(b, rules...)
		}
	}

	if len(d.Env) > 0 {
		s.ForceEnv(d.Env)
	}

	for phase, hooks := range d.Hooks {
		s.AddHooks(phase, cloneHooks(hooks)...)
	}

	if len(d.Commands) > 0 {
		if err := s.AddCommands(d.Commands, true); err != nil {
			return err
		}
	}
	if len(d.Subagents) > 0 {
		if err := s.AddAgents(d.Subagents, true); err != nil {
			return err
		}
	}
	return nil
}

// AsPlugin wraps the descriptor so it runs in the plugin pipeline
func AsPlugin(d *Descriptor) plugin.Plugin {
	return plugin.Mutate(plugin.Meta{
		Name:        d.PluginName(),
		Version:     d.Version,
		Description: d.Description,
	}, func(s *config.Settings) error {
		return Expand(d, s)
	})
}

func cloneHooks(hooks config.HookList) []config.Hook {
	out := make([]config.Hook, len(hooks))
	for i, h := range hooks {
		out[i] = h.Clone()
	}
	return out
}

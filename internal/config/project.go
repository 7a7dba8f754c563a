package config

import (
	"maps"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	herrors "github.com/hugsylabs/hugsy/internal/errors"
)

// ProjectConfig represents the hugsy.toml project file
type ProjectConfig struct {
	// Presets applied in order before explicit plugins
	Extends []string `toml:"extends"`

	// Plugins applied after all presets
	Plugins []string `toml:"plugins"`

	// Subagent documents, relative to the project file
	Agents []string `toml:"agents,omitempty"`

	// Settings file written by compose
	Output string `toml:"output,omitempty"`

	// Existing settings file used as the starting point
	Baseline string `toml:"baseline,omitempty"`

	// Inline fragments merged into the baseline
	Env         map[string]string        `toml:"env,omitempty"`
	Permissions ProjectPermissions       `toml:"permissions,omitempty"`
	Hooks       map[string][]ProjectHook `toml:"hooks,omitempty"`
	Commands    map[string]CommandSpec   `toml:"commands,omitempty"`
}

// ProjectPermissions is the [permissions] table
type ProjectPermissions struct {
	Allow []string `toml:"allow,omitempty"`
	Ask   []string `toml:"ask,omitempty"`
	Deny  []string `toml:"deny,omitempty"`
}

// ProjectHook is one [[hooks.<Phase>]] entry. A non-empty Hooks list selects
// the grouped form.
type ProjectHook struct {
	Matcher string       `toml:"matcher,omitempty"`
	Command string       `toml:"command,omitempty"`
	Hooks   []HookAction `toml:"hooks,omitempty"`
}

// ToHook converts the entry into a settings hook
func (h ProjectHook) ToHook() Hook {
	if len(h.Hooks) > 0 {
		return Hook{Kind: HookGroup, Matcher: h.Matcher, Command: h.Command, Actions: append([]HookAction{}, h.Hooks...)}
	}
	return NewCommandHook(h.Matcher, h.Command)
}

// DefaultProjectConfig returns default configuration
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Extends: []string{},
		Plugins: []string{},
		Output:  DefaultOutput,
	}
}

// LoadProjectConfig loads the project file at path
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.ErrProjectNotFound
		}
		return nil, err
	}

	cfg := DefaultProjectConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, herrors.NewDocumentError(path, "parse", err)
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	return cfg, nil
}

// Save writes the project file to path
func (c *ProjectConfig) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Fragment returns the inline fragments as a settings document
func (c *ProjectConfig) Fragment() *Settings {
	s := &Settings{}
	s.AddAllow(c.Permissions.Allow...)
	s.AddAsk(c.Permissions.Ask...)
	s.AddDeny(c.Permissions.Deny...)
	for phase, hooks := range c.Hooks {
		for _, h := range hooks {
			s.AddHooks(HookType(phase), h.ToHook())
		}
	}
	s.ForceEnv(c.Env)
	if len(c.Commands) > 0 {
		s.Commands = Registry[CommandSpec]{Shape: RegistryObject, Entries: maps.Clone(c.Commands)}
	}
	return s
}

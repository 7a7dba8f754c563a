package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/merge"
)

// Top-level settings keys
const (
	KeyPermissions = "permissions"
	KeyHooks       = "hooks"
	KeyEnv         = "env"
	KeyCommands    = "commands"
	KeySubagents   = "subagents"
	KeyPlugins     = "plugins"
)

// Bucket names one of the three permission rule lists
type Bucket string

const (
	BucketAllow Bucket = "allow"
	BucketAsk   Bucket = "ask"
	BucketDeny  Bucket = "deny"
)

// AllBuckets returns the permission buckets in evaluation order
func AllBuckets() []Bucket {
	return []Bucket{BucketAllow, BucketAsk, BucketDeny}
}

// Permissions groups the permission rule lists
type Permissions struct {
	Allow []string
	Ask   []string
	Deny  []string
	// Extra holds unknown keys such as defaultMode
	Extra map[string]json.RawMessage
}

// Rules returns a pointer to the list for bucket b, or nil for an unknown bucket
func (p *Permissions) Rules(b Bucket) *[]string {
	switch b {
	case BucketAllow:
		return &p.Allow
	case BucketAsk:
		return &p.Ask
	case BucketDeny:
		return &p.Deny
	default:
		return nil
	}
}

// UnmarshalJSON decodes the rule lists and keeps unknown keys
func (p *Permissions) UnmarshalJSON(data []byte) error {
	*p = Permissions{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if rules := p.Rules(Bucket(k)); rules != nil {
			if err := json.Unmarshal(v, rules); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = v
	}
	return nil
}

// MarshalJSON always writes the three rule lists
func (p Permissions) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	for _, b := range AllBuckets() {
		rules := *p.Rules(b)
		if rules == nil {
			rules = []string{}
		}
		out[string(b)] = rules
	}
	return json.Marshal(out)
}

// Clone returns a deep copy
func (p Permissions) Clone() Permissions {
	return Permissions{
		Allow: cloneStrings(p.Allow),
		Ask:   cloneStrings(p.Ask),
		Deny:  cloneStrings(p.Deny),
		Extra: cloneRaw(p.Extra),
	}
}

// Settings is the composed host configuration document
type Settings struct {
	Permissions Permissions
	Hooks       map[HookType]HookList
	Env         map[string]string
	Commands    Registry[CommandSpec]
	Subagents   Registry[AgentSpec]
	Plugins     []string
	// Extra holds unknown top-level keys, written back unchanged
	Extra map[string]json.RawMessage
}

// ParseSettings decodes a settings document
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadSettings reads and decodes a settings file
func ReadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// UnmarshalJSON decodes the known sections and keeps every other key
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Settings{}
	for key, value := range raw {
		var err error
		switch key {
		case KeyPermissions:
			err = json.Unmarshal(value, &s.Permissions)
		case KeyHooks:
			err = json.Unmarshal(value, &s.Hooks)
		case KeyEnv:
			err = json.Unmarshal(value, &s.Env)
		case KeyCommands:
			err = json.Unmarshal(value, &s.Commands)
		case KeySubagents:
			err = json.Unmarshal(value, &s.Subagents)
		case KeyPlugins:
			err = json.Unmarshal(value, &s.Plugins)
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]json.RawMessage)
			}
			s.Extra[key] = value
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON writes every section with keys in sorted order
func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+6)
	for k, v := range s.Extra {
		out[k] = v
	}
	out[KeyPermissions] = s.Permissions

	hooks := s.Hooks
	if hooks == nil {
		hooks = map[HookType]HookList{}
	}
	out[KeyHooks] = hooks

	env := s.Env
	if env == nil {
		env = map[string]string{}
	}
	out[KeyEnv] = env

	out[KeyCommands] = s.Commands
	out[KeySubagents] = s.Subagents

	plugins := s.Plugins
	if plugins == nil {
		plugins = []string{}
	}
	out[KeyPlugins] = plugins
	return json.Marshal(out)
}

// Clone returns a deep copy that shares no memory with s
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := &Settings{
		Permissions: s.Permissions.Clone(),
		Commands:    s.Commands.Clone(),
		Subagents:   s.Subagents.Clone(),
		Plugins:     cloneStrings(s.Plugins),
		Extra:       cloneRaw(s.Extra),
	}
	if s.Hooks != nil {
		out.Hooks = make(map[HookType]HookList, len(s.Hooks))
		for phase, list := range s.Hooks {
			out.Hooks[phase] = list.clone()
		}
	}
	if s.Env != nil {
		out.Env = maps.Clone(s.Env)
	}
	return out
}

// AddRules appends rules to a permission bucket, skipping rules already present
func (s *Settings) AddRules(b Bucket, rules ...string) {
	list := s.Permissions.Rules(b)
	if list == nil {
		return
	}
	*list = merge.List(*list, rules, merge.ListOptions{Dedupe: true})
}

// AddAllow appends allow rules
func (s *Settings) AddAllow(rules ...string) { s.AddRules(BucketAllow, rules...) }

// AddAsk appends ask rules
func (s *Settings) AddAsk(rules ...string) { s.AddRules(BucketAsk, rules...) }

// AddDeny appends deny rules
func (s *Settings) AddDeny(rules ...string) { s.AddRules(BucketDeny, rules...) }

// AddHooks appends hooks to a phase in the given order
func (s *Settings) AddHooks(phase HookType, hooks ...Hook) {
	if s.Hooks == nil {
		s.Hooks = make(map[HookType]HookList)
	}
	s.Hooks[phase] = merge.Append(s.Hooks[phase], hooks)
}

// DefaultEnv sets variables that are not already defined
func (s *Settings) DefaultEnv(vars map[string]string) {
	s.Env = merge.Map(s.Env, vars, merge.MapOptions{Overwrite: false})
}

// ForceEnv sets variables, replacing existing values
func (s *Settings) ForceEnv(vars map[string]string) {
	s.Env = merge.Map(s.Env, vars, merge.MapOptions{Overwrite: true})
}

// AddPlugins appends plugin ids, skipping ids already present
func (s *Settings) AddPlugins(ids ...string) {
	s.Plugins = merge.List(s.Plugins, ids, merge.ListOptions{Dedupe: true})
}

// HasPlugin reports whether id is recorded in the plugin list
func (s *Settings) HasPlugin(id string) bool {
	return merge.Contains(s.Plugins, id)
}

// AddCommandPresets appends command preset ids
func (s *Settings) AddCommandPresets(ids ...string) error {
	return s.Commands.AddPresets(ids...)
}

// AddCommands adds slash commands. Existing names are kept unless overwrite is set.
func (s *Settings) AddCommands(entries map[string]CommandSpec, overwrite bool) error {
	return s.Commands.PutEntries(entries, overwrite)
}

// AddAgents adds subagents. Existing names are kept unless overwrite is set.
func (s *Settings) AddAgents(entries map[string]AgentSpec, overwrite bool) error {
	return s.Subagents.PutEntries(entries, overwrite)
}

// AddPresets appends preset ids to the registry
func (r *Registry[T]) AddPresets(ids ...string) error {
	if err := r.writable(); err != nil {
		return err
	}
	r.Presets = merge.List(r.Presets, ids, merge.ListOptions{Dedupe: true})
	return nil
}

// PutEntries adds entries to the registry. Existing names are kept unless
// overwrite is set.
func (r *Registry[T]) PutEntries(entries map[string]T, overwrite bool) error {
	if err := r.writable(); err != nil {
		return err
	}
	r.Entries = merge.Map(r.Entries, entries, merge.MapOptions{Overwrite: overwrite})
	return nil
}

func (r *Registry[T]) writable() error {
	r.Migrate()
	if r.Shape == RegistryOpaque {
		return herrors.NewFieldError(r.Key(), "registry has an unrecognized shape")
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

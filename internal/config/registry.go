package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// RegistryShape records how a registry field was found on input
type RegistryShape int

const (
	// RegistryObject is the canonical {presets, <entries>} form
	RegistryObject RegistryShape = iota
	// RegistryList is the legacy bare preset-id array
	RegistryList
	// RegistryOpaque is any other value, carried through unchanged
	RegistryOpaque
)

// String returns the string representation of RegistryShape
func (s RegistryShape) String() string {
	switch s {
	case RegistryObject:
		return "object"
	case RegistryList:
		return "list"
	case RegistryOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// CommandSpec is a slash command contributed by a plugin
type CommandSpec struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Content      string `json:"content" yaml:"content" toml:"content"`
	ArgumentHint string `json:"argumentHint,omitempty" yaml:"argumentHint,omitempty" toml:"argumentHint,omitempty"`
}

func (CommandSpec) entriesKey() string  { return "commands" }
func (CommandSpec) settingsKey() string { return KeyCommands }

// AgentSpec is a subagent definition contributed by a plugin
type AgentSpec struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Tools       []string `json:"tools,omitempty" yaml:"tools,omitempty" toml:"tools,omitempty"`
	Content     string   `json:"content" yaml:"content" toml:"content"`
}

func (AgentSpec) entriesKey() string  { return "agents" }
func (AgentSpec) settingsKey() string { return KeySubagents }

func (a AgentSpec) clone() AgentSpec {
	if a.Tools != nil {
		a.Tools = slices.Clone(a.Tools)
	}
	return a
}

// RegistryEntry is an entry type a Registry can hold
type RegistryEntry interface {
	CommandSpec | AgentSpec
	entriesKey() string
	settingsKey() string
}

// Registry is a named collection of definitions plus the preset ids the
// host expands into more of them. Commands are keyed under "commands",
// subagents under "agents".
type Registry[T RegistryEntry] struct {
	Shape   RegistryShape
	Presets []string
	Entries map[string]T
	// Extra holds unknown keys of the object form
	Extra map[string]json.RawMessage
	// Raw holds the original value of the opaque form
	Raw json.RawMessage
}

// EntriesKey returns the JSON key the entries are stored under
func (r *Registry[T]) EntriesKey() string {
	var zero T
	return zero.entriesKey()
}

// Key returns the top-level settings key the registry is stored under
func (r *Registry[T]) Key() string {
	var zero T
	return zero.settingsKey()
}

// Migrate converts the legacy list form into the object form. It reports
// whether anything changed. Opaque registries are left alone.
func (r *Registry[T]) Migrate() bool {
	if r.Shape != RegistryList {
		return false
	}
	r.Shape = RegistryObject
	if r.Presets == nil {
		r.Presets = []string{}
	}
	return true
}

// Clone returns a deep copy
func (r Registry[T]) Clone() Registry[T] {
	out := Registry[T]{Shape: r.Shape}
	if r.Presets != nil {
		out.Presets = slices.Clone(r.Presets)
	}
	if r.Entries != nil {
		out.Entries = make(map[string]T, len(r.Entries))
		for k, v := range r.Entries {
			if a, ok := any(v).(AgentSpec); ok {
				v = any(a.clone()).(T)
			}
			out.Entries[k] = v
		}
	}
	out.Extra = cloneRaw(r.Extra)
	if r.Raw != nil {
		out.Raw = bytes.Clone(r.Raw)
	}
	return out
}

// EntryNames returns the entry names in sorted order
func (r *Registry[T]) EntryNames() []string {
	return slices.Sorted(maps.Keys(r.Entries))
}

// UnmarshalJSON records the shape of the input alongside its content
func (r *Registry[T]) UnmarshalJSON(data []byte) error {
	*r = Registry[T]{}
	trimmed := bytes.TrimSpace(data)

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err == nil {
			r.Shape = RegistryList
			r.Presets = ids
			return nil
		}
	case len(trimmed) > 0 && trimmed[0] == '{':
		if err := r.decodeObject(trimmed); err == nil {
			return nil
		}
		*r = Registry[T]{}
	}

	r.Shape = RegistryOpaque
	r.Raw = bytes.Clone(trimmed)
	return nil
}

func (r *Registry[T]) decodeObject(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	key := r.EntriesKey()
	for k, v := range raw {
		switch k {
		case "presets":
			if err := json.Unmarshal(v, &r.Presets); err != nil {
				return fmt.Errorf("presets: %w", err)
			}
		case key:
			if err := json.Unmarshal(v, &r.Entries); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[k] = v
		}
	}
	r.Shape = RegistryObject
	return nil
}

// MarshalJSON writes the registry in the shape it holds
func (r Registry[T]) MarshalJSON() ([]byte, error) {
	switch r.Shape {
	case RegistryList:
		ids := r.Presets
		if ids == nil {
			ids = []string{}
		}
		return json.Marshal(ids)
	case RegistryOpaque:
		if len(r.Raw) == 0 {
			return []byte("null"), nil
		}
		return r.Raw, nil
	}

	out := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.Presets != nil {
		out["presets"] = r.Presets
	}
	if r.Entries != nil {
		out[r.EntriesKey()] = r.Entries
	}
	return json.Marshal(out)
}

func cloneRaw(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = bytes.Clone(v)
	}
	return out
}

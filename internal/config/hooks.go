package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// HookType is a lifecycle phase name. The host defines the well-known ones
// below; any other name is carried through untouched.
type HookType string

const (
	HookSessionStart     HookType = "SessionStart"
	HookSessionEnd       HookType = "SessionEnd"
	HookUserPromptSubmit HookType = "UserPromptSubmit"
	HookPreToolUse       HookType = "PreToolUse"
	HookPostToolUse      HookType = "PostToolUse"
	HookNotification     HookType = "Notification"
	HookPreCompact       HookType = "PreCompact"
	HookStop             HookType = "Stop"
	HookSubagentStop     HookType = "SubagentStop"
)

// AllHookTypes returns the well-known hook types
func AllHookTypes() []HookType {
	return []HookType{
		HookSessionStart,
		HookSessionEnd,
		HookUserPromptSubmit,
		HookPreToolUse,
		HookPostToolUse,
		HookNotification,
		HookPreCompact,
		HookStop,
		HookSubagentStop,
	}
}

// HookKind discriminates the two hook entry shapes
type HookKind int

const (
	// HookUnresolved means the kind has not been decided yet; normalization
	// infers it from the populated fields.
	HookUnresolved HookKind = iota
	// HookCommand is the {matcher, command} form
	HookCommand
	// HookGroup is the {matcher, hooks: [...]} form
	HookGroup
)

// String returns the string representation of HookKind
func (k HookKind) String() string {
	switch k {
	case HookUnresolved:
		return "unresolved"
	case HookCommand:
		return "command"
	case HookGroup:
		return "group"
	default:
		return "unknown"
	}
}

// DefaultActionType is the action type the host understands
const DefaultActionType = "command"

// HookAction is one typed action inside a grouped hook
type HookAction struct {
	Type    string  `toml:"type"`
	Command string  `toml:"command,omitempty"`
	Timeout float64 `toml:"timeout,omitempty"`
	// Extra holds keys the typed fields do not carry, such as the prompt of
	// a prompt action, and explicit zero values
	Extra map[string]json.RawMessage `toml:"-"`
}

// Hook is a lifecycle action attached to a phase. Command is used by the
// HookCommand kind, Actions by the HookGroup kind.
type Hook struct {
	Kind    HookKind
	Matcher string
	Command string
	Actions []HookAction
	// Extra holds entry keys other than matcher, command and hooks
	Extra map[string]json.RawMessage
}

// NewCommandHook creates a {matcher, command} hook
func NewCommandHook(matcher, command string) Hook {
	return Hook{Kind: HookCommand, Matcher: matcher, Command: command}
}

// NewGroupHook creates a {matcher, hooks: [...]} hook
func NewGroupHook(matcher string, actions ...HookAction) Hook {
	if actions == nil {
		actions = []HookAction{}
	}
	return Hook{Kind: HookGroup, Matcher: matcher, Actions: actions}
}

// CommandAction creates a command-typed action
func CommandAction(command string, timeout float64) HookAction {
	return HookAction{Type: DefaultActionType, Command: command, Timeout: timeout}
}

// Equal reports whether both actions carry the same fields
func (a HookAction) Equal(b HookAction) bool {
	return a.Type == b.Type &&
		a.Command == b.Command &&
		a.Timeout == b.Timeout &&
		rawEqual(a.Extra, b.Extra)
}

// Clone returns a deep copy
func (a HookAction) Clone() HookAction {
	a.Extra = cloneRaw(a.Extra)
	return a
}

// UnmarshalJSON decodes the typed fields and keeps every other key
func (a *HookAction) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = HookAction{}
	for k, v := range raw {
		switch k {
		case "type":
			a.Extra = decodeField(a.Extra, k, v, &a.Type)
		case "command":
			a.Extra = decodeField(a.Extra, k, v, &a.Command)
		case "timeout":
			a.Extra = decodeField(a.Extra, k, v, &a.Timeout)
		default:
			a.Extra = putRaw(a.Extra, k, v)
		}
	}
	return nil
}

// MarshalJSON writes type, command and timeout first, then the carried keys
func (a HookAction) MarshalJSON() ([]byte, error) {
	var fields []wireField
	fields = appendField(fields, a.Extra, "type", a.Type, a.Type != "")
	fields = appendField(fields, a.Extra, "command", a.Command, a.Command != "")
	fields = appendField(fields, a.Extra, "timeout", a.Timeout, a.Timeout != 0)
	return encodeOrdered(fields, a.Extra)
}

// ResolvedKind returns Kind, inferring it from the fields when unresolved
func (h Hook) ResolvedKind() HookKind {
	if h.Kind != HookUnresolved {
		return h.Kind
	}
	if h.Actions != nil {
		return HookGroup
	}
	return HookCommand
}

// Commands returns every shell command the hook runs, in order
func (h Hook) Commands() []string {
	if h.ResolvedKind() == HookCommand {
		return []string{h.Command}
	}
	cmds := make([]string, 0, len(h.Actions))
	for _, a := range h.Actions {
		cmds = append(cmds, a.Command)
	}
	return cmds
}

// Validate reports whether the populated fields agree with the kind
func (h Hook) Validate() error {
	switch h.Kind {
	case HookUnresolved:
		if h.Command != "" && len(h.Actions) > 0 {
			return fmt.Errorf("hook has both command and hooks set")
		}
	case HookCommand:
		if len(h.Actions) > 0 {
			return fmt.Errorf("command hook carries %d grouped actions", len(h.Actions))
		}
	case HookGroup:
		if h.Actions == nil {
			return fmt.Errorf("group hook has no hooks list")
		}
	default:
		return fmt.Errorf("unknown hook kind %d", h.Kind)
	}
	return nil
}

// Equal reports whether both hooks have the same kind and carry the same
// fields, actions included
func (h Hook) Equal(o Hook) bool {
	return h.ResolvedKind() == o.ResolvedKind() &&
		h.Matcher == o.Matcher &&
		h.Command == o.Command &&
		slices.EqualFunc(h.Actions, o.Actions, HookAction.Equal) &&
		rawEqual(h.Extra, o.Extra)
}

// Clone returns a deep copy
func (h Hook) Clone() Hook {
	if h.Actions != nil {
		actions := make([]HookAction, len(h.Actions))
		for i, a := range h.Actions {
			actions[i] = a.Clone()
		}
		h.Actions = actions
	}
	h.Extra = cloneRaw(h.Extra)
	return h
}

// UnmarshalJSON decides the hook kind from the presence of "hooks"
func (h *Hook) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = Hook{Kind: HookCommand}
	for k, v := range raw {
		switch k {
		case "matcher":
			h.Extra = decodeField(h.Extra, k, v, &h.Matcher)
		case "command":
			h.Extra = decodeField(h.Extra, k, v, &h.Command)
		case "hooks":
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				h.Extra = putRaw(h.Extra, k, v)
				continue
			}
			var actions []HookAction
			if err := json.Unmarshal(v, &actions); err != nil {
				return fmt.Errorf("hooks: %w", err)
			}
			if actions == nil {
				actions = []HookAction{}
			}
			h.Kind = HookGroup
			h.Actions = actions
		default:
			h.Extra = putRaw(h.Extra, k, v)
		}
	}
	return nil
}

// MarshalJSON writes the shape matching the hook kind. The command form
// always carries a command key and the group form always carries hooks.
func (h Hook) MarshalJSON() ([]byte, error) {
	var fields []wireField
	fields = appendField(fields, h.Extra, "matcher", h.Matcher, h.Matcher != "")
	if h.ResolvedKind() == HookGroup {
		fields = appendField(fields, h.Extra, "command", h.Command, h.Command != "")
		actions := h.Actions
		if actions == nil {
			actions = []HookAction{}
		}
		fields = append(fields, wireField{"hooks", actions})
		return encodeOrdered(fields, h.Extra)
	}
	fields = appendField(fields, h.Extra, "command", h.Command, h.Command != "" || h.Extra["command"] == nil)
	return encodeOrdered(fields, h.Extra)
}

// UnmarshalYAML decides the hook kind from the presence of "hooks"
func (h *Hook) UnmarshalYAML(value *yaml.Node) error {
	raw, err := yamlToRaw(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return h.UnmarshalJSON(data)
}

type wireField struct {
	key   string
	value any
}

// appendField adds value when set, otherwise the carried raw value if any
func appendField(fields []wireField, extra map[string]json.RawMessage, key string, value any, set bool) []wireField {
	if set {
		return append(fields, wireField{key, value})
	}
	if raw, ok := extra[key]; ok {
		return append(fields, wireField{key, raw})
	}
	return fields
}

// encodeOrdered writes fields in the given order followed by the extra keys
// not already written, sorted
func encodeOrdered(fields []wireField, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(fields))
	write := func(key string, value any) error {
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		k, _ := json.Marshal(key)
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	for _, f := range fields {
		written[f.key] = true
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if written[k] {
			continue
		}
		if err := write(k, extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeField stores v in dst. A value dst cannot hold, or an explicit zero
// value, is kept in extra instead so it is written back unchanged.
func decodeField[T comparable](extra map[string]json.RawMessage, key string, v json.RawMessage, dst *T) map[string]json.RawMessage {
	var zero T
	if err := json.Unmarshal(v, dst); err != nil || *dst == zero {
		*dst = zero
		return putRaw(extra, key, v)
	}
	return extra
}

func putRaw(extra map[string]json.RawMessage, key string, v json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		extra = make(map[string]json.RawMessage)
	}
	extra[key] = v
	return extra
}

func rawEqual(a, b map[string]json.RawMessage) bool {
	return maps.EqualFunc(a, b, func(x, y json.RawMessage) bool {
		return bytes.Equal(x, y)
	})
}

// yamlToRaw decodes a YAML node into plain values that encoding/json accepts
func yamlToRaw(value *yaml.Node) (any, error) {
	var v any
	if err := value.Decode(&v); err != nil {
		return nil, err
	}
	return jsonSafe(v), nil
}

func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = jsonSafe(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = jsonSafe(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = jsonSafe(e)
		}
		return t
	default:
		return v
	}
}

// HookList is the ordered hook sequence of one phase. It decodes from either
// a sequence or a single legacy hook object, which becomes a one-element list.
type HookList []Hook

// UnmarshalJSON accepts a hook array or a single hook object
func (l *HookList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*l = nil
		return nil
	case len(trimmed) > 0 && trimmed[0] == '{':
		var single Hook
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*l = HookList{single}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var hooks []Hook
		if err := json.Unmarshal(trimmed, &hooks); err != nil {
			return err
		}
		*l = hooks
		return nil
	default:
		return fmt.Errorf("unsupported hook shape: %s", trimmed)
	}
}

// UnmarshalYAML accepts a hook sequence or a single hook mapping
func (l *HookList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var single Hook
		if err := value.Decode(&single); err != nil {
			return err
		}
		*l = HookList{single}
		return nil
	case yaml.SequenceNode:
		var hooks []Hook
		if err := value.Decode(&hooks); err != nil {
			return err
		}
		*l = hooks
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
	}
	return fmt.Errorf("line %d: unsupported hook shape", value.Line)
}

func (l HookList) clone() HookList {
	if l == nil {
		return nil
	}
	out := make(HookList, len(l))
	for i, h := range l {
		out[i] = h.Clone()
	}
	return out
}

package config

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestHookJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		hook Hook
		want string
	}{
		{"command", NewCommandHook("Bash", "echo hi"), `{"matcher":"Bash","command":"echo hi"}`},
		{"group", NewGroupHook("Write", CommandAction("fmt", 5)), `{"matcher":"Write","hooks":[{"type":"command","command":"fmt","timeout":5}]}`},
		{"empty group", NewGroupHook("Write"), `{"matcher":"Write","hooks":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.hook)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back Hook
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if back.Kind != tt.hook.Kind {
				t.Errorf("Kind = %v, want %v", back.Kind, tt.hook.Kind)
			}
		})
	}
}

func TestHookListYAML(t *testing.T) {
	input := `
PreToolUse:
  matcher: Bash
  command: echo single
PostToolUse:
  - matcher: Write
    command: echo one
  - matcher: Edit
    hooks:
      - type: command
        command: echo two
`
	var hooks map[HookType]HookList
	if err := yaml.Unmarshal([]byte(input), &hooks); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if got := hooks[HookPreToolUse]; len(got) != 1 || got[0].Command != "echo single" {
		t.Errorf("PreToolUse = %+v", got)
	}
	post := hooks[HookPostToolUse]
	if len(post) != 2 {
		t.Fatalf("PostToolUse has %d hooks, want 2", len(post))
	}
	if post[0].Kind != HookCommand || post[1].Kind != HookGroup {
		t.Errorf("kinds = %v, %v", post[0].Kind, post[1].Kind)
	}
}

func TestHookListRejectsScalar(t *testing.T) {
	var l HookList
	if err := json.Unmarshal([]byte(`"echo"`), &l); err == nil {
		t.Error("Unmarshal() of a string should fail")
	}
}

func TestHookValidate(t *testing.T) {
	tests := []struct {
		name    string
		hook    Hook
		wantErr bool
	}{
		{"command", NewCommandHook("", "x"), false},
		{"group", NewGroupHook("", CommandAction("x", 0)), false},
		{"unresolved command", Hook{Command: "x"}, false},
		{"command with actions", Hook{Kind: HookCommand, Command: "x", Actions: []HookAction{{Command: "y"}}}, true},
		{"group without list", Hook{Kind: HookGroup}, true},
		{"ambiguous", Hook{Command: "x", Actions: []HookAction{{Command: "y"}}}, true},
		{"bad kind", Hook{Kind: HookKind(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hook.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHookKeepsCarriedFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"prompt action", `{"matcher":"Stop","hooks":[{"type":"prompt","prompt":"check work","timeout":30}]}`,
			`{"matcher":"Stop","hooks":[{"type":"prompt","timeout":30,"prompt":"check work"}]}`},
		{"fractional timeout", `{"hooks":[{"type":"command","command":"fmt","timeout":30.5}]}`,
			`{"hooks":[{"type":"command","command":"fmt","timeout":30.5}]}`},
		{"entry timeout", `{"matcher":"Bash","command":"x","timeout":10}`,
			`{"matcher":"Bash","command":"x","timeout":10}`},
		{"explicit empty matcher", `{"matcher":"","command":"x"}`, `{"matcher":"","command":"x"}`},
		{"no injected command", `{"hooks":[{"type":"prompt","prompt":"p"}]}`, `{"hooks":[{"type":"prompt","prompt":"p"}]}`},
		{"explicit empty command", `{"hooks":[{"type":"command","command":""}]}`, `{"hooks":[{"type":"command","command":""}]}`},
		{"string timeout", `{"hooks":[{"type":"command","command":"x","timeout":"5s"}]}`,
			`{"hooks":[{"type":"command","command":"x","timeout":"5s"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Hook
			if err := json.Unmarshal([]byte(tt.input), &h); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			got, err := json.Marshal(h)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHookYAMLKeepsCarriedFields(t *testing.T) {
	input := `
matcher: Edit
timeout: 15
hooks:
  - type: prompt
    prompt: review the diff
`
	var h Hook
	if err := yaml.Unmarshal([]byte(input), &h); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if h.Kind != HookGroup || len(h.Actions) != 1 {
		t.Fatalf("hook = %+v", h)
	}
	if got := string(h.Actions[0].Extra["prompt"]); got != `"review the diff"` {
		t.Errorf("prompt = %s", got)
	}
	if got := string(h.Extra["timeout"]); got != "15" {
		t.Errorf("timeout = %s", got)
	}
}

func TestHookEqual(t *testing.T) {
	prompt := func(text string) Hook {
		return NewGroupHook("", HookAction{Type: "prompt", Extra: map[string]json.RawMessage{"prompt": json.RawMessage(text)}})
	}

	tests := []struct {
		name string
		a, b Hook
		want bool
	}{
		{"same", prompt(`"a"`), prompt(`"a"`), true},
		{"carried field differs", prompt(`"a"`), prompt(`"b"`), false},
		{"kind differs", NewCommandHook("", "x"), NewGroupHook("", CommandAction("x", 0)), false},
		{"entry extra differs", NewCommandHook("", "x"), Hook{Kind: HookCommand, Command: "x", Extra: map[string]json.RawMessage{"timeout": json.RawMessage(`1`)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHookCloneIsDeep(t *testing.T) {
	h := NewGroupHook("", HookAction{Type: "prompt", Extra: map[string]json.RawMessage{"prompt": json.RawMessage(`"a"`)}})
	c := h.Clone()
	c.Actions[0].Extra["prompt"] = json.RawMessage(`"b"`)
	if got := string(h.Actions[0].Extra["prompt"]); got != `"a"` {
		t.Errorf("original prompt = %s after editing the clone", got)
	}
}

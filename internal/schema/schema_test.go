package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
)

func mustParse(t *testing.T, input string) *config.Settings {
	t.Helper()
	s, err := config.ParseSettings([]byte(input))
	if err != nil {
		t.Fatalf("ParseSettings() error: %v", err)
	}
	return s
}

func mustMarshal(t *testing.T, s *config.Settings) string {
	t.Helper()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	return string(data)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := map[string]string{
		"empty":   `{}`,
		"legacy":  `{"commands": ["presetA"], "hooks": {"Stop": {"command": "notify"}}}`,
		"full":    `{"permissions": {"allow": ["Read"]}, "env": {"A": "1"}, "plugins": ["p"], "subagents": {"agents": {}}}`,
		"opaque":  `{"commands": 7, "model": "opus"}`,
		"grouped": `{"hooks": {"PostToolUse": [{"matcher": "Write", "hooks": [{"type": "command", "command": "fmt"}]}]}}`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			once := Normalize(mustParse(t, input))
			twice := Normalize(once)

			a, b := mustMarshal(t, once), mustMarshal(t, twice)
			if a != b {
				t.Errorf("normalize not idempotent:\n%s\n%s", a, b)
			}

			reparsed := Normalize(mustParse(t, a))
			if c := mustMarshal(t, reparsed); c != a {
				t.Errorf("canonical form changed after reparse:\n%s\n%s", a, c)
			}
		})
	}
}

func TestNormalizeMigratesCommandList(t *testing.T) {
	s := Normalize(mustParse(t, `{"commands": ["presetA"]}`))

	if s.Commands.Shape != config.RegistryObject {
		t.Fatalf("Shape = %v, want object", s.Commands.Shape)
	}
	if err := s.AddCommandPresets("presetB"); err != nil {
		t.Fatalf("AddCommandPresets() error: %v", err)
	}

	want := []string{"presetA", "presetB"}
	if len(s.Commands.Presets) != 2 || s.Commands.Presets[0] != want[0] || s.Commands.Presets[1] != want[1] {
		t.Errorf("Presets = %v, want %v", s.Commands.Presets, want)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := mustParse(t, `{"commands": ["presetA"]}`)
	_ = Normalize(in)

	if in.Commands.Shape != config.RegistryList {
		t.Error("input registry shape was changed")
	}
	if in.Hooks != nil {
		t.Error("input hooks were initialized")
	}
}

func TestNormalizeKeepsOpaque(t *testing.T) {
	s := Normalize(mustParse(t, `{"subagents": "legacy"}`))
	if s.Subagents.Shape != config.RegistryOpaque {
		t.Errorf("Shape = %v, want opaque", s.Subagents.Shape)
	}
	if got := string(s.Subagents.Raw); got != `"legacy"` {
		t.Errorf("Raw = %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr bool
	}{
		{"canonical", func(*config.Settings) {}, false},
		{"nil hooks", func(s *config.Settings) { s.Hooks = nil }, true},
		{"nil env", func(s *config.Settings) { s.Env = nil }, true},
		{"nil allow", func(s *config.Settings) { s.Permissions.Allow = nil }, true},
		{"nil plugins", func(s *config.Settings) { s.Plugins = nil }, true},
		{"inconsistent hook", func(s *config.Settings) {
			s.Hooks[config.HookStop] = config.HookList{{Kind: config.HookCommand, Actions: []config.HookAction{{Command: "x"}}}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Normalize(&config.Settings{})
			tt.mutate(s)
			err := Validate(s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, herrors.ErrIncompatibleMergeTarget) {
				t.Errorf("error %v does not match ErrIncompatibleMergeTarget", err)
			}
		})
	}
}

func TestCheckAdditive(t *testing.T) {
	base := func() *config.Settings {
		s := Normalize(&config.Settings{})
		s.AddAllow("Read")
		s.AddHooks(config.HookStop, config.NewCommandHook("", "notify"))
		s.AddHooks(config.HookPreToolUse, config.Hook{
			Kind:    config.HookGroup,
			Matcher: "Bash",
			Actions: []config.HookAction{{Type: "prompt", Extra: map[string]json.RawMessage{"prompt": json.RawMessage(`"check"`)}}},
		})
		s.ForceEnv(map[string]string{"A": "1"})
		s.AddPlugins("p1")
		_ = s.AddCommandPresets("presetA")
		_ = s.AddCommands(map[string]config.CommandSpec{"review": {Content: "c"}}, false)
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr bool
	}{
		{"additions", func(s *config.Settings) {
			s.AddAllow("Write")
			s.AddHooks(config.HookStop, config.NewCommandHook("", "beep"))
		}, false},
		{"env overwrite", func(s *config.Settings) { s.ForceEnv(map[string]string{"A": "2"}) }, false},
		{"entry overwrite", func(s *config.Settings) {
			_ = s.AddCommands(map[string]config.CommandSpec{"review": {Content: "new"}}, true)
		}, false},
		{"rule removed", func(s *config.Settings) { s.Permissions.Allow = []string{} }, true},
		{"hook removed", func(s *config.Settings) { s.Hooks[config.HookStop] = config.HookList{} }, true},
		{"hook rewritten", func(s *config.Settings) { s.Hooks[config.HookStop][0].Command = "other" }, true},
		{"carried action field rewritten", func(s *config.Settings) {
			s.Hooks[config.HookPreToolUse][0].Actions[0].Extra["prompt"] = json.RawMessage(`"skip"`)
		}, true},
		{"env removed", func(s *config.Settings) { delete(s.Env, "A") }, true},
		{"plugin removed", func(s *config.Settings) { s.Plugins = []string{} }, true},
		{"preset removed", func(s *config.Settings) { s.Commands.Presets = []string{} }, true},
		{"entry removed", func(s *config.Settings) { delete(s.Commands.Entries, "review") }, true},
		{"opaque introduced", func(s *config.Settings) {
			s.Subagents = config.Registry[config.AgentSpec]{Shape: config.RegistryOpaque, Raw: json.RawMessage(`1`)}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := base()
			after := before.Clone()
			tt.mutate(after)
			err := CheckAdditive(before, after)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckAdditive() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

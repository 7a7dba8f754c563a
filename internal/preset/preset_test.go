package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hugsylabs/hugsy/internal/config"
	"github.com/hugsylabs/hugsy/internal/plugin"
	"github.com/hugsylabs/hugsy/internal/schema"
)

const teamYAML = `
name: team
version: 1.0.0
description: Team defaults
plugins:
  - plugin-git
  - plugin-missing
slashCommands:
  packages:
    - commands-dev
permissions:
  allow:
    - Read
    - Bash(make *)
  deny:
    - Read(.env)
env:
  FOO: preset
hooks:
  PreToolUse:
    matcher: Bash
    command: echo preset
  Stop:
    - command: notify
commands:
  ship:
    description: Ship it
    content: Ship the change
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "team.yaml")
	jsonPath := filepath.Join(dir, "other.json")
	if err := os.WriteFile(yamlPath, []byte(teamYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(`{"plugins": ["plugin-node"], "env": {"A": "1"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(yaml) error: %v", err)
	}
	if d.Name != "team" || d.PluginName() != "preset-team" {
		t.Errorf("Name = %q, PluginName = %q", d.Name, d.PluginName())
	}
	if len(d.Hooks[config.HookPreToolUse]) != 1 {
		t.Errorf("single hook not coerced: %+v", d.Hooks)
	}

	j, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("Load(json) error: %v", err)
	}
	if j.Name != "other" {
		t.Errorf("name from file = %q, want other", j.Name)
	}

	if _, err := Load(filepath.Join(dir, "team.txt")); err == nil {
		t.Error("Load() of an unknown extension should fail")
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse([]byte(teamYAML)); err != nil {
		t.Errorf("Parse(yaml) error: %v", err)
	}
	if _, err := Parse([]byte(`{"name": "j"}`)); err != nil {
		t.Errorf("Parse(json) error: %v", err)
	}
	if _, err := Parse([]byte(`plugins: [a]`)); err == nil {
		t.Error("Parse() without a name should fail")
	}
}

func TestExpand(t *testing.T) {
	d, err := Parse([]byte(teamYAML))
	if err != nil {
		t.Fatal(err)
	}

	base, err := config.ParseSettings([]byte(`{
  "commands": ["presetA"],
  "permissions": {"allow": ["Read"]},
  "env": {"FOO": "custom", "KEEP": "1"},
  "hooks": {"PreToolUse": [{"matcher": "Write", "command": "echo first"}]}
}`))
	if err != nil {
		t.Fatal(err)
	}
	s := schema.Normalize(base)

	if err := Expand(d, s); err != nil {
		t.Fatalf("Expand() error: %v", err)
	}

	if got := s.Plugins; len(got) != 2 || got[0] != "plugin-git" {
		t.Errorf("Plugins = %v", got)
	}
	if got := s.Commands.Presets; len(got) != 2 || got[0] != "presetA" || got[1] != "commands-dev" {
		t.Errorf("command presets = %v", got)
	}
	if got := s.Permissions.Allow; len(got) != 2 || got[0] != "Read" || got[1] != "Bash(make *)" {
		t.Errorf("Allow = %v", got)
	}
	if s.Env["FOO"] != "preset" || s.Env["KEEP"] != "1" {
		t.Errorf("Env = %v", s.Env)
	}
	pre := s.Hooks[config.HookPreToolUse]
	if len(pre) != 2 || pre[0].Command != "echo first" || pre[1].Command != "echo preset" {
		t.Errorf("PreToolUse = %+v", pre)
	}
	if len(s.Hooks[config.HookStop]) != 1 {
		t.Errorf("Stop hooks = %+v", s.Hooks[config.HookStop])
	}
	if s.Commands.Entries["ship"].Content != "Ship the change" {
		t.Errorf("commands = %+v", s.Commands.Entries)
	}
}

func TestAsPluginRunsInPipeline(t *testing.T) {
	d, err := Parse([]byte(teamYAML))
	if err != nil {
		t.Fatal(err)
	}

	out, report, err := plugin.NewRunner().Run(&config.Settings{}, []plugin.Plugin{AsPlugin(d), AsPlugin(d)})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(out.Permissions.Allow) != 2 {
		t.Errorf("Allow = %v, want rules added once", out.Permissions.Allow)
	}
	if len(out.Hooks[config.HookStop]) != 2 {
		t.Errorf("Stop hooks = %d, want 2 (hooks are not deduplicated)", len(out.Hooks[config.HookStop]))
	}
	if !out.HasPlugin("preset-team") {
		t.Errorf("Plugins = %v, want preset-team recorded", out.Plugins)
	}
	if report.Steps[0].Plugin != "preset-team" || report.Steps[0].Version != "1.0.0" {
		t.Errorf("step = %+v", report.Steps[0])
	}
}

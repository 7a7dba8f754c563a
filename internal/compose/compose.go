// Package compose loads a hugsy project, resolves its presets, plugins and
// subagent documents into a pipeline, runs it and writes the resulting
// settings file.
package compose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hugsylabs/hugsy/internal/builtin"
	"github.com/hugsylabs/hugsy/internal/catalog"
	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/logging"
	"github.com/hugsylabs/hugsy/internal/plugin"
	"github.com/hugsylabs/hugsy/internal/preset"
)

// Preset sources
const (
	SourceUser    = "user"
	SourceBuiltin = "builtin"
)

// Service composes settings for a project
type Service struct {
	paths    *config.Paths
	registry *plugin.Registry
	runner   *plugin.Runner
	scanner  *catalog.Scanner
	output   string
}

// Result is the outcome of a compose run
type Result struct {
	Settings *config.Settings
	Report   *plugin.Report
	Output   string
}

// PresetInfo describes an available preset
type PresetInfo struct {
	Descriptor *preset.Descriptor
	Source     string
	Path       string
}

// New creates a service with the built-in plugin registry
func New(paths *config.Paths) (*Service, error) {
	reg, err := builtin.NewRegistry()
	if err != nil {
		return nil, err
	}
	return NewWithRegistry(paths, reg), nil
}

// NewWithRegistry creates a service over a custom plugin registry
func NewWithRegistry(paths *config.Paths, registry *plugin.Registry) *Service {
	return &Service{
		paths:    paths,
		registry: registry,
		runner:   plugin.NewRunner(),
		scanner:  catalog.NewScanner(),
	}
}

// Paths returns the resolved paths
func (s *Service) Paths() *config.Paths {
	return s.paths
}

// Registry returns the plugin registry
func (s *Service) Registry() *plugin.Registry {
	return s.registry
}

// LoadProject loads the project file
func (s *Service) LoadProject() (*config.ProjectConfig, error) {
	return config.LoadProjectConfig(s.paths.ProjectFile)
}

// SetOutput overrides the output path of every project the service composes
func (s *Service) SetOutput(path string) {
	s.output = path
}

// OutputPath returns where the project's settings file is written
func (s *Service) OutputPath(project *config.ProjectConfig) string {
	if s.output != "" {
		return s.output
	}
	out := project.Output
	if out == "" {
		out = config.DefaultOutput
	}
	return s.paths.Resolve(out)
}

// Presets returns every available preset. User presets shadow built-ins of
// the same name.
func (s *Service) Presets() ([]PresetInfo, error) {
	cat, err := s.scanner.Scan(s.paths)
	if err != nil {
		return nil, err
	}

	var infos []PresetInfo
	seen := make(map[string]bool)
	for _, item := range cat.GetItems(catalog.ItemPresets) {
		d, err := preset.Load(item.Path)
		if err != nil {
			return nil, herrors.NewPresetError(item.Name, "load", err)
		}
		seen[d.Name] = true
		infos = append(infos, PresetInfo{Descriptor: d, Source: SourceUser, Path: item.Path})
	}

	builtins, err := builtin.Presets()
	if err != nil {
		return nil, err
	}
	for _, d := range builtins {
		if seen[d.Name] {
			continue
		}
		infos = append(infos, PresetInfo{Descriptor: d, Source: SourceBuiltin})
	}

	slices.SortFunc(infos, func(a, b PresetInfo) int {
		return strings.Compare(a.Descriptor.Name, b.Descriptor.Name)
	})
	return infos, nil
}

// FindPreset looks a preset up in the user preset directory, then among the
// built-in presets
func (s *Service) FindPreset(name string) (*PresetInfo, error) {
	cat, err := s.scanner.Scan(s.paths)
	if err != nil {
		return nil, err
	}
	if item := cat.GetItem(catalog.ItemPresets, name); item != nil {
		d, err := preset.Load(item.Path)
		if err != nil {
			return nil, herrors.NewPresetError(name, "load", err)
		}
		logging.Debug("Preset", "using user preset %s from %s", name, item.Path)
		return &PresetInfo{Descriptor: d, Source: SourceUser, Path: item.Path}, nil
	}

	d, ok, err := builtin.Preset(name)
	if err != nil {
		return nil, herrors.NewPresetError(name, "load", err)
	}
	if !ok {
		return nil, herrors.NewPresetError(name, "resolve", herrors.ErrPresetNotFound)
	}
	return &PresetInfo{Descriptor: d, Source: SourceBuiltin}, nil
}

// Agents returns the subagent documents in the user agents directory
func (s *Service) Agents() ([]catalog.Item, error) {
	cat, err := s.scanner.Scan(s.paths)
	if err != nil {
		return nil, err
	}
	return cat.GetItems(catalog.ItemAgents), nil
}

// Resolver returns a resolver over the service registry and presets
func (s *Service) Resolver() *Resolver {
	return NewResolver(s.registry, func(name string) (*preset.Descriptor, error) {
		info, err := s.FindPreset(name)
		if err != nil {
			return nil, err
		}
		return info.Descriptor, nil
	})
}

// Baseline builds the starting document: the baseline settings file, if
// any, with the project's inline fragments merged in
func (s *Service) Baseline(project *config.ProjectConfig) (*config.Settings, error) {
	base := &config.Settings{}
	if project.Baseline != "" {
		path := s.paths.Resolve(project.Baseline)
		loaded, err := config.ReadSettings(path)
		if err != nil {
			return nil, herrors.NewDocumentError(path, "load baseline", err)
		}
		base = loaded
	}

	if err := MergeFragment(base, project.Fragment()); err != nil {
		return nil, fmt.Errorf("project fragments: %w", err)
	}
	return base, nil
}

// MergeFragment merges frag into base: permission rules are added once, env
// values replace existing ones, hooks are appended and commands replace
// entries of the same name
func MergeFragment(base, frag *config.Settings) error {
	for _, b := range config.AllBuckets() {
		base.AddRules(b, *frag.Permissions.Rules(b)...)
	}
	base.ForceEnv(frag.Env)
	for _, phase := range sortedPhases(frag.Hooks) {
		base.AddHooks(phase, frag.Hooks[phase]...)
	}
	if len(frag.Commands.Entries) > 0 {
		if err := base.AddCommands(frag.Commands.Entries, true); err != nil {
			return err
		}
	}
	return nil
}

// AgentPlugins reads the project's subagent documents and returns one
// plugin per document
func (s *Service) AgentPlugins(project *config.ProjectConfig) ([]plugin.Plugin, error) {
	plugins := make([]plugin.Plugin, 0, len(project.Agents))
	for _, ref := range project.Agents {
		path := s.paths.AgentPath(ref)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, herrors.NewDocumentError(path, "read agent", err)
		}

		defaults := builtin.AgentDefaults{Name: agentName(path)}
		p, err := builtin.SubagentPlugin(plugin.Meta{}, string(data), defaults)
		if err != nil {
			return nil, herrors.NewDocumentError(path, "parse agent", err)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

// Pipeline resolves the full ordered plugin list for a project
func (s *Service) Pipeline(project *config.ProjectConfig) ([]plugin.Plugin, error) {
	plugins, err := s.Resolver().Resolve(project.Extends, project.Plugins)
	if err != nil {
		return nil, err
	}

	agents, err := s.AgentPlugins(project)
	if err != nil {
		return nil, err
	}
	for _, a := range agents {
		if slices.ContainsFunc(plugins, func(p plugin.Plugin) bool { return p.Name() == a.Name() }) {
			logging.Warn("Compose", "subagent plugin %s is already scheduled, skipping", a.Name())
			continue
		}
		plugins = append(plugins, a)
	}
	return plugins, nil
}

// Run composes the project's settings without writing them
func (s *Service) Run(project *config.ProjectConfig) (*Result, error) {
	base, err := s.Baseline(project)
	if err != nil {
		return nil, err
	}
	plugins, err := s.Pipeline(project)
	if err != nil {
		return nil, err
	}

	settings, report, err := s.runner.Run(base, plugins)
	if err != nil {
		return nil, err
	}
	logging.Info("Compose", "composed %d plugins", len(report.Steps))

	return &Result{
		Settings: settings,
		Report:   report,
		Output:   s.OutputPath(project),
	}, nil
}

// Compose loads the project file, composes it and writes the settings file
func (s *Service) Compose() (*Result, error) {
	project, err := s.LoadProject()
	if err != nil {
		return nil, err
	}
	result, err := s.Run(project)
	if err != nil {
		return nil, err
	}
	if err := Write(result.Output, result.Settings); err != nil {
		return nil, herrors.NewDocumentError(result.Output, "write", err)
	}
	logging.Info("Compose", "wrote %s", result.Output)
	return result, nil
}

// Check composes the project and compares the result with the settings
// file on disk
func (s *Service) Check(project *config.ProjectConfig) (*DriftReport, error) {
	result, err := s.Run(project)
	if err != nil {
		return nil, err
	}
	return DetectDrift(result.Output, result.Settings)
}

// Encode renders settings as indented JSON with a trailing newline
func Encode(settings *config.Settings) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(settings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes settings to path, creating parent directories
func Write(path string, settings *config.Settings) error {
	data, err := Encode(settings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IsNotFound reports whether err means a preset or plugin name is unknown
func IsNotFound(err error) bool {
	return errors.Is(err, herrors.ErrPresetNotFound) || errors.Is(err, herrors.ErrPluginNotFound)
}

func agentName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func sortedPhases(hooks map[config.HookType]config.HookList) []config.HookType {
	phases := make([]config.HookType, 0, len(hooks))
	for phase := range hooks {
		phases = append(phases, phase)
	}
	slices.Sort(phases)
	return phases
}

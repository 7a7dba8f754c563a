package plugin

import (
	"errors"
	"fmt"

	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/logging"
	"github.com/hugsylabs/hugsy/internal/schema"
)

// Step records what one plugin added to the document
type Step struct {
	Plugin   string
	Version  string
	Rules    int
	Hooks    int
	Env      int
	Commands int
	Agents   int
}

// Report lists the steps of a run in execution order
type Report struct {
	Steps []Step
}

// Plugins returns the names of the applied plugins in order
func (r *Report) Plugins() []string {
	names := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		names = append(names, s.Plugin)
	}
	return names
}

// Runner folds a settings document through an ordered plugin list
type Runner struct{}

// NewRunner creates a new Runner
func NewRunner() *Runner {
	return &Runner{}
}

// Run applies plugins to a copy of base in order and returns the final
// document. base is never modified. Any plugin failure aborts the run; there
// is no partial result.
func (r *Runner) Run(base *config.Settings, plugins []Plugin) (*config.Settings, *Report, error) {
	current := schema.Normalize(base)
	report := &Report{Steps: make([]Step, 0, len(plugins))}

	for _, p := range plugins {
		name := p.Name()
		current = schema.Normalize(current)
		before := current.Clone()

		result, err := p.Transform(current)
		if err != nil {
			return nil, nil, compositionError(name, err)
		}
		if err := verify(before, result); err != nil {
			return nil, nil, compositionError(name, err)
		}

		result.AddPlugins(name)
		step := diff(before, result)
		step.Plugin = name
		step.Version = p.Version()
		report.Steps = append(report.Steps, step)

		logging.Debug("Pipeline", "applied %s@%s: +%d rules, +%d hooks, %d env, +%d commands, +%d agents",
			name, step.Version, step.Rules, step.Hooks, step.Env, step.Commands, step.Agents)
		current = result
	}

	return schema.Normalize(current), report, nil
}

func verify(before, after *config.Settings) error {
	if after == nil {
		return herrors.NewFieldError("settings", "transform returned no document")
	}
	if err := schema.Validate(after); err != nil {
		return err
	}
	return schema.CheckAdditive(before, after)
}

func compositionError(plugin string, err error) error {
	var fe *herrors.FieldError
	if errors.As(err, &fe) {
		return herrors.NewCompositionError(plugin, fe.Field, fmt.Errorf("%s: %w", fe.Reason, herrors.ErrIncompatibleMergeTarget))
	}
	return herrors.NewCompositionError(plugin, "", err)
}

func diff(before, after *config.Settings) Step {
	var step Step
	for _, b := range config.AllBuckets() {
		step.Rules += len(*after.Permissions.Rules(b)) - len(*before.Permissions.Rules(b))
	}
	for phase, list := range after.Hooks {
		step.Hooks += len(list) - len(before.Hooks[phase])
	}
	for key, value := range after.Env {
		if prev, ok := before.Env[key]; !ok || prev != value {
			step.Env++
		}
	}
	step.Commands = len(after.Commands.Entries) - len(before.Commands.Entries)
	step.Agents = len(after.Subagents.Entries) - len(before.Subagents.Entries)
	return step
}

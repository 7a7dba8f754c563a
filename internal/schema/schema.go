// Package schema converts settings documents into their canonical form and
// checks that a plugin left a document in a shape the next merge can use.
package schema

import (
	"fmt"
	"slices"

	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
	"github.com/hugsylabs/hugsy/internal/logging"
	"github.com/hugsylabs/hugsy/internal/merge"
)

// Normalize returns a canonical copy of s. Legacy list-form registries become
// object form, absent sections become empty values and unresolved hook kinds
// are decided. The input is not modified. Normalizing a canonical document
// returns an equal document.
func Normalize(s *config.Settings) *config.Settings {
	out := s.Clone()
	if out == nil {
		out = &config.Settings{}
	}

	for _, b := range config.AllBuckets() {
		rules := out.Permissions.Rules(b)
		if *rules == nil {
			*rules = []string{}
		}
	}

	if out.Hooks == nil {
		out.Hooks = make(map[config.HookType]config.HookList)
	}
	for phase, list := range out.Hooks {
		if list == nil {
			out.Hooks[phase] = config.HookList{}
			continue
		}
		for i := range list {
			normalizeHook(&list[i])
		}
	}

	if out.Env == nil {
		out.Env = make(map[string]string)
	}
	if out.Plugins == nil {
		out.Plugins = []string{}
	}

	normalizeRegistry(&out.Commands)
	normalizeRegistry(&out.Subagents)
	return out
}

func normalizeHook(h *config.Hook) {
	h.Kind = h.ResolvedKind()
	if h.Kind == config.HookGroup && h.Actions == nil {
		h.Actions = []config.HookAction{}
	}
}

func normalizeRegistry[T config.RegistryEntry](r *config.Registry[T]) {
	if r.Migrate() {
		logging.Debug("Schema", "converted list-form %s registry with %d presets", r.Key(), len(r.Presets))
	}
	if r.Shape == config.RegistryOpaque {
		logging.Debug("Schema", "passing through %s registry of unrecognized shape", r.Key())
		return
	}
	if r.Presets == nil {
		r.Presets = []string{}
	}
	if r.Entries == nil {
		r.Entries = make(map[string]T)
	}
}

// Validate checks that every canonical section of s is present and every
// hook agrees with its kind. Failures match ErrIncompatibleMergeTarget.
func Validate(s *config.Settings) error {
	if s == nil {
		return herrors.NewFieldError("settings", "document is nil")
	}
	for _, b := range config.AllBuckets() {
		if *s.Permissions.Rules(b) == nil {
			return herrors.NewFieldError("permissions."+string(b), "rule list was removed")
		}
	}
	if s.Hooks == nil {
		return herrors.NewFieldError(config.KeyHooks, "hook map was removed")
	}
	for _, phase := range sortedPhases(s.Hooks) {
		for i, h := range s.Hooks[phase] {
			if err := h.Validate(); err != nil {
				return herrors.NewFieldError(fmt.Sprintf("hooks.%s[%d]", phase, i), "%v", err)
			}
		}
	}
	if s.Env == nil {
		return herrors.NewFieldError(config.KeyEnv, "env map was removed")
	}
	if s.Plugins == nil {
		return herrors.NewFieldError(config.KeyPlugins, "plugin list was removed")
	}
	return nil
}

// CheckAdditive reports the first value present in before that is missing
// from after. Hook sequences must keep every entry they had, in order, as a
// prefix. Env values and registry entries may be replaced but not removed.
func CheckAdditive(before, after *config.Settings) error {
	for _, b := range config.AllBuckets() {
		if missing := merge.Missing(*before.Permissions.Rules(b), *after.Permissions.Rules(b)); len(missing) > 0 {
			return herrors.NewFieldError("permissions."+string(b), "rule %q was removed", missing[0])
		}
	}

	for _, phase := range sortedPhases(before.Hooks) {
		prev := before.Hooks[phase]
		next := after.Hooks[phase]
		if len(next) < len(prev) {
			return herrors.NewFieldError("hooks."+string(phase), "%d of %d hooks were removed", len(prev)-len(next), len(prev))
		}
		for i := range prev {
			if !prev[i].Equal(next[i]) {
				return herrors.NewFieldError(fmt.Sprintf("hooks.%s[%d]", phase, i), "existing hook was rewritten")
			}
		}
	}

	for key := range before.Env {
		if _, ok := after.Env[key]; !ok {
			return herrors.NewFieldError("env."+key, "variable was removed")
		}
	}

	if missing := merge.Missing(before.Plugins, after.Plugins); len(missing) > 0 {
		return herrors.NewFieldError(config.KeyPlugins, "plugin %q was removed", missing[0])
	}

	if err := checkRegistry(&before.Commands, &after.Commands); err != nil {
		return err
	}
	return checkRegistry(&before.Subagents, &after.Subagents)
}

func checkRegistry[T config.RegistryEntry](before, after *config.Registry[T]) error {
	key := before.Key()
	if after.Shape == config.RegistryOpaque {
		if before.Shape != config.RegistryOpaque {
			return herrors.NewFieldError(key, "registry was replaced with a value of unrecognized shape")
		}
		return nil
	}
	if before.Shape == config.RegistryOpaque {
		return nil
	}
	if missing := merge.Missing(before.Presets, after.Presets); len(missing) > 0 {
		return herrors.NewFieldError(key+".presets", "preset %q was removed", missing[0])
	}
	for _, name := range before.EntryNames() {
		if _, ok := after.Entries[name]; !ok {
			return herrors.NewFieldError(key+"."+name, "entry was removed")
		}
	}
	return nil
}

func sortedPhases(hooks map[config.HookType]config.HookList) []config.HookType {
	phases := make([]config.HookType, 0, len(hooks))
	for phase := range hooks {
		phases = append(phases, phase)
	}
	slices.Sort(phases)
	return phases
}

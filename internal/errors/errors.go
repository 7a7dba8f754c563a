package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrIncompatibleMergeTarget = errors.New("incompatible merge target")
	ErrPluginNotFound          = errors.New("plugin not found")
	ErrDuplicatePlugin         = errors.New("plugin already registered")
	ErrPresetNotFound          = errors.New("preset not found")
	ErrProjectNotFound         = errors.New("hugsy.toml not found: run 'hugsy init' first")
	ErrProjectExists           = errors.New("hugsy.toml already exists")
)

// CompositionError is a fatal failure of the plugin fold, tied to the plugin
// that produced it and the settings field that became invalid.
type CompositionError struct {
	Plugin string
	Field  string
	Err    error
}

func (e *CompositionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("plugin %s: %v", e.Plugin, e.Err)
	}
	return fmt.Sprintf("plugin %s: %s: %v", e.Plugin, e.Field, e.Err)
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// NewCompositionError creates a new composition error
func NewCompositionError(plugin, field string, err error) *CompositionError {
	return &CompositionError{Plugin: plugin, Field: field, Err: err}
}

// FieldError reports a settings field that cannot take part in a merge.
// The runner attaches the plugin name by wrapping it in a CompositionError.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrIncompatibleMergeTarget
func (e *FieldError) Is(target error) bool {
	return target == ErrIncompatibleMergeTarget
}

// NewFieldError creates a new field error
func NewFieldError(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DocumentError wraps errors with file context
type DocumentError struct {
	Path string
	Op   string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NewDocumentError creates a new document error
func NewDocumentError(path, op string, err error) *DocumentError {
	return &DocumentError{Path: path, Op: op, Err: err}
}

// PresetError wraps errors with preset context
type PresetError struct {
	Preset string
	Op     string
	Err    error
}

func (e *PresetError) Error() string {
	return fmt.Sprintf("preset %s: %s: %v", e.Preset, e.Op, e.Err)
}

func (e *PresetError) Unwrap() error {
	return e.Err
}

// NewPresetError creates a new preset error
func NewPresetError(preset, op string, err error) *PresetError {
	return &PresetError{Preset: preset, Op: op, Err: err}
}

// DriftError reports that the written settings differ from the composed result
type DriftError struct {
	Path   string
	Issues []string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s has %d configuration drift issues", e.Path, len(e.Issues))
}

// NewDriftError creates a new drift error
func NewDriftError(path string, issues []string) *DriftError {
	return &DriftError{Path: path, Issues: issues}
}

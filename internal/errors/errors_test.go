package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestCompositionError(t *testing.T) {
	tests := []struct {
		name string
		err  *CompositionError
		want string
	}{
		{
			name: "with field",
			err:  NewCompositionError("plugin-x", "permissions.allow", ErrIncompatibleMergeTarget),
			want: "plugin plugin-x: permissions.allow: incompatible merge target",
		},
		{
			name: "without field",
			err:  NewCompositionError("plugin-x", "", fmt.Errorf("boom")),
			want: "plugin plugin-x: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewFieldError("env", "expected %s", "object"))
	if !errors.Is(err, ErrIncompatibleMergeTarget) {
		t.Error("FieldError should match ErrIncompatibleMergeTarget")
	}

	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "env" || fe.Reason != "expected object" {
		t.Errorf("FieldError = %+v", fe)
	}
}

func TestWrappersUnwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"document", NewDocumentError("a.json", "read", os.ErrNotExist), os.ErrNotExist},
		{"preset", NewPresetError("web", "resolve", ErrPresetNotFound), ErrPresetNotFound},
		{"composition", NewCompositionError("p", "", ErrDuplicatePlugin), ErrDuplicatePlugin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
		})
	}
}

func TestDriftError(t *testing.T) {
	err := NewDriftError(".claude/settings.json", []string{"changed: env", "extra: theme"})
	want := ".claude/settings.json has 2 configuration drift issues"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

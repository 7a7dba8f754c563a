package plugin

import (
	"errors"
	"testing"

	"github.com/hugsylabs/hugsy/internal/config"
	herrors "github.com/hugsylabs/hugsy/internal/errors"
)

func noop(name string) Plugin {
	return Mutate(Meta{Name: name, Version: "0.0.1"}, func(*config.Settings) error { return nil })
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"b", "a", "c"} {
		if err := reg.Register(noop(name)); err != nil {
			t.Fatalf("Register(%q) error: %v", name, err)
		}
	}

	if err := reg.Register(noop("a")); !errors.Is(err, herrors.ErrDuplicatePlugin) {
		t.Errorf("duplicate Register() error = %v, want ErrDuplicatePlugin", err)
	}
	if err := reg.Register(noop(" ")); err == nil {
		t.Error("Register() of a blank name should fail")
	}

	if _, err := reg.Get("missing"); !errors.Is(err, herrors.ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
	p, err := reg.Get("b")
	if err != nil || p.Name() != "b" {
		t.Errorf("Get(b) = %v, %v", p, err)
	}

	names := reg.Names()
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names() = %v, want %v", names, want)
			break
		}
	}
	if len(reg.List()) != 3 {
		t.Errorf("List() returned %d plugins", len(reg.List()))
	}
}

func TestNewPassesMetadata(t *testing.T) {
	p := New(Meta{Name: "n", Version: "1.2.3", Description: "d"}, func(s *config.Settings) (*config.Settings, error) {
		return s, nil
	})
	if p.Name() != "n" || p.Version() != "1.2.3" || p.Description() != "d" {
		t.Errorf("metadata = %q %q %q", p.Name(), p.Version(), p.Description())
	}
}

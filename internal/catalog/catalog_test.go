package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hugsylabs/hugsy/internal/config"
)

func TestCatalogItems(t *testing.T) {
	c := New("/test/hugsy")

	c.Items[ItemPresets] = []Item{
		{Name: "team", Type: ItemPresets, Path: "/test/hugsy/presets/team.yaml"},
	}

	if c.ItemCount() != 1 {
		t.Errorf("ItemCount() = %d, want 1", c.ItemCount())
	}
	if !c.HasItem(ItemPresets, "team") {
		t.Error("HasItem(presets, team) = false, want true")
	}
	if c.HasItem(ItemAgents, "team") {
		t.Error("HasItem(agents, team) = true, want false")
	}
}

func TestScanner(t *testing.T) {
	home := t.TempDir()
	paths := &config.Paths{
		HomeDir:    home,
		PresetsDir: filepath.Join(home, "presets"),
		AgentsDir:  filepath.Join(home, "agents"),
	}

	files := []string{
		"presets/team.yaml",
		"presets/team.json",
		"presets/other.json",
		"presets/notes.txt",
		"presets/.hidden.yaml",
		"agents/reviewer.md",
	}
	for _, f := range files {
		path := filepath.Join(home, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("name: x\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	c, err := NewScanner().Scan(paths)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	presets := c.GetItems(ItemPresets)
	if len(presets) != 2 {
		t.Fatalf("got %d presets, want 2: %+v", len(presets), presets)
	}
	if item := c.GetItem(ItemPresets, "team"); item == nil || filepath.Ext(item.Path) != ".yaml" {
		t.Errorf("team = %+v, want the .yaml file", item)
	}
	if !c.HasItem(ItemAgents, "reviewer") {
		t.Error("reviewer agent not found")
	}
}

func TestScannerMissingDirs(t *testing.T) {
	home := t.TempDir()
	paths := &config.Paths{
		HomeDir:    home,
		PresetsDir: filepath.Join(home, "presets"),
		AgentsDir:  filepath.Join(home, "agents"),
	}

	c, err := NewScanner().Scan(paths)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if c.ItemCount() != 0 {
		t.Errorf("ItemCount() = %d, want 0", c.ItemCount())
	}
}

// Package catalog discovers user presets and subagent documents under the
// hugsy home directory.
package catalog

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hugsylabs/hugsy/internal/config"
)

// ItemType is a kind of catalog entry
type ItemType string

const (
	ItemPresets ItemType = "presets"
	ItemAgents  ItemType = "agents"
)

// AllItemTypes returns all item types in order
func AllItemTypes() []ItemType {
	return []ItemType{ItemPresets, ItemAgents}
}

// extensions lists the file extensions accepted per item type
var extensions = map[ItemType][]string{
	ItemPresets: {".yaml", ".yml", ".json"},
	ItemAgents:  {".md"},
}

// Catalog holds the discovered items
type Catalog struct {
	Path  string
	Items map[ItemType][]Item
}

// Item is a single preset or subagent file
type Item struct {
	Name string
	Type ItemType
	Path string
}

// New creates an empty catalog rooted at path
func New(path string) *Catalog {
	return &Catalog{
		Path:  path,
		Items: make(map[ItemType][]Item),
	}
}

// GetItems returns items of a specific type
func (c *Catalog) GetItems(itemType ItemType) []Item {
	return c.Items[itemType]
}

// GetItem returns a specific item by type and name
func (c *Catalog) GetItem(itemType ItemType, name string) *Item {
	for _, item := range c.Items[itemType] {
		if item.Name == name {
			return &item
		}
	}
	return nil
}

// HasItem checks if an item exists in the catalog
func (c *Catalog) HasItem(itemType ItemType, name string) bool {
	return c.GetItem(itemType, name) != nil
}

// ItemCount returns the total number of items
func (c *Catalog) ItemCount() int {
	count := 0
	for _, items := range c.Items {
		count += len(items)
	}
	return count
}

// Scanner scans directories for catalog items
type Scanner struct{}

// NewScanner creates a new Scanner
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan scans the hugsy home directory. Missing directories are skipped.
func (s *Scanner) Scan(paths *config.Paths) (*Catalog, error) {
	c := New(paths.HomeDir)

	dirs := map[ItemType]string{
		ItemPresets: paths.PresetsDir,
		ItemAgents:  paths.AgentsDir,
	}
	for _, itemType := range AllItemTypes() {
		items, err := s.scanItemDir(dirs[itemType], itemType)
		if err != nil {
			if os.IsNotExist(err) {
				// Directory doesn't exist, skip
				continue
			}
			return nil, err
		}
		c.Items[itemType] = items
	}

	return c, nil
}

// scanItemDir scans a single item directory
func (s *Scanner) scanItemDir(dir string, itemType ItemType) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Item)
	rank := make(map[string]int)
	for _, entry := range entries {
		// Skip hidden files and directories
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		r := slices.Index(extensions[itemType], ext)
		if r < 0 {
			continue
		}

		// The same name with several extensions resolves in extension order
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if prev, ok := rank[name]; ok && prev <= r {
			continue
		}
		rank[name] = r
		byName[name] = Item{
			Name: name,
			Type: itemType,
			Path: filepath.Join(dir, entry.Name()),
		}
	}

	items := make([]Item, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		items = append(items, byName[name])
	}
	return items, nil
}

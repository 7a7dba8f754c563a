package config

import (
	"os"
	"path/filepath"
)

// Default file names
const (
	ProjectFileName = "hugsy.toml"
	DefaultOutput   = ".claude/settings.json"
)

// Paths holds all resolved paths for hugsy operations
type Paths struct {
	HomeDir     string // ~/.hugsy (user data directory)
	PresetsDir  string // ~/.hugsy/presets
	AgentsDir   string // ~/.hugsy/agents
	ProjectFile string // ./hugsy.toml
}

// ResolvePaths resolves all paths based on environment and defaults
func ResolvePaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// hugsy data directory (can be overridden)
	hugsyHome := os.Getenv("HUGSY_HOME")
	if hugsyHome == "" {
		hugsyHome = filepath.Join(home, ".hugsy")
	}

	projectFile := os.Getenv("HUGSY_CONFIG")
	if projectFile == "" {
		projectFile = ProjectFileName
	}

	return &Paths{
		HomeDir:     hugsyHome,
		PresetsDir:  filepath.Join(hugsyHome, "presets"),
		AgentsDir:   filepath.Join(hugsyHome, "agents"),
		ProjectFile: projectFile,
	}, nil
}

// ProjectDir returns the directory relative project paths resolve against
func (p *Paths) ProjectDir() string {
	return filepath.Dir(p.ProjectFile)
}

// Resolve returns path joined to the project directory unless it is absolute
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ProjectDir(), path)
}

// AgentPath resolves an agent document reference. Bare names are looked up
// in the user agents directory.
func (p *Paths) AgentPath(ref string) string {
	if filepath.Ext(ref) == "" && filepath.Base(ref) == ref {
		return filepath.Join(p.AgentsDir, ref+".md")
	}
	return p.Resolve(ref)
}

// ProjectExists checks if the project file exists
func (p *Paths) ProjectExists() bool {
	info, err := os.Stat(p.ProjectFile)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

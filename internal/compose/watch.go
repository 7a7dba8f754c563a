package compose

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hugsylabs/hugsy/internal/logging"
)

// DefaultDebounce is how long Watch waits for further changes before recomposing
const DefaultDebounce = 300 * time.Millisecond

// Watcher recomposes a project whenever one of its input files changes
type Watcher struct {
	service  *Service
	debounce time.Duration
	// watched holds the absolute paths of the current input files
	watched map[string]bool
	output  string
}

// NewWatcher creates a watcher. A zero debounce uses DefaultDebounce.
func NewWatcher(service *Service, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{service: service, debounce: debounce}
}

// Run composes once, then again after every burst of changes to the project
// file, the baseline, subagent documents or user presets. onChange receives
// each outcome. Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(*Result, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	recompose := func() {
		result, err := w.service.Compose()
		w.refresh(watcher)
		onChange(result, err)
	}
	recompose()

	var fire <-chan time.Time
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logging.Debug("Watch", "%s %s", event.Op, event.Name)
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watch", err, "Filesystem watcher error")

		case <-fire:
			fire = nil
			recompose()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if path == w.output {
		return false
	}
	if w.watched[path] {
		return true
	}
	dir := filepath.Dir(path)
	return dir == w.absolute(w.service.paths.PresetsDir)
}

// refresh re-reads the input file set and watches the directories holding it
func (w *Watcher) refresh(watcher *fsnotify.Watcher) {
	files := w.inputs()
	w.watched = make(map[string]bool, len(files))

	dirs := map[string]bool{w.absolute(w.service.paths.PresetsDir): true}
	for _, f := range files {
		w.watched[f] = true
		dirs[filepath.Dir(f)] = true
	}

	current := make(map[string]bool)
	for _, dir := range watcher.WatchList() {
		current[dir] = true
	}
	for dir := range dirs {
		if current[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logging.Debug("Watch", "cannot watch %s: %v", dir, err)
			continue
		}
		logging.Debug("Watch", "watching directory: %s", dir)
	}
}

// inputs returns the absolute paths of the project's input files. A project
// that fails to load still watches its project file.
func (w *Watcher) inputs() []string {
	paths := w.service.paths
	files := []string{w.absolute(paths.ProjectFile)}

	project, err := w.service.LoadProject()
	if err != nil {
		return files
	}
	w.output = w.absolute(w.service.OutputPath(project))
	if project.Baseline != "" {
		files = append(files, w.absolute(paths.Resolve(project.Baseline)))
	}
	for _, ref := range project.Agents {
		files = append(files, w.absolute(paths.AgentPath(ref)))
	}
	return files
}

func (w *Watcher) absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Watch runs a Watcher with the default debounce
func (s *Service) Watch(ctx context.Context, onChange func(*Result, error)) error {
	return NewWatcher(s, 0).Run(ctx, onChange)
}

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// Registry manages the named row layouts available to the parser. It always
// carries the built-in default layout; additional layouts are registered in
// code or loaded from a directory of YAML files, which can optionally be
// watched for changes so new report formats are picked up without a restart.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]*RowLayout

	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}

	// onChange, when set, is called after a layout is loaded, reloaded or
	// removed by the watcher. The layout is nil for removals.
	onChange func(event string, layout *RowLayout)
}

// NewRegistry creates a registry seeded with the default layout.
func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]*RowLayout)}
	def := DefaultRowLayout()
	r.layouts[def.Name] = def
	return r
}

// NewRegistryWithDirectory creates a registry and loads every layout file
// from dir. A missing directory is not an error: only the default layout is
// available then.
func NewRegistryWithDirectory(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a layout, compiling it first if needed. A layout replaces
// any previous layout with the same name except the built-in default, which
// cannot be shadowed.
func (r *Registry) Register(layout *RowLayout) error {
	if layout == nil {
		return fmt.Errorf("layout cannot be nil")
	}
	if layout.Name == "" {
		return fmt.Errorf("layout has no name")
	}
	if layout.Name == "default" {
		return fmt.Errorf("layout name %q is reserved", layout.Name)
	}
	if !layout.IsCompiled() {
		if err := layout.Compile(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[layout.Name] = layout
	return nil
}

// Get returns a layout by name.
func (r *Registry) Get(name string) (*RowLayout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	layout, ok := r.layouts[name]
	return layout, ok
}

// List returns all registered layouts sorted by name.
func (r *Registry) List() []*RowLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()

	layouts := make([]*RowLayout, 0, len(r.layouts))
	for _, layout := range r.layouts {
		layouts = append(layouts, layout)
	}
	sort.Slice(layouts, func(i, j int) bool { return layouts[i].Name < layouts[j].Name })
	return layouts
}

// Count returns the number of registered layouts, including the default.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layouts)
}

// LoadDirectory loads every YAML layout file from dir. Files that fail to
// load are collected into a single error; the rest still register.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to load.
			return nil
		}
		return fmt.Errorf("checking layout directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading layout directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isLayoutFile(entry.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading layouts: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single YAML layout file. A file without an explicit name
// takes its basename as the layout name.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var layout RowLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	if layout.Name == "" {
		layout.Name = layoutNameFromPath(path)
	}

	return r.Register(&layout)
}

// Reload clears all loaded layouts and reloads the configured directory.
// The built-in default layout survives a reload.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	r.mu.Lock()
	r.layouts = make(map[string]*RowLayout)
	def := DefaultRowLayout()
	r.layouts[def.Name] = def
	r.mu.Unlock()

	return r.LoadDirectory(r.dir)
}

// SetOnChange sets the callback invoked for watcher-driven changes.
func (r *Registry) SetOnChange(fn func(event string, layout *RowLayout)) {
	r.onChange = fn
}

// Watch starts watching the layout directory for changes.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

// StopWatch stops watching the layout directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
	}
	if r.watcher != nil {
		r.watcher.Close()
	}
}

func (r *Registry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !isLayoutFile(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case _, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (r *Registry) handleFileChange(path string, eventType string) {
	if err := r.LoadFile(path); err != nil {
		// A broken layout file must not take down a running watch.
		return
	}

	if r.onChange != nil {
		if layout, ok := r.Get(layoutNameFromPath(path)); ok {
			r.onChange(eventType, layout)
		}
	}
}

func (r *Registry) handleFileRemove(path string) {
	// Layout files are not tracked back to names individually; a removal
	// reloads the whole directory.
	_ = r.Reload()

	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

func isLayoutFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func layoutNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
}

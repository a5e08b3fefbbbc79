package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads and validates one theme file.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}

	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse theme file %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("theme file %s: %w", path, err)
	}
	return &t, nil
}

// Registry holds loaded themes by name.
type Registry struct {
	themes map[string]*Theme
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{themes: make(map[string]*Theme)}
}

// Register adds a theme, rejecting duplicate names.
func (r *Registry) Register(t *Theme) error {
	if _, ok := r.themes[t.Name]; ok {
		return fmt.Errorf("theme %q already registered", t.Name)
	}
	r.themes[t.Name] = t
	return nil
}

// Get returns the theme registered under name.
func (r *Registry) Get(name string) (*Theme, bool) {
	t, ok := r.themes[name]
	return t, ok
}

// Len returns the number of registered themes.
func (r *Registry) Len() int { return len(r.themes) }

// Names returns the registered theme names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadDir loads every *.yaml and *.yml file in dir into a registry. A
// missing directory yields an empty registry so callers can fall back to the
// built-in default.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read theme dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		t, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

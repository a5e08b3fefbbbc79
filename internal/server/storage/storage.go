package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/dungeon-server/internal/server/config"
	"github.com/OCharnyshevich/dungeon-server/internal/server/region"
)

// Storage handles file-based persistence for config and generated regions.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "regions"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// LoadConfig reads config.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	return s.atomicWriteJSON(path, cfg)
}

// regionPath maps region coordinates onto regions/r.<x>.<z>.json.
func (s *Storage) regionPath(x, z int) string {
	return filepath.Join(s.dir, "regions", fmt.Sprintf("r.%d.%d.json", x, z))
}

// LoadRegion reads a persisted region, or nil if it was never saved.
func (s *Storage) LoadRegion(x, z int) (*region.Region, error) {
	data, err := os.ReadFile(s.regionPath(x, z))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read region %d,%d: %w", x, z, err)
	}

	var r region.Region
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse region %d,%d: %w", x, z, err)
	}
	return &r, nil
}

// SaveRegion persists a generated region atomically.
func (s *Storage) SaveRegion(r *region.Region) error {
	return s.atomicWriteJSON(s.regionPath(r.Pos.X, r.Pos.Z), r)
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

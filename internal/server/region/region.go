// Package region caches generated levels by grid position and owns the
// serialization between generation runs and live weight edits.
package region

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
	"github.com/OCharnyshevich/dungeon-server/pkg/weighted"
)

// Pos identifies a region by its X and Z grid coordinates.
type Pos struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Region is one generated level pinned to a grid position. Generation counts
// how often the region was regenerated; it salts the region seed so every
// regenerate yields a fresh but replayable layout.
type Region struct {
	Pos        Pos        `json:"pos"`
	Generation int        `json:"generation"`
	Level      *gen.Level `json:"level"`
}

// Store persists generated regions between runs. A nil store keeps regions
// in memory only.
type Store interface {
	SaveRegion(*Region) error
	LoadRegion(x, z int) (*Region, error)
}

// Manager tracks generated regions with a generator for new positions and a
// store for persisted ones.
type Manager struct {
	mu        sync.RWMutex
	regions   map[Pos]*Region
	generator gen.Generator
	palette   gen.Palette
	rootSeed  int64
	store     Store
	log       *slog.Logger
}

// NewManager creates a Manager around a generator and the palette its draws
// come from. store may be nil.
func NewManager(rootSeed int64, generator gen.Generator, pal gen.Palette, store Store, log *slog.Logger) *Manager {
	return &Manager{
		regions:   make(map[Pos]*Region),
		generator: generator,
		palette:   pal,
		rootSeed:  rootSeed,
		store:     store,
		log:       log,
	}
}

// regionSeed derives a deterministic per-region seed from the root seed.
func regionSeed(root int64, x, z, generation int) int64 {
	return root ^ (int64(x)*341873128712 + int64(z)*132897987541 + int64(generation))
}

// Get returns the cached region, if any.
func (m *Manager) Get(pos Pos) (*Region, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.regions[pos]
	return r, ok
}

// Count returns the number of cached regions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regions)
}

// GetOrGenerate returns the region at pos, checking memory, then the store,
// then generating and persisting it.
func (m *Manager) GetOrGenerate(pos Pos) (*Region, error) {
	m.mu.RLock()
	if r, ok := m.regions[pos]; ok {
		m.mu.RUnlock()
		return r, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if r, ok := m.regions[pos]; ok {
		return r, nil
	}

	if m.store != nil {
		r, err := m.store.LoadRegion(pos.X, pos.Z)
		if err != nil {
			return nil, err
		}
		if r != nil {
			m.regions[pos] = r
			m.log.Info("loaded region", "x", pos.X, "z", pos.Z, "generation", r.Generation)
			return r, nil
		}
	}

	return m.generateLocked(pos, 0)
}

// Regenerate replaces the region at pos with a freshly generated level under
// the next generation number. Never triggered spontaneously; hosts ask.
func (m *Manager) Regenerate(pos Pos) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	generation := 0
	if r, ok := m.regions[pos]; ok {
		generation = r.Generation + 1
	} else if m.store != nil {
		prev, err := m.store.LoadRegion(pos.X, pos.Z)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			generation = prev.Generation + 1
		}
	}

	return m.generateLocked(pos, generation)
}

// generateLocked runs the generator and caches the result. Callers hold the
// write lock: generation draws read the same selectors weight edits mutate.
func (m *Manager) generateLocked(pos Pos, generation int) (*Region, error) {
	seed := regionSeed(m.rootSeed, pos.X, pos.Z, generation)
	level, err := m.generator.Generate(seed)
	if err != nil {
		return nil, fmt.Errorf("generate region %d,%d: %w", pos.X, pos.Z, err)
	}

	r := &Region{Pos: pos, Generation: generation, Level: level}
	m.regions[pos] = r

	if m.store != nil {
		if err := m.store.SaveRegion(r); err != nil {
			return nil, fmt.Errorf("persist region %d,%d: %w", pos.X, pos.Z, err)
		}
	}

	m.log.Info("generated region", "x", pos.X, "z", pos.Z, "generation", generation, "rooms", len(level.Visited))
	return r, nil
}

// PreGenerateRadius fills the square of regions within radius around the
// origin and returns how many regions are cached afterwards.
func (m *Manager) PreGenerateRadius(radius int) (int, error) {
	for z := -radius; z <= radius; z++ {
		for x := -radius; x <= radius; x++ {
			if _, err := m.GetOrGenerate(Pos{X: x, Z: z}); err != nil {
				return m.Count(), err
			}
		}
	}
	return m.Count(), nil
}

// SetTileWeight changes a room tile's draw weight and rebalances the
// catalog. Cached regions keep their layout until regenerated. Returns the
// weight actually applied after clamping.
func (m *Manager) SetTileWeight(name string, weight float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return setEntryWeight(m.palette.Tiles, "tile", name, weight)
}

// SetPropWeight changes a prop's draw weight and rebalances the catalog.
func (m *Manager) SetPropWeight(name string, weight float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return setEntryWeight(m.palette.Props, "prop", name, weight)
}

func setEntryWeight(sel *weighted.Selector[string], kind, name string, weight float64) (float64, error) {
	if sel == nil {
		return 0, fmt.Errorf("theme has no %s catalog", kind)
	}
	for i, v := range sel.Values() {
		if v != name {
			continue
		}
		if err := sel.SetWeight(i, weight); err != nil {
			return 0, err
		}
		sel.Rebalance()
		return sel.Weight(i)
	}
	return 0, fmt.Errorf("unknown %s %q", kind, name)
}

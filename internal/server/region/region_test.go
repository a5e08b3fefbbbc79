package region

import (
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
	"github.com/OCharnyshevich/dungeon-server/pkg/weighted"
)

type memStore struct {
	saved map[Pos]*Region
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[Pos]*Region)}
}

func (s *memStore) SaveRegion(r *Region) error {
	s.saved[r.Pos] = r
	return nil
}

func (s *memStore) LoadRegion(x, z int) (*Region, error) {
	return s.saved[Pos{X: x, Z: z}], nil
}

type countingGenerator struct {
	inner gen.Generator
	calls int
}

func (g *countingGenerator) Generate(seed int64) (*gen.Level, error) {
	g.calls++
	return g.inner.Generate(seed)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPalette() gen.Palette {
	tiles := weighted.New[string]()
	tiles.Add("room_a", 0.6)
	tiles.Add("room_b", 0.4)
	tiles.Rebalance()

	props := weighted.New[string]()
	props.Add("barrel", 0.2)
	props.Rebalance()

	return gen.Palette{Tiles: tiles, Props: props, Corridor: "corridor", CellSize: 2}
}

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	w, err := gen.NewWalker(6, 6, 8)
	if err != nil {
		t.Fatal(err)
	}
	pal := testPalette()
	return NewManager(42, gen.NewWalkGenerator(w, pal), pal, store, discardLogger())
}

func TestGetOrGenerateCaches(t *testing.T) {
	m := newTestManager(t, nil)

	r1, err := m.GetOrGenerate(Pos{X: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := m.GetOrGenerate(Pos{X: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Error("second lookup generated a new region")
	}
	if m.Count() != 1 {
		t.Errorf("cached regions: got %d, want 1", m.Count())
	}
}

func TestGetOrGenerateDeterministic(t *testing.T) {
	pos := Pos{X: 3, Z: -2}

	r1, err := newTestManager(t, nil).GetOrGenerate(pos)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := newTestManager(t, nil).GetOrGenerate(pos)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r1.Level, r2.Level) {
		t.Error("same root seed and position produced different levels")
	}
}

func TestNeighborRegionsDiffer(t *testing.T) {
	m := newTestManager(t, nil)

	r1, err := m.GetOrGenerate(Pos{X: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := m.GetOrGenerate(Pos{X: 1, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	if r1.Level.Seed == r2.Level.Seed {
		t.Error("neighbor regions share a seed")
	}
}

func TestGetOrGenerateChecksStoreFirst(t *testing.T) {
	store := newMemStore()
	persisted := &Region{
		Pos:        Pos{X: 1, Z: 1},
		Generation: 2,
		Level:      &gen.Level{Width: 6, Height: 6},
	}
	store.saved[persisted.Pos] = persisted

	w, err := gen.NewWalker(6, 6, 8)
	if err != nil {
		t.Fatal(err)
	}
	pal := testPalette()
	counting := &countingGenerator{inner: gen.NewWalkGenerator(w, pal)}
	m := NewManager(42, counting, pal, store, discardLogger())

	r, err := m.GetOrGenerate(persisted.Pos)
	if err != nil {
		t.Fatal(err)
	}
	if r != persisted {
		t.Error("persisted region not used")
	}
	if counting.calls != 0 {
		t.Errorf("generator ran %d times for a persisted region", counting.calls)
	}
}

func TestRegenerateBumpsGeneration(t *testing.T) {
	m := newTestManager(t, nil)
	pos := Pos{X: 0, Z: 0}

	r0, err := m.GetOrGenerate(pos)
	if err != nil {
		t.Fatal(err)
	}
	if r0.Generation != 0 {
		t.Fatalf("first generation: got %d, want 0", r0.Generation)
	}

	r1, err := m.Regenerate(pos)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Generation != 1 {
		t.Errorf("regenerated generation: got %d, want 1", r1.Generation)
	}
	if r1.Level.Seed == r0.Level.Seed {
		t.Error("regenerate reused the region seed")
	}

	cached, _ := m.Get(pos)
	if cached != r1 {
		t.Error("cache still holds the old region")
	}
}

func TestRegenerateContinuesPersistedGeneration(t *testing.T) {
	store := newMemStore()
	store.saved[Pos{X: 0, Z: 0}] = &Region{
		Pos:        Pos{X: 0, Z: 0},
		Generation: 2,
		Level:      &gen.Level{},
	}

	m := newTestManager(t, store)
	r, err := m.Regenerate(Pos{X: 0, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	if r.Generation != 3 {
		t.Errorf("generation: got %d, want 3", r.Generation)
	}
	if saved := store.saved[Pos{X: 0, Z: 0}]; saved != r {
		t.Error("regenerated region not persisted")
	}
}

func TestPreGenerateRadius(t *testing.T) {
	m := newTestManager(t, nil)

	count, err := m.PreGenerateRadius(1)
	if err != nil {
		t.Fatal(err)
	}
	if count != 9 {
		t.Errorf("pre-generated regions: got %d, want 9", count)
	}
}

func TestSetTileWeightRebalances(t *testing.T) {
	m := newTestManager(t, nil)

	applied, err := m.SetTileWeight("room_a", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 0.9 {
		t.Errorf("applied weight: got %v, want 0.9", applied)
	}

	other, err := m.palette.Tiles.Weight(1)
	if err != nil {
		t.Fatal(err)
	}
	if other < 0.0999 || other > 0.1001 {
		t.Errorf("other tile weight: got %v, want near 0.1", other)
	}
	if sum := m.palette.Tiles.Sum(); sum > 1+1e-9 {
		t.Errorf("tile weight sum: got %v, want <= 1", sum)
	}
}

func TestSetTileWeightClamps(t *testing.T) {
	m := newTestManager(t, nil)

	applied, err := m.SetTileWeight("room_a", 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 1 {
		t.Errorf("applied weight: got %v, want 1", applied)
	}
}

func TestSetWeightUnknownEntry(t *testing.T) {
	m := newTestManager(t, nil)

	if _, err := m.SetTileWeight("lava", 0.5); err == nil || !strings.Contains(err.Error(), "unknown tile") {
		t.Errorf("expected unknown tile error, got %v", err)
	}
	if _, err := m.SetPropWeight("lava", 0.5); err == nil || !strings.Contains(err.Error(), "unknown prop") {
		t.Errorf("expected unknown prop error, got %v", err)
	}
}

func TestWeightEditShapesNextGeneration(t *testing.T) {
	m := newTestManager(t, nil)
	pos := Pos{X: 0, Z: 0}

	if _, err := m.GetOrGenerate(pos); err != nil {
		t.Fatal(err)
	}

	// Zeroing room_b leaves room_a as the only drawable tile.
	if _, err := m.SetTileWeight("room_b", 0); err != nil {
		t.Fatal(err)
	}

	r, err := m.Regenerate(pos)
	if err != nil {
		t.Fatal(err)
	}
	for _, pl := range r.Level.Placements {
		if pl.Room && pl.Tile != "room_a" {
			t.Fatalf("cell (%d,%d): drew %q after zeroing room_b", pl.X, pl.Z, pl.Tile)
		}
	}
}

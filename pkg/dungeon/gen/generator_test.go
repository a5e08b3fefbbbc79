package gen

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/OCharnyshevich/dungeon-server/pkg/weighted"
)

func newTestWalkGenerator(t *testing.T) *WalkGenerator {
	t.Helper()
	w, err := NewWalker(5, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	return NewWalkGenerator(w, testPalette())
}

func TestWalkGeneratorDeterministic(t *testing.T) {
	l1, err := newTestWalkGenerator(t).Generate(42)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := newTestWalkGenerator(t).Generate(42)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(l1.Visited, l2.Visited) {
		t.Errorf("visited sets differ:\n%v\n%v", l1.Visited, l2.Visited)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Error("same seed produced different levels")
	}
}

func TestWalkGeneratorSeedsDiffer(t *testing.T) {
	l1, err := newTestWalkGenerator(t).Generate(1)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := newTestWalkGenerator(t).Generate(2)
	if err != nil {
		t.Fatal(err)
	}
	// Identical full levels across different seeds would mean the seed is
	// ignored somewhere.
	if reflect.DeepEqual(l1, l2) {
		t.Error("different seeds produced identical levels")
	}
}

func TestWalkGeneratorLevelShape(t *testing.T) {
	level, err := newTestWalkGenerator(t).Generate(42)
	if err != nil {
		t.Fatal(err)
	}

	if level.Width != 5 || level.Height != 5 {
		t.Errorf("grid %dx%d, want 5x5", level.Width, level.Height)
	}
	if level.Seed != 42 {
		t.Errorf("seed %d, want 42", level.Seed)
	}
	if level.CellSize != 2 {
		t.Errorf("cell size %v, want 2", level.CellSize)
	}
	if len(level.Placements) != 25 {
		t.Errorf("placements %d, want 25", len(level.Placements))
	}
	if len(level.Visited) < 10 {
		t.Errorf("visited %d cells, want at least 10", len(level.Visited))
	}
	if !sort.IntsAreSorted(level.Visited) {
		t.Error("visited cells not sorted")
	}

	rooms := 0
	for _, pl := range level.Placements {
		if pl.Room {
			rooms++
		}
	}
	if rooms != len(level.Visited) {
		t.Errorf("room placements %d, visited cells %d", rooms, len(level.Visited))
	}
}

func TestWalkGeneratorEmptyTiles(t *testing.T) {
	w, err := NewWalker(5, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	g := NewWalkGenerator(w, Palette{Tiles: weighted.New[string](), Corridor: "corridor"})

	if _, err := g.Generate(42); !errors.Is(err, weighted.ErrEmptyInventory) {
		t.Errorf("generate with empty tiles: got %v, want ErrEmptyInventory", err)
	}
}

func TestFullGeneratorAllRooms(t *testing.T) {
	g, err := NewFullGenerator(4, 3, testPalette())
	if err != nil {
		t.Fatal(err)
	}
	level, err := g.Generate(7)
	if err != nil {
		t.Fatal(err)
	}

	if len(level.Visited) != 12 {
		t.Errorf("visited %d cells, want 12", len(level.Visited))
	}
	for _, pl := range level.Placements {
		if !pl.Room {
			t.Errorf("cell (%d,%d): corridor in a full level", pl.X, pl.Z)
		}
	}
}

func TestFullGeneratorDeterministic(t *testing.T) {
	g1, err := NewFullGenerator(4, 4, testPalette())
	if err != nil {
		t.Fatal(err)
	}
	g2, err := NewFullGenerator(4, 4, testPalette())
	if err != nil {
		t.Fatal(err)
	}

	l1, err := g1.Generate(13)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := g2.Generate(13)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Error("same seed produced different levels")
	}
}

func TestFullGeneratorRejectsBadGrid(t *testing.T) {
	_, err := NewFullGenerator(0, 5, testPalette())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLevelRoundTripsThroughRandSource(t *testing.T) {
	// The walker and layout share one rng; draining it in a fixed order is
	// what makes levels reproducible. Interleave a second generation on an
	// unrelated rng to show streams do not bleed into each other.
	g := newTestWalkGenerator(t)
	noise := rand.New(rand.NewSource(999))

	l1, err := g.Generate(42)
	if err != nil {
		t.Fatal(err)
	}
	noise.Float64()
	l2, err := g.Generate(42)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Error("external rng use changed generation output")
	}
}

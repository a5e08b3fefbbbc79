// Package gen generates dungeon levels: a random-walk pass marks room cells
// on a rectangular grid, then a layout pass assigns weighted tiles and props
// to every cell.
package gen

import (
	"fmt"
	"math/rand"
)

// Level is the committed output of one generation run.
type Level struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	CellSize   float64     `json:"cellSize"`
	Seed       int64       `json:"seed"`
	Start      int         `json:"start"`
	Visited    []int       `json:"visited"`
	Placements []Placement `json:"placements"`
}

// Generator produces a level deterministically from a seed.
type Generator interface {
	Generate(seed int64) (*Level, error)
}

// WalkGenerator runs the random-walk pass and then the layout pass. One rng
// seeded per request feeds both passes in a fixed order, so a seed pins down
// the whole level.
type WalkGenerator struct {
	walker  *Walker
	palette Palette
}

// NewWalkGenerator wires a validated walker to a palette.
func NewWalkGenerator(walker *Walker, pal Palette) *WalkGenerator {
	return &WalkGenerator{walker: walker, palette: pal}
}

func (g *WalkGenerator) Generate(seed int64) (*Level, error) {
	rng := rand.New(rand.NewSource(seed))

	// Pass 1: mark room cells.
	path, err := g.walker.Walk(rng)
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}

	// Pass 2: lay out tiles and props.
	placements, err := Layout(path, g.palette, rng)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	return &Level{
		Width:      path.Width,
		Height:     path.Height,
		CellSize:   g.palette.CellSize,
		Seed:       seed,
		Start:      path.Start,
		Visited:    path.Visited,
		Placements: placements,
	}, nil
}

// FullGenerator marks every cell as a room and skips the walk. It exists for
// defaults and debugging where layout behavior matters but walk randomness
// does not.
type FullGenerator struct {
	width   int
	height  int
	palette Palette
}

// NewFullGenerator validates the grid dimensions.
func NewFullGenerator(width, height int, pal Palette) (*FullGenerator, error) {
	if width < 1 || height < 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("grid %dx%d: dimensions must be positive", width, height)}
	}
	return &FullGenerator{width: width, height: height, palette: pal}, nil
}

func (g *FullGenerator) Generate(seed int64) (*Level, error) {
	rng := rand.New(rand.NewSource(seed))
	path := FullPath(g.width, g.height)

	placements, err := Layout(path, g.palette, rng)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	return &Level{
		Width:      path.Width,
		Height:     path.Height,
		CellSize:   g.palette.CellSize,
		Seed:       seed,
		Start:      path.Start,
		Visited:    path.Visited,
		Placements: placements,
	}, nil
}

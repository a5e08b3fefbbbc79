// Package theme loads designer-authored tile and prop catalogs and turns
// them into the weighted palettes the generation core draws from.
package theme

import (
	"fmt"

	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
	"github.com/OCharnyshevich/dungeon-server/pkg/weighted"
)

// Entry is one named catalog item with a selection weight.
type Entry struct {
	Name   string  `yaml:"name" json:"name" jsonschema:"title=Entry name,description=Identifier the host maps to an asset.,minLength=1,required"`
	Weight float64 `yaml:"weight" json:"weight" jsonschema:"title=Selection weight,description=Draw weight between 0 and 1.,minimum=0,maximum=1"`
}

// Theme is one catalog: the tiles rooms draw from, optional props, the
// corridor filler, and the world size of one grid cell.
type Theme struct {
	Name     string  `yaml:"name" json:"name" jsonschema:"title=Theme name,minLength=1,required"`
	CellSize float64 `yaml:"cellSize" json:"cellSize" jsonschema:"title=Cell size,description=World units per grid cell.,required"`
	Corridor string  `yaml:"corridor" json:"corridor" jsonschema:"title=Corridor tile,description=Tile used for cells the walk never reached.,minLength=1,required"`
	Tiles    []Entry `yaml:"tiles" json:"tiles" jsonschema:"title=Room tiles,description=Weighted tile catalog with at least one entry.,required"`
	Props    []Entry `yaml:"props" json:"props,omitempty" jsonschema:"title=Props,description=Optional weighted set dressing."`
}

// Validate checks the catalog the way the generation core expects it: a
// named theme, a positive cell size, a corridor tile, at least one room
// tile, unique names per kind, and per-kind weights within [0,1] summing to
// at most 1.
func (t *Theme) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme name cannot be empty")
	}
	if t.CellSize <= 0 {
		return fmt.Errorf("theme %s: cellSize must be positive, got %v", t.Name, t.CellSize)
	}
	if t.Corridor == "" {
		return fmt.Errorf("theme %s: corridor tile cannot be empty", t.Name)
	}
	if len(t.Tiles) == 0 {
		return fmt.Errorf("theme %s: tiles cannot be empty", t.Name)
	}
	if err := validateEntries("tiles", t.Tiles); err != nil {
		return fmt.Errorf("theme %s: %w", t.Name, err)
	}
	if err := validateEntries("props", t.Props); err != nil {
		return fmt.Errorf("theme %s: %w", t.Name, err)
	}
	return nil
}

func validateEntries(kind string, entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	sum := 0.0
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("%s[%d]: name cannot be empty", kind, i)
		}
		if seen[e.Name] {
			return fmt.Errorf("%s[%d]: duplicate name %q", kind, i, e.Name)
		}
		seen[e.Name] = true
		if e.Weight < 0 || e.Weight > 1 {
			return fmt.Errorf("%s %q: weight must be within [0,1], got %v", kind, e.Name, e.Weight)
		}
		sum += e.Weight
	}
	if sum > 1+1e-9 {
		return fmt.Errorf("%s: weights sum to %v, must not exceed 1", kind, sum)
	}
	return nil
}

// Palette builds the weighted selectors the layout pass draws from, keeping
// entry order. The selectors are rebalanced once so later weight edits diff
// against the loaded state.
func (t *Theme) Palette() gen.Palette {
	tiles := weighted.New[string]()
	for _, e := range t.Tiles {
		tiles.Add(e.Name, e.Weight)
	}
	tiles.Rebalance()

	props := weighted.New[string]()
	for _, e := range t.Props {
		props.Add(e.Name, e.Weight)
	}
	props.Rebalance()

	return gen.Palette{Tiles: tiles, Props: props, Corridor: t.Corridor, CellSize: t.CellSize}
}

// Default returns the built-in theme used when no theme files are available.
func Default() *Theme {
	return &Theme{
		Name:     "default",
		CellSize: 4,
		Corridor: "corridor",
		Tiles: []Entry{
			{Name: "room_plain", Weight: 0.5},
			{Name: "room_pillared", Weight: 0.3},
			{Name: "room_flooded", Weight: 0.2},
		},
		Props: []Entry{
			{Name: "barrel", Weight: 0.15},
			{Name: "brazier", Weight: 0.1},
			{Name: "bones", Weight: 0.05},
		},
	}
}

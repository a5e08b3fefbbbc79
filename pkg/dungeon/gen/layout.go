package gen

import (
	"math/rand"

	"github.com/OCharnyshevich/dungeon-server/pkg/weighted"
)

// Palette supplies the weighted catalogs the layout pass draws from.
type Palette struct {
	Tiles    *weighted.Selector[string] // room tiles, at least one entry
	Props    *weighted.Selector[string] // optional set dressing, may be nil
	Corridor string                     // tile name for unvisited cells
	CellSize float64                    // world units per grid cell
}

// Placement is one laid-out cell: the tile choice, the optional prop choice,
// and world-space anchors for both. Hosts own whatever objects they build
// from it.
type Placement struct {
	Cell   int          `json:"cell"`
	X      int          `json:"x"`
	Z      int          `json:"z"`
	Room   bool         `json:"room"`
	Tile   string       `json:"tile"`
	Prop   string       `json:"prop,omitempty"`
	PropX  float64      `json:"propX,omitempty"`
	PropZ  float64      `json:"propZ,omitempty"`
	WorldX float64      `json:"worldX"`
	WorldZ float64      `json:"worldZ"`
	Open   DirectionSet `json:"open"`
}

// Layout assigns a tile to every grid cell of the path: visited cells draw a
// room tile and possibly a prop from the palette, the rest get the corridor
// tile without touching the rng. Cells are processed in index order so one
// seeded rng reproduces the same layout. An empty or missing tile catalog
// aborts with ErrEmptyInventory before anything is placed.
func Layout(p *Path, pal Palette, rng *rand.Rand) ([]Placement, error) {
	if pal.Tiles == nil || pal.Tiles.Len() == 0 {
		return nil, weighted.ErrEmptyInventory
	}

	placements := make([]Placement, 0, p.Width*p.Height)
	for idx := 0; idx < p.Width*p.Height; idx++ {
		x, z := CellXZ(idx, p.Width)
		pl := Placement{
			Cell:   idx,
			X:      x,
			Z:      z,
			WorldX: (float64(x) + 0.5) * pal.CellSize,
			WorldZ: (float64(z) + 0.5) * pal.CellSize,
		}

		if !p.IsVisited(x, z) {
			pl.Tile = pal.Corridor
			placements = append(placements, pl)
			continue
		}

		pl.Room = true
		pl.Open = p.Open(x, z)

		tile, err := pal.Tiles.Draw(rng)
		if err != nil {
			return nil, err
		}
		pl.Tile = tile

		// Themes without props are legal; skip the draw entirely.
		if pal.Props != nil && pal.Props.Len() > 0 {
			if prop, ok := pal.Props.DrawOrDefault(rng); ok {
				pl.Prop = prop
				pl.PropX = (float64(x) + rng.Float64()) * pal.CellSize
				pl.PropZ = (float64(z) + rng.Float64()) * pal.CellSize
			}
		}

		placements = append(placements, pl)
	}
	return placements, nil
}

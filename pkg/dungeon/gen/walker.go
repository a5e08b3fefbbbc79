package gen

import (
	"fmt"
	"math/rand"
	"sort"
)

// stepBudgetFactor scales the per-attempt step budget from the target count.
const stepBudgetFactor = 4

// Walker marks a connected set of room cells by random walk. Each attempt
// starts at a uniformly random cell and steps in uniformly random cardinal
// directions; only steps into unvisited in-grid cells move the cursor, every
// step consumes budget. An attempt that has not marked enough cells within
// its budget is discarded and a fresh one starts.
type Walker struct {
	width      int
	height     int
	minVisited int

	// MaxAttempts caps retries. 0 retries until an attempt succeeds.
	MaxAttempts int
}

// NewWalker validates the grid and target before any walking happens. A grid
// that cannot fit minVisited cells fails with ConfigError and is never
// retried.
func NewWalker(width, height, minVisited int) (*Walker, error) {
	switch {
	case width < 1 || height < 1:
		return nil, &ConfigError{Reason: fmt.Sprintf("grid %dx%d: dimensions must be positive", width, height)}
	case minVisited < 1:
		return nil, &ConfigError{Reason: fmt.Sprintf("cell target %d must be positive", minVisited)}
	case width*height < minVisited:
		return nil, &ConfigError{Reason: fmt.Sprintf("grid %dx%d cannot fit %d cells", width, height, minVisited)}
	}
	return &Walker{width: width, height: height, minVisited: minVisited}, nil
}

// Path is the committed result of a successful walk.
type Path struct {
	Width    int
	Height   int
	Start    int   // cell index of the walk origin
	Visited  []int // sorted cell indices, start included
	Attempts int   // attempts consumed, including the successful one
	Steps    int   // steps consumed by the successful attempt

	visited map[int]bool
}

// IsVisited reports whether the cell at (x, z) was marked by the walk.
// Off-grid coordinates are never visited.
func (p *Path) IsVisited(x, z int) bool {
	if x < 0 || x >= p.Width || z < 0 || z >= p.Height {
		return false
	}
	return p.visited[CellIndex(x, z, p.Width)]
}

// Open returns the cardinal neighbors of (x, z) that are also visited.
// Unvisited cells report an empty set.
func (p *Path) Open(x, z int) DirectionSet {
	var set DirectionSet
	if !p.IsVisited(x, z) {
		return set
	}
	for _, d := range Directions {
		dx, dz := d.Offset()
		if p.IsVisited(x+dx, z+dz) {
			set = set.With(d)
		}
	}
	return set
}

// FullPath returns a path with every grid cell visited. Generators that skip
// the walk use it to feed the layout pass.
func FullPath(width, height int) *Path {
	cells := width * height
	visited := make(map[int]bool, cells)
	list := make([]int, cells)
	for i := 0; i < cells; i++ {
		visited[i] = true
		list[i] = i
	}
	return &Path{Width: width, Height: height, Visited: list, visited: visited}
}

// Walk runs attempts until one marks minVisited cells beyond the start. The
// start cell is marked visited but not counted.
func (w *Walker) Walk(rng *rand.Rand) (*Path, error) {
	attempts := 0
	for {
		attempts++
		if p, ok := w.attempt(rng); ok {
			p.Attempts = attempts
			return p, nil
		}
		if w.MaxAttempts > 0 && attempts >= w.MaxAttempts {
			return nil, fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, attempts)
		}
	}
}

func (w *Walker) attempt(rng *rand.Rand) (*Path, bool) {
	visited := make(map[int]bool, w.minVisited+1)

	start := rng.Intn(w.width * w.height)
	visited[start] = true // marked, never counted
	x, z := CellXZ(start, w.width)

	count := 0
	budget := stepBudgetFactor * w.minVisited
	for step := 1; step <= budget; step++ {
		d := Directions[rng.Intn(len(Directions))]
		dx, dz := d.Offset()
		nx, nz := x+dx, z+dz

		if nx < 0 || nx >= w.width || nz < 0 || nz >= w.height {
			continue // off-grid, budget spent
		}
		next := CellIndex(nx, nz, w.width)
		if visited[next] {
			continue // already a room, budget spent
		}

		visited[next] = true
		x, z = nx, nz
		count++

		if count >= w.minVisited {
			return w.commit(start, visited, step), true
		}
	}
	return nil, false
}

func (w *Walker) commit(start int, visited map[int]bool, steps int) *Path {
	cells := make([]int, 0, len(visited))
	for idx := range visited {
		cells = append(cells, idx)
	}
	sort.Ints(cells)
	return &Path{
		Width:   w.width,
		Height:  w.height,
		Start:   start,
		Visited: cells,
		Steps:   steps,
		visited: visited,
	}
}

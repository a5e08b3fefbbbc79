package gen

import "math/bits"

// CellIndex converts grid coordinates to the linear cell index.
func CellIndex(x, z, width int) int { return z*width + x }

// CellXZ converts a linear cell index back to grid coordinates.
func CellXZ(index, width int) (x, z int) { return index % width, index / width }

// Direction is one cardinal step on the grid.
type Direction uint8

const (
	North Direction = iota // z+1
	East                   // x+1
	South                  // z-1
	West                   // x-1
)

// Directions lists the four cardinal directions in draw order.
var Directions = [4]Direction{North, East, South, West}

var directionNames = [...]string{"north", "east", "south", "west"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// Offset returns the grid delta for one step in the direction.
func (d Direction) Offset() (dx, dz int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	default:
		return -1, 0
	}
}

// DirectionSet is a bitmask of open cardinal connections.
type DirectionSet uint8

// Has reports whether the set contains d.
func (s DirectionSet) Has(d Direction) bool { return s&(1<<d) != 0 }

// With returns the set with d added.
func (s DirectionSet) With(d Direction) DirectionSet { return s | 1<<d }

// Count returns the number of open directions.
func (s DirectionSet) Count() int { return bits.OnesCount8(uint8(s)) }

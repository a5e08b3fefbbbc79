// Package stream serves generated regions to hosts over websocket. Hosts
// subscribe to regions, trigger regeneration, and edit catalog weights; the
// server answers with placement batches and owns no engine objects.
package stream

import (
	"github.com/OCharnyshevich/dungeon-server/internal/server/region"
	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypeSubscribe  = "subscribe"
	TypeRegenerate = "regenerate"
	TypeSetWeight  = "setWeight"
	TypePing       = "ping"
)

// Server message type identifiers.
const (
	TypeRegion       = "region"
	TypeThemeUpdated = "themeUpdated"
	TypeError        = "error"
	TypePong         = "pong"
)

// Catalog kinds accepted by setWeight.
const (
	KindTile = "tile"
	KindProp = "prop"
)

// ClientMessage captures an inbound websocket command from a host.
type ClientMessage struct {
	Ver    int     `json:"ver,omitempty"`
	Type   string  `json:"type"`
	X      int     `json:"x"`
	Z      int     `json:"z"`
	Kind   string  `json:"kind,omitempty"`
	Name   string  `json:"name,omitempty"`
	Weight float64 `json:"weight,omitempty"`
}

// RegionMessage carries one generated region as a placement batch. The host
// instantiates and positions visuals from it.
type RegionMessage struct {
	Ver        int             `json:"ver"`
	Type       string          `json:"type"`
	X          int             `json:"x"`
	Z          int             `json:"z"`
	Generation int             `json:"generation"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	CellSize   float64         `json:"cellSize"`
	Start      int             `json:"start"` // walk origin, the natural spawn cell
	Placements []gen.Placement `json:"placements"`
}

// NewRegionMessage flattens a generated region into its wire form.
func NewRegionMessage(r *region.Region) RegionMessage {
	return RegionMessage{
		Ver:        Version,
		Type:       TypeRegion,
		X:          r.Pos.X,
		Z:          r.Pos.Z,
		Generation: r.Generation,
		Width:      r.Level.Width,
		Height:     r.Level.Height,
		CellSize:   r.Level.CellSize,
		Start:      r.Level.Start,
		Placements: r.Level.Placements,
	}
}

// ThemeUpdatedMessage announces an applied weight edit to every session.
// Cached regions keep their layout until regenerated.
type ThemeUpdatedMessage struct {
	Ver    int     `json:"ver"`
	Type   string  `json:"type"`
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ErrorMessage answers a command that failed; the connection stays open.
type ErrorMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// PongMessage answers a ping.
type PongMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
}

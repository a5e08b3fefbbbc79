// Command explorer is an interactive terminal client for the dungeon server.
// It subscribes to regions over the websocket stream, draws them, and lets
// the operator walk the region grid and trigger regenerations.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"github.com/OCharnyshevich/dungeon-server/internal/server/stream"
	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
)

const gridTop = 3 // screen row where the region grid starts

var (
	styleRoom     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleProp     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCorridor = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStart    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHeader   = tcell.StyleDefault.Reverse(true)
)

type pos struct{ x, z int }

// serverEvent is one decoded inbound message: either a region payload or a
// status line note.
type serverEvent struct {
	region *stream.RegionMessage
	note   string
}

type explorer struct {
	screen tcell.Screen
	conn   *websocket.Conn

	focusX, focusZ int
	regions        map[pos]stream.RegionMessage
	status         string

	width, height int
}

func newExplorer(addr string) (*explorer, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		conn.Close()
		return nil, err
	}

	e := &explorer{
		screen:  screen,
		conn:    conn,
		regions: make(map[pos]stream.RegionMessage),
	}
	e.width, e.height = screen.Size()
	return e, nil
}

// readLoop decodes inbound frames and forwards them to the main loop. It
// closes the channel when the connection drops.
func (e *explorer) readLoop(events chan<- serverEvent) {
	defer close(events)
	for {
		_, data, err := e.conn.ReadMessage()
		if err != nil {
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			continue
		}

		switch head.Type {
		case stream.TypeRegion:
			var msg stream.RegionMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			events <- serverEvent{region: &msg}
		case stream.TypeThemeUpdated:
			var msg stream.ThemeUpdatedMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			events <- serverEvent{note: fmt.Sprintf("theme updated: %s %s -> %.2f", msg.Kind, msg.Name, msg.Weight)}
		case stream.TypeError:
			var msg stream.ErrorMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			events <- serverEvent{note: "server: " + msg.Reason}
		}
	}
}

func (e *explorer) run() error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := e.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	inbound := make(chan serverEvent, 16)
	go e.readLoop(inbound)

	e.subscribe(e.focusX, e.focusZ)
	e.draw()

	for {
		select {
		case ev := <-events:
			if !e.handleInput(ev) {
				return nil
			}
			e.draw()
		case sev, ok := <-inbound:
			if !ok {
				return fmt.Errorf("connection to server lost")
			}
			e.apply(sev)
			e.draw()
		}
	}
}

func (e *explorer) apply(sev serverEvent) {
	if sev.region != nil {
		r := *sev.region
		e.regions[pos{r.X, r.Z}] = r
		e.status = fmt.Sprintf("region %d,%d generation %d", r.X, r.Z, r.Generation)
	}
	if sev.note != "" {
		e.status = sev.note
	}
}

func (e *explorer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			e.move(0, 1)
		case tcell.KeyDown:
			e.move(0, -1)
		case tcell.KeyLeft:
			e.move(-1, 0)
		case tcell.KeyRight:
			e.move(1, 0)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'h':
				e.move(-1, 0)
			case 'j':
				e.move(0, -1)
			case 'k':
				e.move(0, 1)
			case 'l':
				e.move(1, 0)
			case 'r':
				e.send(stream.ClientMessage{Ver: stream.Version, Type: stream.TypeRegenerate, X: e.focusX, Z: e.focusZ})
				e.status = fmt.Sprintf("regenerating %d,%d", e.focusX, e.focusZ)
			}
		}
	case *tcell.EventResize:
		e.width, e.height = e.screen.Size()
		e.screen.Sync()
	}
	return true
}

// move shifts the focus one region; north is z+1 and drawn at the top.
func (e *explorer) move(dx, dz int) {
	e.focusX += dx
	e.focusZ += dz
	if _, ok := e.regions[pos{e.focusX, e.focusZ}]; !ok {
		e.subscribe(e.focusX, e.focusZ)
	}
}

func (e *explorer) subscribe(x, z int) {
	e.status = fmt.Sprintf("loading region %d,%d", x, z)
	e.send(stream.ClientMessage{Ver: stream.Version, Type: stream.TypeSubscribe, X: x, Z: z})
}

func (e *explorer) send(msg stream.ClientMessage) {
	if err := e.conn.WriteJSON(msg); err != nil {
		e.status = "send failed: " + err.Error()
	}
}

func (e *explorer) draw() {
	e.screen.Clear()

	header := fmt.Sprintf(" region %d,%d | arrows/hjkl move  r regenerate  q quit ", e.focusX, e.focusZ)
	e.drawText(0, 0, header, styleHeader)
	e.drawText(0, 1, e.status, tcell.StyleDefault)

	if r, ok := e.regions[pos{e.focusX, e.focusZ}]; ok {
		e.drawRegion(r)
	}

	e.screen.Show()
}

func (e *explorer) drawRegion(r stream.RegionMessage) {
	for _, pl := range r.Placements {
		x := pl.X
		y := gridTop + (r.Height - 1 - pl.Z)
		if x >= e.width || y >= e.height {
			continue
		}
		ch, style := glyph(pl, r.Start)
		e.screen.SetContent(x, y, ch, nil, style)
	}

	rooms := 0
	for _, pl := range r.Placements {
		if pl.Room {
			rooms++
		}
	}
	info := fmt.Sprintf("generation %d  rooms %d/%d", r.Generation, rooms, len(r.Placements))
	e.drawText(0, gridTop+r.Height+1, info, tcell.StyleDefault)
}

func glyph(pl gen.Placement, start int) (rune, tcell.Style) {
	switch {
	case pl.Room && pl.Cell == start:
		return 'S', styleStart
	case pl.Prop != "":
		return '*', styleProp
	case pl.Room:
		return '·', styleRoom
	default:
		return '█', styleCorridor
	}
}

func (e *explorer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		e.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (e *explorer) cleanup() {
	e.screen.Fini()
	e.conn.Close()
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address (host:port)")
	flag.Parse()

	e, err := newExplorer(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	err = e.run()
	e.cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

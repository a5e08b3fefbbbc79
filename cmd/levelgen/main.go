// Command levelgen generates one dungeon level and prints it as an ASCII map
// or a JSON document. It runs the same generation pipeline as the server,
// without a server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
	"github.com/OCharnyshevich/dungeon-server/pkg/theme"
)

func main() {
	width := flag.Int("width", 16, "grid width in cells")
	height := flag.Int("height", 16, "grid height in cells")
	minPath := flag.Int("min-path", 60, "room cells the walk must reach")
	maxAttempts := flag.Int("max-attempts", 0, "walk retries (0 = unbounded)")
	seed := flag.Int64("seed", 0, "level seed (0 = random)")
	generator := flag.String("generator", "walk", "level generator: walk or full")
	themeDir := flag.String("theme-dir", "themes", "directory with theme files")
	themeName := flag.String("theme", "default", "theme to generate with")
	asJSON := flag.Bool("json", false, "print the level as JSON instead of a map")
	flag.Parse()

	t, err := pickTheme(*themeDir, *themeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load theme: %v\n", err)
		os.Exit(1)
	}

	g, err := buildGenerator(*generator, *width, *height, *minPath, *maxAttempts, t.Palette())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build generator: %v\n", err)
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	level, err := g.Generate(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate level: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		data, err := json.MarshalIndent(level, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal level: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Print(render(level))
	props := 0
	for _, pl := range level.Placements {
		if pl.Prop != "" {
			props++
		}
	}
	fmt.Printf("seed %d  theme %s  grid %dx%d  rooms %d  props %d\n",
		level.Seed, t.Name, level.Width, level.Height, len(level.Visited), props)
}

func pickTheme(dir, name string) (*theme.Theme, error) {
	reg, err := theme.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if t, ok := reg.Get(name); ok {
		return t, nil
	}
	if name == "default" {
		return theme.Default(), nil
	}
	return nil, fmt.Errorf("theme %q not found in %s (available: %v)", name, dir, reg.Names())
}

func buildGenerator(kind string, width, height, minPath, maxAttempts int, pal gen.Palette) (gen.Generator, error) {
	switch kind {
	case "full":
		return gen.NewFullGenerator(width, height, pal)
	case "walk":
		w, err := gen.NewWalker(width, height, minPath)
		if err != nil {
			return nil, err
		}
		w.MaxAttempts = maxAttempts
		return gen.NewWalkGenerator(w, pal), nil
	default:
		return nil, fmt.Errorf("unknown generator %q", kind)
	}
}

// render draws the grid with north (higher z) at the top. Rooms print as
// dots, props as stars, the walk origin as S and corridor fill as blocks.
func render(level *gen.Level) string {
	rooms := make(map[int]bool, len(level.Visited))
	for _, idx := range level.Visited {
		rooms[idx] = true
	}
	props := make(map[int]bool)
	for _, pl := range level.Placements {
		if pl.Prop != "" {
			props[pl.Cell] = true
		}
	}

	var b strings.Builder
	for z := level.Height - 1; z >= 0; z-- {
		for x := 0; x < level.Width; x++ {
			idx := gen.CellIndex(x, z, level.Width)
			switch {
			case idx == level.Start && rooms[idx]:
				b.WriteRune('S')
			case props[idx]:
				b.WriteRune('*')
			case rooms[idx]:
				b.WriteRune('·')
			default:
				b.WriteRune('█')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/OCharnyshevich/dungeon-server/internal/server/config"
	"github.com/OCharnyshevich/dungeon-server/internal/server/region"
	"github.com/OCharnyshevich/dungeon-server/internal/server/stream"
	"github.com/OCharnyshevich/dungeon-server/pkg/dungeon/gen"
	"github.com/OCharnyshevich/dungeon-server/pkg/theme"
)

// shutdownTimeout bounds the HTTP drain after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server is the dungeon server that streams generated regions over websockets.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	seed     int64
	theme    *theme.Theme
	regions  *region.Manager
	sessions *stream.Registry
}

// New creates a new Server with the given config, region store and logger.
// The theme and generator are resolved eagerly so bad configuration fails
// here instead of on the first subscribe. A zero seed picks a random one.
func New(cfg *config.Config, store region.Store, log *slog.Logger) (*Server, error) {
	t, err := selectTheme(cfg)
	if err != nil {
		return nil, err
	}
	pal := t.Palette()

	var generator gen.Generator
	switch cfg.GeneratorType {
	case config.GeneratorFull:
		generator, err = gen.NewFullGenerator(cfg.GridWidth, cfg.GridHeight, pal)
		if err != nil {
			return nil, err
		}
	default:
		w, err := gen.NewWalker(cfg.GridWidth, cfg.GridHeight, cfg.MinPath)
		if err != nil {
			return nil, err
		}
		w.MaxAttempts = cfg.MaxAttempts
		generator = gen.NewWalkGenerator(w, pal)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		log.Info("picked random seed", "seed", seed)
	}

	return &Server{
		cfg:      cfg,
		log:      log,
		seed:     seed,
		theme:    t,
		regions:  region.NewManager(seed, generator, pal, store, log),
		sessions: stream.NewRegistry(),
	}, nil
}

// selectTheme resolves the configured theme name against the theme directory.
// Only the name "default" may fall back to the built-in theme; any other name
// has to exist on disk.
func selectTheme(cfg *config.Config) (*theme.Theme, error) {
	reg, err := theme.LoadDir(cfg.ThemeDir)
	if err != nil {
		return nil, err
	}
	if t, ok := reg.Get(cfg.ThemeName); ok {
		return t, nil
	}
	if cfg.ThemeName == "default" {
		return theme.Default(), nil
	}
	return nil, fmt.Errorf("theme %q not found in %s (available: %v)", cfg.ThemeName, cfg.ThemeDir, reg.Names())
}

// routes wires the HTTP handlers. Split from Start so tests can serve them
// without binding a listener.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", stream.NewHandler(s.regions, s.sessions, s.log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	})
	return mux
}

// Start pre-generates the configured radius, then serves until the context is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.PregenRadius > 0 {
		count, err := s.regions.PreGenerateRadius(s.cfg.PregenRadius)
		if err != nil {
			return fmt.Errorf("pre-generate regions: %w", err)
		}
		s.log.Info("pre-generated regions", "radius", s.cfg.PregenRadius, "regions", count)
	}

	addr := s.cfg.Addr()
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.routes()}

	// Shut down when the context is cancelled. Websocket connections are
	// hijacked and invisible to Shutdown, so the registry closes them first.
	go func() {
		<-ctx.Done()
		s.log.Info("server shutting down")
		s.sessions.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown", "error", err)
		}
	}()

	s.log.Info("server started",
		"addr", addr,
		"seed", s.seed,
		"generator", s.cfg.GeneratorType,
		"theme", s.theme.Name,
		"gridWidth", s.cfg.GridWidth,
		"gridHeight", s.cfg.GridHeight,
	)

	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

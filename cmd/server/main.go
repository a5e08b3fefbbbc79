package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/dungeon-server/internal/server"
	"github.com/OCharnyshevich/dungeon-server/internal/server/config"
	"github.com/OCharnyshevich/dungeon-server/internal/server/storage"
)

func main() {
	cfg := config.DefaultConfig()

	flag.StringVar(&cfg.Host, "host", cfg.Host, "host interface to bind")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "server port")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "root world seed (0 = random)")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, "level generator: walk or full")
	flag.IntVar(&cfg.GridWidth, "grid-width", cfg.GridWidth, "region grid width in cells")
	flag.IntVar(&cfg.GridHeight, "grid-height", cfg.GridHeight, "region grid height in cells")
	flag.IntVar(&cfg.MinPath, "min-path", cfg.MinPath, "room cells each region must reach")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "walk retries per region (0 = unbounded)")
	flag.StringVar(&cfg.ThemeDir, "theme-dir", cfg.ThemeDir, "directory with theme files")
	flag.StringVar(&cfg.ThemeName, "theme", cfg.ThemeName, "theme to generate with")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for persisted config and regions")
	flag.IntVar(&cfg.PregenRadius, "pregen-radius", cfg.PregenRadius, "regions pre-generated around the origin")
	saveConfig := flag.Bool("save-config", false, "write the effective config to the data dir and continue")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	store, err := storage.New(cfg.DataDir, log)
	if err != nil {
		log.Error("open storage", "error", err)
		os.Exit(1)
	}

	fileCfg := config.DefaultConfig()
	if err := store.LoadConfig(fileCfg); err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	dataDir := cfg.DataDir
	config.Merge(cfg, fileCfg, explicit)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// The config file may point at a different data dir than it was read from.
	if cfg.DataDir != dataDir {
		if store, err = storage.New(cfg.DataDir, log); err != nil {
			log.Error("open storage", "error", err)
			os.Exit(1)
		}
	}

	if *saveConfig {
		if err := store.SaveConfig(cfg); err != nil {
			log.Error("save config", "error", err)
			os.Exit(1)
		}
		log.Info("saved config", "dataDir", cfg.DataDir)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(cfg, store, log)
	if err != nil {
		log.Error("build server", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

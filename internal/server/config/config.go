package config

import "fmt"

// Generator types selectable through configuration.
const (
	GeneratorWalk = "walk"
	GeneratorFull = "full"
)

// Config holds the server configuration.
type Config struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Seed          int64  `json:"seed"`           // root world seed (0 = random at startup)
	GeneratorType string `json:"generator_type"` // "walk" or "full"
	GridWidth     int    `json:"grid_width"`
	GridHeight    int    `json:"grid_height"`
	MinPath       int    `json:"min_path"`     // room cells each region must reach
	MaxAttempts   int    `json:"max_attempts"` // walk retries per region (0 = unbounded)
	ThemeDir      string `json:"theme_dir"`
	ThemeName     string `json:"theme_name"`
	DataDir       string `json:"data_dir"`
	PregenRadius  int    `json:"pregen_radius"` // regions pre-generated around the origin
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:          8080,
		GeneratorType: GeneratorWalk,
		GridWidth:     16,
		GridHeight:    16,
		MinPath:       60,
		ThemeDir:      "themes",
		ThemeName:     "default",
		DataDir:       "data",
		PregenRadius:  1,
	}
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects option values the server cannot run with. Grid dimensions
// and the path target are validated by the walker itself when the generator
// is built.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d outside [1,65535]", c.Port)
	}
	if c.GeneratorType != GeneratorWalk && c.GeneratorType != GeneratorFull {
		return fmt.Errorf("unknown generator type %q", c.GeneratorType)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max attempts %d cannot be negative", c.MaxAttempts)
	}
	if c.PregenRadius < 0 {
		return fmt.Errorf("pregen radius %d cannot be negative", c.PregenRadius)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["host"] {
		cfg.Host = fromFile.Host
	}
	if !explicitFlags["port"] {
		cfg.Port = fromFile.Port
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["grid-width"] {
		cfg.GridWidth = fromFile.GridWidth
	}
	if !explicitFlags["grid-height"] {
		cfg.GridHeight = fromFile.GridHeight
	}
	if !explicitFlags["min-path"] {
		cfg.MinPath = fromFile.MinPath
	}
	if !explicitFlags["max-attempts"] {
		cfg.MaxAttempts = fromFile.MaxAttempts
	}
	if !explicitFlags["theme-dir"] {
		cfg.ThemeDir = fromFile.ThemeDir
	}
	if !explicitFlags["theme"] {
		cfg.ThemeName = fromFile.ThemeName
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["pregen-radius"] {
		cfg.PregenRadius = fromFile.PregenRadius
	}
}

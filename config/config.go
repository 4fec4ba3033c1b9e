// Package config loads the settings shared by the explorer commands.
//
// Settings live in a JSON file under the user configuration directory.
// Missing keys keep their defaults; command line flags override both.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/render"
)

// ErrInvalid is wrapped by Validate errors.
var ErrInvalid = errors.New("invalid config")

const appDir = "mandel_explorer"

// Config holds every setting.
type Config struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Workers  int `json:"workers"` // 0 uses GOMAXPROCS
	MaxIter  int `json:"max_iter"`
	IterStep int `json:"iter_step"` // change of the bound per key press

	Scheme   int     `json:"scheme"`
	Multiple float64 `json:"multiple"`

	BookmarksDB string `json:"bookmarks_db"`
	ExportDir   string `json:"export_dir"`
	ExportScale int    `json:"export_scale"`

	TCPAddr   string `json:"tcp_addr"`
	HTTPAddr  string `json:"http_addr"`
	StaticDir string `json:"static_dir"`
}

// Default returns the built-in settings.
func Default() Config {
	cfg := Config{
		Width:       800,
		Height:      800,
		MaxIter:     mandel.HomeMaxIter,
		IterStep:    50,
		Multiple:    1,
		ExportDir:   ".",
		ExportScale: 1,
		TCPAddr:     ":8081",
		HTTPAddr:    ":8080",
		StaticDir:   "./static",
	}
	if root, err := Dir(); err == nil {
		cfg.BookmarksDB = filepath.Join(root, "bookmarks.db")
	} else {
		cfg.BookmarksDB = "bookmarks.db"
	}
	return cfg
}

// Dir returns the configuration directory of the explorer.
func Dir() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appDir), nil
}

// Path returns the default location of the config file.
func Path() (string, error) {
	root, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "config.json"), nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate checks the settings the engine and renderer depend on.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalid, c.Width, c.Height)
	case c.MaxIter <= 0:
		return fmt.Errorf("%w: max_iter %d", ErrInvalid, c.MaxIter)
	case c.IterStep <= 0:
		return fmt.Errorf("%w: iter_step %d", ErrInvalid, c.IterStep)
	case c.Scheme < 0 || c.Scheme >= render.Schemes:
		return fmt.Errorf("%w: scheme %d not in [0, %d)", ErrInvalid, c.Scheme, render.Schemes)
	case c.Multiple <= 0:
		return fmt.Errorf("%w: multiple %g", ErrInvalid, c.Multiple)
	case c.ExportScale <= 0:
		return fmt.Errorf("%w: export_scale %d", ErrInvalid, c.ExportScale)
	}
	return nil
}

// RenderOptions returns the colouring settings.
func (c Config) RenderOptions() render.Options {
	return render.Options{Scheme: c.Scheme, Multiple: c.Multiple}
}

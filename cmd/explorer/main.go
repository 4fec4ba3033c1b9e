// Command explorer is an interactive terminal Mandelbrot explorer.
//
// The image is drawn with half-block characters, two pixels per cell.
// Press Tab for the key bindings.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/bookmarks"
	"github.com/marben/mandel_explorer/config"
)

var screenFactory = tcell.NewScreen

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func run() error {
	defaultPath, _ := config.Path()
	cfgPath := flag.String("config", defaultPath, "config file")
	workers := flag.Int("workers", -1, "worker goroutines (0 for one per CPU)")
	maxIter := flag.Int("iter", 0, "initial iteration bound")
	scheme := flag.Int("scheme", -1, "colour scheme 0-8")
	logPath := flag.String("log", "", "write logs to this file")
	verbose := flag.Bool("v", false, "debug logging (needs -log)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *maxIter > 0 {
		cfg.MaxIter = *maxIter
	}
	if *scheme >= 0 {
		cfg.Scheme = *scheme
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to tcell, so logs only go to a file.
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
		level := slog.LevelInfo
		if *verbose {
			level = slog.LevelDebug
		}
		mandel.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	}

	store, err := bookmarks.Open(cfg.BookmarksDB)
	if err != nil {
		log.Printf("bookmarks disabled: %v", err)
		store = nil
	} else {
		defer store.Close()
		if _, err := store.Seed(mandel.Landmarks, cfg.MaxIter); err != nil {
			log.Printf("seed bookmarks: %v", err)
		}
	}

	screen, err := screenFactory()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	defer screen.DisableMouse()

	a := newApp(cfg, store)
	defer a.close()
	return a.run(screen)
}

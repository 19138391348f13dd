package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/evolve"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
	"github.com/vovakirdan/flappy-evo/internal/platform/tui"
	"github.com/vovakirdan/flappy-evo/internal/registry"
	"github.com/vovakirdan/flappy-evo/internal/storage"
)

// newLogger builds the stderr logger used by every command.
func newLogger(prefix string) *log.Logger {
	return newLoggerTo(os.Stderr, prefix)
}

func newLoggerTo(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfig loads the configuration or exits.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// loadSprites returns the configured sprite masks, or nil for the built-in
// silhouettes.
func loadSprites(cfg config.Config) (*flappy.Sprites, error) {
	if cfg.Sprites.Dir == "" {
		return nil, nil
	}
	return flappy.LoadSprites(cfg.Sprites.Dir)
}

// resolveSeed returns the --seed value or a time-based one.
func resolveSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// terminalSize returns the size of stdout or 80x24.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}

// openStore opens the run database or exits.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run database: %v\n", err)
		os.Exit(1)
	}
	return store
}

// controllerSource names what a watch or serve session shows and how to
// build its birds.
type controllerSource struct {
	title   string
	factory tui.ControllerFactory
}

// resolveControllers picks a stored champion when championRef is set,
// otherwise the named built-in policy.
func resolveControllers(policyID, championRef string) (controllerSource, error) {
	if championRef != "" {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return controllerSource{}, err
		}
		defer store.Close()

		run, err := store.ResolveRun(championRef)
		if err != nil {
			return controllerSource{}, err
		}
		stored, err := store.Champion(run.ID)
		if err != nil {
			return controllerSource{}, err
		}
		if stored == nil {
			return controllerSource{}, fmt.Errorf("run %s has no champion yet", shortID(run.ID))
		}
		genome, err := evolve.Restore(*stored)
		if err != nil {
			return controllerSource{}, err
		}

		return controllerSource{
			title:   fmt.Sprintf("champion of run %s (gen %d, fitness %.1f)", shortID(run.ID), stored.Generation, stored.Fitness),
			factory: func(int64) flappy.Controller { return genome },
		}, nil
	}

	p, err := registry.Create(policyID)
	if err != nil {
		return controllerSource{}, fmt.Errorf("%w (run 'flappyevo policies' to list them)", err)
	}
	return controllerSource{title: p.ID(), factory: p.Controller}, nil
}

// shortID abbreviates a run id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

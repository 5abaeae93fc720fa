// Anty - desktop preview of the Anty mascot
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/normanking/anty/internal/bus"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/debugserver"
	"github.com/normanking/anty/internal/emotion"
	"github.com/normanking/anty/internal/logging"
	"github.com/normanking/anty/internal/mascot"
	"github.com/normanking/anty/internal/preview"
	"github.com/normanking/anty/internal/settings"
)

// Global logger instance
var syslog *logging.Logger

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "anty: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgPath, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logDir := cfg.Log.Dir
	if logDir == "" {
		if dir, err := config.GetConfigDir(); err == nil {
			logDir = filepath.Join(dir, "logs")
		}
	}
	syslog, err = logging.New(&logging.Config{
		LogDir:  logDir,
		Level:   logging.LogLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer syslog.Close()
	log := syslog.Component("main")
	log.Info().Str("config", cfgPath).Float64("size", cfg.Character.Size).Msg("starting anty")

	store, err := settings.Open(settings.AppName, syslog.Component("settings"))
	if err != nil {
		log.Warn().Err(err).Msg("preferences will not be saved")
		store = settings.New(nil, syslog.Component("settings"))
	}
	if store.Prefs().StartAsleep {
		cfg.Character.StartAsleep = true
	}

	events := bus.NewEventBus()
	ch := mascot.New(mascot.Options{
		Config:  cfg,
		Catalog: emotion.Default(),
		Bus:     events,
		Logger:  syslog.Zerolog(),
	})
	defer ch.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfgPath != "" {
		w, err := config.NewWatcher(cfgPath, syslog.Component("config"), ch.ApplyConfig)
		if err != nil {
			log.Warn().Err(err).Msg("config hot reload disabled")
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	if cfg.Debug.Enabled {
		srv := debugserver.New(ch, events, syslog.Component("debug"))
		srv.SetLogHistory(syslog)
		g.Go(func() error { return srv.Run(gctx, cfg.Debug.Addr) })
		log.Info().Str("addr", cfg.Debug.Addr).Msg("debug server enabled")
	}

	game := preview.New(preview.Options{
		Character: ch,
		Settings:  store,
		Window:    cfg.Window,
		Logger:    syslog.Component("preview"),
	})
	runErr := preview.Run(game, cfg.Window.Title)

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("background task failed")
	}
	log.Info().Msg("anty stopped")
	return runErr
}

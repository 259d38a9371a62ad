package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/storysplit/internal/api"
	"github.com/dgallion1/storysplit/internal/config"
	"github.com/dgallion1/storysplit/internal/heading"
	"github.com/dgallion1/storysplit/internal/library"
	"github.com/dgallion1/storysplit/internal/pathstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	table := heading.Default()
	if cfg.HeadingPatterns != "" {
		table, err = heading.LoadFile(cfg.HeadingPatterns)
		if err != nil {
			log.Error("load heading patterns", "path", cfg.HeadingPatterns, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib := library.NewStore(cfg.StoryRoot, cfg.StoryFolder, cfg.LoadConcurrency, log.With("component", "library"))

	var ps *pathstore.Client
	if cfg.MirrorEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey, log.With("component", "pathstore"))
		lib.SetMirror(ps)
	}

	sessions := api.NewSessionStore(cfg.SessionTTL)
	go sessions.RunCleanup(ctx, 5*time.Minute, func(n int) {
		log.Info("evicted idle sessions", "count", n)
	})

	srv := api.NewServer(lib, sessions, table, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting storysplit", "port", cfg.Port, "story_root", cfg.StoryRoot, "mirror", cfg.MirrorEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

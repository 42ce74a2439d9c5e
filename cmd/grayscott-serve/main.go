// Command grayscott-serve hosts a session behind a websocket. Clients send
// control messages and receive one frame per batch.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gray-scott/internal/core"
	"gray-scott/internal/render"
	"gray-scott/internal/server"
	"gray-scott/internal/sims/grayscott"
)

func main() {
	cfg := grayscott.DefaultConfig()
	cfg.Bind(flag.CommandLine)
	opts := server.DefaultOptions()
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "JSON config file; explicit flags override it")
	flag.IntVar(&opts.TPS, "tps", opts.TPS, "batches per second while running")
	flag.IntVar(&opts.Scale, "scale", opts.Scale, "frame upscale factor")
	flag.StringVar(&opts.Backend, "backend", "auto", "compute backend: auto, serial or pool")
	normalize := flag.String("normalize", string(opts.Mode), "tone mapping: range or absolute")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cfg.OverlayFile(flag.CommandLine, *configPath); err != nil {
		fatal(err)
	}
	mode, err := render.ParseMode(*normalize)
	if err != nil {
		fatal(err)
	}
	opts.Mode = mode

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, opts)
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		core.Logger().Info("listening", "addr", *addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	core.Logger().Error("grayscott-serve failed", "err", err)
	os.Exit(1)
}

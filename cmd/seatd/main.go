package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seatwheel/seatwheel/internal/config"
	"github.com/seatwheel/seatwheel/internal/hub"
	"github.com/seatwheel/seatwheel/internal/metrics"
	"github.com/seatwheel/seatwheel/internal/printer"
	"github.com/seatwheel/seatwheel/internal/seating"
	"github.com/seatwheel/seatwheel/internal/server"
	"github.com/seatwheel/seatwheel/internal/session"
	"github.com/seatwheel/seatwheel/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("seatd failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "seatd",
		Short: "Rotate a sixteen-seat arrangement and stream it to live displays",
		Long: `seatd keeps a rotating seating arrangement for sixteen people.

Each scramble picks a new arrangement in which nobody returns to the seat
they had two rounds ago, nobody stays in their section, and nobody keeps
a neighbour. Every arrangement is pushed to connected displays over
websocket.

Commands on stdin:
  <enter>       scramble once
  N [M]         scramble N times, M ms apart (default 500)
  write         commit the arrangement on display to history
  write json    commit and save history to disk
  reset         show the last committed arrangement again`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Invalid roster or history is fatal: nothing sensible can be shown.
	roster, err := store.LoadRoster(cfg.NamesPath)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	entries, err := store.LoadHistory(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	history := store.NewHistory(entries)
	slog.Info("history loaded", "path", cfg.HistoryPath, "entries", history.Len())

	var (
		archive session.Recorder
		commits server.CommitLog
	)
	if cfg.ArchivePath != "" {
		db, err := store.OpenDB(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer db.Close()
		ar, err := store.NewArchive(db)
		if err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
		n, err := ar.Count()
		if err != nil {
			return fmt.Errorf("count archive: %w", err)
		}
		slog.Info("archive opened", "path", cfg.ArchivePath, "commits", n)
		archive = ar
		commits = ar
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout := cfg.DisplayLayout()
	last, _ := history.Last()
	initial, err := layout.ToDisplay(last, roster)
	if err != nil {
		return err
	}
	h := hub.NewHub(initial, cfg.Viewers.SendBuffer)

	sess, err := session.New(session.Config{
		Roster:  roster,
		History: history,
		Generator: seating.NewGenerator(
			seating.WithMaxAttempts(cfg.Generation.MaxAttempts),
			seating.WithObserver(metrics.ObserveGeneration),
		),
		Layout:      layout,
		Publisher:   h,
		HistoryPath: cfg.HistoryPath,
		Archive:     archive,
		Out:         printer.New(out),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.New(h, server.Options{
			PingInterval: cfg.Viewers.PingInterval,
			WriteTimeout: cfg.Viewers.WriteTimeout,
			AcceptRate:   cfg.Viewers.AcceptRate,
			AcceptBurst:  cfg.Viewers.AcceptBurst,
			Archive:      commits,
		}).Handler(ctx),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("seatd starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down seatd")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		err := sess.Run(gctx, in)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("command input: %w", err)
		}
		if err == nil {
			slog.Info("command input closed, serving until interrupted")
		}
		return nil
	})

	err = g.Wait()
	slog.Info("seatd stopped")
	return err
}

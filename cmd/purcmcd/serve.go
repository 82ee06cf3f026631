package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hvml/purcmc-go/pkg/archive"
	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/httpapi"
	"github.com/hvml/purcmc-go/pkg/refbackend"
	"github.com/hvml/purcmc-go/pkg/rendercfg"
	"github.com/hvml/purcmc-go/pkg/renderer"
	"github.com/hvml/purcmc-go/pkg/session"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the renderer daemon",
		RunE:  runServe,
	}

	f := cmd.Flags()
	f.String("listen-addr", ":9997", "host:port the WebSocket transport listens on")
	f.String("http-addr", ":9998", "host:port the debug/metrics HTTP surface listens on")
	f.String("log-level", "info", "one of debug, info, warn, error")
	f.String("backend", "ref", "back-end implementation to wire up (ref)")
	f.Duration("ping-time", 60*time.Second, "idle time before pinging an endpoint")
	f.Duration("no-responding-time", 90*time.Second, "idle time before sweeping an unresponsive endpoint")
	f.Bool("archive-enabled", false, "mirror every message to an S3-compatible transcript archive")
	f.String("archive-bucket", "", "S3 bucket for the transcript archive")
	f.String("archive-prefix", "purcmc/", "key prefix for archived transcript objects")
	f.String("archive-region", "", "AWS region for the transcript archive")
	f.String("archive-endpoint", "", "S3-compatible endpoint override (e.g. MinIO)")
	f.Bool("persist-enabled", false, "persist the endpoint directory to sqlite")
	f.String("persist-path", "purcmcd.db", "sqlite file for the endpoint directory")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := rendercfg.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	printBanner()
	fmt.Printf("  Listen:  %s (WebSocket)\n", cfg.ListenAddr)
	fmt.Printf("  HTTP:    %s (debug/metrics)\n", cfg.HTTPAddr)
	fmt.Printf("  Backend: %s\n", cfg.Backend)
	fmt.Println()

	arena := session.NewArena()
	back := refbackend.New(arena)

	opts := []renderer.Option{
		renderer.WithLogger(logger),
		renderer.WithSweepConfig(cfg.SweepConfig()),
	}

	registry := prometheus.NewRegistry()
	metrics := renderer.NewMetrics(renderer.WithMetricsRegistry(registry))
	opts = append(opts, renderer.WithMetrics(metrics))

	if cfg.ArchiveEnabled {
		store, err := archive.NewStoreFromEnv(context.Background(), cfg.ArchiveBucket, cfg.ArchivePrefix, cfg.ArchiveRegion, cfg.ArchiveEndpoint)
		if err != nil {
			return fmt.Errorf("purcmcd: configure archive: %w", err)
		}
		opts = append(opts, renderer.WithArchive(store))
	}

	if cfg.PersistEnabled {
		dir, err := endpoint.OpenDirectory(cfg.PersistPath)
		if err != nil {
			return fmt.Errorf("purcmcd: open endpoint directory: %w", err)
		}
		defer dir.Close()
		opts = append(opts, renderer.WithDirectory(dir))
	}

	rdr := renderer.New(back.Callbacks(), arena, opts...)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(rdr, back.Manager(), registry),
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "err", err)
		}
	}()

	wsSrv := newWSServer(cfg.ListenAddr, rdr, logger)
	go func() {
		if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("websocket server stopped", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	runErr := rdr.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = wsSrv.Shutdown(shutdownCtx)

	if runErr != nil && runErr != context.Canceled {
		return fmt.Errorf("purcmcd: renderer: %w", runErr)
	}
	return nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

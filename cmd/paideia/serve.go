package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jllopis/paideia/internal/httpapi"
	"github.com/jllopis/paideia/pkg/agents"
	"github.com/jllopis/paideia/pkg/config"
	"github.com/jllopis/paideia/pkg/registry"
	"github.com/jllopis/paideia/pkg/router"
	"github.com/jllopis/paideia/pkg/telemetry"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, watcher, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig(cfg.Telemetry.ServiceName, version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.OTLPAddr,
			OTLPInsecure: true,
			Environment:  cfg.Telemetry.Environment,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown failed", "error", err)
			}
		}()
	}

	svc, cleanup, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := registry.New()
	agents.RegisterAll(reg, svc)
	rt := router.New(reg)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		slog.Warn("metrics unavailable", "error", err)
	}

	api := httpapi.New(rt, reg,
		httpapi.WithStore(svc.Store),
		httpapi.WithMetrics(metrics),
	)

	if watcher != nil {
		watcher.OnChange(func(next *config.Config) {
			telemetry.ConfigureSlog(os.Stderr, next.Log.Level, next.Log.Format)
			slog.Info("reloaded configuration", "log_level", next.Log.Level)
		})
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", cfg.Server.Addr, "agents", reg.Count())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// loadConfig loads configuration directly when no file is given, or
// through a watcher so the file can be hot-reloaded while serving.
func loadConfig(path string) (*config.Config, *config.Watcher, error) {
	if path == "" {
		cfg, err := config.Load("")
		return cfg, nil, err
	}
	watcher, err := config.NewWatcher(path)
	if err != nil {
		return nil, nil, err
	}
	return watcher.Config(), watcher, nil
}

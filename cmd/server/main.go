package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/majupersonalizados/briefing/internal/app"
	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/majupersonalizados/briefing/internal/logger"
	"github.com/majupersonalizados/briefing/internal/metrics"
	"github.com/majupersonalizados/briefing/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.AppEnv,
		AppName:     cfg.AppName,
	})
	defer logger.Flush()

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	servers := []*http.Server{srv}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
	go serve(srv, stop)

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr)
		servers = append(servers, metricsSrv)

		slog.Info("metrics listener starting", "addr", cfg.MetricsAddr)
		go serve(metricsSrv, stop)
	}

	<-ctx.Done()
	slog.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, s := range servers {
		err = s.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("graceful shutdown failed", "addr", s.Addr, "error", err)
		}
	}
}

// serve runs srv until it is shut down; any other failure stops the process.
func serve(srv *http.Server, stop context.CancelFunc) {
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "addr", srv.Addr, "error", err)
		stop()
	}
}

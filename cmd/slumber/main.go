package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"slumber/internal/backend"
	"slumber/internal/config"
	"slumber/internal/dispatcher"
	"slumber/internal/logging"
	"slumber/internal/supervisor"
	"slumber/internal/telemetry"
)

func main() {
	var configPath = flag.String("config", "", "Path to slumber config file (toml or yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolved, err := config.ResolveConfigPath(*configPath)
	if err != nil {
		log.Fatalf("resolve config path: %v", err)
	}
	if created, err := config.EnsureConfigFile(resolved.Path); err != nil {
		log.Fatalf("ensure config file: %v", err)
	} else if created {
		log.Printf("wrote default config to %s", resolved.Path)
	}

	provider := config.NewFileConfigProvider(resolved.Path)
	cfg, err := provider.Load(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	runtime, err := logging.NewRuntime(cfg.Logging)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer runtime.Close()
	logger := runtime.Logger()

	driver, err := backend.NewDockerDriver(ctx, cfg.ContainerName, cfg.BackendPort, logger)
	if err != nil {
		logger.Error("connect backend driver", "error", err)
		os.Exit(1)
	}
	guard := backend.NewGuarded(driver)

	metrics := telemetry.NewMetricsCollector()

	sup := supervisor.New(guard, logger,
		supervisor.WithProbePeriod(cfg.ProbePeriod),
		supervisor.WithIdleDuration(cfg.IdleWindow),
		supervisor.WithMetrics(metrics),
		supervisor.WithProtocolVersion(cfg.ProtocolVersion),
	)

	disp := dispatcher.New(guard, dispatcher.Options{
		ListenAddr:      cfg.ListenAddr,
		ConnectTimeout:  cfg.ConnectTimeout,
		RetryInterval:   cfg.RetryInterval,
		ProtocolVersion: cfg.ProtocolVersion,
		Metrics:         metrics,
		Logger:          logger,
	})

	adminOpts := telemetry.AdminServerOptions{
		Addr:    cfg.AdminAddr,
		Metrics: metrics,
		Backend: func() (backend.HostInfo, bool, backend.State) {
			host, known := guard.Addr()
			state := backend.StateUnknown
			if known {
				state = backend.StateUp
			}
			return host, known, state
		},
		Health: func() bool {
			return disp.IsListening()
		},
	}
	if store := runtime.Store(); store != nil {
		adminOpts.Logs = store
	}
	admin := telemetry.NewAdminServer(adminOpts)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := disp.ListenAndServe(gctx); err != nil {
			return fmt.Errorf("dispatcher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := sup.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervisor: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if cfg.AdminAddr == "" {
			return nil
		}
		if err := admin.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin server: %w", err)
		}
		return nil
	})

	<-gctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := admin.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin shutdown", "error", err)
	}
	if err := disp.Shutdown(shutdownCtx); err != nil {
		logger.Warn("dispatcher shutdown", "error", err)
	}

	if err := g.Wait(); err != nil {
		logger.Error("exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("slumber exited")
}

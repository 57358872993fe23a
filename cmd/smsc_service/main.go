package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/aradsms/smsc/internal/platform/config"
	"github.com/aradsms/smsc/internal/platform/logger"
	"github.com/aradsms/smsc/internal/platform/messagebroker"

	httptransport "github.com/aradsms/smsc/internal/smsc/adapters/http"
	"github.com/aradsms/smsc/internal/smsc/app"
	"github.com/aradsms/smsc/internal/smsc/repository/memory"
	"github.com/aradsms/smsc/internal/smsc/script"
	"github.com/aradsms/smsc/internal/smsc/transmitter"
)

const (
	serviceName     = "smsc-service"
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	log.Info("Starting service...", "transmitter", cfg.Transmitter, "sweep_interval", cfg.SweepInterval, "http_port", cfg.HTTPPort)

	tr, closeTransmitter, err := newTransmitter(cfg, log)
	if err != nil {
		log.Error("Failed to initialize transmitter", "error", err)
		os.Exit(1)
	}
	defer closeTransmitter()

	accounts := memory.NewAccountDirectory()
	groups := memory.NewGroupRegistry()
	subscriptions := memory.NewSubscriptionRegistry()
	queue := memory.NewPendingQueue()

	accountSvc := app.NewAccountService(accounts, groups, log)
	subscriptionSvc := app.NewSubscriptionService(subscriptions, accounts, log)
	engine := app.NewDeliveryEngine(subscriptions, queue, tr, log)
	router := app.NewMessageRouter(accounts, groups, subscriptions, engine, log)
	sweeper, err := app.NewSweeper(engine, cfg.SweepInterval, log)
	if err != nil {
		log.Error("Failed to create redelivery sweeper", "error", err)
		os.Exit(1)
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		return sweeper.Run(groupCtx)
	})

	if cfg.HTTPPort > 0 {
		handler := httptransport.NewHandler(accountSvc, subscriptionSvc, router, engine, validator.New(), log)
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: httptransport.NewRouter(handler, requestTimeout),
		}

		g.Go(func() error {
			log.Info("HTTP server listening", "address", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("HTTP server failed", "error", err)
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-groupCtx.Done()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error("HTTP server shutdown failed", "error", err)
			}
			return nil
		})
	}

	scriptDone := make(chan struct{})
	if cfg.ScriptPath != "" {
		runner := script.NewRunner(accountSvc, subscriptionSvc, router, log)
		g.Go(func() error {
			defer close(scriptDone)
			return runScript(groupCtx, runner, cfg.ScriptPath, log)
		})
	}

	log.Info("Service components initialized and workers started. Service is ready.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var groupErr error
	select {
	case sig := <-sigCh:
		log.Info("Received termination signal", "signal", sig)
	case groupErr = <-watchGroup(g):
		if groupErr != nil {
			log.Error("A critical component failed, initiating shutdown", "error", groupErr)
		}
	case <-exitAfter(cfg, scriptDone):
		log.Info("Script finished, exiting")
	}

	log.Info("Attempting graceful shutdown...")
	mainCancel()

	waitErr := g.Wait()
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		log.Error("Error during graceful shutdown of components", "error", waitErr)
	}
	log.Info("Service shutdown complete.", "pending_deliveries", len(engine.Pending()))
}

func newTransmitter(cfg *config.Config, log *slog.Logger) (transmitter.Transmitter, func(), error) {
	if cfg.Transmitter != config.TransmitterNATS {
		return transmitter.NewWriterTransmitter(os.Stdout, log), func() {}, nil
	}
	natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, log)
	if err != nil {
		return nil, nil, err
	}
	return transmitter.NewNATSTransmitter(natsClient, cfg.NATSSubject, log), natsClient.Close, nil
}

func runScript(ctx context.Context, runner *script.Runner, path string, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script %s: %w", path, err)
	}
	defer f.Close()

	log.InfoContext(ctx, "Running script", "path", path)
	stats, err := runner.Run(ctx, f)
	log.InfoContext(ctx, "Script finished", "path", path, "executed", stats.Executed, "failed", stats.Failed, "skipped", stats.Skipped)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// exitAfter fires once the script is done when the service should stop with it.
func exitAfter(cfg *config.Config, scriptDone <-chan struct{}) <-chan struct{} {
	if cfg.ScriptPath == "" || !cfg.ExitAfterScript {
		return nil
	}
	return scriptDone
}

// watchGroup returns a channel that receives the result of g.Wait().
func watchGroup(g *errgroup.Group) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Wait()
		close(errCh)
	}()
	return errCh
}

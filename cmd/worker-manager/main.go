// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"branded-email-workers/internal/api"
	"branded-email-workers/internal/common/camunda"
	"branded-email-workers/internal/common/config"
	"branded-email-workers/internal/common/database"
	"branded-email-workers/internal/common/logger"
	"branded-email-workers/internal/common/metrics"
	"branded-email-workers/internal/common/observability"
	"branded-email-workers/internal/dispatch"
	"branded-email-workers/internal/rendering"
	"branded-email-workers/internal/rendering/variables"
	"branded-email-workers/internal/store"

	er "branded-email-workers/internal/workers/communication/email-render"
	es "branded-email-workers/internal/workers/communication/email-send"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// worker is implemented by every job handler in internal/workers.
type worker interface {
	Register() error
	Close()
	GetTaskType() string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry; the store runs uncached without it ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" && cfg.Rendering.CacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.DialRedis(ctx, cfg.Database.Redis)
			return err
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, template cache disabled", zap.Error(err))
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Store, render service, dispatcher ---
	cache := store.NewCache(redis, time.Duration(cfg.Rendering.CacheTTL)*time.Second, log)
	st := store.New(pg, cache, log)
	if err := st.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	renderer := rendering.NewService(rendering.ServiceDependencies{
		Store:    st,
		Resolver: variables.NewResolver(variables.WithBaseURL(cfg.Rendering.PublicURL)),
		Logger:   log,
		Metrics:  metrics.PromRecorder{},
		Tracer:   obs,
	}, rendering.Config{
		PublicURL:       cfg.Rendering.PublicURL,
		DerivePlainText: cfg.Rendering.ShouldDerivePlainText(),
	})

	dispatcher := dispatch.New(dispatch.DispatcherDependencies{
		Settings: st,
		Factory: dispatch.NewFactory(dispatch.FactoryConfig{
			SESRegion: cfg.Email.SES.Region,
			Timeout:   config.GetDuration(cfg.Email.SendTimeout),
		}),
		Logger: log,
	})
	if err := dispatcher.Rebuild(ctx); err != nil {
		// not fatal: sends rebuild lazily once settings are stored
		zapLog.Warn("email transport not ready", zap.Error(err))
	}

	// --- Zeebe workers ---
	var zeebe *camunda.Client
	var workers []worker
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			RetryConfig: &camunda.RetryConfig{
				MaxRetries: 10,
				BaseDelay:  2 * time.Second,
				MaxDelay:   30 * time.Second,
			},
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		renderHandler, err := er.NewHandler(er.HandlerOptions{
			AppConfig:     cfg,
			Camunda:       zeebe,
			Renderer:      renderer,
			Logger:        log,
			Observability: obs,
		})
		if err != nil {
			zapLog.Fatal("failed to create email-render handler", zap.Error(err))
		}

		sendHandler, err := es.NewHandler(es.HandlerOptions{
			AppConfig:     cfg,
			Camunda:       zeebe,
			Renderer:      renderer,
			Sender:        dispatcher,
			Logger:        log,
			Observability: obs,
		})
		if err != nil {
			zapLog.Fatal("failed to create email-send handler", zap.Error(err))
		}

		for _, w := range []worker{renderHandler, sendHandler} {
			if err := w.Register(); err != nil {
				zapLog.Fatal("failed to register worker", zap.String("taskType", w.GetTaskType()), zap.Error(err))
			}
			workers = append(workers, w)
		}
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("Camunda disabled, running the HTTP API only")
	}

	// --- HTTP API, health and metrics ---
	server := api.NewServer(api.Dependencies{
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Ready:      []api.Pinger{st},
		Logger:     log,
	})
	httpServer := api.NewHTTPServer(
		cfg.HTTP.Address,
		server.Routes(),
		config.GetDuration(cfg.HTTP.ReadTimeout),
		config.GetDuration(cfg.HTTP.WriteTimeout),
	)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	for _, w := range workers {
		w.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

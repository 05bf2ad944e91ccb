// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"slide-generator/internal/common/camunda"
	"slide-generator/internal/common/config"
	"slide-generator/internal/common/database"
	"slide-generator/internal/common/logger"
	"slide-generator/internal/common/observability"
	"slide-generator/internal/presentation"
	"slide-generator/pkg/registry"

	gsc "slide-generator/internal/workers/presentation/generate-slide-content"
	rp "slide-generator/internal/workers/presentation/render-presentation"
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
			log.Warn(operationName+" failed, retrying...",
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return errors.Join(errors.New(operationName+" failed after retries"), err)
}

func main() {
	configPath := flag.StringP("config", "c", "", "path to a config yaml (defaults to ./configs/config.yaml)")
	registryPath := flag.String("registry", "configs/activity-registry.json", "path to the activity registry")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateWorkerHost(cfg); err != nil {
		zap.NewExample().Fatal("invalid worker configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	_, _ = maxprocs.Set(maxprocs.Logger(zapLog.Sugar().Infof))

	zapLog.Info("Starting worker manager...")

	obs, err := observability.New(observability.Options{
		ServiceName:    "worker-manager",
		TracingEnabled: cfg.Observability.TracingEnabled,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	if err != nil {
		zapLog.Warn("observability init failed, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	if cfg.UsesRedis() {
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")
	}

	svc, err := presentation.NewFromConfig(ctx, cfg, rdb, obs, log)
	if err != nil {
		zapLog.Fatal("presentation service init failed", zap.Error(err))
	}

	// --- Register Workers ---
	var workers []worker.JobWorker

	renderCfg := config.GetWorkerConfig(cfg, rp.TaskType)
	if jw := zeebe.StartWorker(rp.TaskType, renderCfg, rp.NewHandler(rp.LoadConfig(renderCfg), svc, obs, log), log); jw != nil {
		workers = append(workers, jw)
	}

	contentCfg := config.GetWorkerConfig(cfg, gsc.TaskType)
	if jw := zeebe.StartWorker(gsc.TaskType, contentCfg, gsc.NewHandler(gsc.LoadConfig(contentCfg), svc, obs, log), log); jw != nil {
		workers = append(workers, jw)
	}

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		zapLog.Warn("activity registry unavailable", zap.String("path", *registryPath), zap.Error(err))
		reg = &registry.ActivityRegistry{}
	} else if missing := reg.Missing(rp.TaskType, gsc.TaskType); len(missing) > 0 {
		zapLog.Warn("workers missing from activity registry", zap.Strings("taskTypes", missing))
	}

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.HandleFunc("/activities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reg)
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{
		Addr:    (config.ServerConfig{Port: cfg.Observability.MetricsPort}).Addr(),
		Handler: mux,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", healthSrv.Addr))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

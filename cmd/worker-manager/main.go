// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"venture-risk-workers/internal/assessment"
	"venture-risk-workers/internal/common/camunda"
	"venture-risk-workers/internal/common/config"
	"venture-risk-workers/internal/common/database"
	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/common/observability"
	"venture-risk-workers/internal/scoring"
	"venture-risk-workers/internal/store"

	assessmentworkers "venture-risk-workers/internal/workers/assessment"
	"venture-risk-workers/pkg/registry"
)

const registryPath = "configs/activity-registry.json"

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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// --- Observability ---
	tracing, err := observability.NewTracing(cfg.App.Name, cfg.App.Version, cfg.Observability.JaegerEndpoint, cfg.Observability.SampleRatio)
	if err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}
	obs := observability.New(cfg.App.Name, log).WithTracing(tracing)

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
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

	assessments := store.NewAssessmentStore(pg.DB)
	if err := assessments.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("assessment schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	opts := assessment.Options{
		MinDisclosureCount: cfg.Benchmark.MinDisclosureCount,
		Cache:              store.NewBenchmarkCache(redis.Client, time.Duration(cfg.Benchmark.CacheTTL)*time.Second),
	}
	var industries assessment.IndustrySource = assessments

	// --- Elasticsearch (optional) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
		}

		index := store.NewSearchIndex(esClient.Client, cfg.Database.Elasticsearch.Index)
		if cfg.Database.Elasticsearch.Mirror {
			opts.Mirror = index
		}
		if cfg.Benchmark.Source == config.BenchmarkSourceElasticsearch {
			industries = index
		}
		zapLog.Info("Elasticsearch connected successfully",
			zap.Bool("mirror", cfg.Database.Elasticsearch.Mirror),
			zap.String("benchmarkSource", cfg.Benchmark.Source),
		)
	}

	// --- Scoring engine ---
	engine, err := scoring.NewEngine(scoring.EngineConfig{
		Mode:         cfg.Scoring.Mode,
		ModelPath:    cfg.Scoring.ModelPath,
		ServiceURL:   cfg.Scoring.ServiceURL,
		Timeout:      config.GetDuration(cfg.Scoring.Timeout),
		ResourceKeys: cfg.Suggestions.ResourceKeys,
	}, log)
	if err != nil {
		zapLog.Fatal("scoring engine setup failed", zap.Error(err))
	}

	service := assessment.NewService(engine, assessments, industries, opts, log)

	// --- Workers ---
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		zapLog.Warn("activity registry unavailable", zap.String("path", registryPath), zap.Error(err))
	}

	var workers []*camunda.Worker
	for taskType, handler := range assessmentworkers.Handlers(cfg, service, log) {
		if reg != nil {
			if _, ok := reg.Find(taskType); !ok {
				zapLog.Warn("task type missing from activity registry", zap.String("taskType", taskType))
			}
		}
		if w := camunda.StartWorker(zeebe, taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Workers registered", zap.Int("active", len(workers)), zap.String("scoringStrategy", engine.Strategy()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status":          "healthy",
			"scoringStrategy": engine.Strategy(),
			"fallbackActive":  engine.FallbackActive(),
			"time":            time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				ready = false
				return
			}
			checks[name] = "ok"
		}
		record("zeebe", zeebe.HealthCheck(checkCtx))
		record("postgres", pg.Ping(checkCtx))
		record("redis", redis.Ping(checkCtx))
		if esClient != nil {
			record("elasticsearch", esClient.Ping(checkCtx))
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":8080", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	obs.Shutdown(shutdownCtx)

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

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

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"volunteer-engine/internal/bootstrap"
	"volunteer-engine/internal/common/camunda"
	"volunteer-engine/internal/common/config"
	"volunteer-engine/internal/common/database"
	"volunteer-engine/internal/common/logger"
	"volunteer-engine/internal/common/metrics"
	"volunteer-engine/internal/common/observability"

	rra "volunteer-engine/internal/workers/volunteer/run-recruitment-analysis"
	rwa "volunteer-engine/internal/workers/volunteer/run-workload-analysis"
)

func recruitmentConfig(wcfg config.WorkerConfig) *rra.Config {
	return &rra.Config{
		Timeout:         config.GetDuration(wcfg.Timeout),
		IncludeProfiles: !wcfg.OmitProfiles,
	}
}

func workloadConfig(wcfg config.WorkerConfig) *rwa.Config {
	return &rwa.Config{
		Timeout:            config.GetDuration(wcfg.Timeout),
		MaxRecommendations: wcfg.MaxRecommendations,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New("worker-manager", prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	rt, err := bootstrap.Open(ctx, cfg, bootstrap.Options{Registerer: prometheus.DefaultRegisterer}, log)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}
	defer rt.Close()

	zeebeClient, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebeClient.Close()

	manager := camunda.NewManager(zeebeClient, cfg.Camunda, log)

	if wcfg := cfg.Workers[rra.TaskType]; wcfg.Enabled {
		handler, err := rra.NewHandler(recruitmentConfig(wcfg), rt.Engine, obs, log)
		if err != nil {
			zapLog.Fatal("worker init failed", zap.String("taskType", rra.TaskType), zap.Error(err))
		}
		manager.Start(rra.TaskType, wcfg, handler.Handle)
	}

	if wcfg := cfg.Workers[rwa.TaskType]; wcfg.Enabled {
		handler, err := rwa.NewHandler(workloadConfig(wcfg), rt.Engine, obs, log)
		if err != nil {
			zapLog.Fatal("worker init failed", zap.String("taskType", rwa.TaskType), zap.Error(err))
		}
		manager.Start(rwa.TaskType, wcfg, handler.Handle)
	}

	if len(manager.Running()) == 0 {
		zapLog.Warn("no workers enabled")
	}

	pingers := rt.Pingers()
	pingers["zeebe"] = camunda.TopologyPinger{Client: zeebeClient, Timeout: 3 * time.Second}
	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newServeMux(pingers, manager),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manager.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func newServeMux(pingers map[string]database.Pinger, manager *camunda.Manager) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"workers": manager.Running(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, checks := readiness(r.Context(), pingers)
		code := http.StatusOK
		if status != "ready" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func readiness(ctx context.Context, pingers map[string]database.Pinger) (string, map[string]string) {
	status := "ready"
	checks := make(map[string]string, len(pingers))
	for name, p := range pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = "not ready"
			continue
		}
		checks[name] = "ok"
	}
	return status, checks
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	registerOnce sync.Once

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	ToolInvocationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mcp_tool_invocation_duration_seconds",
		Help:    "Длительность вызова инструмента MCP",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool", "status"})

	ToolInvocationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_tool_invocation_total",
		Help: "Количество вызовов инструментов MCP",
	}, []string{"tool", "status"})

	FeedbackRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_records_processed_total",
		Help: "Количество отзывов на каждой стадии обработки списка",
	}, []string{"stage"})
)

// MustRegister регистрирует метрики. Повторные вызовы ничего не делают.
func MustRegister(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(
			NetworkRequestDuration,
			NetworkRequestTotal,
			ToolInvocationDuration,
			ToolInvocationTotal,
			FeedbackRecordsTotal,
		)
	})
}

// Handler отдаёт метрики из gatherer и простой /healthz для проб процесса.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// StartServer запускает отдельный сервер метрик и останавливает его вместе с ctx.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string, gatherer prometheus.Gatherer) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает исходящий запрос: компонент, HTTP метод, первый сегмент пути.
func ObserveNetworkRequest(component, method, target string, start time.Time, err error) {
	labels := []string{orUnknown(component), orUnknown(method), orUnknown(target), statusLabel(err != nil)}
	NetworkRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(labels...).Inc()
}

// ObserveToolInvocation записывает результат вызова инструмента.
func ObserveToolInvocation(tool string, start time.Time, failed bool) {
	status := statusLabel(failed)
	ToolInvocationDuration.WithLabelValues(tool, status).Observe(time.Since(start).Seconds())
	ToolInvocationTotal.WithLabelValues(tool, status).Inc()
}

// ObserveListStages увеличивает счётчики стадий original/filtered/returned.
func ObserveListStages(original, filtered, returned int) {
	FeedbackRecordsTotal.WithLabelValues("original").Add(float64(original))
	FeedbackRecordsTotal.WithLabelValues("filtered").Add(float64(filtered))
	FeedbackRecordsTotal.WithLabelValues("returned").Add(float64(returned))
}

func statusLabel(failed bool) string {
	if failed {
		return "error"
	}
	return "success"
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

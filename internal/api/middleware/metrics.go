// metrics.go — Prometheus HTTP метрики TeleFile.
// Регистрирует метрики: tf_http_requests_total, tf_http_request_duration_seconds.
// Бизнес-метрики (tf_operations_total, tf_forward_total) обновляются
// из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tf_http_requests_total",
			Help: "Общее количество HTTP-запросов к TeleFile",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tf_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к TeleFile в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// OperationsTotal — общее количество файловых операций.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tf_operations_total",
			Help: "Общее количество файловых операций",
		},
		[]string{"operation", "result"},
	)

	// ForwardTotal — количество попыток пересылки в Telegram.
	ForwardTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tf_forward_total",
			Help: "Количество попыток пересылки файлов в Telegram",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (id сущностей заменяются на {id} против роста кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет id-сегменты пути на {id} для предотвращения
// взрывного роста кардинальности метрик.
// /api/files/a1b2c3d4-... → /api/files/{id}
func normalizePath(path string) string {
	switch {
	case path == "/health/live", path == "/health/ready", path == "/metrics":
		return path
	case path == "/api/folders", path == "/api/files", path == "/api/upload", path == "/api/settings":
		return path
	case path == "/api/users", path == "/api/chats":
		return path
	case strings.HasPrefix(path, "/api/folders/"):
		return "/api/folders/{id}"
	case strings.HasPrefix(path, "/api/files/"):
		rest := strings.TrimPrefix(path, "/api/files/")
		if strings.HasSuffix(rest, "/download") {
			return "/api/files/{id}/download"
		}
		if strings.HasSuffix(rest, "/forward") {
			return "/api/files/{id}/forward"
		}
		return "/api/files/{id}"
	case strings.HasPrefix(path, "/api/users/"):
		if path == "/api/users/deleteMany" {
			return path
		}
		return "/api/users/{id}"
	case strings.HasPrefix(path, "/api/chats/"):
		if path == "/api/chats/deleteMany" {
			return path
		}
		if strings.HasSuffix(path, "/messages") {
			return "/api/chats/{id}/messages"
		}
		return "/api/chats/{id}"
	}
	return path
}

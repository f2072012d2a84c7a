// Package metrics - Prometheus метрики HTTP-слоя и загрузок.
// Все метрики регистрируются в реестре по умолчанию и отдаются на /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drive_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Метрики загрузок, обновляются брокером
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_uploads_total",
			Help: "Количество загрузок по стратегии и результату",
		},
		[]string{"strategy", "result"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_upload_bytes_total",
			Help: "Объем успешно загруженных данных в байтах",
		},
		[]string{"strategy"},
	)

	DownloadURLCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_download_url_cache_hits_total",
			Help: "Попадания в кэш подписанных ссылок на скачивание",
		},
	)

	DownloadURLCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_download_url_cache_misses_total",
			Help: "Промахи кэша подписанных ссылок на скачивание",
		},
	)
)

// ObserveUpload учитывает одну попытку загрузки. bytes учитываются только для успешных.
func ObserveUpload(strategy string, err error, bytes int64) {
	result := "success"
	if err != nil {
		result = "error"
	}
	UploadsTotal.WithLabelValues(strategy, result).Inc()
	if err == nil {
		UploadBytesTotal.WithLabelValues(strategy).Add(float64(bytes))
	}
}

// Middleware собирает количество и длительность запросов.
// Путь берется из шаблона маршрута chi, чтобы id не раздували кардинальность.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

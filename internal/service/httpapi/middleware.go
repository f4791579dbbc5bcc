package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/metrics"
)

const headerRequestID = "X-Request-ID"

// NoCache запрещает кеширование ответа на всех промежуточных уровнях.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// RequestID пробрасывает входящий X-Request-ID или генерирует новый.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// RequestLogger пишет метод, путь, статус и длительность каждого запроса
// и обновляет HTTP-метрики по шаблону маршрута.
func RequestLogger(next http.Handler, logger *log.Entry, m *metrics.CheckoutMetrics) http.Handler {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		m.RequestStarted()
		next.ServeHTTP(rec, r)
		m.RequestFinished()

		duration := time.Since(start)
		m.RecordHTTPRequest(routeLabel(r), rec.status, duration)

		entry := logger.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   duration.String(),
			"request_id": r.Header.Get(headerRequestID),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	})
}

// routeLabel возвращает шаблон маршрута, чтобы метки метрик не зависели от параметров.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

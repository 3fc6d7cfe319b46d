package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joelkehle/webhook-inbox/internal/inbox"
)

type extrasKey struct{}

// logExtras lets handlers attach fields (result, message_id, dup) to the
// single request log line the middleware emits.
type logExtras struct {
	mu     sync.Mutex
	fields []slog.Attr
}

func (e *logExtras) add(attrs ...slog.Attr) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fields = append(e.fields, attrs...)
}

func extrasFrom(ctx context.Context) *logExtras {
	if e, ok := ctx.Value(extrasKey{}).(*logExtras); ok {
		return e
	}
	return &logExtras{}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger emits one JSON log line per request, assigns a request id,
// and feeds the http counter and latency histogram.
func requestLogger(logger *slog.Logger, metrics *inbox.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		extras := &logExtras{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), extrasKey{}, extras)))

		latency := time.Since(start)
		metrics.HTTPRequest(r.URL.Path, rec.status)
		metrics.ObserveLatency(latency)

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Float64("latency_ms", float64(latency)/float64(time.Millisecond)),
		}
		extras.mu.Lock()
		attrs = append(attrs, extras.fields...)
		extras.mu.Unlock()

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(r.Context(), level, "request", attrs...)
	})
}

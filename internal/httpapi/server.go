package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/joelkehle/webhook-inbox/internal/inbox"
)

// SignatureHeader carries the hex HMAC-SHA256 digest of the raw request body.
const SignatureHeader = "X-Signature"

type Server struct {
	ingestor *inbox.Ingestor
	queries  *inbox.QueryService
	store    inbox.Store
	metrics  *inbox.Metrics

	secretConfigured bool
}

// NewServer wires the boundary routes around the ingestion core. The returned
// handler includes the request logging middleware.
func NewServer(ingestor *inbox.Ingestor, queries *inbox.QueryService, store inbox.Store, metrics *inbox.Metrics, secretConfigured bool, logger *slog.Logger) http.Handler {
	s := &Server{
		ingestor:         ingestor,
		queries:          queries,
		store:            store,
		metrics:          metrics,
		secretConfigured: secretConfigured,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health/live", s.handleHealthLive)
	mux.HandleFunc("/health/ready", s.handleHealthReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return requestLogger(logger, metrics, mux)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeError(w http.ResponseWriter, err error) {
	var ie *inbox.Error
	if errors.As(err, &ie) {
		writeDetail(w, ie.Status, ie.Message)
		return
	}
	writeDetail(w, http.StatusInternalServerError, "internal error")
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "read body")
		return
	}

	extras := extrasFrom(r.Context())
	outcome, err := s.ingestor.Ingest(rawBody, r.Header.Get(SignatureHeader))
	if err != nil {
		extras.add(slog.String("result", inbox.ResultError))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch outcome.Kind {
	case inbox.OutcomeUnconfigured:
		writeDetail(w, http.StatusServiceUnavailable, "WEBHOOK_SECRET not configured")
	case inbox.OutcomeMissingSignature, inbox.OutcomeInvalidSignature:
		// Deliberately indistinguishable to the caller.
		extras.add(slog.String("result", inbox.ResultInvalidSignature), slog.Bool("dup", false))
		writeDetail(w, http.StatusUnauthorized, "invalid signature")
	case inbox.OutcomeValidationError:
		extras.add(slog.String("result", inbox.ResultValidationError))
		writeDetail(w, http.StatusUnprocessableEntity, outcome.Fields)
	case inbox.OutcomeCreated, inbox.OutcomeDuplicate:
		dup := outcome.Kind == inbox.OutcomeDuplicate
		result := inbox.ResultCreated
		if dup {
			result = inbox.ResultDuplicate
		}
		extras.add(
			slog.String("result", result),
			slog.String("message_id", outcome.Message.MessageID),
			slog.Bool("dup", dup),
		)
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	default:
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	resp, err := s.queries.ListMessages(inbox.ListParams{
		From:   q.Get("from"),
		Since:  q.Get("since"),
		Q:      q.Get("q"),
		Limit:  q.Get("limit"),
		Offset: q.Get("offset"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	stats, err := s.queries.GetStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if !s.secretConfigured {
		writeDetail(w, http.StatusServiceUnavailable, "WEBHOOK_SECRET not set")
		return
	}
	if err := s.store.Ping(); err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "storage unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s.metrics.Render())
}

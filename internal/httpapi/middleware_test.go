package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/webhook-inbox/internal/inbox"
)

func TestRequestLoggerEmitsOneLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	store := inbox.NewMemStore()
	metrics := inbox.NewMetrics()
	ingestor := inbox.NewIngestor(inbox.IngestorConfig{
		Secret: "s3cr3t",
		Clock:  func() time.Time { return time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC) },
	}, store, metrics)
	h := NewServer(ingestor, inbox.NewQueryService(store), store, metrics, true, logger)

	sig := inbox.Signature("s3cr3t", []byte(validBody))
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(validBody))
	req.Header.Set(SignatureHeader, sig)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d:\n%s", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["method"] != "POST" || entry["path"] != "/webhook" {
		t.Fatalf("log entry = %v", entry)
	}
	if entry["status"] != float64(200) {
		t.Fatalf("status = %v, want 200", entry["status"])
	}
	if entry["request_id"] == nil || entry["request_id"] == "" {
		t.Fatalf("missing request_id: %v", entry)
	}
	if entry["result"] != "created" || entry["message_id"] != "m1" || entry["dup"] != false {
		t.Fatalf("missing webhook extras: %v", entry)
	}
	if _, ok := entry["latency_ms"].(float64); !ok {
		t.Fatalf("missing latency_ms: %v", entry)
	}
}

func TestRequestLoggerFeedsMetrics(t *testing.T) {
	h, _, metrics := newServerForTest(t, "s3cr3t")

	get(t, h, "/health/live")
	get(t, h, "/health/live")

	out := metrics.Render()
	if !strings.Contains(out, `http_requests_total{path="/health/live",status="200"} 2`) {
		t.Fatalf("middleware did not count requests:\n%s", out)
	}
	if !strings.Contains(out, "request_latency_ms_count 2") {
		t.Fatalf("middleware did not observe latency:\n%s", out)
	}
}

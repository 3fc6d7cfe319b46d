package inbox

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type pathStatus struct {
	path   string
	status int
}

// Metrics aggregates the process counters and renders them as plain text.
// It implements Sink; the ingestion core never touches the counters directly.
type Metrics struct {
	mu             sync.Mutex
	httpRequests   map[pathStatus]int64
	webhookResults map[string]int64
	latencyLE100   int64
	latencyLE500   int64
	latencyAll     int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		httpRequests:   map[pathStatus]int64{},
		webhookResults: map[string]int64{},
	}
}

func (m *Metrics) WebhookResult(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhookResults[result]++
}

func (m *Metrics) HTTPRequest(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpRequests[pathStatus{path: path, status: status}]++
}

func (m *Metrics) ObserveLatency(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms <= 100 {
		m.latencyLE100++
	}
	if ms <= 500 {
		m.latencyLE500++
	}
	m.latencyAll++
}

// Render writes the exposition text. Lines are sorted within each family so
// the output is stable across calls.
func (m *Metrics) Render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	keys := make([]pathStatus, 0, len(m.httpRequests))
	for k := range m.httpRequests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].path != keys[j].path {
			return keys[i].path < keys[j].path
		}
		return keys[i].status < keys[j].status
	})
	for _, k := range keys {
		fmt.Fprintf(&b, "http_requests_total{path=%q,status=%q} %d\n", k.path, fmt.Sprint(k.status), m.httpRequests[k])
	}

	results := make([]string, 0, len(m.webhookResults))
	for r := range m.webhookResults {
		results = append(results, r)
	}
	sort.Strings(results)
	for _, r := range results {
		fmt.Fprintf(&b, "webhook_requests_total{result=%q} %d\n", r, m.webhookResults[r])
	}

	fmt.Fprintf(&b, "request_latency_ms_bucket{le=\"100\"} %d\n", m.latencyLE100)
	fmt.Fprintf(&b, "request_latency_ms_bucket{le=\"500\"} %d\n", m.latencyLE500)
	fmt.Fprintf(&b, "request_latency_ms_bucket{le=\"+Inf\"} %d\n", m.latencyAll)
	fmt.Fprintf(&b, "request_latency_ms_count %d\n", m.latencyAll)

	return b.String()
}

// Ensure Metrics can stand in wherever the core expects an event sink.
var _ Sink = (*Metrics)(nil)

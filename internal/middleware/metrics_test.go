package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockRequestMetrics はRequestMetricsのモック実装。
type mockRequestMetrics struct {
	statuses  []int
	latencies []time.Duration
}

func (m *mockRequestMetrics) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func (m *mockRequestMetrics) RecordRequestLatency(duration time.Duration) {
	m.latencies = append(m.latencies, duration)
}

func TestMetricsMiddleware_RecordsStatusAndLatency(t *testing.T) {
	mock := &mockRequestMetrics{}
	handler := NewMetricsMiddleware(mock)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/books/999", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if len(mock.statuses) != 1 || mock.statuses[0] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [404]", mock.statuses)
	}
	if len(mock.latencies) != 1 {
		t.Fatalf("latencies count = %d, want 1", len(mock.latencies))
	}
	if mock.latencies[0] < 0 {
		t.Errorf("latency = %v, want non-negative", mock.latencies[0])
	}
}

// ハンドラーがWriteHeaderを呼ばない場合は200として記録されること
func TestMetricsMiddleware_DefaultStatus(t *testing.T) {
	mock := &mockRequestMetrics{}
	handler := NewMetricsMiddleware(mock)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if len(mock.statuses) != 1 || mock.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", mock.statuses)
	}
}

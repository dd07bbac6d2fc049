package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brewline/queue-api/internal/handler"
	"github.com/brewline/queue-api/internal/order"
	"github.com/brewline/queue-api/internal/service"
)

// --- Mock QueueReader ---

type mockQueueReader struct {
	queueStatusFn func(limit int) service.QueueStatus
	analyticsFn   func() service.AnalyticsSnapshot
}

func (m *mockQueueReader) QueueStatus(limit int) service.QueueStatus {
	return m.queueStatusFn(limit)
}

func (m *mockQueueReader) Analytics() service.AnalyticsSnapshot {
	return m.analyticsFn()
}

func newQueueRouter(svc handler.QueueReader) chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handler.NewQueueHandler(svc).RegisterRoutes(r)
	})
	return r
}

// --- Status ---

func TestQueueStatus(t *testing.T) {
	svc := &mockQueueReader{
		queueStatusFn: func(limit int) service.QueueStatus {
			if limit != 0 {
				t.Errorf("limit = %d, want 0 when unset", limit)
			}
			return service.QueueStatus{
				QueueLength:          3,
				PreparingCount:       1,
				EstimatedWaitMinutes: 12,
				QueueOrders:          []service.OrderView{sampleView(order.StatusQueued, 1)},
				PreparingOrders:      []service.OrderView{sampleView(order.StatusPreparing, 0)},
			}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/queue/status", nil)
	rec := httptest.NewRecorder()
	newQueueRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp service.QueueStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.QueueLength != 3 || resp.PreparingCount != 1 || resp.EstimatedWaitMinutes != 12 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestQueueStatusLimit(t *testing.T) {
	var gotLimit int
	svc := &mockQueueReader{
		queueStatusFn: func(limit int) service.QueueStatus {
			gotLimit = limit
			return service.QueueStatus{}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/queue/status?limit=8", nil)
	rec := httptest.NewRecorder()
	newQueueRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotLimit != 8 {
		t.Fatalf("limit passed to service = %d, want 8", gotLimit)
	}
}

func TestQueueStatusInvalidLimit(t *testing.T) {
	svc := &mockQueueReader{
		queueStatusFn: func(limit int) service.QueueStatus {
			t.Error("service should not be called for an invalid limit")
			return service.QueueStatus{}
		},
	}

	for _, v := range []string{"abc", "0", "-2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/queue/status?limit="+v, nil)
		rec := httptest.NewRecorder()
		newQueueRouter(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", v, rec.Code)
		}
	}
}

// --- Analytics ---

func TestAnalytics(t *testing.T) {
	recent := make([]service.OrderView, 8)
	for i := range recent {
		recent[i] = sampleView(order.StatusCompleted, 0)
	}
	svc := &mockQueueReader{
		analyticsFn: func() service.AnalyticsSnapshot {
			return service.AnalyticsSnapshot{
				Stats: service.Stats{
					TotalOrders:     42,
					CompletedToday:  10,
					AverageWaitTime: 6.5,
					PeakQueueLength: 9,
					CancelledOrders: 2,
				},
				QueueByPriority: map[order.Priority]int{
					order.PriorityVIP:     1,
					order.PriorityMobile:  0,
					order.PriorityRegular: 4,
				},
				RecentCompletions: recent,
			}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	rec := httptest.NewRecorder()
	newQueueRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp service.AnalyticsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Stats.TotalOrders != 42 || resp.Stats.AverageWaitTime != 6.5 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
	if len(resp.RecentCompletions) != 5 {
		t.Fatalf("recent completions = %d, want trimmed to 5", len(resp.RecentCompletions))
	}
}

func TestAnalyticsEmptyRecentCompletions(t *testing.T) {
	svc := &mockQueueReader{
		analyticsFn: func() service.AnalyticsSnapshot {
			return service.AnalyticsSnapshot{
				QueueByPriority: map[order.Priority]int{},
			}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	rec := httptest.NewRecorder()
	newQueueRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"recent_completions":[]`)) {
		t.Fatalf("body = %s, want empty recent_completions array", rec.Body.String())
	}
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"boampwatch/internal/anomaly"
	"boampwatch/internal/scheduler"
	"boampwatch/internal/watch"
	"boampwatch/platform/logger"
	"boampwatch/platform/validator"
)

type httpConfig struct{}

func (httpConfig) GetHTTPAddr() string        { return ":0" }
func (httpConfig) GetCORSOrigins() []string   { return nil }

type fakeRunSource struct{ result *watch.RunResult }

func (f *fakeRunSource) LatestRun() (*watch.RunResult, bool) {
	if f.result == nil {
		return nil, false
	}
	return f.result, true
}

type fakeScanScheduler struct {
	enqueued []scheduler.ScanDatePayload
	err      error
}

func (f *fakeScanScheduler) EnqueueScanDate(_ context.Context, payload scheduler.ScanDatePayload) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, payload)
	return nil
}

type fakeAnomalySource struct{ findings []anomaly.Finding }

func (f *fakeAnomalySource) Recent() []anomaly.Finding { return f.findings }

func newTestRouter(runs *fakeRunSource, scans *fakeScanScheduler) *gin.Engine {
	return newTestRouterWithAnomalies(runs, scans, &fakeAnomalySource{})
}

func newTestRouterWithAnomalies(runs *fakeRunSource, scans *fakeScanScheduler, anomalies AnomalySource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")
	handler := NewHandler(runs, scans, anomalies, validator.New(), log)
	return NewRouter(httpConfig{}, handler, log)
}

func TestLatestRunReturns404BeforeFirstRun(t *testing.T) {
	router := newTestRouter(&fakeRunSource{}, &fakeScanScheduler{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLatestRunReturnsSnapshot(t *testing.T) {
	runs := &fakeRunSource{result: &watch.RunResult{RunID: uuid.New(), Date: "2026-08-30"}}
	router := newTestRouter(runs, &fakeScanScheduler{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "2026-08-30") {
		t.Fatalf("expected run date in body: %s", rec.Body.String())
	}
}

func TestTriggerScanQueuesValidDate(t *testing.T) {
	scans := &fakeScanScheduler{}
	router := newTestRouter(&fakeRunSource{}, scans)

	body := strings.NewReader(`{"date": "2026-08-30", "select": "attribution"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(scans.enqueued) != 1 || scans.enqueued[0].Date != "2026-08-30" {
		t.Fatalf("expected one enqueued scan, got %+v", scans.enqueued)
	}
}

func TestTriggerScanRejectsBadInput(t *testing.T) {
	scans := &fakeScanScheduler{}
	router := newTestRouter(&fakeRunSource{}, scans)

	cases := []string{
		`{"date": "30/08/2026"}`,
		`{"date": ""}`,
		`{"date": "2026-08-30", "select": "tout"}`,
		`pas du json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %q: expected rejection, got %d", body, rec.Code)
		}
	}
	if len(scans.enqueued) != 0 {
		t.Fatalf("expected nothing enqueued, got %+v", scans.enqueued)
	}
}

func TestListAnomaliesReturnsCollectedFindings(t *testing.T) {
	source := &fakeAnomalySource{findings: []anomaly.Finding{
		{RunID: uuid.New(), NoticeID: "26-9", Message: "unknown form shape"},
	}}
	router := newTestRouterWithAnomalies(&fakeRunSource{}, &fakeScanScheduler{}, source)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/anomalies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "unknown form shape") {
		t.Fatalf("expected finding in body: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Fatalf("expected count in body: %s", rec.Body.String())
	}
}

func TestAdminEndpointsAreRateLimited(t *testing.T) {
	router := newTestRouter(&fakeRunSource{}, &fakeScanScheduler{})

	limited := 0
	for i := 0; i < 30; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Fatal("expected a burst of 30 requests to trip the rate limit")
	}
}

func TestHealthzIsOpen(t *testing.T) {
	router := newTestRouter(&fakeRunSource{}, &fakeScanScheduler{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"creditwatch/adapters/stats"
	"creditwatch/app"
	"creditwatch/domain/dataset"
	"creditwatch/domain/drift"
	"creditwatch/domain/retraining"
	"creditwatch/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = internal.NewLogger(internal.LogLevelError)

type fakeStore struct {
	reports []*drift.Report
	err     error
}

func (f *fakeStore) Save(ctx context.Context, report *drift.Report) error {
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeStore) Latest(ctx context.Context) (*drift.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reports) == 0 {
		return nil, nil
	}
	return f.reports[len(f.reports)-1], nil
}

func (f *fakeStore) ListRecent(ctx context.Context, limit int) ([]*drift.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.reports) {
		limit = len(f.reports)
	}
	out := make([]*drift.Report, 0, limit)
	for i := len(f.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.reports[i])
	}
	return out, nil
}

type fakeProvider struct {
	reference *dataset.Batch
	current   *dataset.Batch
}

func (f *fakeProvider) Reference(ctx context.Context) (*dataset.Batch, error) {
	return f.reference, nil
}

func (f *fakeProvider) Current(ctx context.Context) (*dataset.Batch, error) {
	return f.current, nil
}

type fakeMetrics struct {
	value float64
	ok    bool
}

func (f *fakeMetrics) LatestAccuracy(ctx context.Context) (float64, bool, error) {
	return f.value, f.ok, nil
}

type noopAudit struct{}

func (noopAudit) Append(ctx context.Context, event retraining.TriggerEvent) error { return nil }
func (noopAudit) Latest(ctx context.Context) (*retraining.TriggerEvent, error)    { return nil, nil }

type noopLauncher struct{}

func (noopLauncher) Launch(ctx context.Context, event retraining.TriggerEvent) error { return nil }

func scoreBatch(low, high float64, n int) *dataset.Batch {
	records := make([]dataset.Record, n)
	step := (high - low) / float64(n)
	for i := range records {
		records[i] = dataset.Record{"credit_score": low + step*float64(i)}
	}
	return dataset.NewBatch(records)
}

func newTestServer(store *fakeStore, provider *fakeProvider, metrics *fakeMetrics) *Server {
	driftSvc := app.NewDriftService(stats.NewComparator(drift.DefaultPValueThreshold), testLogger)
	fairnessSvc := app.NewFairnessService(testLogger)
	retrainingSvc := app.NewRetrainingService(store, metrics, noopAudit{}, noopLauncher{}, testLogger)
	return NewServer(driftSvc, fairnessSvc, retrainingSvc, provider, store, testLogger)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeProvider{}, &fakeMetrics{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLatestDriftNotFound(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeProvider{}, &fakeMetrics{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/monitoring/drift", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestDriftCheckReturnsReport(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeProvider{
		reference: scoreBatch(600, 800, 300),
		current:   scoreBatch(300, 500, 300),
	}
	server := newTestServer(store, provider, &fakeMetrics{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/drift/check", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report drift.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.DriftDetected)
	assert.Contains(t, report.DriftedFeatures, "credit_score")

	// The ad-hoc check is persisted like a scheduled one
	assert.Len(t, store.reports, 1)

	// And now the latest endpoint serves it
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/monitoring/drift", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDriftCheckInsufficientData(t *testing.T) {
	provider := &fakeProvider{
		reference: scoreBatch(600, 800, 100),
		current:   dataset.NewBatch(nil),
	}
	server := newTestServer(&fakeStore{}, provider, &fakeMetrics{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/drift/check", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriftHistoryLimit(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 5; i++ {
		store.reports = append(store.reports, &drift.Report{DriftScore: float64(i) / 10})
	}
	server := newTestServer(store, &fakeProvider{}, &fakeMetrics{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/monitoring/drift/history?limit=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Reports []*drift.Report `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Reports, 3)

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/monitoring/drift/history?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFairnessEndpoint(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeProvider{}, &fakeMetrics{})

	req := fairnessRequest{
		SensitiveFeatures: []string{"gender"},
	}
	for i := 0; i < 50; i++ {
		req.Records = append(req.Records, dataset.Record{"gender": "male"})
		req.Predictions = append(req.Predictions, 1)
	}
	for i := 0; i < 50; i++ {
		req.Records = append(req.Records, dataset.Record{"gender": "female"})
		if i < 25 {
			req.Predictions = append(req.Predictions, 1)
		} else {
			req.Predictions = append(req.Predictions, 0)
		}
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analysis/fairness", bytes.NewReader(raw)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		FairnessScore   float64  `json:"fairness_score"`
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Greater(t, body.FairnessScore, 0.0)
	assert.NotEmpty(t, body.Recommendations)
}

func TestFairnessEndpointBadBody(t *testing.T) {
	server := newTestServer(&fakeStore{}, &fakeProvider{}, &fakeMetrics{})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analysis/fairness", bytes.NewReader([]byte("not json"))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrainingDecisionEndpoint(t *testing.T) {
	store := &fakeStore{reports: []*drift.Report{{DriftScore: 0.9}}}
	server := newTestServer(store, &fakeProvider{}, &fakeMetrics{value: 0.7, ok: true})

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/retraining/decision", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var decision retraining.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.True(t, decision.ShouldRetrain)
	assert.Equal(t, retraining.PriorityCritical, decision.Priority)
	assert.Len(t, decision.Reasons, 2)
}

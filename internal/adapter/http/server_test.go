package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/flood-risk-engine/internal/adapter/http"
	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

type stubProvider struct {
	ready      error
	assessment domain.Assessment
	batch      *domain.BatchResult
	nowcast    *domain.NowcastResult
}

func (s *stubProvider) CheckReadiness(_ context.Context) error { return s.ready }

func (s *stubProvider) CurrentAssessment() domain.Assessment { return s.assessment }

func (s *stubProvider) LatestBatch() (domain.BatchResult, bool) {
	if s.batch == nil {
		return domain.BatchResult{}, false
	}
	return *s.batch, true
}

func (s *stubProvider) LatestNowcast() (domain.NowcastResult, bool) {
	if s.nowcast == nil {
		return domain.NowcastResult{}, false
	}
	return *s.nowcast, true
}

func doRequest(t *testing.T, provider *stubProvider, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := httpadapter.NewServer(":0", provider, slog.Default())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Healthz(t *testing.T) {
	rec := doRequest(t, &stubProvider{}, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestServer_Readyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		rec := doRequest(t, &stubProvider{}, "/readyz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		rec := doRequest(t, &stubProvider{ready: errors.New("no analytics run has completed yet")}, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "no analytics run")
	})
}

func TestServer_Metrics(t *testing.T) {
	rec := doRequest(t, &stubProvider{}, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Assessment(t *testing.T) {
	provider := &stubProvider{
		assessment: domain.Assessment{
			RunID:        "run-1",
			GeneratedAt:  time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC),
			FloodScore:   72,
			OverallLevel: domain.RiskHigh,
			Message:      "High risk",
		},
	}

	rec := doRequest(t, provider, "/api/v1/assessment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 72, got.FloodScore)
	assert.Equal(t, domain.RiskHigh, got.OverallLevel)
}

func TestServer_Analytics(t *testing.T) {
	t.Run("no batch yet", func(t *testing.T) {
		rec := doRequest(t, &stubProvider{}, "/api/v1/analytics")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("latest batch", func(t *testing.T) {
		provider := &stubProvider{batch: &domain.BatchResult{
			RunID: "run-2",
			PerLocation: []domain.LocationResult{
				{LocationID: "idukki", Name: "Idukki Dam"},
			},
		}}

		rec := doRequest(t, provider, "/api/v1/analytics")
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.BatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "run-2", got.RunID)
		require.Len(t, got.PerLocation, 1)
	})
}

func TestServer_Nowcast(t *testing.T) {
	t.Run("no nowcast yet", func(t *testing.T) {
		rec := doRequest(t, &stubProvider{}, "/api/v1/nowcast")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("latest nowcast", func(t *testing.T) {
		provider := &stubProvider{nowcast: &domain.NowcastResult{
			RunID:          "run-3",
			EmergencyCount: 1,
			AlertLevel:     domain.RiskHigh,
		}}

		rec := doRequest(t, provider, "/api/v1/nowcast")
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.NowcastResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "run-3", got.RunID)
		assert.Equal(t, domain.RiskHigh, got.AlertLevel)
	})
}

func TestServer_UnknownMethod(t *testing.T) {
	srv := httpadapter.NewServer(":0", &stubProvider{}, slog.Default())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assessment", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

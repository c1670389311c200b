package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphogen/video-runner/internal/worker"
)

type fakeStats struct {
	stats worker.Stats
}

func (f *fakeStats) Stats() worker.Stats {
	return f.stats
}

func newTestRouter(apiKey string) http.Handler {
	h := NewHandler(&fakeStats{stats: worker.Stats{
		JobsProcessed: 7,
		JobsCompleted: 5,
		JobsFailed:    2,
		LastPollAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}})
	return NewRouter(h, RouterConfig{APIKey: apiKey})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter("secret")

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatsRequiresKey(t *testing.T) {
	router := newTestRouter("secret")

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatsRejectsWrongKey(t *testing.T) {
	router := newTestRouter("secret")

	req := httptest.NewRequest("GET", "/stats", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStatsWithAPIKeyHeader(t *testing.T) {
	router := newTestRouter("secret")

	req := httptest.NewRequest("GET", "/stats", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, float64(7), body["jobs_processed"], 1e-9)
	assert.InDelta(t, float64(5), body["jobs_completed"], 1e-9)
	assert.InDelta(t, float64(2), body["jobs_failed"], 1e-9)
}

func TestStatsWithBearerToken(t *testing.T) {
	router := newTestRouter("secret")

	req := httptest.NewRequest("GET", "/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOriginList(t *testing.T) {
	assert.Equal(t, []string{"*"}, originList(""))
	assert.Equal(t, []string{"*"}, originList(" , "))
	assert.Equal(t,
		[]string{"https://app.alphogen.com", "http://localhost:3000"},
		originList(" https://app.alphogen.com, http://localhost:3000 "))
}

func TestStatsPublicWithoutConfiguredKey(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

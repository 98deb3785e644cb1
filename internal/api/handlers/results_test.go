package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/pkg/logger"
)

// writeFixtures fills a temp results dir with one finished run.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	met := contracts.CriterionVerdict{Met: true, Reason: "ok"}
	criteria := make(map[string]contracts.CriterionVerdict)
	for _, key := range contracts.PrimaryCriteria {
		criteria[key] = met
	}
	reports := map[string]*contracts.CriteriaReport{
		"005930": {Code: "005930", Criteria: criteria, AllMet: true},
	}
	statuses := map[string]*contracts.RegimeVerdict{
		"KOSPI": {Status: contracts.RegimeBullish, Reason: "KOSPI 정배열 (현재가>MA5>MA10>MA20)"},
	}

	kisDir := filepath.Join(dir, "kis")
	require.NoError(t, os.MkdirAll(kisDir, 0o755))

	data, err := json.Marshal(reports)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(kisDir, "criteria_data.json"), data, 0o644))

	data, err = json.Marshal(statuses)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(kisDir, "market_status.json"), data, 0o644))

	return dir
}

func testRouter(h *ResultsHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/criteria", h.GetCriteria).Methods("GET")
	r.HandleFunc("/api/criteria/{code}", h.GetCriteriaForStock).Methods("GET")
	r.HandleFunc("/api/market-status", h.GetMarketStatus).Methods("GET")
	r.HandleFunc("/api/summary", h.GetSummary).Methods("GET")
	return r
}

func TestResultsHandler_GetCriteria(t *testing.T) {
	h := NewResultsHandler(writeFixtures(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/criteria", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var reports map[string]*contracts.CriteriaReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	require.Contains(t, reports, "005930")
	assert.True(t, reports["005930"].AllMet)
}

func TestResultsHandler_GetCriteriaForStock(t *testing.T) {
	h := NewResultsHandler(writeFixtures(t), logger.NewNop())
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/criteria/005930", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report contracts.CriteriaReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "005930", report.Code)

	// 없는 종목은 404
	req = httptest.NewRequest(http.MethodGet, "/api/criteria/999999", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsHandler_GetMarketStatus(t *testing.T) {
	h := NewResultsHandler(writeFixtures(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/market-status", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bullish")
}

func TestResultsHandler_GetSummary(t *testing.T) {
	h := NewResultsHandler(writeFixtures(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Total  int `json:"total"`
		AllMet int `json:"all_met"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.AllMet)
}

func TestResultsHandler_NoRunYet(t *testing.T) {
	h := NewResultsHandler(t.TempDir(), logger.NewNop())
	router := testRouter(h)

	for _, path := range []string{"/api/criteria", "/api/criteria/005930", "/api/market-status", "/api/summary"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestResultsHandler_CorruptData(t *testing.T) {
	dir := t.TempDir()
	kisDir := filepath.Join(dir, "kis")
	require.NoError(t, os.MkdirAll(kisDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(kisDir, "criteria_data.json"), []byte("{broken"), 0o644))

	h := NewResultsHandler(dir, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/criteria", nil)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

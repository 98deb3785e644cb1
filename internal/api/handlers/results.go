package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/runner"
	"github.com/wonny/avssa/pkg/logger"
)

// ResultsHandler serves the latest run's output files.
// ⭐ SSOT: 결과 조회 API는 여기서만
type ResultsHandler struct {
	resultsDir string
	logger     *logger.Logger
}

// NewResultsHandler creates a results handler rooted at the results dir.
func NewResultsHandler(resultsDir string, log *logger.Logger) *ResultsHandler {
	return &ResultsHandler{resultsDir: resultsDir, logger: log}
}

// GetCriteria returns the full latest criteria run.
func (h *ResultsHandler) GetCriteria(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.loadCriteria(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// GetCriteriaForStock returns one stock's report from the latest run.
func (h *ResultsHandler) GetCriteriaForStock(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.loadCriteria(w)
	if !ok {
		return
	}

	code := mux.Vars(r)["code"]
	report, exists := reports[code]
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "stock not found in latest run"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetMarketStatus returns the latest index regime verdicts.
func (h *ResultsHandler) GetMarketStatus(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.resultsDir, "kis", "market_status.json")
	data, err := os.ReadFile(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no market status available"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetSummary returns the aggregated met counts for the latest run.
func (h *ResultsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reports, ok := h.loadCriteria(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, runner.Summarize(reports))
}

// loadCriteria reads criteria_data.json; on failure writes the error
// response and returns ok=false.
func (h *ResultsHandler) loadCriteria(w http.ResponseWriter) (map[string]*contracts.CriteriaReport, bool) {
	path := filepath.Join(h.resultsDir, "kis", "criteria_data.json")
	data, err := os.ReadFile(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no criteria run available"})
		return nil, false
	}

	var reports map[string]*contracts.CriteriaReport
	if err := json.Unmarshal(data, &reports); err != nil {
		h.logger.WithError(err).Error("Failed to parse criteria_data.json")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt criteria data"})
		return nil, false
	}
	return reports, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

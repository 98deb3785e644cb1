package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/external/naver"
	"github.com/wonny/avssa/pkg/logger"
)

func sampleResult() *contracts.RunResult {
	met := contracts.CriterionVerdict{Met: true, Reason: "ok"}
	unmet := contracts.CriterionVerdict{Met: false, Reason: "no"}

	full := make(map[string]contracts.CriterionVerdict)
	partial := make(map[string]contracts.CriterionVerdict)
	for _, key := range contracts.PrimaryCriteria {
		full[key] = met
		partial[key] = unmet
	}
	partial[contracts.CriterionHighBreakout] = contracts.CriterionVerdict{Met: true, Reason: "52주 신고가 돌파"}

	return &contracts.RunResult{
		Date:        "2026-01-15",
		TotalStocks: 2,
		Reports: map[string]*contracts.CriteriaReport{
			"005930": {Code: "005930", Criteria: full, AllMet: true},
			"000660": {Code: "000660", Criteria: partial, AllMet: false},
		},
		MarketStatus: map[string]*contracts.RegimeVerdict{
			"KOSPI": {Status: contracts.RegimeBullish, Reason: "KOSPI 정배열 (현재가>MA5>MA10>MA20)", MAValues: map[string]float64{}},
		},
	}
}

func TestWriter_WriteRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, logger.NewNop())

	require.NoError(t, w.WriteRun(sampleResult()))

	// criteria_data.json
	data, err := os.ReadFile(filepath.Join(dir, "kis", "criteria_data.json"))
	require.NoError(t, err)
	var reports map[string]*contracts.CriteriaReport
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 2)
	assert.True(t, reports["005930"].AllMet)

	// market_status.json
	data, err = os.ReadFile(filepath.Join(dir, "kis", "market_status.json"))
	require.NoError(t, err)
	var statuses map[string]*contracts.RegimeVerdict
	require.NoError(t, json.Unmarshal(data, &statuses))
	assert.Equal(t, contracts.RegimeBullish, statuses["KOSPI"].Status)

	// 날짜별 분석 기록
	_, err = os.Stat(filepath.Join(dir, "analysis", "analysis_2026-01-15.json"))
	assert.NoError(t, err)
}

func TestWriter_WriteRun_NoMarketStatus(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, logger.NewNop())

	result := sampleResult()
	result.MarketStatus = nil
	require.NoError(t, w.WriteRun(result))

	_, err := os.Stat(filepath.Join(dir, "kis", "market_status.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_WriteMarketStatus(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, logger.NewNop())

	require.NoError(t, w.WriteMarketStatus(sampleResult().MarketStatus))

	data, err := os.ReadFile(filepath.Join(dir, "kis", "market_status.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "bullish")
}

func TestWriter_WriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, logger.NewNop())

	require.NoError(t, w.WriteMarkdown(sampleResult()))

	data, err := os.ReadFile(filepath.Join(dir, "analysis", "report_2026-01-15.md"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# AI 주식 분석 리포트")
	assert.Contains(t, content, "005930")
	assert.Contains(t, content, "8/8")
	assert.Contains(t, content, "1/8")

	// 충족 수 내림차순: 전 기준 충족 종목이 먼저
	assert.Less(t, strings.Index(content, "005930"), strings.Index(content, "000660"))
}

func TestWriter_WriteNews(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, logger.NewNop())

	news := map[string][]naver.NewsItem{
		"005930": {{Title: "삼성전자 52주 신고가", PubDate: "01-15 09:30"}},
	}
	require.NoError(t, w.WriteNews("2026-01-15", news))

	data, err := os.ReadFile(filepath.Join(dir, "analysis", "news_2026-01-15.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "52주 신고가")

	// 뉴스가 없으면 파일도 없다
	require.NoError(t, w.WriteNews("2026-01-16", nil))
	_, err = os.Stat(filepath.Join(dir, "analysis", "news_2026-01-16.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSortedByMetCount(t *testing.T) {
	result := sampleResult()
	codes := sortedByMetCount(result.Reports)
	assert.Equal(t, []string{"005930", "000660"}, codes)
}

package screener

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/avssa/internal/contracts"
	"github.com/wonny/avssa/internal/indicator"
	"github.com/wonny/avssa/pkg/logger"
)

// 심리적 저항선: 호가 단위 경계 (한국 주식 호가 단위 기준)
var tickBoundaries = []float64{
	1000, 2000, 3000, 4000, 5000,
	10000, 20000, 30000, 40000, 50000,
	100000, 200000, 300000, 400000, 500000,
	1000000,
}

// 라운드 넘버 (심리적 매물대)
var roundLevels = []float64{
	1000, 2000, 3000, 5000,
	10000, 20000, 30000, 50000,
	100000, 150000, 200000, 250000, 300000, 400000, 500000,
	600000, 700000, 800000, 900000, 1000000,
}

const (
	limitUpRate  = 29.0 // 상한가
	surgeRate    = 15.0 // 급등
	minMarketCap = 3000.0   // 3,000억원
	maxMarketCap = 100000.0 // 10조원
	shortWarning = 5.0
	shortExtreme = 10.0
)

// Evaluator runs the 8 criteria + short-selling alert against one stock
// snapshot. Every check is pure: missing data degrades to met=false with a
// reason, never an error.
// ⭐ SSOT: 종목 선정 기준 판정은 여기서만
type Evaluator struct {
	logger *logger.Logger
}

// NewEvaluator creates a stock criteria evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{logger: log}
}

// Evaluate runs all 8 criteria plus the short-selling alert for one stock.
// top30 must be fully built before any evaluation starts.
func (e *Evaluator) Evaluate(s *contracts.StockSnapshot, top30 contracts.Top30Set) *contracts.CriteriaReport {
	report := &contracts.CriteriaReport{
		Code: s.Code,
		Criteria: map[string]contracts.CriterionVerdict{
			contracts.CriterionHighBreakout:       checkHighBreakout(s.CurrentPrice, s.DailyBars, s.Week52High),
			contracts.CriterionMomentumHistory:    checkMomentumHistory(s.DailyBars),
			contracts.CriterionResistanceBreakout: checkResistanceBreakout(s.CurrentPrice, s.PrevClose),
			contracts.CriterionMAAlignment:        checkMAAlignment(s.CurrentPrice, s.DailyBars),
			contracts.CriterionSupplyDemand:       checkSupplyDemand(s.ForeignNet, s.InstitutionNet),
			contracts.CriterionProgramTrading:     checkProgramTrading(s.ProgramNetVolume),
			contracts.CriterionTop30TradingValue:  checkTop30(s.Code, top30),
			contracts.CriterionMarketCapRange:     checkMarketCap(s.MarketCap),
		},
	}

	// 공매도 경고: 데이터가 있을 때만 추가, all_met 집계에서 제외
	if s.ShortRatio > 0 {
		alert := checkShortSelling(s.ShortRatio)
		report.ShortSellingAlert = &alert
	}

	report.AllMet = report.ComputeAllMet()

	if e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"code":    s.Code,
			"met":     report.MetCount(),
			"all_met": report.AllMet,
		}).Debug("Evaluated stock criteria")
	}

	return report
}

// checkHighBreakout: 1. 전고점 돌파. 52주 신고가 또는 6개월(120영업일) 고가.
//
// bars[0]은 당일 데이터라 장중 고가가 섞이면 종가 < 고가인 날
// 전고점을 돌파하고도 미돌파로 판정된다. 당일을 제외하고 bars[1:]부터 비교.
func checkHighBreakout(currentPrice float64, bars []contracts.DailyBar, w52High float64) contracts.CriterionVerdict {
	if currentPrice <= 0 {
		return contracts.CriterionVerdict{Met: false, Reason: "현재가 데이터 없음"}
	}

	if w52High > 0 && currentPrice >= w52High {
		return contracts.CriterionVerdict{
			Met:       true,
			Is52WHigh: boolPtr(true),
			Reason:    fmt.Sprintf("52주 신고가 돌파 (현재가 %s >= 52주고가 %s)", comma(currentPrice), comma(w52High)),
		}
	}

	var sixMoHigh float64
	end := len(bars)
	if end > 121 {
		end = 121
	}
	for i := 1; i < end; i++ {
		if h := bars[i].High; h > sixMoHigh {
			sixMoHigh = h
		}
	}

	if sixMoHigh > 0 && currentPrice >= sixMoHigh {
		return contracts.CriterionVerdict{
			Met:       true,
			Is52WHigh: boolPtr(false),
			Reason:    fmt.Sprintf("6개월 고점 돌파 (현재가 %s >= 6개월고가 %s)", comma(currentPrice), comma(sixMoHigh)),
		}
	}

	return contracts.CriterionVerdict{
		Met:       false,
		Is52WHigh: boolPtr(false),
		Reason:    fmt.Sprintf("미돌파 (현재가 %s, 6개월고가 %s, 52주고가 %s)", comma(currentPrice), comma(sixMoHigh), comma(w52High)),
	}
}

// checkMomentumHistory: 2. 끼 보유. 과거 상한가(>=29%) 또는 급등(>=15%) 이력.
//
// change_rate 필드가 0으로 내려오는 경우가 대부분이라 전일종가 대비
// 등락률을 직접 계산한다. bars는 최신순이므로 [i+1]이 전일.
func checkMomentumHistory(bars []contracts.DailyBar) contracts.CriterionVerdict {
	hadLimitUp := false
	had15PctRise := false

	for i := range bars {
		cr := bars[i].ChangeRate

		if cr == 0 && i+1 < len(bars) {
			prevClose := bars[i+1].Close
			curClose := bars[i].Close
			if prevClose > 0 && curClose > 0 {
				cr = (curClose - prevClose) / prevClose * 100
			}
		}

		if cr >= limitUpRate {
			hadLimitUp = true
		}
		if cr >= surgeRate {
			had15PctRise = true
		}
	}

	var reasons []string
	if hadLimitUp {
		reasons = append(reasons, "상한가 이력 있음(>=29%)")
	}
	if had15PctRise {
		reasons = append(reasons, "급등 이력 있음(>=15%)")
	}
	reason := "급등 이력 없음"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	return contracts.CriterionVerdict{
		Met:          hadLimitUp || had15PctRise,
		HadLimitUp:   boolPtr(hadLimitUp),
		Had15PctRise: boolPtr(had15PctRise),
		Reason:       reason,
	}
}

// checkResistanceBreakout: 3. 심리적 저항선 돌파. 전일종가 < 경계 <= 현재가.
func checkResistanceBreakout(currentPrice, prevClose float64) contracts.CriterionVerdict {
	if currentPrice <= 0 || prevClose <= 0 || currentPrice <= prevClose {
		return contracts.CriterionVerdict{Met: false, Reason: "하락 또는 데이터 없음"}
	}

	var broken []float64
	for _, boundary := range allResistanceLevels() {
		if prevClose < boundary && boundary <= currentPrice {
			broken = append(broken, boundary)
		}
	}

	if len(broken) > 0 {
		shown := broken
		if len(shown) > 3 {
			shown = shown[:3]
		}
		parts := make([]string, len(shown))
		for i, b := range shown {
			parts[i] = comma(b)
		}
		return contracts.CriterionVerdict{
			Met:          true,
			BrokenLevels: shown,
			Reason:       fmt.Sprintf("저항선 돌파: %s (전일 %s → 현재 %s)", strings.Join(parts, ", "), comma(prevClose), comma(currentPrice)),
		}
	}

	return contracts.CriterionVerdict{
		Met:    false,
		Reason: fmt.Sprintf("돌파 없음 (전일 %s → 현재 %s)", comma(prevClose), comma(currentPrice)),
	}
}

// allResistanceLevels merges tick boundaries and round levels, deduped ascending.
func allResistanceLevels() []float64 {
	seen := make(map[float64]struct{}, len(tickBoundaries)+len(roundLevels))
	var levels []float64
	for _, b := range tickBoundaries {
		if _, ok := seen[b]; !ok {
			seen[b] = struct{}{}
			levels = append(levels, b)
		}
	}
	for _, b := range roundLevels {
		if _, ok := seen[b]; !ok {
			seen[b] = struct{}{}
			levels = append(levels, b)
		}
	}
	sort.Float64s(levels)
	return levels
}

// checkMAAlignment: 4. 이동평균선 정배열 (적응형).
//
// 이상적: 현재가 > MA5 > MA10 > MA20 > MA60 > MA120.
// 데이터가 부족하면 계산 가능한 MA까지만 검사하되, 최소 MA20(20일)은
// 있어야 의미 있는 판정으로 본다.
func checkMAAlignment(currentPrice float64, bars []contracts.DailyBar) contracts.CriterionVerdict {
	if currentPrice <= 0 {
		return contracts.CriterionVerdict{Met: false, Reason: "현재가 데이터 없음"}
	}

	closes := indicator.ClosesChronological(bars)
	if len(closes) < 20 {
		return contracts.CriterionVerdict{
			Met:      false,
			Reason:   fmt.Sprintf("데이터 부족 (최소 20일 필요, 현재 %d일)", len(closes)),
			MAValues: map[string]float64{},
		}
	}

	var available []int
	var missing []int
	maValues := make(map[string]float64)
	vals := []float64{currentPrice}

	for _, p := range indicator.StandardPeriods {
		ma, ok := indicator.SMA(closes, p)
		if !ok {
			missing = append(missing, p)
			continue
		}
		available = append(available, p)
		maValues[fmt.Sprintf("MA%d", p)] = round1(ma)
		vals = append(vals, ma)
	}

	aligned := strictlyDescending(vals)

	var labels []string
	for _, p := range available {
		labels = append(labels, fmt.Sprintf("MA%d", p))
	}
	partialNote := ""
	if len(missing) > 0 {
		var ms []string
		for _, p := range missing {
			ms = append(ms, fmt.Sprintf("%d", p))
		}
		partialNote = fmt.Sprintf(" (MA%s 데이터 부족으로 제외)", strings.Join(ms, ","))
	}

	if aligned {
		return contracts.CriterionVerdict{
			Met:      true,
			Reason:   fmt.Sprintf("정배열 확인 (현재가>%s)%s", strings.Join(labels, ">"), partialNote),
			MAValues: maValues,
		}
	}
	return contracts.CriterionVerdict{
		Met:      false,
		Reason:   "정배열 아님" + partialNote,
		MAValues: maValues,
	}
}

// checkSupplyDemand: 5. 외국인/기관 동시 순매수 (0은 순매수 아님).
func checkSupplyDemand(foreignNet, institutionNet float64) contracts.CriterionVerdict {
	foreignBuy := foreignNet > 0
	institutionBuy := institutionNet > 0

	parts := []string{
		fmt.Sprintf("외국인 %s(%s)", buySell(foreignBuy), signedComma(foreignNet)),
		fmt.Sprintf("기관 %s(%s)", buySell(institutionBuy), signedComma(institutionNet)),
	}

	return contracts.CriterionVerdict{
		Met:    foreignBuy && institutionBuy,
		Reason: strings.Join(parts, ", "),
	}
}

// checkProgramTrading: 6. 프로그램 순매수.
func checkProgramTrading(programNetVolume float64) contracts.CriterionVerdict {
	return contracts.CriterionVerdict{
		Met:    programNetVolume > 0,
		Reason: fmt.Sprintf("프로그램 순매수량: %s", signedComma(programNetVolume)),
	}
}

// checkTop30: 7. 거래대금 TOP30.
func checkTop30(code string, top30 contracts.Top30Set) contracts.CriterionVerdict {
	if top30.Contains(code) {
		return contracts.CriterionVerdict{Met: true, Reason: "거래대금 TOP30"}
	}
	return contracts.CriterionVerdict{Met: false, Reason: "TOP30 아님"}
}

// checkMarketCap: 8. 시가총액 적정 범위. 3,000억 ~ 10조 (억원 단위, 양끝 포함).
func checkMarketCap(marketCap float64) contracts.CriterionVerdict {
	if marketCap <= 0 {
		return contracts.CriterionVerdict{Met: false, Reason: "시가총액 데이터 없음"}
	}

	switch {
	case marketCap < minMarketCap:
		return contracts.CriterionVerdict{
			Met:    false,
			Reason: fmt.Sprintf("시가총액 %s억원 (기준 미달: 3,000억 미만)", comma(marketCap)),
		}
	case marketCap > maxMarketCap:
		return contracts.CriterionVerdict{
			Met:    false,
			Reason: fmt.Sprintf("시가총액 %s억원 (기준 초과: 10조 초과)", comma(marketCap)),
		}
	default:
		return contracts.CriterionVerdict{
			Met:    true,
			Reason: fmt.Sprintf("시가총액 %s억원 (적정 범위: 3,000억~10조)", comma(marketCap)),
		}
	}
}

// checkShortSelling: 공매도 비중 경고 (부정적 지표, all_met 제외).
//
// 기준값 5% (전체 거래량 대비): 한국 시장 평균이 1~3%이므로
// 5% 이상은 공매도 세력 집중, 10% 이상은 숏스퀴즈 위험.
func checkShortSelling(shortRatio float64) contracts.CriterionVerdict {
	if shortRatio <= 0 {
		return contracts.CriterionVerdict{Met: false, Reason: "공매도 데이터 없음"}
	}

	met := shortRatio >= shortWarning
	var reason string
	switch {
	case shortRatio >= shortExtreme:
		reason = fmt.Sprintf("공매도 %.1f%% (극단: 숏스퀴즈 위험)", shortRatio)
	case shortRatio >= shortWarning:
		reason = fmt.Sprintf("공매도 %.1f%% (경고: 세력 집중)", shortRatio)
	default:
		reason = fmt.Sprintf("공매도 %.1f%% (정상)", shortRatio)
	}
	return contracts.CriterionVerdict{Met: met, Reason: reason}
}

func strictlyDescending(vals []float64) bool {
	for i := 0; i+1 < len(vals); i++ {
		if vals[i] <= vals[i+1] {
			return false
		}
	}
	return true
}

func buySell(buy bool) string {
	if buy {
		return "순매수"
	}
	return "순매도"
}

func boolPtr(b bool) *bool { return &b }

func round1(v float64) float64 {
	if v < 0 {
		return float64(int64(v*10-0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}

package indicator

import "github.com/wonny/avssa/internal/contracts"

// 이동평균 기간 사다리: 스크리너와 지수 판정이 공유
var StandardPeriods = []int{5, 10, 20, 60, 120}

// SMA returns the arithmetic mean of the last period closes.
// Closes must be in chronological order (oldest first); callers holding
// most-recent-first bar sequences reverse before calling.
// ok is false when there is not enough history.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average over closes (oldest first):
// seeded with the simple average of the first period closes, then smoothed
// forward with k = 2/(period+1).
func EMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	var seed float64
	for _, c := range closes[:period] {
		seed += c
	}
	ema := seed / float64(period)

	k := 2.0 / float64(period+1)
	for _, c := range closes[period:] {
		ema = c*k + ema*(1-k)
	}
	return ema, true
}

// ClosesChronological extracts valid (>0) closes from a most-recent-first
// bar sequence, reversed to chronological order.
func ClosesChronological(bars []contracts.DailyBar) []float64 {
	out := make([]float64, 0, len(bars))
	for i := len(bars) - 1; i >= 0; i-- {
		if c := bars[i].Close; c > 0 {
			out = append(out, c)
		}
	}
	return out
}

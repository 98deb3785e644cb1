package contracts

// DailyBar is a single day of OHLCV data.
// Bar sequences are ordered most-recent-first: index 0 is today.
type DailyBar struct {
	Date       string  `json:"date"` // YYYYMMDD
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     int64   `json:"volume"`
	ChangeRate float64 `json:"change_rate,omitempty"` // 전일 대비 등락률(%), 0으로 내려오는 경우가 많음
}

// IndexBar is a DailyBar for a market index (no per-symbol fields).
type IndexBar = DailyBar

// StockSnapshot is the fully materialized per-stock input for one evaluation
// run. It is assembled by the acquisition layer and read-only afterwards.
type StockSnapshot struct {
	Code         string  `json:"code"`
	Name         string  `json:"name,omitempty"`
	CurrentPrice float64 `json:"current_price"`
	PrevClose    float64 `json:"prev_close"`
	Week52High   float64 `json:"high_52week"`
	MarketCap    float64 `json:"market_cap"` // 억원

	// 최신순 정렬 (DailyBars[0] = 당일)
	DailyBars []DailyBar `json:"daily_bars"`

	ForeignNet       float64 `json:"foreign_net"`
	InstitutionNet   float64 `json:"institution_net"`
	ProgramNetVolume float64 `json:"program_net_volume"`

	// 공매도 비중(%). 0 이하면 데이터 없음으로 취급.
	ShortRatio float64 `json:"short_ratio,omitempty"`
}

// RankingEntry is one row of a per-market trading-value ranking feed.
type RankingEntry struct {
	Code         string  `json:"code"`
	Name         string  `json:"name,omitempty"`
	TradingValue float64 `json:"trading_value"`
}

// Top30Set is the set of the 30 highest trading-value codes across markets,
// rebuilt once per batch run.
type Top30Set map[string]struct{}

// Contains reports whether code is in the set.
func (s Top30Set) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

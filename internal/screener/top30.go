package screener

import (
	"sort"

	"github.com/wonny/avssa/internal/contracts"
)

// top30Size is the number of highest trading-value codes kept per run.
const top30Size = 30

// BuildTop30 builds the cross-market trading-value TOP30 code set.
//
// All markets' ranking entries are concatenated and stable-sorted by trading
// value descending; the first 30 codes form the set. Ties keep input order
// (implementation-defined). A code ranked in two markets is included once.
func BuildTop30(rankings map[string][]contracts.RankingEntry) contracts.Top30Set {
	var all []contracts.RankingEntry
	for _, market := range sortedMarkets(rankings) {
		all = append(all, rankings[market]...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TradingValue > all[j].TradingValue
	})

	set := make(contracts.Top30Set, top30Size)
	for i := 0; i < len(all) && i < top30Size; i++ {
		set[all[i].Code] = struct{}{}
	}
	return set
}

// sortedMarkets returns market keys in deterministic order so that the
// concatenation (and thus tie-breaking) does not depend on map iteration.
func sortedMarkets(rankings map[string][]contracts.RankingEntry) []string {
	markets := make([]string, 0, len(rankings))
	for m := range rankings {
		markets = append(markets, m)
	}
	sort.Strings(markets)
	return markets
}

package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allMetCriteria() map[string]CriterionVerdict {
	criteria := make(map[string]CriterionVerdict, len(PrimaryCriteria))
	for _, key := range PrimaryCriteria {
		criteria[key] = CriterionVerdict{Met: true, Reason: "ok"}
	}
	return criteria
}

func TestCriteriaReport_ComputeAllMet(t *testing.T) {
	r := &CriteriaReport{Code: "005930", Criteria: allMetCriteria()}
	assert.True(t, r.ComputeAllMet())

	// 하나만 빠져도 false
	r.Criteria[CriterionMarketCapRange] = CriterionVerdict{Met: false}
	assert.False(t, r.ComputeAllMet())
}

func TestCriteriaReport_ComputeAllMet_MissingKey(t *testing.T) {
	criteria := allMetCriteria()
	delete(criteria, CriterionProgramTrading)

	r := &CriteriaReport{Criteria: criteria}
	assert.False(t, r.ComputeAllMet())
}

func TestCriteriaReport_ComputeAllMet_IgnoresAlert(t *testing.T) {
	r := &CriteriaReport{
		Criteria:          allMetCriteria(),
		ShortSellingAlert: &CriterionVerdict{Met: true, Reason: "공매도 12.0% (극단: 숏스퀴즈 위험)"},
	}
	assert.True(t, r.ComputeAllMet())
}

func TestCriteriaReport_MetCount(t *testing.T) {
	criteria := allMetCriteria()
	criteria[CriterionTop30TradingValue] = CriterionVerdict{Met: false}
	criteria[CriterionSupplyDemand] = CriterionVerdict{Met: false}

	r := &CriteriaReport{Criteria: criteria}
	assert.Equal(t, 6, r.MetCount())
}

func TestCriteriaReport_JSON(t *testing.T) {
	r := &CriteriaReport{
		Code:     "005930",
		Criteria: allMetCriteria(),
		AllMet:   true,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	// criterion별 부가 필드는 생략되어야 한다
	assert.NotContains(t, string(data), "is_52w_high")
	assert.NotContains(t, string(data), "short_selling_alert")
	assert.Contains(t, string(data), `"all_met":true`)
}

func TestTop30Set_Contains(t *testing.T) {
	set := Top30Set{"005930": {}}
	assert.True(t, set.Contains("005930"))
	assert.False(t, set.Contains("000660"))

	var empty Top30Set
	assert.False(t, empty.Contains("005930"))
}

func TestPrimaryCriteria_Fixed(t *testing.T) {
	require.Len(t, PrimaryCriteria, 8)
	assert.Equal(t, CriterionHighBreakout, PrimaryCriteria[0])
	assert.Equal(t, CriterionMarketCapRange, PrimaryCriteria[7])
}

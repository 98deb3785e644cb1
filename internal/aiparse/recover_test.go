package aiparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Code   string `json:"code"`
	Signal string `json:"signal"`
}

func TestParse_FencedBlock(t *testing.T) {
	text := "분석 결과입니다.\n```json\n{\"code\": \"005930\", \"signal\": \"buy\"}\n```\n이상입니다."

	var v verdict
	require.NoError(t, Parse(text, &v))
	assert.Equal(t, "005930", v.Code)
	assert.Equal(t, "buy", v.Signal)
}

func TestParse_FencedBlockWithoutLanguage(t *testing.T) {
	text := "```\n{\"code\": \"005930\"}\n```"

	var v verdict
	require.NoError(t, Parse(text, &v))
	assert.Equal(t, "005930", v.Code)
}

func TestParse_UnclosedFence(t *testing.T) {
	// 스트리밍 중단으로 닫는 코드블록이 잘린 응답
	text := "```json\n{\"code\": \"005930\", \"signal\": \"hold\"}"

	var v verdict
	require.NoError(t, Parse(text, &v))
	assert.Equal(t, "hold", v.Signal)
}

func TestParse_BracesInProse(t *testing.T) {
	text := `다음과 같이 판단합니다: {"code": "000660", "signal": "sell"} 추가 설명...`

	var v verdict
	require.NoError(t, Parse(text, &v))
	assert.Equal(t, "000660", v.Code)
}

func TestParse_NestedBracesAndStrings(t *testing.T) {
	text := `결과 {"code": "005930", "signal": "reason is \"breakout {strong}\""} 끝`

	var v verdict
	require.NoError(t, Parse(text, &v))
	assert.Equal(t, `reason is "breakout {strong}"`, v.Signal)
}

func TestParse_RawJSON(t *testing.T) {
	var v verdict
	require.NoError(t, Parse(`{"code": "005930"}`, &v))
	assert.Equal(t, "005930", v.Code)
}

func TestParse_ControlCharacterCleanup(t *testing.T) {
	text := "{\"code\": \"005\x0093\x000\"}"

	var v verdict
	require.NoError(t, Parse(text, &v))
	assert.Equal(t, "005930", v.Code)
}

func TestParse_Empty(t *testing.T) {
	var v verdict
	assert.Error(t, Parse("", &v))
	assert.Error(t, Parse("   \n  ", &v))
}

func TestParse_NoJSON(t *testing.T) {
	var v verdict
	assert.Error(t, Parse("오늘은 분석할 수 없습니다.", &v))
}

func TestParseArray_Complete(t *testing.T) {
	var vs []verdict
	require.NoError(t, ParseArray(`[{"code": "A"}, {"code": "B"}]`, &vs))
	require.Len(t, vs, 2)
	assert.Equal(t, "B", vs[1].Code)
}

func TestParseArray_TruncatedKeepsCompleteElements(t *testing.T) {
	// 두 번째 요소 중간에서 잘린 응답: 완결된 첫 요소만 살린다
	text := `[{"code": "A", "signal": "buy"}, {"code": "B", "sig`

	var vs []verdict
	require.NoError(t, ParseArray(text, &vs))
	require.Len(t, vs, 1)
	assert.Equal(t, "A", vs[0].Code)
}

func TestParseArray_TruncatedInFence(t *testing.T) {
	text := "```json\n[{\"code\": \"A\"}, {\"code\": \"B\"}, {\"co"

	var vs []verdict
	require.NoError(t, ParseArray(text, &vs))
	require.Len(t, vs, 2)
}

func TestParseArray_NoArray(t *testing.T) {
	var vs []verdict
	assert.Error(t, ParseArray("배열이 없습니다", &vs))
}

package screener

import (
	"fmt"
	"math"
	"strings"
)

// comma formats v as a thousands-separated integer string (소수점 버림 후 반올림).
func comma(v float64) string {
	neg := v < 0
	n := int64(math.Round(math.Abs(v)))

	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// signedComma is comma with an explicit leading sign, matching 수급 표기.
func signedComma(v float64) string {
	if v < 0 {
		return comma(v)
	}
	return "+" + comma(v)
}

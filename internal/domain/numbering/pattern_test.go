package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderPattern(t *testing.T) {
	at := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		pattern string
		counter int64
		partner string
		want    string
	}{
		{"year and counter", "FV-[YYYY]-[CCCC]", 7, "", "FV-2026-0007"},
		{"short year", "D[YY][MM]-[CC]", 42, "", "D2603-42"},
		{"wide counter", "[CCCCCC]", 1, "", "000001"},
		{"counter overflows width", "[CC]", 123, "", "123"},
		{"partner tag", "[PARTNER]/[YYYY]/[CCC]", 9, "ACME", "ACME/2026/009"},
		{"no tags", "PLAIN", 5, "X", "PLAIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderPattern(tt.pattern, at, tt.counter, tt.partner)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeKey(t *testing.T) {
	at := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", ScopeKey(ResetNever, at))
	assert.Equal(t, "2026", ScopeKey(ResetYearly, at))
	assert.Equal(t, "2026-01", ScopeKey(ResetMonthly, at))
}

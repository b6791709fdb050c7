package numbering

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var counterTagRe = regexp.MustCompile(`\[C+\]`)

// RenderPattern substitutes recognized tags in a scheme pattern.
//
// [YYYY] and [YY] take the year from the document date, [MM] the month.
// [CCCC] inserts the counter value zero-padded to the tag's width.
// [PARTNER] inserts the partner code.
func RenderPattern(pattern string, at time.Time, counter int64, partnerCode string) string {
	out := pattern
	out = strings.ReplaceAll(out, "[YYYY]", at.Format("2006"))
	out = strings.ReplaceAll(out, "[YY]", at.Format("06"))
	out = strings.ReplaceAll(out, "[MM]", at.Format("01"))
	out = strings.ReplaceAll(out, "[PARTNER]", partnerCode)

	out = counterTagRe.ReplaceAllStringFunc(out, func(tag string) string {
		width := len(tag) - 2 // strip brackets
		return fmt.Sprintf("%0*d", width, counter)
	})

	return out
}

// ScopeKey computes the counter partition key for a reset period.
// A scheme that never resets uses a single constant scope.
func ScopeKey(period ResetPeriod, at time.Time) string {
	switch period {
	case ResetYearly:
		return at.Format("2006")
	case ResetMonthly:
		return at.Format("2006-01")
	default:
		return ""
	}
}

package core

// convert.go provides shared cell parsing for the row classifier.
//
// These functions handle the messy reality of user-provided CSV data:
// thousands separators in numbers, bilingual boolean words, and several
// date formats. Numeric parsing distinguishes "absent" (nil) from "present
// but garbage" (NaN) so validation can reject garbage explicitly instead of
// silently treating it as missing.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"20060102",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseNumber converts a cell to a number. Empty input yields nil (absent);
// non-numeric non-empty input yields a NaN pointer so callers can report
// "invalid number" rather than "missing".
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsInf(f, 0) {
		nan := math.NaN()
		return &nan
	}
	return &f
}

var (
	trueWords  = map[string]bool{"true": true, "t": true, "1": true, "y": true, "yes": true, "enable": true, "enabled": true, "활성": true, "사용": true}
	falseWords = map[string]bool{"false": true, "f": true, "0": true, "n": true, "no": true, "disable": true, "disabled": true, "비활성": true, "미사용": true}
)

// parseBool converts a cell to a boolean. Accepts English and Korean
// synonyms; anything unrecognized yields nil (absent).
func parseBool(s string) *bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case trueWords[s]:
		v := true
		return &v
	case falseWords[s]:
		v := false
		return &v
	}
	return nil
}

// parseDate parses a calendar timestamp in any supported layout.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// roundQuantity floors a value at zero and rounds it to an integer.
// Stock quantities are whole, non-negative units.
func roundQuantity(f float64) int {
	if f < 0 {
		return 0
	}
	return int(math.Round(f))
}

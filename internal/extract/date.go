package extract

import (
	"regexp"
	"strings"
	"time"
)

// datePattern matches date-shaped tokens: day/month pairs with a 2- or
// 4-digit year, or an ISO-ordered year-first form, with / or - separators.
var datePattern = regexp.MustCompile(`\b((?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4})|(?:\d{4}[-/]\d{1,2}[-/]\d{1,2}))\b`)

// dateLayouts are tried in order, so ambiguous day/month values resolve
// US-style first. Unpadded layouts accept padded input as well.
var dateLayouts = []string{
	"1/2/2006",
	"2/1/2006",
	"2006-1-2",
	"1-2-2006",
	"2-1-2006",
	"1/2/06",
	"2/1/06",
	"2006/1/2",
}

// monthNameLayouts cover written-out statement dates.
var monthNameLayouts = []string{
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	"2006-01-02T15:04:05",
}

// ParseDate parses a statement date against the supported layouts.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range monthNameLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

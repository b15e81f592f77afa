package feeds

import (
	"regexp"
	"strings"
	"time"
)

// dateLayouts covers the published-date shapes seen across real feeds.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006",
	"Monday, 2 Jan 2006",
	"Monday, 2 January 2006",
	"2 Jan 2006",
	"2 January 2006",
	"January 2, 2006",
}

// embeddedDatePatterns extract a recognizable date substring from free-form
// text, tried in order: RFC-822 style with weekday, "DD Mon YYYY", ISO date.
var embeddedDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*,?\s+\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}`),
	regexp.MustCompile(`\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
}

// IsToday reports whether the published string falls on the current calendar
// day. It tolerates canonical ISO dates, a range of known layouts, and dates
// embedded in surrounding text. Anything unrecognizable is "not today" --
// the classifier never errors.
//
// Days are compared in local time without normalizing the feed's own
// timezone, so items published near midnight can land on the wrong side of
// the boundary.
func IsToday(published string) bool {
	return isTodayAt(published, time.Now())
}

func isTodayAt(published string, now time.Time) bool {
	published = strings.TrimSpace(published)
	if published == "" {
		return false
	}

	if strings.Contains(published, now.Format("2006-01-02")) {
		return true
	}

	if t, ok := parsePublished(published); ok {
		return sameDay(t, now)
	}

	for _, re := range embeddedDatePatterns {
		match := re.FindString(published)
		if match == "" {
			continue
		}
		if t, ok := parsePublished(match); ok {
			return sameDay(t, now)
		}
	}

	return false
}

// parsePublished tries each known layout against the whole string.
func parsePublished(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sameDay compares calendar dates as parsed, without timezone conversion.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

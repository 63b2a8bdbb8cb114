package parse

import (
	"regexp"
	"time"
)

// datePattern pairs a date regex with the time regex that accompanies it in
// the same template family.
type datePattern struct {
	date        *regexp.Regexp
	layout      string
	clock       *regexp.Regexp
	clockLayout string
}

// datePatterns is ordered long-form first: four-digit-year formats with
// seconds are tried before the two-digit-year short forms, so a short
// pattern can never truncate a long date. The first matching date pattern's
// associated time pattern is the one paired with it.
var datePatterns = []datePattern{
	{
		date:        regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`),
		layout:      "02/01/2006",
		clock:       regexp.MustCompile(`\b(\d{2}:\d{2}:\d{2})\b`),
		clockLayout: "15:04:05",
	},
	{
		date:        regexp.MustCompile(`\b(\d{2}-[A-Za-z]{3}-\d{4})\b`),
		layout:      "02-Jan-2006",
		clock:       regexp.MustCompile(`\b(\d{2}:\d{2}:\d{2})\b`),
		clockLayout: "15:04:05",
	},
	{
		date:        regexp.MustCompile(`\b(\d{2}/\d{2}/\d{2})\b`),
		layout:      "02/01/06",
		clock:       regexp.MustCompile(`\b(\d{2}:\d{2})\b`),
		clockLayout: "15:04",
	},
	{
		date:        regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{2})\b`),
		layout:      "02.01.06",
		clock:       regexp.MustCompile(`\b(\d{2}:\d{2})\b`),
		clockLayout: "15:04",
	},
}

// extractDate finds the first matching date pattern in the text and pairs it
// with its associated time pattern. A date without a time yields midnight in
// loc. Returns false when no date pattern matches at all; the caller falls
// back to the current instant.
func extractDate(text string, loc *time.Location) (time.Time, bool) {
	for _, p := range datePatterns {
		m := p.date.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		t, err := time.ParseInLocation(p.layout, m[1], loc)
		if err != nil {
			continue
		}
		if tm := p.clock.FindStringSubmatch(text); tm != nil {
			if clock, err := time.ParseInLocation(p.clockLayout, tm[1], loc); err == nil {
				t = time.Date(t.Year(), t.Month(), t.Day(),
					clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
			}
		}
		return t, true
	}
	return time.Time{}, false
}

// Package granule implements the per-dataset granule index: a sorted list
// of (t_start, t_end, opendap_url) tuples, incrementally extended as time
// ranges are requested, plus the filename-based date-range fallback parser
// used when a feature carries no usable `properties.date` field.
package granule

import (
	"regexp"
	"time"
)

// datePattern is one entry of the priority-ordered filename date-format
// list: a precompiled matcher, the Go reference layout it corresponds to,
// and the duration added to the parsed instant (minus one second) to
// derive an end time when none is given explicitly.
type datePattern struct {
	re     *regexp.Regexp
	layout string
	delta  func(t time.Time) time.Time
}

// datePatterns is ordered by specificity, most precise first, so a longer
// numeric run is never mistaken for a shorter format.
var datePatterns = []datePattern{
	{regexp.MustCompile(`^\d{14}$`), "20060102150405", func(t time.Time) time.Time { return t }},
	{regexp.MustCompile(`^\d{12}$`), "200601021504", func(t time.Time) time.Time { return t.Add(time.Minute - time.Second) }},
	{regexp.MustCompile(`^\d{8}$`), "20060102", func(t time.Time) time.Time { return t.AddDate(0, 0, 1).Add(-time.Second) }},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), "2006-01-02", func(t time.Time) time.Time { return t.AddDate(0, 0, 1).Add(-time.Second) }},
	{regexp.MustCompile(`^\d{6}$`), "200601", func(t time.Time) time.Time { return t.AddDate(0, 1, 0).Add(-time.Second) }},
	{regexp.MustCompile(`^\d{4}$`), "2006", func(t time.Time) time.Time { return t.AddDate(1, 0, 0).Add(-time.Second) }},
}

// digitsRun extracts the first maximal run of digits (optionally
// hyphen-separated as YYYY-MM-DD) from a filename.
var digitsRun = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{4,14}`)

// ParseFilenameDateRange scans filename for the first substring matching
// one of the six canonical date formats, tried in priority order, and
// returns the resulting [start, end] range. ok is false if nothing in
// filename matches any pattern.
func ParseFilenameDateRange(filename string) (start, end time.Time, ok bool) {
	candidates := digitsRun.FindAllString(filename, -1)
	for _, candidate := range candidates {
		for _, p := range datePatterns {
			if !p.re.MatchString(candidate) {
				continue
			}
			t, err := time.Parse(p.layout, candidate)
			if err != nil {
				continue
			}
			return t.UTC(), p.delta(t).UTC(), true
		}
	}
	return time.Time{}, time.Time{}, false
}

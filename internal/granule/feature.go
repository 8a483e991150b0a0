package granule

import (
	"strings"
	"time"

	"github.com/xcube-dev/xcube-cci/internal/opensearch"
)

// EntryFromFeature converts one OpenSearch granule feature into an Entry.
// The time pair is read from properties.date ("<start>/<end>", RFC 3339)
// and, when that field is missing or unparsable, recovered from the
// feature's identifier via ParseFilenameDateRange. A feature carrying no
// Opendap link or no recoverable time pair is skipped: ok is false.
func EntryFromFeature(f opensearch.Feature) (entry Entry, ok bool) {
	url := f.OpendapURL()
	if url == "" {
		return Entry{}, false
	}

	start, end, ok := parsePropertiesDate(f.Properties.Date)
	if !ok {
		start, end, ok = ParseFilenameDateRange(f.Properties.Identifier)
	}
	if !ok {
		return Entry{}, false
	}
	return Entry{TStart: start, TEnd: end, URL: url}, true
}

func parsePropertiesDate(date string) (start, end time.Time, ok bool) {
	parts := strings.SplitN(date, "/", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}
	s, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	e, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}

package granule

import "time"

// Entry is one granule: a single remote file covering [TStart, TEnd].
type Entry struct {
	TStart time.Time
	TEnd   time.Time
	URL    string
}

// Package timerange plans the synthetic time axis for an opened dataset:
// regular day/month/year windows computed directly, or irregular cadences
// (satellite-orbit, 5/8/15-day, climatology) resolved by delegating to the
// dataset's granule index.
package timerange

import (
	"context"
	"fmt"
	"time"

	"github.com/xcube-dev/xcube-cci/internal/granule"
)

// Window is one emitted time window: a half-open [Start, End) interval.
// The exposed `time` coordinate value is its midpoint; `time_bnds` is
// (Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Midpoint returns Start + (End-Start)/2, the value materialised in the
// synthetic `time` coordinate array.
func (w Window) Midpoint() time.Time {
	return w.Start.Add(w.End.Sub(w.Start) / 2)
}

// regularFrequencies is the set of frequency tokens planned directly
// rather than via the granule index.
var regularFrequencies = map[string]bool{"day": true, "month": true, "year": true, "mon": true, "yr": true}

// Plan computes the list of windows covering [t0, t1] for frequency. "day",
// "month" and "year" (and their "mon"/"yr" synonyms) synthesise regular,
// calendar-aligned windows directly; every other frequency token delegates
// to idx, which resolves irregular cadences from the dataset's actual
// granule boundaries.
func Plan(ctx context.Context, frequency string, t0, t1 time.Time, idx *granule.Index) ([]Window, error) {
	// An empty request range collapses the regular planners' calendar
	// alignment: emit exactly one window starting at t0 itself rather than
	// at its enclosing period boundary.
	if !t1.After(t0) {
		switch frequency {
		case "day":
			return []Window{{Start: t0, End: t0.AddDate(0, 0, 1)}}, nil
		case "month", "mon":
			return []Window{{Start: t0, End: t0.AddDate(0, 1, 0)}}, nil
		case "year", "yr":
			return []Window{{Start: t0, End: t0.AddDate(1, 0, 0)}}, nil
		}
	}

	switch frequency {
	case "day":
		return planDaily(t0, t1), nil
	case "month", "mon":
		return planMonthly(t0, t1), nil
	case "year", "yr":
		return planYearly(t0, t1), nil
	default:
		return planIrregular(ctx, t0, t1, idx)
	}
}

// planDaily emits one window per UTC calendar day touching [t0, t1].
func planDaily(t0, t1 time.Time) []Window {
	start := time.Date(t0.Year(), t0.Month(), t0.Day(), 0, 0, 0, 0, time.UTC)
	var windows []Window
	for !start.After(t1) {
		end := start.AddDate(0, 0, 1)
		windows = append(windows, Window{Start: start, End: end})
		start = end
	}
	if len(windows) == 0 {
		windows = append(windows, Window{Start: start, End: start.AddDate(0, 0, 1)})
	}
	return windows
}

// planMonthly emits one window per calendar month touching [t0, t1],
// aligned to month-start.
func planMonthly(t0, t1 time.Time) []Window {
	start := time.Date(t0.Year(), t0.Month(), 1, 0, 0, 0, 0, time.UTC)
	var windows []Window
	for !start.After(t1) {
		end := start.AddDate(0, 1, 0)
		windows = append(windows, Window{Start: start, End: end})
		start = end
	}
	if len(windows) == 0 {
		windows = append(windows, Window{Start: start, End: start.AddDate(0, 1, 0)})
	}
	return windows
}

// planYearly emits one window per calendar year touching [t0, t1], aligned
// to January 1st.
func planYearly(t0, t1 time.Time) []Window {
	start := time.Date(t0.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	var windows []Window
	for !start.After(t1) {
		end := start.AddDate(1, 0, 0)
		windows = append(windows, Window{Start: start, End: end})
		start = end
	}
	if len(windows) == 0 {
		windows = append(windows, Window{Start: start, End: start.AddDate(1, 0, 0)})
	}
	return windows
}

// planIrregular delegates to the granule index and returns its resolved
// (t_start, t_end) pairs directly as windows.
func planIrregular(ctx context.Context, t0, t1 time.Time, idx *granule.Index) ([]Window, error) {
	if idx == nil {
		return nil, fmt.Errorf("timerange: irregular frequency requires a granule index")
	}
	entries, err := idx.Query(ctx, t0, t1)
	if err != nil {
		return nil, fmt.Errorf("timerange: querying granule index: %w", err)
	}
	windows := make([]Window, 0, len(entries))
	for _, e := range entries {
		windows = append(windows, Window{Start: e.TStart, End: e.TEnd})
	}
	return windows, nil
}

package granule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Fetcher issues one OpenSearch granule query. A nil t0/t1 means "no date
// filter" — the fallback the index uses when a filtered query returns no
// results.
type Fetcher func(ctx context.Context, t0, t1 *time.Time) ([]Entry, error)

// Index is the per-dataset granule index: a sorted, non-overlapping list
// of entries plus the [coveredLo, coveredHi] range that has actually been
// queried. Go has no single-scheduler-thread guarantee, so unlike the
// upstream model this Index serialises Query calls with
// a mutex.
type Index struct {
	mu        sync.Mutex
	fetch     Fetcher
	entries   []Entry
	coveredLo *time.Time
	coveredHi *time.Time
}

// NewIndex builds an empty Index backed by fetch.
func NewIndex(fetch Fetcher) *Index {
	return &Index{fetch: fetch}
}

// Query ensures the index covers [t0, t1], extending it on either end as
// needed, and returns the sorted sublist of entries fully contained within
// [t0, t1].
func (idx *Index) Query(ctx context.Context, t0, t1 time.Time) ([]Entry, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.coveredLo == nil {
		entries, err := idx.fetch(ctx, &t0, &t1)
		if err != nil {
			return nil, fmt.Errorf("granule: initial fetch: %w", err)
		}
		if len(entries) == 0 {
			entries, err = idx.fetch(ctx, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("granule: unfiltered fallback fetch: %w", err)
			}
		}
		sortEntries(entries)
		idx.entries = entries
		lo, hi := t0, t1
		idx.coveredLo, idx.coveredHi = &lo, &hi
	} else {
		if t0.Before(*idx.coveredLo) {
			lo := *idx.coveredLo
			extra, err := idx.fetch(ctx, &t0, &lo)
			if err != nil {
				return nil, fmt.Errorf("granule: extending lower bound: %w", err)
			}
			idx.entries = mergeSorted(extra, idx.entries)
			idx.coveredLo = &t0
		}
		if t1.After(*idx.coveredHi) {
			hi := *idx.coveredHi
			extra, err := idx.fetch(ctx, &hi, &t1)
			if err != nil {
				return nil, fmt.Errorf("granule: extending upper bound: %w", err)
			}
			idx.entries = mergeSorted(idx.entries, extra)
			idx.coveredHi = &t1
		}
	}

	return idx.bisect(t0, t1), nil
}

// bisect returns the sublist of entries with TStart >= t0 and TEnd <= t1,
// located via binary search since entries is kept sorted by TStart.
func (idx *Index) bisect(t0, t1 time.Time) []Entry {
	lo := sort.Search(len(idx.entries), func(i int) bool {
		return !idx.entries[i].TStart.Before(t0)
	})
	hi := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].TStart.After(t1)
	})
	result := make([]Entry, 0, hi-lo)
	for _, e := range idx.entries[lo:hi] {
		if !e.TEnd.After(t1) {
			result = append(result, e)
		}
	}
	return result
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].TStart.Before(entries[j].TStart) })
}

// mergeSorted merges two already-sorted-by-TStart slices, matching the
// index's "prepend/append then re-sort merge" extension semantics.
func mergeSorted(a, b []Entry) []Entry {
	merged := make([]Entry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].TStart.Before(b[j].TStart) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

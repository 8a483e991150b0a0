package opensearch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentPages bounds the paginator's fan-out.
const maxConcurrentPages = 4

// Getter issues a single GET and returns the response body; satisfied by
// *httpx.Client.Get, decoupled here so this package stays free of the HTTP
// retry concern.
type Getter func(ctx context.Context, url string) ([]byte, error)

// List fetches every feature matching query from endpoint, determining the
// page count from the first page's totalResults and fetching the remaining
// pages with a concurrency cap of maxConcurrentPages.
func List(ctx context.Context, get Getter, endpoint string, query Query) ([]Feature, error) {
	var all []Feature
	_, err := Paginate(ctx, get, endpoint, query, struct{}{}, func(_ struct{}, features []Feature) {
		all = append(all, features...)
	})
	return all, err
}

// FetchPage fetches and decodes a single page of query's results at the
// given page number and page size. Exported so callers needing a single
// small page (the catalog aggregator's maximumRecords=1 "first granule"
// lookup) don't have to go through the full paginator.
func FetchPage(ctx context.Context, get Getter, endpoint string, query Query, startPage, maximumRecords int) (FeatureCollection, error) {
	body, err := get(ctx, query.URL(endpoint, startPage, maximumRecords))
	if err != nil {
		return FeatureCollection{}, fmt.Errorf("opensearch: fetching page %d: %w", startPage, err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("opensearch: decoding page %d: %w", startPage, err)
	}
	return fc, nil
}

// Paginate runs query against endpoint and folds every page's features into
// acc via extend, so the paginator itself stays oblivious to the
// accumulator's shape (a catalogue map, a granule list, ...), mirroring the
// upstream extender callback contract.
func Paginate[T any](ctx context.Context, get Getter, endpoint string, query Query, acc T, extend func(acc T, features []Feature)) (T, error) {
	first, err := FetchPage(ctx, get, endpoint, query, 1, defaultMaximumRecords)
	if err != nil {
		return acc, err
	}

	var mu sync.Mutex
	mu.Lock()
	extend(acc, first.Features)
	mu.Unlock()

	totalPages := (first.TotalResults + defaultMaximumRecords - 1) / defaultMaximumRecords
	if totalPages <= 1 {
		return acc, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for page := 2; page <= totalPages; page++ {
		page := page
		g.Go(func() error {
			fc, err := FetchPage(gctx, get, endpoint, query, page, defaultMaximumRecords)
			if err != nil {
				return err
			}
			mu.Lock()
			extend(acc, fc.Features)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return acc, err
	}
	return acc, nil
}

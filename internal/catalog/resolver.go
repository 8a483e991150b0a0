package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/xcube-dev/xcube-cci/internal/granule"
	"github.com/xcube-dev/xcube-cci/internal/odd"
	"github.com/xcube-dev/xcube-cci/internal/opendap"
	"github.com/xcube-dev/xcube-cci/internal/opensearch"
)

// maxParallelFeatureLoads bounds EnsureKnownAll's per-feature fan-out.
const maxParallelFeatureLoads = 4

// cacheSize bounds the in-process parent-id/metadata caches. The portal
// catalogs a few hundred datasets; this comfortably holds all of them for
// the store's lifetime.
const cacheSize = 4096

// Resolver maps DRS ids to their catalog entry: the OpenSearch parent id
// (the feature identifier advertising that id) and the aggregated Metadata
// record, both cached in-process.
type Resolver struct {
	Get                   opensearch.Getter
	Endpoint              string
	Aggregator            *Aggregator
	Exclusions            *Exclusions
	OnlyConsiderCubeReady bool

	mu        sync.Mutex
	parentIDs *lru.Cache[string, string]
	metadata  *lru.Cache[string, *Metadata]
}

// NewResolver builds a Resolver. exclusions may be nil to exclude nothing.
func NewResolver(get opensearch.Getter, endpoint string, agg *Aggregator, exclusions *Exclusions, onlyConsiderCubeReady bool) *Resolver {
	parentIDs, _ := lru.New[string, string](cacheSize)
	metadata, _ := lru.New[string, *Metadata](cacheSize)
	return &Resolver{
		Get: get, Endpoint: endpoint, Aggregator: agg, Exclusions: exclusions,
		OnlyConsiderCubeReady: onlyConsiderCubeReady,
		parentIDs:             parentIDs,
		metadata:              metadata,
	}
}

// EnsureKnown resolves drsID: if it isn't already cached, it issues one
// OpenSearch query `parentIdentifier=cci & drsId=<drsID>`, loads every
// returned feature, and installs one catalog entry per DRS id the feature
// advertises.
func (r *Resolver) EnsureKnown(ctx context.Context, drsID string) (*Metadata, error) {
	if m, ok := r.cachedMetadata(drsID); ok {
		return m, nil
	}

	q := opensearch.Query{ParentIdentifier: "cci", DRSId: drsID}
	features, err := opensearch.List(ctx, r.Get, r.Endpoint, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: resolving %s: %w", drsID, err)
	}
	for _, f := range features {
		if err := r.loadFeature(ctx, f); err != nil {
			return nil, err
		}
	}

	if m, ok := r.cachedMetadata(drsID); ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, drsID)
}

// EnsureKnownAll resolves every dataset the portal advertises, loading up
// to maxParallelFeatureLoads features concurrently.
func (r *Resolver) EnsureKnownAll(ctx context.Context) error {
	q := opensearch.Query{ParentIdentifier: "cci"}
	features, err := opensearch.List(ctx, r.Get, r.Endpoint, q)
	if err != nil {
		return fmt.Errorf("catalog: listing all datasets: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFeatureLoads)
	for _, f := range features {
		f := f
		g.Go(func() error { return r.loadFeature(gctx, f) })
	}
	return g.Wait()
}

// loadFeature reads a feature's ODD/descxml documents in parallel,
// harmonises fields, and installs one catalog entry per DRS id it
// advertises, honouring the exclusion lists.
func (r *Resolver) loadFeature(ctx context.Context, f opensearch.Feature) error {
	var oddBody, descxmlBody []byte

	g, gctx := errgroup.WithContext(ctx)
	if u := f.ODDURL(); u != "" {
		g.Go(func() error {
			b, err := r.Get(gctx, u)
			if err != nil {
				return fmt.Errorf("catalog: fetching odd: %w", err)
			}
			oddBody = b
			return nil
		})
	}
	if u := f.DescxmlURL(); u != "" {
		g.Go(func() error {
			b, err := r.Get(gctx, u)
			if err != nil {
				return fmt.Errorf("catalog: fetching descxml: %w", err)
			}
			descxmlBody = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	oddFields := odd.Parse(oddBody)
	descxmlFields := odd.ParseDescxml(descxmlBody)

	drsIDs := oddFields.Lists["drsIds"]
	if len(drsIDs) == 0 {
		if v, ok := oddFields.Scalars["drsId"]; ok {
			drsIDs = []string{v}
		}
	}

	for _, drsID := range drsIDs {
		if r.Exclusions.IsExcluded(drsID) {
			continue
		}
		if r.OnlyConsiderCubeReady && r.Exclusions.IsNonCube(drsID) {
			continue
		}
		meta, err := r.Aggregator.Aggregate(ctx, drsID, f.ID, oddFields, descxmlFields)
		if err != nil {
			return fmt.Errorf("catalog: aggregating %s: %w", drsID, err)
		}
		r.mu.Lock()
		r.parentIDs.Add(drsID, f.ID)
		r.metadata.Add(drsID, meta)
		r.mu.Unlock()
	}
	return nil
}

// KnownDRSIDs returns every DRS id currently cached, the candidate set the
// search facade filters. Callers that need the full catalog
// must call EnsureKnownAll first.
func (r *Resolver) KnownDRSIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metadata.Keys()
}

func (r *Resolver) cachedMetadata(drsID string) (*Metadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metadata.Get(drsID)
}

// ParentID returns the cached OpenSearch parent id for drsID, resolving it
// first if necessary.
func (r *Resolver) ParentID(ctx context.Context, drsID string) (string, error) {
	r.mu.Lock()
	id, ok := r.parentIDs.Get(drsID)
	r.mu.Unlock()
	if ok {
		return id, nil
	}
	if _, err := r.EnsureKnown(ctx, drsID); err != nil {
		return "", err
	}
	r.mu.Lock()
	id, ok = r.parentIDs.Get(drsID)
	r.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDataset, drsID)
	}
	return id, nil
}

// EarliestStartDate fetches the earliest-matching granule's
// time_coverage_start (or start_date) global attribute for drsID, used
// when a dataset advertises no temporal_coverage_start of its own.
func (r *Resolver) EarliestStartDate(ctx context.Context, drsID, startDate, endDate, frequency string) (time.Time, bool, error) {
	parentID, err := r.ParentID(ctx, drsID)
	if err != nil {
		return time.Time{}, false, err
	}

	q := opensearch.Query{
		ParentIdentifier: parentID,
		StartDate:        startDate,
		EndDate:          endDate,
		Frequency:        frequency,
		FileFormat:       ".nc",
	}
	fc, err := opensearch.FetchPage(ctx, r.Get, r.Endpoint, q, 1, 1)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("catalog: fetching earliest granule for %s: %w", drsID, err)
	}
	if len(fc.Features) == 0 {
		// Some datasets resolve better without date filters at all.
		q.StartDate, q.EndDate = "", ""
		fc, err = opensearch.FetchPage(ctx, r.Get, r.Endpoint, q, 1, 1)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("catalog: fetching earliest granule for %s (unfiltered): %w", drsID, err)
		}
	}
	if len(fc.Features) == 0 {
		return time.Time{}, false, nil
	}

	opendapURL := fc.Features[0].OpendapURL()
	if opendapURL == "" {
		return time.Time{}, false, nil
	}
	_, das, err := opendap.OpenWithAttributes(ctx, opendap.Getter(r.Get), opendapURL)
	if err != nil {
		return time.Time{}, false, nil
	}

	global := das["NC_GLOBAL"]
	for _, attrName := range []string{"time_coverage_start", "start_date"} {
		raw, ok := global[attrName]
		if !ok {
			continue
		}
		if start, _, ok := granule.ParseFilenameDateRange(strings.Trim(raw, `"`)); ok {
			return start, true, nil
		}
	}
	return time.Time{}, false, nil
}

// Package store implements the virtual, read-only Zarr v2 key space over
// the ESA CCI Open Data Portal: a dataset opens into an in-process mapping
// of Zarr keys to either owned bytes (group/array metadata, small embedded
// coordinate chunks) or lazy data-chunk handles resolved on first read via
// OPeNDAP.
package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xcube-dev/xcube-cci/config"
	"github.com/xcube-dev/xcube-cci/internal/catalog"
	"github.com/xcube-dev/xcube-cci/internal/granule"
	"github.com/xcube-dev/xcube-cci/internal/opendap"
	"github.com/xcube-dev/xcube-cci/internal/opensearch"
	"github.com/xcube-dev/xcube-cci/internal/timerange"
)

// Store is one opened dataset's virtual Zarr v2 key space. It satisfies
// fs.FS/fs.StatFS/fs.ReadDirFS for callers that want a filesystem view, and
// the narrower Get/Has/Keys/Set/Delete interface for callers that don't.
type Store struct {
	drsID string
	meta  *catalog.Metadata
	cfg   config.Config

	opendap    *opendap.Client
	granuleIdx *granule.Index
	windows    []timerange.Window
	granuleURL []string // parallel to windows

	mu    sync.RWMutex
	vfs   map[string]entry
	plans map[string]variablePlan // keyed by variable name, for every installed array
}

// Open resolves drsID's metadata, plans its time axis, and installs every
// Zarr key the store exposes, in six steps: resolve metadata, find the
// parent feature, build the OPeNDAP/granule-index plumbing, plan the time
// axis, install coordinates and the time arrays, then install every
// selected data variable and the group attributes.
func Open(ctx context.Context, cfg config.Config, resolver *catalog.Resolver, drsID string, params config.OpenParams) (*Store, error) {
	meta, err := resolver.EnsureKnown(ctx, drsID)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", drsID, translateCatalogErr(err))
	}

	parentID, err := resolver.ParentID(ctx, drsID)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", drsID, translateCatalogErr(err))
	}

	opendapClient := opendap.NewClient(opendap.Getter(resolver.Get))
	granuleIdx := granule.NewIndex(granuleFetcher(resolver.Get, cfg.EndpointURL, parentID))

	t0, t1, err := resolveOpenTimeRange(ctx, resolver, drsID, meta, params, granuleIdx)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", drsID, err)
	}

	windows, urls, err := planTimeline(ctx, meta.TimeFrequency, t0, t1, granuleIdx)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", drsID, err)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("store: opening %s: %w", drsID, ErrNotFound)
	}

	s := &Store{
		drsID:      drsID,
		meta:       meta,
		cfg:        cfg,
		opendap:    opendapClient,
		granuleIdx: granuleIdx,
		windows:    windows,
		granuleURL: urls,
		vfs:        map[string]entry{},
		plans:      map[string]variablePlan{},
	}

	granuleURL := ""
	for _, u := range urls {
		if u != "" {
			granuleURL = u
			break
		}
	}

	trims, err := s.installCoordinates(ctx, granuleURL, params)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", drsID, err)
	}

	s.installTimeArrays()

	varNames := params.VariableNames
	if len(varNames) == 0 {
		varNames = catalog.DataVariableNames(meta)
	}
	for _, name := range varNames {
		if err := s.installDataVariable(name, trims); err != nil {
			return nil, fmt.Errorf("store: opening %s: %w", drsID, err)
		}
	}

	s.installGroupAttrs(params)

	return s, nil
}

// granuleFetcher adapts an OpenSearch query bounded by [t0,t1] (either may
// be nil, meaning unbounded) into the granule.Fetcher C7 needs.
func granuleFetcher(get opensearch.Getter, endpoint, parentID string) granule.Fetcher {
	return func(ctx context.Context, t0, t1 *time.Time) ([]granule.Entry, error) {
		q := opensearch.Query{ParentIdentifier: parentID, FileFormat: ".nc"}
		if t0 != nil {
			q.StartDate = t0.Format(time.RFC3339)
		}
		if t1 != nil {
			q.EndDate = t1.Format(time.RFC3339)
		}
		features, err := opensearch.List(ctx, get, endpoint, q)
		if err != nil {
			return nil, fmt.Errorf("store: listing granules: %w", err)
		}
		entries := make([]granule.Entry, 0, len(features))
		for _, f := range features {
			if e, ok := granule.EntryFromFeature(f); ok {
				entries = append(entries, e)
			}
		}
		return entries, nil
	}
}

// resolveOpenTimeRange returns the caller's requested range, or, when the
// caller gave none, the dataset's own temporal_coverage, or, when that is
// also absent, the earliest granule's own start date paired with the
// granule index's observed end.
func resolveOpenTimeRange(ctx context.Context, resolver *catalog.Resolver, drsID string, meta *catalog.Metadata, params config.OpenParams, idx *granule.Index) (time.Time, time.Time, error) {
	if !params.TimeStart.IsZero() || !params.TimeEnd.IsZero() {
		return params.TimeStart, params.TimeEnd, nil
	}
	if meta.TemporalCoverageStart != "" && meta.TemporalCoverageEnd != "" {
		start, err := parseCoverageDate(meta.TemporalCoverageStart)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: unparseable temporal_coverage_start %q", ErrMetadataUnavailable, meta.TemporalCoverageStart)
		}
		end, err := parseCoverageDate(meta.TemporalCoverageEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: unparseable temporal_coverage_end %q", ErrMetadataUnavailable, meta.TemporalCoverageEnd)
		}
		return start, end, nil
	}

	// No declared coverage: ask the catalog for the earliest matching
	// granule's own start date, falling back to 1900 when none is found,
	// then widen the granule index from there to the observed end.
	farPast := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	farFuture := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	start, ok, err := resolver.EarliestStartDate(ctx, drsID, "", "", meta.TimeFrequency)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("store: resolving earliest start date: %w", err)
	}
	if !ok {
		start = farPast
	}
	entries, err := idx.Query(ctx, start, farFuture)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("store: resolving default time range: %w", err)
	}
	if len(entries) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: dataset has no granules", ErrNotFound)
	}
	return entries[0].TStart, entries[len(entries)-1].TEnd, nil
}

// parseCoverageDate accepts both a full timestamp and the bare
// "2006-01-02" ISO date the DESCXML temporal extent commonly carries.
func parseCoverageDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// planTimeline runs the time-range planner (C8) and resolves each window's
// covering granule (C7), returning the url "" for a window no granule
// covers.
func planTimeline(ctx context.Context, frequency string, t0, t1 time.Time, idx *granule.Index) ([]timerange.Window, []string, error) {
	windows, err := timerange.Plan(ctx, frequency, t0, t1, idx)
	if err != nil {
		return nil, nil, fmt.Errorf("store: planning time range: %w", err)
	}
	urls := make([]string, len(windows))
	for i, w := range windows {
		entries, err := idx.Query(ctx, w.Start, w.End)
		if err != nil {
			return nil, nil, fmt.Errorf("store: resolving granule for window %d: %w", i, err)
		}
		if len(entries) > 0 {
			urls[i] = entries[0].URL
		}
	}
	return windows, urls, nil
}

// --- fs.FS / keyed-byte view ---

func (s *Store) lookup(key string) (entry, bool) {
	s.mu.RLock()
	e, ok := s.vfs[key]
	s.mu.RUnlock()
	return e, ok
}

// Has reports whether key names a VFS entry. Every entry, including lazy
// data-chunk handles, is installed up front at Open time, so Has never
// triggers an OPeNDAP fetch.
func (s *Store) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Keys returns every installed key, in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.vfs))
	for k := range s.vfs {
		keys = append(keys, k)
	}
	return keys
}

// Get returns the bytes for key, fetching a lazy chunk handle via OPeNDAP on
// first access.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, fmt.Errorf("store: %w: %s", ErrNotFound, key)
	}
	if !e.isChunk {
		return e.bytes, nil
	}
	return s.fetchChunk(ctx, e.handle)
}

// Set always fails: the store is read-only.
func (s *Store) Set(key string, value []byte) error {
	return fmt.Errorf("%w: cannot write %s", ErrReadOnly, key)
}

// Delete always fails: the store is read-only.
func (s *Store) Delete(key string) error {
	return fmt.Errorf("%w: cannot delete %s", ErrReadOnly, key)
}

// Open implements fs.FS: name is a Zarr key with '/' separating the
// variable directory from its metadata/chunk file name, mapped onto
// io/fs's file-per-key model via an in-memory fs.File.
func (s *Store) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return s.openDir("")
	}
	if _, ok := s.lookup(name); ok {
		data, err := s.Get(context.Background(), name)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return newMemFile(name, data), nil
	}
	if s.hasDirPrefix(name) {
		return s.openDir(name)
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS.
func (s *Store) Stat(name string) (fs.FileInfo, error) {
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Stat()
}

// ReadDir implements fs.ReadDirFS: it lists the immediate children of name
// (a variable directory, or "." for the group root).
func (s *Store) ReadDir(name string) ([]fs.DirEntry, error) {
	f, err := s.openDir(name)
	if err != nil {
		return nil, err
	}
	return f.(*memDir).entries, nil
}

func (s *Store) hasDirPrefix(name string) bool {
	prefix := name + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k := range s.vfs {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func (s *Store) openDir(name string) (fs.ReadDirFile, error) {
	prefix := ""
	if name != "" && name != "." {
		prefix = name + "/"
	}
	seen := map[string]bool{}
	s.mu.RLock()
	for k := range s.vfs {
		rest := strings.TrimPrefix(k, prefix)
		if rest == k && prefix != "" {
			continue
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seen[rest[:i]] = true
		} else {
			seen[rest] = true
		}
	}
	s.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, len(names))
	for i, n := range names {
		entries[i] = dirEntry{name: n, dir: s.hasDirPrefix(prefix + n)}
	}
	return &memDir{name: name, entries: entries}, nil
}

// Package store's facade.go implements the search/describe surface over
// catalog.Resolver, independent of any opened Store.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/xcube-dev/xcube-cci/drs"
	"github.com/xcube-dev/xcube-cci/internal/catalog"
)

// Facets is the search(facets) filter set. Every field is optional; a zero
// value imposes no constraint on that facet.
type Facets struct {
	ECV             string
	Frequency       string // normalised form, e.g. "month", "5 days"
	ProcessingLevel string
	DataType        string
	ProductString   string
	ProductVersion  string // dotted form, e.g. "2.0"

	Institute string
	Sensor    string
	Platform  string

	HasBBox  bool
	BBoxMinX float64
	BBoxMinY float64
	BBoxMaxX float64
	BBoxMaxY float64

	StartDate string // RFC3339, optional
	EndDate   string // RFC3339, optional
}

// needsMetadata reports whether any facet requires the candidate's
// aggregated Metadata record (beyond what its DRS id alone reveals).
func (f Facets) needsMetadata() bool {
	return f.Institute != "" || f.Sensor != "" || f.Platform != "" || f.HasBBox || f.StartDate != "" || f.EndDate != ""
}

// Search filters every DRS id the resolver already knows by DRS-component
// equality, then, if facets require it, resolves each survivor's metadata
// and filters by sensor/platform/institute/bbox/date range.
func Search(ctx context.Context, resolver *catalog.Resolver, facets Facets) ([]string, error) {
	var matches []string
	for _, drsID := range resolver.KnownDRSIDs() {
		id, err := drs.Parse(drsID)
		if err != nil {
			continue
		}
		if !matchesDRSFacets(id, facets) {
			continue
		}
		matches = append(matches, drsID)
	}
	sort.Strings(matches)

	if !facets.needsMetadata() {
		return matches, nil
	}

	var filtered []string
	for _, drsID := range matches {
		meta, err := resolver.EnsureKnown(ctx, drsID)
		if err != nil {
			continue
		}
		if matchesMetadataFacets(meta, facets) {
			filtered = append(filtered, drsID)
		}
	}
	return filtered, nil
}

func matchesDRSFacets(id drs.ID, f Facets) bool {
	if f.ECV != "" && !strings.EqualFold(id.ECV, f.ECV) {
		return false
	}
	if f.Frequency != "" {
		norm, err := drs.NormalizeFrequency(id.Frequency)
		if err != nil || !strings.EqualFold(norm, f.Frequency) {
			return false
		}
	}
	if f.ProcessingLevel != "" && !strings.EqualFold(id.Level, f.ProcessingLevel) {
		return false
	}
	if f.DataType != "" && !strings.EqualFold(id.Type, f.DataType) {
		return false
	}
	if f.ProductString != "" && !strings.EqualFold(id.Product, f.ProductString) {
		return false
	}
	if f.ProductVersion != "" && id.VersionDotted() != f.ProductVersion {
		return false
	}
	return true
}

func matchesMetadataFacets(meta *catalog.Metadata, f Facets) bool {
	if f.Sensor != "" && !strings.EqualFold(meta.SensorID, f.Sensor) {
		return false
	}
	if f.Platform != "" && !strings.EqualFold(meta.PlatformID, f.Platform) {
		return false
	}
	if f.Institute != "" {
		institution := meta.Attributes["NC_GLOBAL"]["institution"]
		if !strings.Contains(strings.ToLower(institution), strings.ToLower(f.Institute)) {
			return false
		}
	}
	if f.HasBBox && meta.HasBBox {
		if meta.BBoxMaxX < f.BBoxMinX || meta.BBoxMinX > f.BBoxMaxX ||
			meta.BBoxMaxY < f.BBoxMinY || meta.BBoxMinY > f.BBoxMaxY {
			return false
		}
	}
	if f.StartDate != "" && meta.TemporalCoverageEnd != "" && meta.TemporalCoverageEnd < f.StartDate {
		return false
	}
	if f.EndDate != "" && meta.TemporalCoverageStart != "" && meta.TemporalCoverageStart > f.EndDate {
		return false
	}
	return true
}

// OpaqueID is the dataset's parent identifier, typed as a UUID when the
// upstream OpenSearch feature id happens to parse as one and carried as a
// raw string otherwise (OpenSearch feature ids are not always UUIDs).
type OpaqueID struct {
	UUID   uuid.UUID
	Raw    string
	IsUUID bool
}

func parseOpaqueID(raw string) OpaqueID {
	if id, err := uuid.Parse(raw); err == nil {
		return OpaqueID{UUID: id, Raw: raw, IsUUID: true}
	}
	return OpaqueID{Raw: raw}
}

// Description is the describe(dataset_id) result: the aggregated record
// plus a synthesised, shortened human title and the typed parent id.
type Description struct {
	Metadata *catalog.Metadata
	Title    string
	ParentID OpaqueID
}

// Describe resolves drsID's metadata and renders its human title as
// "<ECV> CCI: <freq-adjective> <sensor> <level> <product> <type>, v<version>",
// shortened into the portal's compact display form.
func Describe(ctx context.Context, resolver *catalog.Resolver, drsID string) (*Description, error) {
	meta, err := resolver.EnsureKnown(ctx, drsID)
	if err != nil {
		return nil, fmt.Errorf("store: describing %s: %w", drsID, translateCatalogErr(err))
	}
	id, err := drs.Parse(drsID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	parentID, err := resolver.ParentID(ctx, drsID)
	if err != nil {
		return nil, fmt.Errorf("store: describing %s: %w", drsID, translateCatalogErr(err))
	}

	title := drs.ShortenTitle(drs.SynthesizeTitle(id))
	return &Description{Metadata: meta, Title: title, ParentID: parseOpaqueID(parentID)}, nil
}

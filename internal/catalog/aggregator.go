package catalog

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xcube-dev/xcube-cci/drs"
	"github.com/xcube-dev/xcube-cci/internal/odd"
	"github.com/xcube-dev/xcube-cci/internal/opendap"
	"github.com/xcube-dev/xcube-cci/internal/opensearch"
	"github.com/xcube-dev/xcube-cci/zarr"
)

// scalarStringPromotionThreshold is the element-count ceiling below which a
// non-numeric variable is folded into global attributes instead of kept as
// a describable data variable.
const scalarStringPromotionThreshold = 512 * 512

// Aggregator merges a dataset's ODD fields, descxml fields and first-
// granule OPeNDAP schema into one Metadata record.
type Aggregator struct {
	Get      opensearch.Getter
	Endpoint string
}

// NewAggregator builds an Aggregator that fetches the first-granule
// OpenSearch query (maximumRecords=1) and its OPeNDAP schema through get.
func NewAggregator(get opensearch.Getter, endpoint string) *Aggregator {
	return &Aggregator{Get: get, Endpoint: endpoint}
}

// Aggregate builds the Metadata record for drsID, whose OpenSearch feature
// id is parentFeatureID and whose ODD/descxml documents have already been
// parsed into oddFields/descxmlFields by the caller (the resolver loads
// both once per feature and aggregates every drs_id it advertises).
func (a *Aggregator) Aggregate(ctx context.Context, drsID, parentFeatureID string, oddFields odd.Fields, descxmlFields odd.DescxmlFields) (*Metadata, error) {
	meta := &Metadata{
		DRSID:         drsID,
		ParentID:      parentFeatureID,
		Dims:          map[string]int{},
		VariableInfos: map[string]VariableInfo{},
		Attributes:    map[string]map[string]string{},
	}

	applyODD(meta, oddFields)
	applyDescxml(meta, descxmlFields)
	if id, err := drs.Parse(drsID); err == nil {
		applyDRSComponents(meta, id)
	}

	q := opensearch.Query{ParentIdentifier: parentFeatureID}
	fc, err := opensearch.FetchPage(ctx, a.Get, a.Endpoint, q, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetching first granule for %s: %w", drsID, err)
	}
	if len(fc.Features) > 0 {
		f := fc.Features[0]
		opendapURL := f.OpendapURL()
		if opendapURL == "" {
			return nil, fmt.Errorf("catalog: %s: %w", drsID, ErrGranuleUnavailable)
		}
		ds, das, err := opendap.OpenWithAttributes(ctx, opendap.Getter(a.Get), opendapURL)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", drsID, ErrMetadataUnavailable)
		}
		applyOpendap(meta, ds, das)
		meta.TimeDimensionSize = fc.TotalResults
		if tv, ok := ds.Variables["time"]; ok && len(tv.Shape) > 0 {
			meta.TimeDimensionSize *= tv.Shape[0]
		}
	}

	promoteScalarStrings(meta)
	buildVariableSummaries(meta)
	finalizeResolution(meta)

	return meta, nil
}

// pick returns the ODD scalar field named scalarKey, or the first entry of
// its harmonised plural list otherwise.
func pick(f odd.Fields, scalarKey, listKey string) string {
	if v, ok := f.Scalars[scalarKey]; ok {
		return v
	}
	if list, ok := f.Lists[listKey]; ok && len(list) > 0 {
		return list[0]
	}
	return ""
}

func applyODD(meta *Metadata, f odd.Fields) {
	meta.ECV = pick(f, "ecv", "ecvs")
	meta.TimeFrequency = pick(f, "frequency", "frequencys")
	meta.ProcessingLevel = pick(f, "processingLevel", "processingLevels")
	meta.DataType = pick(f, "dataType", "dataTypes")
	meta.SensorID = pick(f, "sensor", "sensors")
	meta.PlatformID = pick(f, "platform", "platforms")
	meta.ProductString = pick(f, "productString", "productStrings")
	meta.ProductVersion = pick(f, "productVersion", "productVersions")
}

// applyDescxml fills fields absent from the ODD merge.
func applyDescxml(meta *Metadata, d odd.DescxmlFields) {
	global := meta.globalAttrs()
	if d.Abstract != "" {
		setIfAbsent(global, "abstract", d.Abstract)
	}
	if d.Title != "" {
		setIfAbsent(global, "title", d.Title)
	}
	if len(d.Licences) > 0 {
		setIfAbsent(global, "license", strings.Join(d.Licences, "; "))
	}
	if d.CreationDate != "" {
		setIfAbsent(global, "date_created", d.CreationDate)
	}
	if d.PublicationDate != "" {
		setIfAbsent(global, "date_published", d.PublicationDate)
	}
	if d.HasBBox && !meta.HasBBox {
		meta.HasBBox = true
		meta.BBoxMinX, meta.BBoxMinY = d.BBoxMinX, d.BBoxMinY
		meta.BBoxMaxX, meta.BBoxMaxY = d.BBoxMaxX, d.BBoxMaxY
	}
	if meta.TemporalCoverageStart == "" {
		meta.TemporalCoverageStart = d.TemporalStart
	}
	if meta.TemporalCoverageEnd == "" {
		meta.TemporalCoverageEnd = d.TemporalEnd
	}
}

func applyDRSComponents(meta *Metadata, id drs.ID) {
	if meta.ECV == "" {
		meta.ECV = id.ECV
	}
	if meta.TimeFrequency == "" {
		if freq, err := drs.NormalizeFrequency(id.Frequency); err == nil {
			meta.TimeFrequency = freq
		}
	}
	if meta.ProcessingLevel == "" {
		meta.ProcessingLevel = id.Level
	}
	if meta.DataType == "" {
		meta.DataType = id.Type
	}
	if meta.SensorID == "" {
		meta.SensorID = id.Sensor
	}
	if meta.PlatformID == "" {
		meta.PlatformID = id.Platform
	}
	if meta.ProductString == "" {
		meta.ProductString = id.Product
	}
	if meta.ProductVersion == "" {
		meta.ProductVersion = id.VersionDotted()
	}
}

// applyOpendap folds a parsed DDS/DAS schema into meta's dims and
// variable_infos, deriving dims as the union of every variable's
// dimensions.
func applyOpendap(meta *Metadata, ds *opendap.Dataset, das map[string]map[string]string) {
	global := meta.globalAttrs()
	for k, v := range das["NC_GLOBAL"] {
		setIfAbsent(global, k, strings.Trim(v, `"`))
	}

	for name, v := range ds.Variables {
		meta.VariableInfos[name] = VariableInfo{
			DType:          v.DType,
			Dimensions:     append([]string(nil), v.Dimensions...),
			Shape:          append([]int(nil), v.Shape...),
			Size:           v.Size(),
			FileChunkSizes: append([]int(nil), v.ChunkSizes...),
			FillValue:      v.FillValue,
			Attributes:     v.Attributes,
		}
	}

	for name, v := range ds.Variables {
		for _, dim := range v.Dimensions {
			if _, ok := meta.Dims[dim]; ok {
				continue
			}
			switch {
			case dim == "bin_index":
				meta.Dims[dim] = v.Size()
			case ds.Variables[dim] == nil && strings.HasSuffix(name, "_bnds"):
				meta.Dims[dim] = 2
			default:
				if dv, ok := ds.Variables[dim]; ok {
					meta.Dims[dim] = dv.Size()
				}
			}
		}
	}
}

// promoteScalarStrings folds small non-numeric variables into global
// attributes rather than keeping them as describable data variables.
func promoteScalarStrings(meta *Metadata) {
	global := meta.globalAttrs()
	for name, info := range meta.VariableInfos {
		if isNumericDType(info.DType) || info.Size >= scalarStringPromotionThreshold {
			continue
		}
		for attrName, attrVal := range info.Attributes {
			setIfAbsent(global, name+"_"+attrName, attrVal)
		}
		delete(meta.VariableInfos, name)
	}
}

func isNumericDType(dtype string) bool {
	_, _, err := zarr.ParseDType(dtype)
	return err == nil
}

// coordinateNameVocabulary is the fixed set of axis/bounds variable names
// the data-variable filter drops outright.
var coordinateNameVocabulary = map[string]bool{
	"time": true, "lat": true, "lon": true, "latitude": true, "longitude": true,
	"lat_bnds": true, "lon_bnds": true, "time_bnds": true,
	"layers": true, "view": true, "crs": true, "spatial_ref": true,
}

var histBinPattern = regexp.MustCompile(`^hist.*_bin_(centre|border)$`)

func isCoordinateName(name string) bool {
	if coordinateNameVocabulary[name] {
		return true
	}
	return histBinPattern.MatchString(name)
}

// IsCoordinateName reports whether name is in the fixed coordinate-name
// vocabulary DataVariableNames excludes, exported for the
// store's coordinate-installation pass.
func IsCoordinateName(name string) bool {
	return isCoordinateName(name)
}

// DataVariableNames returns the describable data variable names of meta:
// the fixed-vocabulary coordinate names and zero-dim/non-numeric variables
// dropped, further restricted to variables carrying both a
// lat and a lon dimension, and (when more than 2-dimensional) a time
// dimension too.
func DataVariableNames(meta *Metadata) []string {
	var names []string
	for name, info := range meta.VariableInfos {
		if isCoordinateName(name) {
			continue
		}
		if len(info.Dimensions) == 0 || !isNumericDType(info.DType) {
			continue
		}
		var hasLat, hasLon, hasTime bool
		for _, d := range info.Dimensions {
			switch d {
			case "lat", "latitude":
				hasLat = true
			case "lon", "longitude":
				hasLon = true
			case "time":
				hasTime = true
			}
		}
		if !hasLat || !hasLon {
			continue
		}
		if len(info.Dimensions) > 2 && !hasTime {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildVariableSummaries(meta *Metadata) {
	names := DataVariableNames(meta)
	meta.Variables = make([]VariableSummary, 0, len(names))
	for _, name := range names {
		info := meta.VariableInfos[name]
		meta.Variables = append(meta.Variables, VariableSummary{
			Name:     name,
			Units:    info.Attributes["units"],
			LongName: info.Attributes["long_name"],
		})
	}
}

// resolution extracts a dataset's lat or lon spatial resolution from its
// global attributes, falling back to parsing a combined
// "0.25x0.25degree"-shaped `resolution` attribute.
func resolution(globalAttrs map[string]string, axis string) (float64, bool) {
	attrName := "geospatial_lon_resolution"
	last := true
	if axis == "lat" {
		attrName = "geospatial_lat_resolution"
		last = false
	}
	for _, name := range []string{attrName, "resolution"} {
		raw, ok := globalAttrs[name]
		if !ok {
			continue
		}
		raw = strings.Trim(raw, `"`)
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, true
		}
		parts := strings.Split(raw, "x")
		part := parts[0]
		if last {
			part = parts[len(parts)-1]
		}
		part = strings.SplitN(part, "deg", 2)[0]
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func finalizeResolution(meta *Metadata) {
	global := meta.Attributes["NC_GLOBAL"]
	latRes, latOK := resolution(global, "lat")
	lonRes, lonOK := resolution(global, "lon")
	switch {
	case latOK && lonOK:
		meta.SpatialResolution = (latRes + lonRes) / 2
	case latOK:
		meta.SpatialResolution = latRes
	case lonOK:
		meta.SpatialResolution = lonRes
	}
}

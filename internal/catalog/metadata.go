// Package catalog resolves ESA CCI DRS dataset ids to aggregated metadata
// records: the dataset resolver finds a DRS id's OpenSearch parent feature
// and enumerates its sibling ids; the aggregator merges the ODD, descxml
// and OPeNDAP-derived schema into one record.
package catalog

import "fmt"

// VariableInfo is one entry of a Metadata record's variable_infos map.
type VariableInfo struct {
	DType          string
	Dimensions     []string
	Shape          []int
	Size           int
	ChunkSizes     []int // the planned Zarr output chunk shape (filled by the store)
	FileChunkSizes []int // the backing file's own chunk shape (from DAS _ChunkSizes)
	FillValue      string
	Attributes     map[string]string
}

// VariableSummary is a catalog-reported variable summary, the shape
// `describe` exposes for each data variable.
type VariableSummary struct {
	Name     string
	Units    string
	LongName string
}

// Metadata is the aggregated dataset metadata record, the
// output of Aggregator.Aggregate.
type Metadata struct {
	DRSID    string
	ParentID string

	Dims          map[string]int
	VariableInfos map[string]VariableInfo
	Attributes    map[string]map[string]string // grouped by NetCDF attribute owner, e.g. "NC_GLOBAL"
	Variables     []VariableSummary

	HasBBox  bool
	BBoxMinX float64
	BBoxMinY float64
	BBoxMaxX float64
	BBoxMaxY float64

	SpatialResolution float64

	TemporalCoverageStart string
	TemporalCoverageEnd   string
	TimeDimensionSize     int

	ECV             string
	TimeFrequency   string
	ProcessingLevel string
	DataType        string
	SensorID        string
	PlatformID      string
	ProductString   string
	ProductVersion  string
}

// globalAttrs returns m.Attributes["NC_GLOBAL"], allocating both maps as
// needed.
func (m *Metadata) globalAttrs() map[string]string {
	if m.Attributes == nil {
		m.Attributes = map[string]map[string]string{}
	}
	g, ok := m.Attributes["NC_GLOBAL"]
	if !ok {
		g = map[string]string{}
		m.Attributes["NC_GLOBAL"] = g
	}
	return g
}

func setIfAbsent(m map[string]string, key, value string) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

// Validate checks the invariants a Metadata record must satisfy: every
// variable's dimensions/shape agree in length and multiply out to size,
// every dimension resolves to either a known dims entry or a coordinate
// variable, and the bbox (when present) is well-ordered.
func (m *Metadata) Validate() error {
	for name, info := range m.VariableInfos {
		if len(info.Dimensions) != len(info.Shape) {
			return fmt.Errorf("catalog: variable %q has %d dimensions but shape has %d entries", name, len(info.Dimensions), len(info.Shape))
		}
		if product(info.Shape) != info.Size {
			return fmt.Errorf("catalog: variable %q: shape product %d does not match size %d", name, product(info.Shape), info.Size)
		}
		for _, dim := range info.Dimensions {
			if _, ok := m.Dims[dim]; ok {
				continue
			}
			if _, ok := m.VariableInfos[dim]; ok {
				continue
			}
			return fmt.Errorf("catalog: variable %q: dimension %q is neither a dims entry nor a coordinate variable", name, dim)
		}
	}
	if m.HasBBox && (m.BBoxMinX > m.BBoxMaxX || m.BBoxMinY > m.BBoxMaxY) {
		return fmt.Errorf("catalog: invalid bbox (%g,%g)-(%g,%g)", m.BBoxMinX, m.BBoxMinY, m.BBoxMaxX, m.BBoxMaxY)
	}
	return nil
}

func product(shape []int) int {
	p := 1
	for _, v := range shape {
		p *= v
	}
	return p
}

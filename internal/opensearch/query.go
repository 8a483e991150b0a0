package opensearch

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultEndpoint and DefaultDescriptionURL are the portal's documented
// defaults.
const (
	DefaultEndpoint       = "http://opensearch-test.ceda.ac.uk/opensearch/request"
	DefaultDescriptionURL = "http://opensearch-test.ceda.ac.uk/opensearch/description.xml?parentIdentifier=cci"
)

// defaultMaximumRecords is the page size the paginator requests.
const defaultMaximumRecords = 10000

// Query is the set of GET parameters the portal's OpenSearch endpoint
// recognises. Zero-value fields are omitted from the request.
type Query struct {
	ParentIdentifier string
	UUID             string
	DRSId            string
	ECV              string
	Frequency        string
	ProcessingLevel  string
	ProductString    string
	ProductVersion   string
	DataType         string
	Sensor           string
	Platform         string
	BBox             [4]float64 // lon_min, lat_min, lon_max, lat_max
	HasBBox          bool
	StartDate        string
	EndDate          string
	FileFormat       string
}

// encode renders the query's non-zero fields plus pagination parameters
// into URL GET parameters.
func (q Query) encode(startPage, maximumRecords int) url.Values {
	v := url.Values{}
	add := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	add("parentIdentifier", q.ParentIdentifier)
	add("uuid", q.UUID)
	add("drsId", q.DRSId)
	add("ecv", q.ECV)
	add("frequency", q.Frequency)
	add("processingLevel", q.ProcessingLevel)
	add("productString", q.ProductString)
	add("productVersion", q.ProductVersion)
	add("dataType", q.DataType)
	add("sensor", q.Sensor)
	add("platform", q.Platform)
	add("startDate", q.StartDate)
	add("endDate", q.EndDate)
	add("fileFormat", q.FileFormat)
	if q.HasBBox {
		v.Set("bbox", fmt.Sprintf("%g,%g,%g,%g", q.BBox[0], q.BBox[1], q.BBox[2], q.BBox[3]))
	}
	v.Set("httpAccept", "application/geo+json")
	v.Set("startPage", strconv.Itoa(startPage))
	v.Set("maximumRecords", strconv.Itoa(maximumRecords))
	return v
}

// URL renders the full request URL for a single page of this query against
// endpoint.
func (q Query) URL(endpoint string, startPage, maximumRecords int) string {
	return endpoint + "?" + q.encode(startPage, maximumRecords).Encode()
}

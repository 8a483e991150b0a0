package granule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xcube-dev/xcube-cci/internal/opensearch"
)

func featureFixture(date, identifier, opendapURL string) opensearch.Feature {
	f := opensearch.Feature{
		Properties: opensearch.FeatureProperties{
			Identifier: identifier,
			Date:       date,
		},
	}
	if opendapURL != "" {
		f.Properties.Links.Related = []opensearch.Link{{Title: "Opendap", Href: opendapURL}}
	}
	return f
}

func TestEntryFromFeatureUsesPropertiesDate(t *testing.T) {
	f := featureFixture("2010-02-01T00:00:00Z/2010-02-28T23:59:59Z", "ESACCI-OZONE-L3-20100201-fv1.nc", "http://x.example/data.nc")
	e, ok := EntryFromFeature(f)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC), e.TStart)
	assert.Equal(t, time.Date(2010, 2, 28, 23, 59, 59, 0, time.UTC), e.TEnd)
	assert.Equal(t, "http://x.example/data.nc", e.URL)
}

func TestEntryFromFeatureFallsBackToFilename(t *testing.T) {
	f := featureFixture("", "ESACCI-OZONE-L3-20100215-fv0002.nc", "http://x.example/data.nc")
	e, ok := EntryFromFeature(f)
	assert.True(t, ok)
	assert.Equal(t, 2010, e.TStart.Year())
	assert.Equal(t, time.Month(2), e.TStart.Month())
	assert.Equal(t, 15, e.TStart.Day())
}

func TestEntryFromFeatureSkipsWithoutOpendapLink(t *testing.T) {
	f := featureFixture("2010-02-01T00:00:00Z/2010-02-28T23:59:59Z", "ESACCI-OZONE-L3-20100201-fv1.nc", "")
	_, ok := EntryFromFeature(f)
	assert.False(t, ok)
}

func TestEntryFromFeatureSkipsWhenNoParseableDate(t *testing.T) {
	f := featureFixture("garbage", "no-digits-here.nc", "http://x.example/data.nc")
	_, ok := EntryFromFeature(f)
	assert.False(t, ok)
}

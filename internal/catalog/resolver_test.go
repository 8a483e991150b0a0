package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolverDRSID = "esacci.OZONE.mon.L3.NP.multi-sensor.multi-platform.MERGED.fv0002.r1"

const resolverFeatureListJSON = `{
  "type": "FeatureCollection",
  "totalResults": 1,
  "features": [
    {
      "type": "Feature",
      "id": "feature-1",
      "properties": {
        "identifier": "feature-1",
        "title": "Ozone CCI",
        "links": {
          "search": [{"title": "Search", "href": "http://x.example/odd.xml"}],
          "describedby": [{"title": "Describedby", "href": "http://x.example/descxml.xml"}]
        }
      }
    }
  ]
}`

func newResolverFixture(t *testing.T, exclusions *Exclusions) (*Resolver, *int) {
	t.Helper()
	listCalls := 0
	get := func(_ context.Context, url string) ([]byte, error) {
		switch {
		case strings.Contains(url, "odd.xml"):
			return []byte(aggregatorSampleODD), nil
		case strings.Contains(url, "descxml.xml"):
			return []byte(aggregatorSampleDescxml), nil
		case strings.HasSuffix(url, ".dds"):
			return []byte(aggregatorSampleDDS), nil
		case strings.HasSuffix(url, ".das"):
			return []byte(aggregatorSampleDAS), nil
		case strings.Contains(url, "parentIdentifier=feature-1"):
			return []byte(aggregatorSampleFeatureCollection), nil
		case strings.Contains(url, "drsId=") || strings.Contains(url, "parentIdentifier=cci"):
			listCalls++
			return []byte(resolverFeatureListJSON), nil
		default:
			return nil, fmt.Errorf("unexpected url in test: %s", url)
		}
	}
	agg := NewAggregator(get, "http://x.example/opensearch")
	r := NewResolver(get, "http://x.example/opensearch", agg, exclusions, false)
	return r, &listCalls
}

func TestEnsureKnownResolvesAndCaches(t *testing.T) {
	r, listCalls := newResolverFixture(t, nil)

	meta, err := r.EnsureKnown(context.Background(), resolverDRSID)
	require.NoError(t, err)
	assert.Equal(t, resolverDRSID, meta.DRSID)
	assert.Equal(t, "feature-1", meta.ParentID)
	assert.Equal(t, 1, *listCalls)

	_, err = r.EnsureKnown(context.Background(), resolverDRSID)
	require.NoError(t, err)
	assert.Equal(t, 1, *listCalls, "second call must hit the cache, not re-query")
}

func TestEnsureKnownUnknownDatasetFails(t *testing.T) {
	r, _ := newResolverFixture(t, nil)
	_, err := r.EnsureKnown(context.Background(), "esacci.DOES.NOT.EXIST.L3.NP.x.y.z.fv1.r1")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestEnsureKnownHonoursExclusionList(t *testing.T) {
	exclusions := NewExclusions([]string{resolverDRSID}, nil)
	r, _ := newResolverFixture(t, exclusions)
	_, err := r.EnsureKnown(context.Background(), resolverDRSID)
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestEnsureKnownHonoursNonCubeListWhenCubeOnly(t *testing.T) {
	exclusions := NewExclusions(nil, []string{resolverDRSID})
	r, listCalls := newResolverFixture(t, exclusions)
	r.OnlyConsiderCubeReady = true
	_, err := r.EnsureKnown(context.Background(), resolverDRSID)
	assert.ErrorIs(t, err, ErrUnknownDataset)
	assert.Equal(t, 1, *listCalls)
}

func TestParentIDResolvesLazily(t *testing.T) {
	r, _ := newResolverFixture(t, nil)
	id, err := r.ParentID(context.Background(), resolverDRSID)
	require.NoError(t, err)
	assert.Equal(t, "feature-1", id)
}

func TestEarliestStartDateReadsNCGlobalAttribute(t *testing.T) {
	r, _ := newResolverFixture(t, nil)
	_, err := r.EnsureKnown(context.Background(), resolverDRSID)
	require.NoError(t, err)

	start, ok, err := r.EarliestStartDate(context.Background(), resolverDRSID, "", "", "month")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestEarliestStartDateFallsBackWhenFilteredQueryEmpty(t *testing.T) {
	attempts := 0
	get := func(_ context.Context, url string) ([]byte, error) {
		switch {
		case strings.Contains(url, "startDate="):
			attempts++
			return []byte(`{"type":"FeatureCollection","totalResults":0,"features":[]}`), nil
		case strings.HasSuffix(url, ".dds"):
			return []byte(aggregatorSampleDDS), nil
		case strings.HasSuffix(url, ".das"):
			return []byte(aggregatorSampleDAS), nil
		case strings.Contains(url, "parentIdentifier=feature-1"):
			return []byte(aggregatorSampleFeatureCollection), nil
		default:
			return nil, fmt.Errorf("unexpected url in test: %s", url)
		}
	}
	agg := NewAggregator(get, "http://x.example/opensearch")
	r := NewResolver(get, "http://x.example/opensearch", agg, nil, false)
	r.parentIDs.Add(resolverDRSID, "feature-1")

	start, ok, err := r.EarliestStartDate(context.Background(), resolverDRSID, "2010-01-01", "2010-12-31", "month")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC), start)
}

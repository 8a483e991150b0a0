package store

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelObserverBuffersEvents(t *testing.T) {
	o := NewChannelObserver(2)

	o.OnFetch(FetchEvent{Variable: "sst"})
	o.OnFetch(FetchEvent{Variable: "lat"})

	assert.Len(t, o.Events, 2)
	first := <-o.Events
	assert.Equal(t, "sst", first.Variable)
}

func TestChannelObserverDropsWhenFull(t *testing.T) {
	o := NewChannelObserver(1)

	o.OnFetch(FetchEvent{Variable: "first"})
	o.OnFetch(FetchEvent{Variable: "second"})

	assert.Len(t, o.Events, 1)
	e := <-o.Events
	assert.Equal(t, "first", e.Variable)
}

func TestNoopObserverDiscardsEvents(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopObserver.OnFetch(FetchEvent{Variable: "sst", Err: errors.New("boom")})
	})
}

func TestPrometheusObserverRecordsDurationAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(reg)

	o.OnFetch(FetchEvent{Variable: "sst", Duration: 10 * time.Millisecond})
	o.OnFetch(FetchEvent{Variable: "sst", Duration: 5 * time.Millisecond, Err: errors.New("timeout")})

	metrics, err := reg.Gather()
	require.NoError(t, err)

	var sawDuration, sawFailure bool
	for _, mf := range metrics {
		switch mf.GetName() {
		case "xcube_cci_chunk_fetch_duration_seconds":
			sawDuration = true
			assert.Equal(t, uint64(2), sampleCount(mf))
		case "xcube_cci_chunk_fetch_failures_total":
			sawFailure = true
			assert.Equal(t, float64(1), sampleCounterValue(mf))
		}
	}
	assert.True(t, sawDuration, "expected duration histogram to be registered")
	assert.True(t, sawFailure, "expected failures counter to be registered")
}

func sampleCount(mf *dto.MetricFamily) uint64 {
	var total uint64
	for _, m := range mf.GetMetric() {
		total += m.GetHistogram().GetSampleCount()
	}
	return total
}

func sampleCounterValue(mf *dto.MetricFamily) float64 {
	var total float64
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}

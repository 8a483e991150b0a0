package granule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameDateRangeFullTimestamp(t *testing.T) {
	start, end, ok := ParseFilenameDateRange("ESACCI-OZONE-L3-20100215123045-fv0002.nc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2010, 2, 15, 12, 30, 45, 0, time.UTC), start)
	assert.Equal(t, start, end)
}

func TestParseFilenameDateRangeDayOnly(t *testing.T) {
	start, end, ok := ParseFilenameDateRange("ESACCI-OZONE-L3-20100215-fv0002.nc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2010, 2, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2010, 2, 15, 23, 59, 59, 0, time.UTC), end)
}

func TestParseFilenameDateRangeISODate(t *testing.T) {
	start, end, ok := ParseFilenameDateRange("ESACCI-2010-02-15-OZONE.nc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2010, 2, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2010, 2, 15, 23, 59, 59, 0, time.UTC), end)
}

func TestParseFilenameDateRangeMonthOnly(t *testing.T) {
	start, end, ok := ParseFilenameDateRange("ESACCI-OZONE-L3-201002-fv0002.nc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2010, 2, 28, 23, 59, 59, 0, time.UTC), end)
}

func TestParseFilenameDateRangeYearOnly(t *testing.T) {
	start, end, ok := ParseFilenameDateRange("ESACCI-OZONE-L3-2010-fv0002.nc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2010, 12, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestParseFilenameDateRangeNoMatch(t *testing.T) {
	_, _, ok := ParseFilenameDateRange("no-digits-here.nc")
	assert.False(t, ok)
}

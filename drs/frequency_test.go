package drs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFrequencyMonMonthSynonyms(t *testing.T) {
	mon, err := NormalizeFrequency("mon")
	require.NoError(t, err)
	month, err := NormalizeFrequency("month")
	require.NoError(t, err)
	assert.Equal(t, mon, month)
	assert.Equal(t, "month", mon)
}

func TestNormalizeFrequencyKnownTokens(t *testing.T) {
	cases := map[string]string{
		"day":     "day",
		"yr":      "year",
		"5-days":  "5 days",
		"8-days":  "8 days",
		"15-days": "15 days",
		"13-yrs":  "13 years",
		"climatology":               "climatology",
		"satellite-orbit-frequency": "satellite-orbit-frequency",
	}
	for in, want := range cases {
		got, err := NormalizeFrequency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeFrequencyUnknown(t *testing.T) {
	_, err := NormalizeFrequency("fortnightly")
	assert.Error(t, err)
}

func TestFrequencyAdjective(t *testing.T) {
	assert.Equal(t, "daily", FrequencyAdjective("day"))
	assert.Equal(t, "monthly", FrequencyAdjective("mon"))
	assert.Equal(t, "monthly", FrequencyAdjective("month"))
	assert.Equal(t, "5-daily", FrequencyAdjective("5-days"))
}

func TestFrequencyAdjectiveUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "fortnightly", FrequencyAdjective("fortnightly"))
}

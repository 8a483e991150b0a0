package drs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleID = "esacci.FIRE.mon.L4.BA.MODIS.Terra.MODIS_TERRA.5-0.r1"

func TestParseRoundTrip(t *testing.T) {
	id, err := Parse(sampleID)
	require.NoError(t, err)
	assert.Equal(t, "FIRE", id.ECV)
	assert.Equal(t, "mon", id.Frequency)
	assert.Equal(t, "L4", id.Level)
	assert.Equal(t, "BA", id.Type)
	assert.Equal(t, "MODIS", id.Sensor)
	assert.Equal(t, "Terra", id.Platform)
	assert.Equal(t, "MODIS_TERRA", id.Product)
	assert.Equal(t, "5-0", id.Version)
	assert.Equal(t, "r1", id.Tail)
	assert.Equal(t, sampleID, id.String())
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	_, err := Parse("esacci.FIRE.mon")
	assert.Error(t, err)
}

func TestParseRejectsMissingPrefix(t *testing.T) {
	bad := "notesacci" + sampleID[len("esacci"):]
	_, err := Parse(bad)
	assert.Error(t, err)
}

func TestVersionDotted(t *testing.T) {
	id, err := Parse(sampleID)
	require.NoError(t, err)
	assert.Equal(t, "5.0", id.VersionDotted())
}

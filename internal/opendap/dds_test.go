package opendap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDDS = `Dataset {
    Float64 time[time = 1];
    Float32 lat[lat = 180];
    Float32 lon[lon = 360];
    Grid {
     Array:
        Float32 O3_vmr[time = 1][layers = 17][lat = 180][lon = 360];
     Maps:
        Float64 time[time = 1];
        Float32 layers[layers = 17];
        Float32 lat[lat = 180];
        Float32 lon[lon = 360];
    } O3_vmr;
} esacci_ozone;`

func TestParseDDSPlainVariables(t *testing.T) {
	ds, err := ParseDDS([]byte(sampleDDS))
	require.NoError(t, err)
	assert.Equal(t, "esacci_ozone", ds.Name)

	lat, ok := ds.Variables["lat"]
	require.True(t, ok)
	assert.Equal(t, "<f4", lat.DType)
	assert.Equal(t, []string{"lat"}, lat.Dimensions)
	assert.Equal(t, []int{180}, lat.Shape)
}

func TestParseDDSGridRetainsOnlyPrimaryArray(t *testing.T) {
	ds, err := ParseDDS([]byte(sampleDDS))
	require.NoError(t, err)

	v, ok := ds.Variables["O3_vmr"]
	require.True(t, ok)
	assert.Equal(t, GridType, v.Kind)
	assert.Equal(t, []string{"time", "layers", "lat", "lon"}, v.Dimensions)
	assert.Equal(t, []int{1, 17, 180, 360}, v.Shape)
	assert.Equal(t, "<f4", v.DType)
}

func TestParseDDSEmptyFails(t *testing.T) {
	_, err := ParseDDS([]byte(""))
	assert.ErrorIs(t, err, ErrEmptyDDS)
}

func TestParseDDSGarbageFails(t *testing.T) {
	_, err := ParseDDS([]byte("not a dds document"))
	assert.ErrorIs(t, err, ErrEmptyDDS)
}

func TestVariableSize(t *testing.T) {
	v := &Variable{Shape: []int{1, 17, 180, 360}}
	assert.Equal(t, 1*17*180*360, v.Size())
}

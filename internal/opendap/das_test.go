package opendap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDAS = `Attributes {
    lat {
        String long_name "latitude";
        Float32 _FillValue -999.0;
    }
    O3_vmr {
        String units "mol mol-1";
        Int32 _ChunkSizes 1, 17, 90, 180;
    }
}`

func TestParseDAS(t *testing.T) {
	attrs := ParseDAS([]byte(sampleDAS))
	require.Contains(t, attrs, "lat")
	require.Contains(t, attrs, "O3_vmr")
	assert.Equal(t, `"latitude"`, attrs["lat"]["long_name"])
	assert.Equal(t, "-999.0", attrs["lat"]["_FillValue"])
	assert.Equal(t, "1, 17, 90, 180", attrs["O3_vmr"]["_ChunkSizes"])
}

func TestParseDASMalformedDegradesToEmpty(t *testing.T) {
	attrs := ParseDAS([]byte("not attributes at all"))
	assert.Empty(t, attrs)
}

func TestChunkSizesFromAttr(t *testing.T) {
	sizes, err := ChunkSizesFromAttr("1, 17, 90, 180")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 17, 90, 180}, sizes)
}

func TestAttachDASRenamesFields(t *testing.T) {
	ds := &Dataset{Variables: map[string]*Variable{
		"O3_vmr": {Name: "O3_vmr", Attributes: map[string]string{}},
	}}
	AttachDAS(ds, ParseDAS([]byte(sampleDAS)))
	v := ds.Variables["O3_vmr"]
	assert.Equal(t, []int{1, 17, 90, 180}, v.ChunkSizes)
	assert.Equal(t, `mol mol-1`, v.Attributes["units"])
}

func TestAttachDASFillValue(t *testing.T) {
	ds := &Dataset{Variables: map[string]*Variable{
		"lat": {Name: "lat", Attributes: map[string]string{}},
	}}
	AttachDAS(ds, ParseDAS([]byte(sampleDAS)))
	assert.Equal(t, "-999.0", ds.Variables["lat"].FillValue)
}

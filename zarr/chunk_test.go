package zarr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridShape(t *testing.T) {
	assert.Equal(t, []int{365, 1, 1}, GridShape([]int{365, 180, 360}, []int{1, 180, 360}))
	assert.Equal(t, []int{2}, GridShape([]int{5}, []int{3}))
	assert.Nil(t, GridShape(nil, nil))
}

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "0", ChunkKey(nil))
	assert.Equal(t, "3", ChunkKey([]int{3}))
	assert.Equal(t, "1.2.3", ChunkKey([]int{1, 2, 3}))
}

func TestParseChunkKeyRoundTrip(t *testing.T) {
	for _, indices := range [][]int{{0}, {1, 2, 3}, {0, 0, 0}} {
		got, ok := ParseChunkKey(ChunkKey(indices))
		assert.True(t, ok)
		assert.Equal(t, indices, got)
	}
}

func TestParseChunkKeyRejectsGarbage(t *testing.T) {
	_, ok := ParseChunkKey(".zarray")
	assert.False(t, ok)
	_, ok = ParseChunkKey("1.x.3")
	assert.False(t, ok)
}

func TestEnumerateChunkIndicesRowMajorOrder(t *testing.T) {
	got := EnumerateChunkIndices([]int{2, 3})
	want := [][]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}
	assert.Equal(t, want, got)
}

func TestEnumerateChunkIndicesScalar(t *testing.T) {
	assert.Equal(t, [][]int{{}}, EnumerateChunkIndices(nil))
}

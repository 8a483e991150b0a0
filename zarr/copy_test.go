package zarr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyNDFullCopy(t *testing.T) {
	// 2x3 byte matrix, copy the whole thing.
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 6)
	strides := Strides([]int{2, 3})
	CopyND(dst, strides, []int{0, 0}, src, strides, []int{0, 0}, []int{2, 3}, 1)
	assert.Equal(t, src, dst)
}

func TestCopyNDSubRegion(t *testing.T) {
	// src is 3x3, copy the 2x2 bottom-right block into a fresh 2x2 dst.
	src := []byte{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	srcStrides := Strides([]int{3, 3})
	dst := make([]byte, 4)
	dstStrides := Strides([]int{2, 2})
	CopyND(dst, dstStrides, []int{0, 0}, src, srcStrides, []int{1, 1}, []int{2, 2}, 1)
	assert.Equal(t, []byte{5, 6, 8, 9}, dst)
}

func TestCopyNDIntoOffsetDestination(t *testing.T) {
	// Splice a 1x2 src block into the top-right corner of a 2x3 dst buffer.
	src := []byte{9, 9}
	srcStrides := Strides([]int{1, 2})
	dst := make([]byte, 6)
	dstStrides := Strides([]int{2, 3})
	CopyND(dst, dstStrides, []int{0, 1}, src, srcStrides, []int{0, 0}, []int{1, 2}, 1)
	assert.Equal(t, []byte{0, 9, 9, 0, 0, 0}, dst)
}

func TestCopyNDMultiByteItems(t *testing.T) {
	src := []byte{1, 0, 2, 0, 3, 0, 4, 0} // four little-endian uint16s
	dst := make([]byte, 8)
	strides := Strides([]int{4})
	CopyND(dst, strides, []int{0}, src, strides, []int{0}, []int{4}, 2)
	assert.Equal(t, src, dst)
}

func TestFlipAxesNoOp(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	assert.Equal(t, src, FlipAxes(src, []int{4}, 1, []bool{false}))
}

func TestFlipAxesSingleAxis(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	got := FlipAxes(src, []int{4}, 1, []bool{true})
	assert.Equal(t, []byte{4, 3, 2, 1}, got)
}

func TestFlipAxes2D(t *testing.T) {
	// 2x2 matrix, flip the first axis (rows).
	src := []byte{
		1, 2,
		3, 4,
	}
	got := FlipAxes(src, []int{2, 2}, 1, []bool{true, false})
	assert.Equal(t, []byte{3, 4, 1, 2}, got)
}

func TestFlipAxesRoundTrip(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	flipped := FlipAxes(src, []int{2, 3}, 1, []bool{true, false})
	back := FlipAxes(flipped, []int{2, 3}, 1, []bool{true, false})
	assert.Equal(t, src, back)
}

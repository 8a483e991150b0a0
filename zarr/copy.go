package zarr

// Strides computes C-order (row-major) strides, in elements, for shape.
func Strides(shape []int) []int {
	if len(shape) == 0 {
		return nil
	}
	s := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}

// FlipAxes reverses src (shape-described, row-major, itemSize-wide elements)
// along every axis named in flipped. It is used by the chunk fetcher
// (store/fetch.go) to reorient an OPeNDAP hyperslab whose backing coordinate
// is stored in descending order, so the bytes it hands to the Zarr chunk
// always read in ascending-coordinate order.
func FlipAxes(src []byte, shape []int, itemSize int, flipped []bool) []byte {
	anyFlipped := false
	for _, f := range flipped {
		anyFlipped = anyFlipped || f
	}
	if !anyFlipped {
		return src
	}
	strides := Strides(shape)
	out := make([]byte, len(src))
	total := 1
	for _, s := range shape {
		total *= s
	}
	idx := make([]int, len(shape))
	for flat := 0; flat < total; flat++ {
		srcOff := 0
		for i, c := range idx {
			srcOff += c * strides[i]
		}
		dstIdx := make([]int, len(shape))
		for i, c := range idx {
			if i < len(flipped) && flipped[i] {
				dstIdx[i] = shape[i] - 1 - c
			} else {
				dstIdx[i] = c
			}
		}
		dstOff := 0
		for i, c := range dstIdx {
			dstOff += c * strides[i]
		}
		copy(out[dstOff*itemSize:(dstOff+1)*itemSize], src[srcOff*itemSize:(srcOff+1)*itemSize])

		for i := len(shape) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// CopyND copies the hyperrectangle described by copyShape from src (laid out
// with srcStrides, offset by srcOffset) into dst (dstStrides, dstOffset),
// bulk-copying the innermost contiguous run. It is the splice step that
// assembles a chunk buffer out of an intersected OPeNDAP read, the same
// intersect-and-bulk-copy used when reassembling whole arrays from Zarr
// chunks.
func CopyND(dst []byte, dstStrides, dstOffset []int, src []byte, srcStrides, srcOffset []int, copyShape []int, itemSize int) {
	if len(copyShape) == 0 {
		copy(dst[:itemSize], src[:itemSize])
		return
	}

	startSrcIdx, startDstIdx := 0, 0
	for i := range copyShape {
		startSrcIdx += srcOffset[i] * srcStrides[i]
		startDstIdx += dstOffset[i] * dstStrides[i]
	}

	var iterate func(dim, srcIdx, dstIdx int)
	iterate = func(dim, srcIdx, dstIdx int) {
		if dim == len(copyShape)-1 {
			n := copyShape[dim]
			if srcStrides[dim] == 1 && dstStrides[dim] == 1 {
				byteLen := n * itemSize
				srcStart := srcIdx * itemSize
				dstStart := dstIdx * itemSize
				copy(dst[dstStart:dstStart+byteLen], src[srcStart:srcStart+byteLen])
				return
			}
			for i := 0; i < n; i++ {
				s := (srcIdx + i*srcStrides[dim]) * itemSize
				d := (dstIdx + i*dstStrides[dim]) * itemSize
				copy(dst[d:d+itemSize], src[s:s+itemSize])
			}
			return
		}
		for i := 0; i < copyShape[dim]; i++ {
			iterate(dim+1, srcIdx+i*srcStrides[dim], dstIdx+i*dstStrides[dim])
		}
	}
	iterate(0, startSrcIdx, startDstIdx)
}

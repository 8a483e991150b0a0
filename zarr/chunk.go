package zarr

import (
	"strconv"
	"strings"
)

// GridShape returns, for each axis, the number of chunks covering shape[i]
// given chunks[i]: ceil(shape[i] / chunks[i]).
func GridShape(shape, chunks []int) []int {
	if len(shape) == 0 {
		return nil
	}
	grid := make([]int, len(shape))
	for i := range shape {
		grid[i] = (shape[i] + chunks[i] - 1) / chunks[i]
	}
	return grid
}

// ChunkKey renders a Zarr v2 data-chunk key from its per-axis chunk indices.
// A 0-d array's sole chunk is keyed "0".
func ChunkKey(indices []int) string {
	if len(indices) == 0 {
		return "0"
	}
	if len(indices) == 1 {
		return strconv.Itoa(indices[0])
	}
	var sb strings.Builder
	for i, idx := range indices {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

// ParseChunkKey is the inverse of ChunkKey: it splits the dot-separated
// suffix of a `<var>/<i0>.<i1>…` key into its integer chunk indices. It
// returns ok=false (not an error) when the suffix doesn't parse as chunk
// indices; a metadata name such as ".zarray" and a malformed index list
// are both reported this way.
func ParseChunkKey(suffix string) (indices []int, ok bool) {
	parts := strings.Split(suffix, ".")
	indices = make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		indices[i] = n
	}
	return indices, true
}

// EnumerateChunkIndices returns every chunk-index tuple in the grid, in
// row-major (C) order, i.e. the last axis varies fastest.
func EnumerateChunkIndices(grid []int) [][]int {
	total := 1
	for _, g := range grid {
		total *= g
	}
	if len(grid) == 0 {
		return [][]int{{}}
	}
	out := make([][]int, 0, total)
	idx := make([]int, len(grid))
	for {
		cp := make([]int, len(idx))
		copy(cp, idx)
		out = append(out, cp)

		i := len(grid) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < grid[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return out
}

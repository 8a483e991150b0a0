// Package chunkplan chooses Zarr output chunk shapes bounded by a
// 1,000,000-element budget, preferring shapes that divide the file's own
// chunk shape evenly and are balanced across axes.
package chunkplan

import "sort"

// Budget is the maximum element count of a single planned chunk.
const Budget = 1_000_000

// NoTimeAxis is a sentinel meaning "this array has no time axis"; Plan
// leaves every axis free to search when passed this value.
const NoTimeAxis = -1

// Plan chooses a chunk shape for a variable of the given sizes (its full
// per-axis extents), given the backing file's own fileChunks, and the
// index of the time axis (or NoTimeAxis). When sizes, with the time axis
// set to its file chunk size, fits the budget, that shape is returned as
// is. The result always satisfies product(result) <= Budget, or, when no
// candidate combination fits, equals sizes (one chunk spanning the whole
// array).
func Plan(sizes, fileChunks []int, timeAxis int) []int {
	n := len(sizes)
	candidate := append([]int(nil), sizes...)
	if timeAxis >= 0 && timeAxis < n {
		candidate[timeAxis] = fileChunks[timeAxis]
	}
	if product(candidate) <= Budget {
		return candidate
	}

	validValues := make([][]int, n)
	for i := 0; i < n; i++ {
		if i == timeAxis {
			validValues[i] = []int{fileChunks[i]}
			continue
		}
		validValues[i] = axisCandidates(sizes[i], fileChunks[i])
	}

	best := searchBest(validValues, sizes, timeAxis)
	if best == nil {
		// No combination fits under budget even at each axis's smallest
		// candidate: fall back to a single chunk spanning the whole array.
		best = append([]int(nil), sizes...)
	}
	return best
}

// axisCandidates returns, largest first, the set of valid chunk sizes for
// one non-time axis: every multiple of fileChunk that evenly divides size.
// If no divisor exists, it falls back to the uneven progression
// [fileChunk, 2*fileChunk, ..., size]; if size itself alone fits the
// budget it is offered as a candidate too.
func axisCandidates(size, fileChunk int) []int {
	if fileChunk <= 0 {
		fileChunk = 1
	}
	var divisors []int
	for v := fileChunk; v <= size; v += fileChunk {
		if size%v == 0 {
			divisors = append(divisors, v)
		}
	}
	if len(divisors) == 0 {
		for v := fileChunk; v < size; v += fileChunk {
			divisors = append(divisors, v)
		}
		divisors = append(divisors, size)
	}
	if divisors[len(divisors)-1] != size {
		divisors = append(divisors, size)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(divisors)))
	return divisors
}

// searchBest performs the recursive Cartesian-product search over
// validValues, maximising product(chunks) subject to product <= Budget,
// tie-breaking on the smaller max-over-non-time-axes (more balanced).
func searchBest(validValues [][]int, sizes []int, timeAxis int) []int {
	n := len(validValues)
	current := make([]int, n)
	var best []int
	bestProduct := 0
	bestMax := -1

	var recurse func(axis int)
	recurse = func(axis int) {
		if axis == n {
			p := product(current)
			if p > Budget {
				return
			}
			m := maxNonTime(current, timeAxis)
			if p > bestProduct || (p == bestProduct && m < bestMax) {
				best = append([]int(nil), current...)
				bestProduct = p
				bestMax = m
			}
			return
		}
		for _, v := range validValues[axis] {
			current[axis] = v
			recurse(axis + 1)
		}
	}
	recurse(0)
	return best
}

func product(values []int) int {
	p := 1
	for _, v := range values {
		p *= v
	}
	return p
}

func maxNonTime(values []int, timeAxis int) int {
	m := 0
	for i, v := range values {
		if i == timeAxis {
			continue
		}
		if v > m {
			m = v
		}
	}
	return m
}

package chunkplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanReturnsSizesWhenUnderBudget(t *testing.T) {
	sizes := []int{365, 17, 18, 36}
	fileChunks := []int{1, 17, 18, 36}
	got := Plan(sizes, fileChunks, 0)
	assert.Equal(t, []int{1, 17, 18, 36}, got)
	assert.LessOrEqual(t, product(got), Budget)
}

func TestPlanRespectsBudgetWhenOverBudget(t *testing.T) {
	sizes := []int{365, 2000, 2000}
	fileChunks := []int{1, 100, 100}
	got := Plan(sizes, fileChunks, 0)
	assert.LessOrEqual(t, product(got), Budget)
	assert.Equal(t, fileChunks[0], got[0]) // time axis preserved at file chunk size
	assert.Equal(t, []int{1, 1000, 1000}, got)
}

func TestPlanWithoutTimeAxis(t *testing.T) {
	sizes := []int{4000, 4000}
	fileChunks := []int{400, 400}
	got := Plan(sizes, fileChunks, NoTimeAxis)
	assert.LessOrEqual(t, product(got), Budget)
	assert.Equal(t, 0, got[0]%fileChunks[0])
	assert.Equal(t, 0, got[1]%fileChunks[1])
}

func TestPlanPrefersBalancedChunks(t *testing.T) {
	sizes := []int{1000, 1000}
	fileChunks := []int{10, 10}
	got := Plan(sizes, fileChunks, NoTimeAxis)
	assert.LessOrEqual(t, product(got), Budget)
	// The full 1000x1000 shape is exactly at budget and is returned as is;
	// the planner should not pick a wildly lopsided shape when a squarer one
	// also fits.
	ratio := float64(got[0]) / float64(got[1])
	if ratio < 1 {
		ratio = 1 / ratio
	}
	assert.Less(t, ratio, 100.0)
}

func TestPlanSingleChunkFallback(t *testing.T) {
	sizes := []int{7}
	fileChunks := []int{7}
	got := Plan(sizes, fileChunks, NoTimeAxis)
	assert.Equal(t, []int{7}, got)
}

func TestAxisCandidatesIncludesFullSize(t *testing.T) {
	candidates := axisCandidates(360, 36)
	assert.Contains(t, candidates, 360)
	assert.Equal(t, 360, candidates[0]) // largest first
}

func TestAxisCandidatesFallsBackWhenNoDivisor(t *testing.T) {
	candidates := axisCandidates(17, 5)
	assert.Contains(t, candidates, 17)
}

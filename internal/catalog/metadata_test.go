package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassesForConsistentVariable(t *testing.T) {
	m := &Metadata{
		Dims: map[string]int{"time": 4, "lat": 180, "lon": 360},
		VariableInfos: map[string]VariableInfo{
			"O3_vmr": {
				Dimensions: []string{"time", "lat", "lon"},
				Shape:      []int{4, 180, 360},
				Size:       4 * 180 * 360,
			},
		},
	}
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsDimensionShapeMismatch(t *testing.T) {
	m := &Metadata{
		Dims: map[string]int{"time": 4, "lat": 180},
		VariableInfos: map[string]VariableInfo{
			"bad": {
				Dimensions: []string{"time", "lat"},
				Shape:      []int{4},
				Size:       4,
			},
		},
	}
	assert.Error(t, m.Validate())
}

func TestValidateRejectsSizeMismatch(t *testing.T) {
	m := &Metadata{
		Dims: map[string]int{"time": 4, "lat": 180},
		VariableInfos: map[string]VariableInfo{
			"bad": {
				Dimensions: []string{"time", "lat"},
				Shape:      []int{4, 180},
				Size:       1,
			},
		},
	}
	assert.Error(t, m.Validate())
}

func TestValidateRejectsUnknownDimension(t *testing.T) {
	m := &Metadata{
		Dims: map[string]int{"time": 4},
		VariableInfos: map[string]VariableInfo{
			"bad": {
				Dimensions: []string{"time", "ghost"},
				Shape:      []int{4, 2},
				Size:       8,
			},
		},
	}
	assert.ErrorContains(t, m.Validate(), "ghost")
}

func TestValidateAcceptsCoordinateVariableAsDimensionSource(t *testing.T) {
	m := &Metadata{
		Dims: map[string]int{},
		VariableInfos: map[string]VariableInfo{
			"layers": {
				Dimensions: []string{"layers"},
				Shape:      []int{17},
				Size:       17,
			},
			"O3_vmr": {
				Dimensions: []string{"layers"},
				Shape:      []int{17},
				Size:       17,
			},
		},
	}
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsInvertedBBox(t *testing.T) {
	m := &Metadata{
		HasBBox:  true,
		BBoxMinX: 10, BBoxMaxX: -10,
		BBoxMinY: -5, BBoxMaxY: 5,
	}
	assert.Error(t, m.Validate())
}

func TestGlobalAttrsAllocatesLazily(t *testing.T) {
	m := &Metadata{}
	g := m.globalAttrs()
	g["title"] = "x"
	assert.Equal(t, "x", m.Attributes["NC_GLOBAL"]["title"])
}

func TestSetIfAbsentDoesNotOverwrite(t *testing.T) {
	m := map[string]string{"a": "first"}
	setIfAbsent(m, "a", "second")
	setIfAbsent(m, "b", "third")
	assert.Equal(t, "first", m["a"])
	assert.Equal(t, "third", m["b"])
}

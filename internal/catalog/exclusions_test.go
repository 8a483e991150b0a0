package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExclusionListSkipsCommentsAndBlankLines(t *testing.T) {
	set := parseExclusionList("# header\n\nesacci.OZONE.mon.L3.NP.a.b.c.fv1.r1\n  \n# trailing\nesacci.FIRE.day.L4.GG.d.e.f.fv2.r1\n")
	assert.Len(t, set, 2)
	assert.True(t, set["esacci.OZONE.mon.L3.NP.a.b.c.fv1.r1"])
	assert.True(t, set["esacci.FIRE.day.L4.GG.d.e.f.fv2.r1"])
}

func TestNewExclusionsIsExcludedAndIsNonCube(t *testing.T) {
	e := NewExclusions([]string{"excluded.id"}, []string{"noncube.id"})
	assert.True(t, e.IsExcluded("excluded.id"))
	assert.False(t, e.IsExcluded("noncube.id"))
	assert.True(t, e.IsNonCube("noncube.id"))
	assert.False(t, e.IsNonCube("excluded.id"))
}

func TestNilExclusionsExcludesNothing(t *testing.T) {
	var e *Exclusions
	assert.False(t, e.IsExcluded("anything"))
	assert.False(t, e.IsNonCube("anything"))
}

func TestDefaultExclusionsParsesEmbeddedFiles(t *testing.T) {
	e := DefaultExclusions()
	assert.NotNil(t, e)
	assert.False(t, e.IsExcluded("esacci.OZONE.mon.L3.NP.multi-sensor.multi-platform.MERGED.fv0002.r1"))
}

package catalog

import (
	_ "embed"
	"strings"
)

//go:embed data/excluded_datasets.txt
var excludedDatasetsData string

//go:embed data/non_cube_datasets.txt
var nonCubeDatasetsData string

// Exclusions holds the two static product-management lists bundled with
// the store: datasets known to be incomplete, and datasets that are valid
// but not cube-shaped. Both are opaque data, not protocol.
type Exclusions struct {
	excluded map[string]bool
	nonCube  map[string]bool
}

// DefaultExclusions parses the two exclusion lists embedded at build time.
func DefaultExclusions() *Exclusions {
	return &Exclusions{
		excluded: parseExclusionList(excludedDatasetsData),
		nonCube:  parseExclusionList(nonCubeDatasetsData),
	}
}

// NewExclusions builds an Exclusions from explicit id lists, for tests and
// callers that source the lists some other way.
func NewExclusions(excluded, nonCube []string) *Exclusions {
	e := &Exclusions{excluded: map[string]bool{}, nonCube: map[string]bool{}}
	for _, id := range excluded {
		e.excluded[id] = true
	}
	for _, id := range nonCube {
		e.nonCube[id] = true
	}
	return e
}

func parseExclusionList(data string) map[string]bool {
	set := map[string]bool{}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = true
	}
	return set
}

// IsExcluded reports whether drsID is on the incomplete-dataset list. A nil
// Exclusions excludes nothing.
func (e *Exclusions) IsExcluded(drsID string) bool {
	return e != nil && e.excluded[drsID]
}

// IsNonCube reports whether drsID is on the not-cube-shaped list.
func (e *Exclusions) IsNonCube(drsID string) bool {
	return e != nil && e.nonCube[drsID]
}

package drs

import (
	"fmt"
	"regexp"
	"strings"
)

var parenColonTitle = regexp.MustCompile(`.*\(.*\).*:.*`)

// ShortenTitle reduces a verbose OpenSearch feature title of the form
// "<long ECV name> (<CCI name>) : Level 3, version 2.0, ..." to
// "<CCI name>: L3 v2.0, ...". Titles that don't match the "(...) : ..."
// shape pass through unchanged.
func ShortenTitle(title string) string {
	if !parenColonTitle.MatchString(title) {
		return title
	}
	parts := strings.SplitN(title, ":", 2)
	if len(parts) != 2 {
		return title
	}
	open := strings.Index(parts[0], "(")
	close := strings.Index(parts[0], ")")
	if open < 0 || close < 0 || close < open {
		return title
	}
	cciName := parts[0][open+1 : close]
	setName := strings.ReplaceAll(parts[1], "Level ", "L")
	setName = strings.ReplaceAll(setName, ", version ", " v")
	setName = strings.ReplaceAll(setName, ", Version ", " v")
	return fmt.Sprintf("%s:%s", cciName, setName)
}

// SynthesizeTitle renders the human-readable title used by the search/
// describe facade:
// "<ECV> CCI: <freq-adjective> <sensor> <level> <product> <type>, v<version>".
func SynthesizeTitle(id ID) string {
	return fmt.Sprintf("%s CCI: %s %s %s %s %s, v%s",
		id.ECV, FrequencyAdjective(id.Frequency), id.Sensor, id.Level,
		id.Product, id.Type, id.VersionDotted())
}

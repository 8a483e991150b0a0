// Package drs implements the ESA CCI Data Reference Syntax: the ten-field
// dotted dataset identifier used throughout the catalog, and the small set
// of string transforms (frequency normalisation, human title shortening)
// the portal applies to it.
package drs

import (
	"fmt"
	"strings"
)

// ID is a parsed Data Reference Syntax identifier:
// esacci.ecv.frequency.level.type.sensor.platform.product.version.tail
type ID struct {
	ECV       string
	Frequency string // raw token, as it appears in the dotted id (e.g. "mon", "5-days")
	Level     string
	Type      string
	Sensor    string
	Platform  string
	Product   string
	Version   string // raw token, dots replaced by '-' (e.g. "2-0")
	Tail      string
}

const numFields = 10

// Parse splits a dotted DRS identifier into its ten positional fields.
// The leading "esacci" literal is validated but not stored.
func Parse(id string) (ID, error) {
	fields := strings.Split(id, ".")
	if len(fields) != numFields {
		return ID{}, fmt.Errorf("drs: %q has %d fields, expected %d", id, len(fields), numFields)
	}
	if fields[0] != "esacci" {
		return ID{}, fmt.Errorf("drs: %q does not start with \"esacci\"", id)
	}
	return ID{
		ECV:       fields[1],
		Frequency: fields[2],
		Level:     fields[3],
		Type:      fields[4],
		Sensor:    fields[5],
		Platform:  fields[6],
		Product:   fields[7],
		Version:   fields[8],
		Tail:      fields[9],
	}, nil
}

// String renders the identifier back into its canonical dotted form.
func (id ID) String() string {
	return strings.Join([]string{
		"esacci", id.ECV, id.Frequency, id.Level, id.Type, id.Sensor,
		id.Platform, id.Product, id.Version, id.Tail,
	}, ".")
}

// VersionDotted renders Version with '-' restored to '.', the form the
// OpenSearch productVersion facet expects.
func (id ID) VersionDotted() string {
	return strings.ReplaceAll(id.Version, "-", ".")
}

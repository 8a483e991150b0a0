// Package odd parses the two XML metadata documents the catalog attaches to
// a dataset feature: the OpenSearch Description Document (ODD), which
// enumerates facet option sets, and the ISO-19115 description document
// ("descxml"), which carries bbox/temporal/title/licence fields. Both
// parsers degrade to an empty result on malformed input rather than
// failing the caller.
package odd

import (
	"encoding/xml"
)

// enumeratedParams lists the ODD parameter names the catalog cares about,
// in canonical facet order.
var enumeratedParams = []string{
	"ecv", "frequency", "institute", "processingLevel", "productString",
	"productVersion", "dataType", "sensor", "platform", "fileFormat", "drsId",
}

// document is the subset of an OpenSearch:Url/Parameter document this
// parser needs: every <parameter name="..."> element carries its option
// set as nested <Option value="..."/> children.
type document struct {
	XMLName xml.Name `xml:"OpenSearchDescription"`
	URLs    []struct {
		Parameters []struct {
			Name    string `xml:"name,attr"`
			Options []struct {
				Value string `xml:"value,attr"`
			} `xml:"Option"`
		} `xml:"Parameter"`
	} `xml:"Url"`
}

// Fields is the harmonised result of parsing an ODD document: a single-
// option parameter named "x" is stored under Scalars["x"]; a multi-option
// parameter is stored under Lists["xs"]. A parameter never appears in both.
type Fields struct {
	Scalars map[string]string
	Lists   map[string][]string
}

// Parse extracts the enumerated option sets named in enumeratedParams from
// an ODD XML document. Malformed XML yields an empty, non-nil Fields
// rather than an error.
func Parse(data []byte) Fields {
	fields := Fields{Scalars: map[string]string{}, Lists: map[string][]string{}}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fields
	}

	wanted := make(map[string]bool, len(enumeratedParams))
	for _, name := range enumeratedParams {
		wanted[name] = true
	}

	for _, u := range doc.URLs {
		for _, p := range u.Parameters {
			if !wanted[p.Name] {
				continue
			}
			values := make([]string, 0, len(p.Options))
			for _, o := range p.Options {
				if o.Value != "" {
					values = append(values, o.Value)
				}
			}
			if len(values) == 0 {
				continue
			}
			if len(values) == 1 {
				fields.Scalars[p.Name] = values[0]
			} else {
				fields.Lists[p.Name+"s"] = append(fields.Lists[p.Name+"s"], values...)
			}
		}
	}

	harmonize(&fields)
	return fields
}

// harmonize enforces "both singular and plural never coexist": when a
// parameter has both a scalar and a list entry, the scalar is folded into
// the list and removed.
func harmonize(fields *Fields) {
	for _, name := range enumeratedParams {
		plural := name + "s"
		scalar, hasScalar := fields.Scalars[name]
		_, hasList := fields.Lists[plural]
		if hasScalar && hasList {
			fields.Lists[plural] = append(fields.Lists[plural], scalar)
			delete(fields.Scalars, name)
		}
	}
}

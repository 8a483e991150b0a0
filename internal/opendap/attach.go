package opendap

import "strings"

// AttachDAS merges a parsed DAS attribute table into a dataset's
// variables, renaming "_FillValue" to "fill_value" and "_ChunkSizes" to
// "chunk_sizes". Unrecognised variable names in das are
// ignored.
func AttachDAS(ds *Dataset, das map[string]map[string]string) {
	for name, attrs := range das {
		v, ok := ds.Variables[name]
		if !ok {
			continue
		}
		for attrName, raw := range attrs {
			value := strings.Trim(raw, "\"")
			switch attrName {
			case "_FillValue":
				v.FillValue = value
				v.Attributes["fill_value"] = value
			case "_ChunkSizes":
				if sizes, err := ChunkSizesFromAttr(raw); err == nil {
					v.ChunkSizes = sizes
				}
				v.Attributes["chunk_sizes"] = value
			default:
				v.Attributes[attrName] = value
			}
		}
	}
}

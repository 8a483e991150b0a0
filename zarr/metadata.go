// Package zarr provides the Zarr v2 metadata and encoding primitives shared
// by the virtual store: array/group metadata JSON shapes, dtype codecs, and
// chunk-key helpers. It knows nothing about the ESA CCI Open Data Portal.
package zarr

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CompressorConfig is the Zarr v2 compressor metadata block.
type CompressorConfig struct {
	ID        string `json:"id"`
	Cname     string `json:"cname,omitempty"`
	Clevel    int    `json:"clevel,omitempty"`
	Shuffle   int    `json:"shuffle,omitempty"`
	Blocksize int    `json:"blocksize"`
}

// ByteShuffle is the Blosc shuffle filter id used for embedded static chunks.
const ByteShuffle = 1

// StaticChunkCompressor is the compressor block advertised for every
// embedded static chunk (coordinates, time, time_bnds): Blosc/zstd,
// clevel 1, byte-shuffle.
var StaticChunkCompressor = &CompressorConfig{
	ID:      "blosc",
	Cname:   "zstd",
	Clevel:  1,
	Shuffle: ByteShuffle,
}

// ArrayMetadata is the Zarr v2 `.zarray` document.
type ArrayMetadata struct {
	ZarrFormat int               `json:"zarr_format"`
	Shape      []int             `json:"shape"`
	Chunks     []int             `json:"chunks"`
	DType      string            `json:"dtype"`
	Compressor *CompressorConfig `json:"compressor"`
	FillValue  any               `json:"fill_value"`
	Filters    any               `json:"filters"`
	Order      string            `json:"order"`
}

// GroupMetadata is the Zarr v2 `.zgroup` document.
type GroupMetadata struct {
	ZarrFormat int `json:"zarr_format"`
}

// MarshalGroup renders the single required `.zgroup` document.
func MarshalGroup() []byte {
	b, _ := json.Marshal(GroupMetadata{ZarrFormat: 2})
	return b
}

// MarshalAttrs renders an arbitrary attributes map as a `.zattrs` document.
// A nil map marshals to "{}", matching Zarr's convention of an always-present
// (possibly empty) attributes document.
func MarshalAttrs(attrs map[string]any) []byte {
	if attrs == nil {
		attrs = map[string]any{}
	}
	b, _ := json.Marshal(attrs)
	return b
}

// LoadArrayMetadata parses a `.zarray` document.
func LoadArrayMetadata(data []byte) (*ArrayMetadata, error) {
	var meta ArrayMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode .zarray: %w", err)
	}
	if meta.ZarrFormat != 2 {
		return nil, fmt.Errorf("unsupported zarr_format: %d, expected 2", meta.ZarrFormat)
	}
	return &meta, nil
}

// Marshal renders a `.zarray` document.
func (m *ArrayMetadata) Marshal() []byte {
	b, _ := json.Marshal(m)
	return b
}

// ParseDType takes a numpy-style dtype string like "<f4", "|u1", "<i8" and
// returns a Go-flavoured kind name (e.g. "float32"), the item byte size, and
// an error if unsupported. Big-endian ('>') dtypes are rejected: every
// chunk on the wire must be little-endian.
func ParseDType(s string) (kind string, itemSize int, err error) {
	if len(s) < 3 {
		return "", 0, fmt.Errorf("invalid dtype: %s", s)
	}
	endian := s[0]
	if endian == '>' {
		return "", 0, fmt.Errorf("big-endian dtypes are unsupported: %s", s)
	}
	code := s[1]
	size, err := strconv.Atoi(s[2:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid size in dtype: %s", s)
	}
	switch code {
	case 'b':
		return "bool", size, nil
	case 'i':
		return fmt.Sprintf("int%d", size*8), size, nil
	case 'u':
		return fmt.Sprintf("uint%d", size*8), size, nil
	case 'f':
		return fmt.Sprintf("float%d", size*8), size, nil
	case 'c':
		return fmt.Sprintf("complex%d", size*8), size, nil
	default:
		return "", 0, fmt.Errorf("unsupported dtype kind: %c in %s", code, s)
	}
}

// DTypeString formats a Zarr dtype code for a known NetCDF/DAP scalar kind,
// the inverse of ParseDType, restricted to the numeric and boolean kinds
// OPeNDAP variables actually carry.
func DTypeString(kind string) (string, error) {
	switch kind {
	case "float32":
		return "<f4", nil
	case "float64":
		return "<f8", nil
	case "uint8", "byte", "char":
		return "|u1", nil
	case "uint16":
		return "<u2", nil
	case "uint32":
		return "<u4", nil
	case "int8":
		return "|i1", nil
	case "int16":
		return "<i2", nil
	case "int32", "int":
		return "<i4", nil
	case "int64":
		return "<i8", nil
	default:
		return "", fmt.Errorf("unsupported variable kind: %s", kind)
	}
}

package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/xcube-dev/xcube-cci/config"
	"github.com/xcube-dev/xcube-cci/internal/catalog"
	"github.com/xcube-dev/xcube-cci/internal/opendap"
	"github.com/xcube-dev/xcube-cci/zarr"
)

// materializeThreshold is the element-count ceiling below which a
// coordinate variable's values are fetched once and embedded as a static
// compressed chunk, rather than exposed as a remote array.
const materializeThreshold = 1024 * 1024

// coordinateVariableNames returns every coordinate variable to install: the
// axis-named entries of dims that also carry their own VariableInfo, plus
// every other variable the fixed coordinate vocabulary names.
func coordinateVariableNames(meta *catalog.Metadata) []string {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if name == "time" || name == "time_bnds" || seen[name] {
			return
		}
		if _, ok := meta.VariableInfos[name]; !ok {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for dim := range meta.Dims {
		add(dim)
	}
	for name := range meta.VariableInfos {
		if catalog.IsCoordinateName(name) {
			add(name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Store) installCoordinates(ctx context.Context, granuleURL string, params config.OpenParams) (map[string]axisTrim, error) {
	trims := map[string]axisTrim{}
	for _, name := range coordinateVariableNames(s.meta) {
		if err := s.installCoordinate(ctx, granuleURL, name, params, trims); err != nil {
			return nil, err
		}
	}
	return trims, nil
}

// installCoordinate materialises a 1-D coordinate (applying bbox trimming
// when requested) or falls through to installPlainCoordinate for a
// multi-dimensional ancillary coordinate such as a bounds variable.
func (s *Store) installCoordinate(ctx context.Context, granuleURL, name string, params config.OpenParams, trims map[string]axisTrim) error {
	info := s.meta.VariableInfos[name]
	if len(info.Shape) != 1 {
		return s.installPlainCoordinate(ctx, granuleURL, name, info)
	}

	size := info.Shape[0]
	_, itemSize, err := zarr.ParseDType(info.DType)
	if err != nil {
		return fmt.Errorf("store: coordinate %s has unsupported dtype %s: %w", name, info.DType, err)
	}

	if size >= materializeThreshold || granuleURL == "" {
		s.installRemoteArray(name, info.Dimensions, info.Shape, info.FileChunkSizes, info.DType, info.FillValue, info.Attributes, -1)
		return nil
	}

	raw, err := s.opendap.Read(ctx, granuleURL, name, info.DType, []opendap.Slice{{Start: 0, Stop: size}})
	if err != nil {
		return fmt.Errorf("store: fetching coordinate %s: %w", name, ErrGranuleUnavailable)
	}

	lo, hi, flipped := 0, size, false
	if params.HasBBox && isBBoxAxis(name) {
		values := decodeFloats(raw, itemSize)
		lo, hi, flipped = trimToBBox(values, name, params)
	}
	trimmed := append([]byte(nil), raw[lo*itemSize:hi*itemSize]...)
	shape := []int{hi - lo}
	if flipped {
		trimmed = zarr.FlipAxes(trimmed, shape, itemSize, []bool{true})
	}
	trims[name] = axisTrim{offset: lo, flipped: flipped}

	compressed, err := zarr.BloscCompress(trimmed, itemSize)
	if err != nil {
		return fmt.Errorf("store: compressing coordinate %s: %w", name, err)
	}
	s.installStaticArray(name, info.Dimensions, shape, info.DType, info.FillValue, info.Attributes, compressed)
	return nil
}

// installPlainCoordinate installs a coordinate carrying no bbox-trimmable
// axis of its own (e.g. lat_bnds, layers), fetching it whole when small.
func (s *Store) installPlainCoordinate(ctx context.Context, granuleURL, name string, info catalog.VariableInfo) error {
	size := product(info.Shape)
	_, itemSize, err := zarr.ParseDType(info.DType)
	if err != nil {
		return fmt.Errorf("store: coordinate %s has unsupported dtype %s: %w", name, info.DType, err)
	}
	if size >= materializeThreshold || granuleURL == "" {
		s.installRemoteArray(name, info.Dimensions, info.Shape, info.FileChunkSizes, info.DType, info.FillValue, info.Attributes, -1)
		return nil
	}
	raw, err := s.opendap.Read(ctx, granuleURL, name, info.DType, fullSlices(info.Shape))
	if err != nil {
		return fmt.Errorf("store: fetching coordinate %s: %w", name, ErrGranuleUnavailable)
	}
	compressed, err := zarr.BloscCompress(raw, itemSize)
	if err != nil {
		return fmt.Errorf("store: compressing coordinate %s: %w", name, err)
	}
	s.installStaticArray(name, info.Dimensions, info.Shape, info.DType, info.FillValue, info.Attributes, compressed)
	return nil
}

func fullSlices(shape []int) []opendap.Slice {
	slices := make([]opendap.Slice, len(shape))
	for i, n := range shape {
		slices[i] = opendap.Slice{Start: 0, Stop: n}
	}
	return slices
}

func isBBoxAxis(name string) bool {
	switch name {
	case "lat", "latitude", "lon", "longitude":
		return true
	default:
		return false
	}
}

func decodeFloats(raw []byte, itemSize int) []float64 {
	n := len(raw) / itemSize
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		off := i * itemSize
		switch itemSize {
		case 4:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])))
		case 8:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[off:]))
		default:
			out[i] = 0
		}
	}
	return out
}

// trimToBBox bisects values (a coordinate's materialised values, ascending
// or descending) against the bbox bound matching name's axis, returning the
// half-open [lo,hi) index range to keep and whether the backing order was
// descending.
func trimToBBox(values []float64, name string, params config.OpenParams) (lo, hi int, flipped bool) {
	var boundLo, boundHi float64
	switch name {
	case "lat", "latitude":
		boundLo, boundHi = params.BBoxMinY, params.BBoxMaxY
	default:
		boundLo, boundHi = params.BBoxMinX, params.BBoxMaxX
	}

	ascending := len(values) < 2 || values[0] <= values[len(values)-1]
	if ascending {
		lo = sort.Search(len(values), func(i int) bool { return values[i] >= boundLo })
		hi = sort.Search(len(values), func(i int) bool { return values[i] > boundHi })
		return lo, hi, false
	}

	lo = sort.Search(len(values), func(i int) bool { return values[i] <= boundHi })
	hi = sort.Search(len(values), func(i int) bool { return values[i] < boundLo })
	return lo, hi, true
}

func product(shape []int) int {
	p := 1
	for _, v := range shape {
		p *= v
	}
	return p
}

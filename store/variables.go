package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/xcube-dev/xcube-cci/config"
	"github.com/xcube-dev/xcube-cci/drs"
	"github.com/xcube-dev/xcube-cci/internal/chunkplan"
	"github.com/xcube-dev/xcube-cci/zarr"
)

// openParamsHistoryEntry renders the effective OpenParams a dataset was
// opened with into one `history` entry, mirroring the cube_params record the
// upstream cube store stamps into its own global attributes.
func openParamsHistoryEntry(params config.OpenParams) map[string]any {
	cubeParams := map[string]any{}
	if len(params.VariableNames) > 0 {
		cubeParams["variable_names"] = append([]string(nil), params.VariableNames...)
	}
	if !params.TimeStart.IsZero() || !params.TimeEnd.IsZero() {
		cubeParams["time_range"] = [2]string{
			params.TimeStart.UTC().Format(time.RFC3339),
			params.TimeEnd.UTC().Format(time.RFC3339),
		}
	}
	if params.HasBBox {
		cubeParams["bbox"] = [4]float64{params.BBoxMinX, params.BBoxMinY, params.BBoxMaxX, params.BBoxMaxY}
	}
	return map[string]any{
		"program":     "xcube-cci/store",
		"cube_params": cubeParams,
	}
}

func indexOf(names []string, target string) int {
	for i, n := range names {
		if n == target {
			return i
		}
	}
	return -1
}

func zerosOf(n int) []int { return make([]int, n) }

// parseFillValue renders a DAS-sourced fill_value string as the JSON value
// `.zarray`'s fill_value field expects: a number when it parses as a finite
// one, the raw string otherwise (e.g. "NaN"), null when absent.
func parseFillValue(raw string) any {
	if raw == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return raw
}

func attrsWithDims(dims []string, attrs map[string]string) map[string]any {
	out := map[string]any{"_ARRAY_DIMENSIONS": dims}
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// installStaticArray installs a fully materialised, Blosc-compressed array:
// its `.zarray`/`.zattrs` documents and the single chunk holding compressed.
func (s *Store) installStaticArray(name string, dims []string, shape []int, dtype, fillValue string, attrs map[string]string, compressed []byte) {
	plan := variablePlan{dims: dims, shape: shape, chunks: append([]int(nil), shape...), dtype: dtype, fillValue: fillValue, timeAxis: -1}

	arr := &zarr.ArrayMetadata{
		ZarrFormat: 2, Shape: shape, Chunks: plan.chunks, DType: dtype,
		Compressor: zarr.StaticChunkCompressor, FillValue: parseFillValue(fillValue),
		Filters: nil, Order: "C",
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[name] = plan
	s.vfs[name+"/.zarray"] = entry{bytes: arr.Marshal()}
	s.vfs[name+"/.zattrs"] = entry{bytes: zarr.MarshalAttrs(attrsWithDims(dims, attrs))}
	s.vfs[name+"/"+zarr.ChunkKey(zerosOf(len(shape)))] = entry{bytes: compressed}
}

// installRemoteArray installs a variable backed by lazy chunk handles:
// `.zarray`/`.zattrs` plus one handle entry per chunk in the planned grid.
func (s *Store) installRemoteArray(name string, dims []string, shape, fileChunks []int, dtype, fillValue string, attrs map[string]string, timeAxis int) {
	chunks := chunkplan.Plan(shape, normalizeFileChunks(fileChunks, shape, timeAxis), timeAxis)
	plan := variablePlan{
		dims: dims, shape: shape, chunks: chunks, dtype: dtype, fillValue: fillValue,
		timeAxis: timeAxis, offsets: zerosOf(len(shape)), flipped: make([]bool, len(shape)),
	}
	s.installPlan(name, plan, attrs)
}

func normalizeFileChunks(fileChunks, shape []int, timeAxis int) []int {
	if len(fileChunks) == len(shape) {
		return fileChunks
	}
	out := append([]int(nil), shape...)
	if timeAxis >= 0 && timeAxis < len(out) {
		out[timeAxis] = 1
	}
	return out
}

// installPlan writes plan's `.zarray`/`.zattrs` and enumerates every chunk
// index in its grid as a lazy handle entry.
func (s *Store) installPlan(name string, plan variablePlan, attrs map[string]string) {
	arr := &zarr.ArrayMetadata{
		ZarrFormat: 2, Shape: plan.shape, Chunks: plan.chunks, DType: plan.dtype,
		Compressor: nil, FillValue: parseFillValue(plan.fillValue), Filters: nil, Order: "C",
	}

	grid := zarr.GridShape(plan.shape, plan.chunks)
	indices := zarr.EnumerateChunkIndices(grid)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[name] = plan
	s.vfs[name+"/.zarray"] = entry{bytes: arr.Marshal()}
	s.vfs[name+"/.zattrs"] = entry{bytes: zarr.MarshalAttrs(attrsWithDims(plan.dims, attrs))}
	for _, idx := range indices {
		key := name + "/" + zarr.ChunkKey(idx)
		s.vfs[key] = entry{isChunk: true, handle: chunkHandle{variable: name, index: append([]int(nil), idx...)}}
	}
}

// installDataVariable installs one caller-selected data variable, prepending
// a time axis when the underlying file schema doesn't already have one and
// re-planning its chunk shape.
func (s *Store) installDataVariable(name string, trims map[string]axisTrim) error {
	info, ok := s.meta.VariableInfos[name]
	if !ok {
		return fmt.Errorf("%w: unknown variable %q", ErrInvalidArgument, name)
	}

	dims := append([]string(nil), info.Dimensions...)
	shape := append([]int(nil), info.Shape...)
	fileChunks := append([]int(nil), info.FileChunkSizes...)

	timeAxis := indexOf(dims, "time")
	timePrepended := timeAxis < 0
	if timePrepended {
		dims = append([]string{"time"}, dims...)
		shape = append([]int{len(s.windows)}, shape...)
		if len(fileChunks) == len(info.Dimensions) {
			fileChunks = append([]int{1}, fileChunks...)
		}
		timeAxis = 0
	} else {
		shape[timeAxis] = len(s.windows)
	}

	offsets := make([]int, len(dims))
	flipped := make([]bool, len(dims))
	for i, d := range dims {
		if i == timeAxis {
			continue
		}
		if plan, ok := s.plans[d]; ok && len(plan.shape) == 1 {
			shape[i] = plan.shape[0]
		}
		if t, ok := trims[d]; ok {
			offsets[i] = t.offset
			flipped[i] = t.flipped
		}
	}

	chunks := chunkplan.Plan(shape, normalizeFileChunks(fileChunks, shape, timeAxis), timeAxis)
	plan := variablePlan{
		dims: dims, shape: shape, chunks: chunks, dtype: info.DType, fillValue: info.FillValue,
		timeAxis: timeAxis, timePrepended: timePrepended, offsets: offsets, flipped: flipped,
	}
	s.installPlan(name, plan, info.Attributes)
	return nil
}

func secondsSinceEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// installTimeArrays installs the synthetic `time`/`time_bnds` static arrays
// with their CF time-coordinate attributes fixed.
func (s *Store) installTimeArrays() {
	n := len(s.windows)
	timeVals := make([]byte, n*8)
	boundsVals := make([]byte, n*2*8)
	for i, w := range s.windows {
		binary.LittleEndian.PutUint64(timeVals[i*8:], math.Float64bits(secondsSinceEpoch(w.Midpoint())))
		binary.LittleEndian.PutUint64(boundsVals[i*16:], math.Float64bits(secondsSinceEpoch(w.Start)))
		binary.LittleEndian.PutUint64(boundsVals[i*16+8:], math.Float64bits(secondsSinceEpoch(w.End)))
	}

	timeCompressed, _ := zarr.BloscCompress(timeVals, 8)
	boundsCompressed, _ := zarr.BloscCompress(boundsVals, 8)

	timeAttrs := map[string]string{
		"units":         "seconds since 1970-01-01T00:00:00Z",
		"calendar":      "proleptic_gregorian",
		"standard_name": "time",
		"bounds":        "time_bnds",
	}
	boundsAttrs := map[string]string{
		"units":         "seconds since 1970-01-01T00:00:00Z",
		"calendar":      "proleptic_gregorian",
		"standard_name": "time_bnds",
	}

	s.installStaticArray("time", []string{"time"}, []int{n}, "<f8", "", timeAttrs, timeCompressed)
	s.installStaticArray("time_bnds", []string{"time", "bnds"}, []int{n, 2}, "<f8", "", boundsAttrs, boundsCompressed)
}

// installGroupAttrs installs `.zgroup` and the top-level `.zattrs` document,
// including a history entry recording the program name and the OpenParams
// the store was opened with.
func (s *Store) installGroupAttrs(params config.OpenParams) {
	id, _ := drs.Parse(s.drsID)
	start := s.windows[0].Start
	end := s.windows[len(s.windows)-1].End

	var nonStandard []string
	for _, name := range coordinateVariableNames(s.meta) {
		switch name {
		case "lat", "latitude", "lon", "longitude":
			continue
		}
		nonStandard = append(nonStandard, name)
	}

	attrs := map[string]any{
		"Conventions":            "CF-1.7",
		"title":                  s.drsID,
		"date_created":           time.Now().UTC().Format(time.RFC3339),
		"processing_level":       id.Level,
		"time_coverage_start":    start.UTC().Format(time.RFC3339),
		"time_coverage_end":      end.UTC().Format(time.RFC3339),
		"time_coverage_duration": end.Sub(start).String(),
		"coordinates":            nonStandard,
		"history":                []map[string]any{openParamsHistoryEntry(params)},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vfs[".zgroup"] = entry{bytes: zarr.MarshalGroup()}
	s.vfs[".zattrs"] = entry{bytes: zarr.MarshalAttrs(attrs)}
}

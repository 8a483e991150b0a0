package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/xcube-dev/xcube-cci/internal/opendap"
	"github.com/xcube-dev/xcube-cci/zarr"
)

// fetchChunk resolves one lazy chunk handle over OPeNDAP and reports the
// outcome to the configured observer before returning, win or lose.
func (s *Store) fetchChunk(ctx context.Context, h chunkHandle) ([]byte, error) {
	started := time.Now()
	data, t0, t1, err := s.doFetchChunk(ctx, h)
	s.cfg.Observer.OnFetch(FetchEvent{
		Variable:   h.variable,
		ChunkIndex: append([]int(nil), h.index...),
		TimeStart:  t0,
		TimeEnd:    t1,
		Duration:   time.Since(started),
		Err:        err,
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) doFetchChunk(ctx context.Context, h chunkHandle) ([]byte, time.Time, time.Time, error) {
	s.mu.RLock()
	plan, ok := s.plans[h.variable]
	s.mu.RUnlock()
	if !ok {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: unknown variable %q", ErrNotFound, h.variable)
	}

	_, itemSize, err := zarr.ParseDType(plan.dtype)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("store: chunk %s has unsupported dtype: %w", h.variable, err)
	}

	logicalShape := make([]int, len(plan.dims))
	fileSlices := make([]opendap.Slice, 0, len(plan.dims))
	for i := range plan.dims {
		if i == plan.timeAxis {
			continue
		}
		lo := h.index[i] * plan.chunks[i]
		hi := lo + plan.chunks[i]
		if hi > plan.shape[i] {
			hi = plan.shape[i]
		}
		logicalShape[i] = hi - lo
		if plan.flipped[i] {
			// Exposed index j of a flipped axis is file index shape-1-j.
			lo, hi = plan.shape[i]-hi, plan.shape[i]-lo
		}
		fileSlices = append(fileSlices, opendap.Slice{Start: lo + plan.offsets[i], Stop: hi + plan.offsets[i]})
	}
	// fileSlices skipped the time axis above; reinsert its own singleton
	// slice when the backing file actually declares one.
	if plan.timeAxis >= 0 && !plan.timePrepended {
		inserted := make([]opendap.Slice, 0, len(fileSlices)+1)
		inserted = append(inserted, fileSlices[:plan.timeAxis]...)
		inserted = append(inserted, opendap.Slice{Start: 0, Stop: 1})
		inserted = append(inserted, fileSlices[plan.timeAxis:]...)
		fileSlices = inserted
	}

	if plan.timeAxis < 0 {
		url := s.anyGranuleURL()
		if url == "" {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: no granule available for %s", ErrGranuleUnavailable, h.variable)
		}
		raw, err := s.opendap.Read(ctx, url, h.variable, plan.dtype, fileSlices)
		if err != nil {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrGranuleUnavailable, err)
		}
		out := zarr.FlipAxes(raw, logicalShape, itemSize, plan.flipped)
		return out, time.Time{}, time.Time{}, nil
	}

	timeLo := h.index[plan.timeAxis] * plan.chunks[plan.timeAxis]
	timeHi := timeLo + plan.chunks[plan.timeAxis]
	if timeHi > plan.shape[plan.timeAxis] {
		timeHi = plan.shape[plan.timeAxis]
	}

	full := append([]int(nil), logicalShape...)
	full[plan.timeAxis] = timeHi - timeLo
	stepShape := append([]int(nil), full...)
	stepShape[plan.timeAxis] = 1

	dstStrides := zarr.Strides(full)
	srcStrides := zarr.Strides(stepShape)
	srcOffset := zerosOf(len(full))
	dstOffset := zerosOf(len(full))

	combined := make([]byte, product(full)*itemSize)
	for t := timeLo; t < timeHi; t++ {
		url := ""
		if t < len(s.granuleURL) {
			url = s.granuleURL[t]
		}
		var raw []byte
		if url == "" {
			raw = fillChunkBytes(fileSlices, itemSize, plan.fillValue)
		} else {
			var err error
			raw, err = s.opendap.Read(ctx, url, h.variable, plan.dtype, fileSlices)
			if err != nil {
				return nil, time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrGranuleUnavailable, err)
			}
		}
		dstOffset[plan.timeAxis] = t - timeLo
		zarr.CopyND(combined, dstStrides, dstOffset, raw, srcStrides, srcOffset, stepShape, itemSize)
	}
	out := zarr.FlipAxes(combined, full, itemSize, plan.flipped)

	var t0, t1 time.Time
	if timeLo < len(s.windows) {
		t0 = s.windows[timeLo].Start
	}
	if timeHi-1 >= 0 && timeHi-1 < len(s.windows) {
		t1 = s.windows[timeHi-1].End
	}
	return out, t0, t1, nil
}

func (s *Store) anyGranuleURL() string {
	for _, u := range s.granuleURL {
		if u != "" {
			return u
		}
	}
	return ""
}

// fillChunkBytes synthesises a missing time step's slab as itemSize-wide
// copies of fillValue, for a chunk window no granule covers.
func fillChunkBytes(slices []opendap.Slice, itemSize int, fillValue string) []byte {
	count := 1
	for _, sl := range slices {
		if sl.Stop > sl.Start {
			count *= sl.Stop - sl.Start
		}
	}
	pattern := fillBytePattern(fillValue, itemSize)
	out := make([]byte, count*itemSize)
	for i := 0; i < count; i++ {
		copy(out[i*itemSize:], pattern)
	}
	return out
}

func fillBytePattern(fillValue string, itemSize int) []byte {
	buf := make([]byte, itemSize)
	v, err := strconv.ParseFloat(fillValue, 64)
	if err != nil {
		return buf
	}
	switch itemSize {
	case 4:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case 8:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	}
	return buf
}

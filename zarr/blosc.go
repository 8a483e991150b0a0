package zarr

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Blosc-lite container: this module ships only static, self-produced
// chunks (materialised coordinates, time, time_bnds), so it needs an
// encoder, not a general Blosc decoder. No complete pure-Go Blosc encoder
// is available (see DESIGN.md), so the container here is a minimal,
// documented framing around the zstd codec: a fixed 8-byte header
// (typesize, shuffle flag, uncompressed length) followed by a
// byte-shuffled, zstd-compressed payload. It round-trips through
// BloscCompress/BloscDecompress and advertises itself as
// {id:"blosc",cname:"zstd",clevel:1,shuffle:1}; it is not wire-compatible
// with the reference C-Blosc container.
const bloscHeaderSize = 8

// BloscCompress shuffles itemSize-wide elements byte-by-byte (Blosc's
// BYTE_SHUFFLE filter) and zstd-compresses the result at level 1.
func BloscCompress(data []byte, itemSize int) ([]byte, error) {
	if itemSize <= 0 {
		itemSize = 1
	}
	shuffled := shuffle(data, itemSize)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(shuffled, nil)

	header := make([]byte, bloscHeaderSize)
	header[0] = byte(itemSize)
	header[1] = ByteShuffle
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(data)))
	return append(header, compressed...), nil
}

// BloscDecompress is the inverse of BloscCompress.
func BloscDecompress(data []byte) ([]byte, error) {
	if len(data) < bloscHeaderSize {
		return nil, fmt.Errorf("blosc container truncated: %d bytes", len(data))
	}
	itemSize := int(data[0])
	shuffled := data[1] == ByteShuffle
	uncompressedLen := int(binary.LittleEndian.Uint32(data[4:8]))

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	unshuffled, err := dec.DecodeAll(data[bloscHeaderSize:], make([]byte, 0, uncompressedLen))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress blosc chunk: %w", err)
	}
	if shuffled {
		return unshuffle(unshuffled, itemSize), nil
	}
	return unshuffled, nil
}

// shuffle reorders data (a sequence of itemSize-byte elements) so that the
// first byte of every element comes first, then the second byte of every
// element, and so on: the classic byte-shuffle transform that makes
// floating-point arrays with slowly varying exponents compress far better.
func shuffle(data []byte, itemSize int) []byte {
	n := len(data) / itemSize
	rem := len(data) % itemSize
	out := make([]byte, len(data))
	for b := 0; b < itemSize; b++ {
		for i := 0; i < n; i++ {
			out[b*n+i] = data[i*itemSize+b]
		}
	}
	copy(out[itemSize*n:], data[itemSize*n:itemSize*n+rem])
	return out
}

// unshuffle inverts shuffle.
func unshuffle(data []byte, itemSize int) []byte {
	n := len(data) / itemSize
	rem := len(data) % itemSize
	out := make([]byte, len(data))
	for b := 0; b < itemSize; b++ {
		for i := 0; i < n; i++ {
			out[i*itemSize+b] = data[b*n+i]
		}
	}
	copy(out[itemSize*n:], data[itemSize*n:itemSize*n+rem])
	return out
}

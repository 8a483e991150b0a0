package opendap

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const dodsDataMarker = "\nData:\n"

// dtypeItemSize returns the byte width of a numpy-style dtype code.
func dtypeItemSize(dtype string) (int, error) {
	if len(dtype) < 3 {
		return 0, fmt.Errorf("opendap: invalid dtype %q", dtype)
	}
	switch dtype[1] {
	case 'u', 'i', 'f':
		n := 0
		for _, c := range dtype[2:] {
			n = n*10 + int(c-'0')
		}
		return n, nil
	default:
		return 1, nil
	}
}

// DecodeDODSResponse splits a `.dods` response into its DDS prefix and raw
// DAP-encoded payload, and decodes the payload into little-endian bytes
// matching dtype. The response is framed as "<dds>\nData:\n<raw>".
//
// Fixed-size numeric DAP arrays are wire-encoded as two repeated
// big-endian uint32 element counts followed by the big-endian element
// values (XDR array framing); no DAP-aware library exists in the
// retrieval pack, so this reproduces that framing directly.
func DecodeDODSResponse(body []byte, dtype string) ([]byte, error) {
	text := string(body)
	idx := strings.Index(text, dodsDataMarker)
	if idx < 0 {
		return nil, fmt.Errorf("opendap: %w: missing Data: marker", ErrEmptyDDS)
	}
	ddsPrefix := text[:idx]
	if _, err := ParseDDS([]byte(ddsPrefix)); err != nil {
		return nil, err
	}

	raw := body[idx+len(dodsDataMarker):]
	return decodeFixedSizeArray(raw, dtype)
}

// decodeFixedSizeArray strips the two leading 4-byte element-count words
// and byte-swaps the remaining big-endian payload into little-endian.
func decodeFixedSizeArray(raw []byte, dtype string) ([]byte, error) {
	const headerLen = 8
	if len(raw) < headerLen {
		return nil, fmt.Errorf("opendap: truncated DODS payload")
	}
	itemSize, err := dtypeItemSize(dtype)
	if err != nil {
		return nil, err
	}
	values := raw[headerLen:]
	if len(values)%itemSize != 0 {
		return nil, fmt.Errorf("opendap: payload length %d not a multiple of item size %d", len(values), itemSize)
	}
	return swapEndian(values, itemSize), nil
}

// swapEndian reverses the byte order of every itemSize-wide element.
func swapEndian(data []byte, itemSize int) []byte {
	if itemSize <= 1 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	out := make([]byte, len(data))
	for off := 0; off < len(data); off += itemSize {
		elem := data[off : off+itemSize]
		switch itemSize {
		case 2:
			binary.LittleEndian.PutUint16(out[off:], binary.BigEndian.Uint16(elem))
		case 4:
			binary.LittleEndian.PutUint32(out[off:], binary.BigEndian.Uint32(elem))
		case 8:
			binary.LittleEndian.PutUint64(out[off:], binary.BigEndian.Uint64(elem))
		default:
			for i := 0; i < itemSize; i++ {
				out[off+i] = elem[itemSize-1-i]
			}
		}
	}
	return out
}

// Package legday implements a lossless compressor for buffers of small
// numeric samples (BF16, FP32, INT8), typical of neural-network weight
// tensors. It views a buffer as a fixed-width bit-plane array and drives a
// binary range coder with a per-channel conditional probability model,
// after a layout-specific pre-transform reshapes the buffer so individual
// bit-channels are skewed toward 0 or 1.
//
// Compress and Decompress are the only two entry points; everything else
// (command-line parsing, file I/O, progress reporting) is left to
// callers.
package legday

import (
	"errors"
	"fmt"

	"github.com/nadavrot/legday/internal/xdr"
	"github.com/nadavrot/legday/model"
	"github.com/nadavrot/legday/transform"
)

// Layout identifies the numeric sample type a buffer holds, and therefore
// which pre-transform pipeline and bit-channel width Compress/Decompress
// use. The wire values match the historical encoding of the format this
// package implements; they are not in enumeration order.
type Layout uint8

const (
	FP32 Layout = 0x00
	BF16 Layout = 0x02
	INT8 Layout = 0x04
)

// String returns the layout's name, or a hex fallback for an unknown
// value.
func (l Layout) String() string {
	switch l {
	case INT8:
		return "INT8"
	case BF16:
		return "BF16"
	case FP32:
		return "FP32"
	default:
		return fmt.Sprintf("Layout(%#02x)", uint8(l))
	}
}

// magic is the container's leading 4 bytes, read back as a little-endian
// uint32. It is written byte-for-byte as 'D', 'Y', 'L', 'G'.
const magic uint32 = 0x474C5944

// headerSize is the number of bytes before the payload: magic (4) + kind
// (1) + transform_param (1) + words (4).
const headerSize = 10

var (
	// ErrPrecondition is returned by Compress when the input length is
	// not a multiple of the layout's word size.
	ErrPrecondition = errors.New("legday: input length is not a multiple of the layout's word size")

	// ErrBadMagic is returned by Decompress when the container's magic
	// does not match.
	ErrBadMagic = errors.New("legday: bad magic")

	// ErrUnknownLayout is returned when a layout byte, on the wire or
	// passed by the caller, does not name INT8, BF16, or FP32.
	ErrUnknownLayout = errors.New("legday: unknown layout")

	// ErrTruncated is returned by Decompress when the container is too
	// short to contain a full header. A truncated payload is reported as
	// ErrCorrupted.
	ErrTruncated = errors.New("legday: truncated input")

	// ErrCorrupted is returned by Decompress when the coded payload
	// could not be fully decoded (truncated or corrupted mid-stream).
	ErrCorrupted = errors.New("legday: corrupted payload")
)

// widthOf returns the bit-channel width for layout, and false if layout
// is not one of INT8, BF16, FP32.
func widthOf(layout Layout) (int, bool) {
	switch layout {
	case INT8:
		return 8, true
	case BF16:
		return 16, true
	case FP32:
		return 32, true
	default:
		return 0, false
	}
}

// ChannelWidth is the exported form of widthOf, for callers outside this
// package (diagnostic tooling) that need a layout's bit-channel width
// without reimplementing the Layout switch.
func ChannelWidth(layout Layout) (int, bool) {
	return widthOf(layout)
}

// biasSearchPrefixLimit bounds how much of the buffer the offset-bias
// parameter search runs its coder oracle over.
const biasSearchPrefixLimit = 1 << 16

// searchBiasParameter tries every non-zero byte value as the additive
// bias applied at (stride, offset) within a prefix of buf, runs the real
// channel coder over each candidate, and returns the value that produces
// the smallest coded payload. Ties are broken toward the smallest value.
// The oracle is exactly the coder Encode/Decode use, so the search result
// is reproducible and the chosen parameter is always optimal for the
// prefix it was measured against.
func searchBiasParameter(buf []byte, stride, offset, width int) byte {
	n := len(buf)
	if n > biasSearchPrefixLimit {
		n = biasSearchPrefixLimit
	}
	prefix := buf[:n]
	scratch := make([]byte, n)

	best := -1
	var bestParam byte
	for v := 1; v <= 255; v++ {
		copy(scratch, prefix)
		transform.OffsetBias(scratch, stride, offset, byte(v))
		size := len(model.Encode(scratch, width))
		if best == -1 || size < best {
			best = size
			bestParam = byte(v)
		}
	}
	return bestParam
}

// Compress encodes input as layout, returning the framed container bytes.
// input is left unmodified: Compress works on a private copy.
func Compress(input []byte, layout Layout) ([]byte, error) {
	width, ok := widthOf(layout)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, layout)
	}
	wordBytes := width / 8
	if len(input)%wordBytes != 0 {
		return nil, fmt.Errorf("%w: length %d, word size %d", ErrPrecondition, len(input), wordBytes)
	}

	buf := append([]byte(nil), input...)

	var transformParam byte
	switch layout {
	case BF16:
		transform.RotateB16(buf, 15)
		transformParam = searchBiasParameter(buf, 2, 1, width)
		transform.OffsetBias(buf, 2, 1, transformParam)
	case FP32:
		transform.RotateB16(buf, 15)
		transformParam = searchBiasParameter(buf, 4, 3, width)
		transform.OffsetBias(buf, 4, 3, transformParam)
	case INT8:
		transformParam = 0
	}

	payload := model.Encode(buf, width)
	words := uint32(len(buf) * 8 / width)

	out := xdr.NewBufferWriter(headerSize + len(payload))
	out.WriteUint32(magic)
	out.WriteUint8(uint8(layout))
	out.WriteUint8(transformParam)
	out.WriteUint32(words)
	out.WriteBytes(payload)
	return out.Bytes(), nil
}

// Decompress reverses Compress, reading the layout and transform
// parameter from the container itself.
func Decompress(input []byte) ([]byte, error) {
	r := xdr.NewReader(input)

	gotMagic, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if gotMagic != magic {
		return nil, ErrBadMagic
	}

	kind, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	layout := Layout(kind)
	width, ok := widthOf(layout)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, layout)
	}

	transformParam, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	words, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	payload, err := r.ReadBytes(r.Len())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	buf, err := model.Decode(payload, int(words), width)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	switch layout {
	case BF16:
		transform.OffsetBias(buf, 2, 1, -transformParam)
		transform.RotateB16(buf, 1)
	case FP32:
		transform.OffsetBias(buf, 4, 3, -transformParam)
		transform.RotateB16(buf, 1)
	case INT8:
		// No transform to undo.
	}

	return buf, nil
}

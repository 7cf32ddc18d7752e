// Package rangecoder implements a binary-alphabet range (arithmetic) coder
// with byte-wise, carry-free renormalization.
//
// Each call to Encode/Decode carries its own 16-bit probability of the
// symbol being 1; the caller (the conditional probability model) is
// responsible for picking that probability. The coder itself has no notion
// of context.
package rangecoder

import "errors"

// ErrOutOfInput is returned by Decoder.Decode when the input is exhausted
// before the range could be renormalized. It signals truncated or
// corrupted compressed data; it is never returned on a well-formed stream.
var ErrOutOfInput = errors.New("rangecoder: out of input")

// Encoder is a binary range encoder. The zero value is not usable; create
// one with NewEncoder.
type Encoder struct {
	low  uint32
	high uint32
	out  []byte
}

// NewEncoder creates an Encoder that appends coded bytes to out (which may
// be nil).
func NewEncoder(out []byte) *Encoder {
	return &Encoder{low: 0, high: 0xFFFFFFFF, out: out}
}

// Encode encodes one bit with probability prob (in 0..=65535) of being 1.
func (e *Encoder) Encode(bit bool, prob uint16) {
	gap := uint64(e.high - e.low)
	scale := (gap * uint64(prob)) >> 16
	mid := e.low + uint32(scale)

	if bit {
		e.high = mid
	} else {
		e.low = mid + 1
	}

	for (e.high ^ e.low) < (1 << 24) {
		e.out = append(e.out, byte(e.high>>24))
		e.high = (e.high << 8) | 0xFF
		e.low <<= 8
	}
}

// Finalize encodes a sentinel bit=1, prob=0 symbol, which forces the range
// to collapse enough to flush the bytes needed to uniquely identify the
// coder's terminal interval. It must be called exactly once, after the
// last real symbol.
func (e *Encoder) Finalize() {
	e.Encode(true, 0)
}

// Bytes returns the coded output accumulated so far.
func (e *Encoder) Bytes() []byte {
	return e.out
}

// Decoder is the mirror of Encoder: it consumes a coded byte stream and,
// given the same sequence of probabilities the encoder used, reproduces
// the same sequence of bits.
type Decoder struct {
	in     []byte
	cursor int
	low    uint32
	high   uint32
	state  uint32
}

// NewDecoder creates a Decoder reading from in. in must have at least 4
// bytes; a shorter input is a corruption error the caller should have
// already ruled out.
func NewDecoder(in []byte) *Decoder {
	d := &Decoder{in: in, low: 0, high: 0xFFFFFFFF}
	for i := 0; i < 4; i++ {
		d.state = (d.state << 8) | uint32(in[d.cursor])
		d.cursor++
	}
	return d
}

// Decode decodes one bit, given the same probability the encoder used at
// this position. It returns ErrOutOfInput if the input ran out before the
// range could be renormalized, which signals truncated input.
func (d *Decoder) Decode(prob uint16) (bool, error) {
	gap := uint64(d.high - d.low)
	scale := (gap * uint64(prob)) >> 16
	mid := d.low + uint32(scale)

	bit := d.state <= mid
	if bit {
		d.high = mid
	} else {
		d.low = mid + 1
	}

	for (d.high ^ d.low) < (1 << 24) {
		if d.cursor == len(d.in) {
			return false, ErrOutOfInput
		}
		d.high = (d.high << 8) | 0xFF
		d.low <<= 8
		d.state = (d.state << 8) | uint32(d.in[d.cursor])
		d.cursor++
	}

	return bit, nil
}

// Consumed returns the number of input bytes read so far, including the
// initial 4-byte state prime.
func (d *Decoder) Consumed() int {
	return d.cursor
}

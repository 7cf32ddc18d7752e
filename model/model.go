// Package model implements the conditional per-channel probability model
// and the channel coder driver that ties it to the range coder: for each
// bit-channel of a bit-plane stream, it fits a 2^K table of P(bit=1 | K
// preceding bits of the same word) and range-codes the channel against
// that table.
//
// Channels are always processed in ascending order, on both encode and
// decode. That ordering is load-bearing: the context a channel's table is
// keyed on is drawn exclusively from lower channels of the same word, so
// by the time channel c is decoded, every channel it depends on has
// already been reconstructed.
package model

import (
	"errors"

	"github.com/nadavrot/legday/bitplane"
	"github.com/nadavrot/legday/rangecoder"
)

// ContextBits is K, the number of preceding bits each channel's
// conditional table is keyed on. The wire format hard-codes K=4, so each
// table has 16 entries of 2 bytes: 32 bytes per channel.
const ContextBits = 4

// TableSize is the number of entries in a per-channel probability table.
const TableSize = 1 << ContextBits

// ErrTruncatedPayload is returned by Decode when the coded payload ends
// before every channel of every word has been decoded.
var ErrTruncatedPayload = errors.New("model: truncated channel payload")

// BuildTable computes the 2^K conditional probability table for channel c
// of stream: table[key] is floor(ones(key) * 65535 / total(key)), or 0 if
// key never occurs.
func BuildTable(stream *bitplane.Stream, channel int) [TableSize]uint16 {
	var ones, total [TableSize]uint64
	n := stream.Size()
	for w := 0; w < n; w++ {
		key := stream.GetBitsBefore(w, channel, ContextBits)
		total[key]++
		if stream.Get(w, channel) == 1 {
			ones[key]++
		}
	}

	var table [TableSize]uint16
	for key := 0; key < TableSize; key++ {
		if total[key] == 0 {
			continue
		}
		table[key] = uint16(ones[key] * 65535 / total[key])
	}
	return table
}

// encodeChannel range-codes every word's bit at channel, keyed by the
// preceding ContextBits bits of the same word, and returns the coded
// bytes (self-delimiting via Finalize).
func encodeChannel(stream *bitplane.Stream, channel int, table [TableSize]uint16) []byte {
	enc := rangecoder.NewEncoder(nil)
	n := stream.Size()
	for w := 0; w < n; w++ {
		key := stream.GetBitsBefore(w, channel, ContextBits)
		enc.Encode(stream.Get(w, channel) == 1, table[key])
	}
	enc.Finalize()
	return enc.Bytes()
}

// decodeChannel is the mirror of encodeChannel: it reads words from in,
// computing each word's context key from the partially-reconstructed
// stream (lower channels are already decoded; channel and above are still
// zero, which matches what the encoder saw), and sets channel's bit in
// stream. It returns the number of input bytes consumed.
func decodeChannel(stream *bitplane.Stream, channel int, table [TableSize]uint16, in []byte) (int, error) {
	if len(in) < 4 {
		return 0, ErrTruncatedPayload
	}
	dec := rangecoder.NewDecoder(in)
	n := stream.Size()
	for w := 0; w < n; w++ {
		key := stream.GetBitsBefore(w, channel, ContextBits)
		bit, err := dec.Decode(table[key])
		if err != nil {
			return 0, ErrTruncatedPayload
		}
		v := 0
		if bit {
			v = 1
		}
		stream.Set(w, channel, v)
	}
	return dec.Consumed(), nil
}

// Encode runs the channel coder driver over buf, whose length in bits
// must be a multiple of width (8, 16, or 32). It returns the payload: for
// each channel in ascending order, the 2^K probability table (as
// little-endian uint16s) followed by the range-coded bits for that
// channel.
func Encode(buf []byte, width int) []byte {
	stream := bitplane.New(buf, width)
	out := make([]byte, 0, len(buf))
	for c := 0; c < width; c++ {
		table := BuildTable(stream, c)
		for _, p := range table {
			out = append(out, byte(p), byte(p>>8))
		}
		out = append(out, encodeChannel(stream, c, table)...)
	}
	return out
}

// Decode is the mirror of Encode: given the payload Encode produced, the
// word count, and the channel width, it reconstructs and returns the
// original buf. It returns ErrTruncatedPayload if the payload ends before
// every channel has been fully decoded.
func Decode(payload []byte, words, width int) ([]byte, error) {
	buf, _, err := DecodeWithTables(payload, words, width)
	return buf, err
}

// DecodeWithTables is Decode, additionally returning the per-channel
// probability tables read from the payload (ascending channel order).
// Diagnostic tooling that wants to inspect a container's model without
// reimplementing the channel coder driver should call this instead of
// Decode.
func DecodeWithTables(payload []byte, words, width int) ([]byte, [][TableSize]uint16, error) {
	buf := make([]byte, words*width/8)
	stream := bitplane.New(buf, width)
	tables := make([][TableSize]uint16, 0, width)

	for c := 0; c < width; c++ {
		var table [TableSize]uint16
		if len(payload) < TableSize*2 {
			return nil, nil, ErrTruncatedPayload
		}
		for key := 0; key < TableSize; key++ {
			table[key] = uint16(payload[0]) | uint16(payload[1])<<8
			payload = payload[2:]
		}

		consumed, err := decodeChannel(stream, c, table, payload)
		if err != nil {
			return nil, nil, err
		}
		payload = payload[consumed:]
		tables = append(tables, table)
	}
	return buf, tables, nil
}

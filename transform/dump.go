package transform

import (
	"io"

	"github.com/icza/bitio"

	"github.com/nadavrot/legday/bitplane"
)

// DumpBitPlanes writes a human-readable bit-plane dump of stream to w: one
// bit per channel per word, word-major, channel-minor, MSB-channel first.
// This is diagnostic output for cmd/legday's inspect subcommand; it is
// never read back and plays no part in the coded wire format.
func DumpBitPlanes(w io.Writer, stream *bitplane.Stream) error {
	bw := bitio.NewWriter(w)
	width := stream.Width()
	for word := 0; word < stream.Size(); word++ {
		for c := width - 1; c >= 0; c-- {
			if err := bw.WriteBits(uint64(stream.Get(word, c)), 1); err != nil {
				return err
			}
		}
	}
	return bw.Close()
}

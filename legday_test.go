package legday

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestRoundTripINT8Literal(t *testing.T) {
	buf := []byte{0x60, 0x59}
	compressed, err := Compress(buf, INT8)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, buf) {
		t.Fatalf("round trip mismatch: got %v, want %v", decompressed, buf)
	}
}

func TestRoundTripINT8Mixed64(t *testing.T) {
	buf := []byte{
		0x60, 0x59, 0x24, 0xd1, 0xc1, 0x94, 0x16, 0xf8, 0xcc, 0x92, 0x7f,
		0x90, 0x57, 0xca, 0xe3, 0x91, 0x60, 0x59, 0x24, 0xd1, 0xc1, 0x94,
		0x16, 0xf8, 0xcc, 0x92, 0x7f, 0x90, 0x57, 0xca, 0xe3, 0x91, 0x60,
		0x59, 0x24, 0xd1, 0xc1, 0x94, 0x16, 0xf8, 0xcc, 0x92, 0x7f, 0x90,
		0xff, 0xff, 0xff, 0xff, 0x60, 0x59, 0x24, 0xd1, 0xc1, 0x94, 0x16,
		0xf8, 0xcc, 0x92, 0x7f, 0x90, 0xaa, 0xaa, 0xaa, 0xaa,
	}
	compressed, err := Compress(buf, INT8)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, buf) {
		t.Fatalf("round trip mismatch: got %v, want %v", decompressed, buf)
	}
}

func TestRoundTripAllLayoutsRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		layout    Layout
		wordBytes int
	}{
		{INT8, 1},
		{BF16, 2},
		{FP32, 4},
	}
	for _, c := range cases {
		buf := make([]byte, c.wordBytes*37)
		rng.Read(buf)
		orig := append([]byte(nil), buf...)

		compressed, err := Compress(buf, c.layout)
		if err != nil {
			t.Fatalf("%s: Compress: %v", c.layout, err)
		}
		if !bytes.Equal(buf, orig) {
			t.Fatalf("%s: Compress mutated caller's buffer", c.layout)
		}
		decompressed, err := Decompress(compressed)
		if err != nil {
			t.Fatalf("%s: Decompress: %v", c.layout, err)
		}
		if !bytes.Equal(decompressed, orig) {
			t.Fatalf("%s: round trip mismatch: got %v, want %v", c.layout, decompressed, orig)
		}
	}
}

func TestRoundTripEmptyBuffer(t *testing.T) {
	for _, layout := range []Layout{INT8, BF16, FP32} {
		compressed, err := Compress(nil, layout)
		if err != nil {
			t.Fatalf("%s: Compress(nil): %v", layout, err)
		}
		decompressed, err := Decompress(compressed)
		if err != nil {
			t.Fatalf("%s: Decompress: %v", layout, err)
		}
		if len(decompressed) != 0 {
			t.Fatalf("%s: got %v, want empty", layout, decompressed)
		}
	}
}

func TestCompressPreconditionViolation(t *testing.T) {
	cases := []struct {
		layout Layout
		buf    []byte
	}{
		{BF16, []byte{0x01}},       // 1 byte, needs multiple of 2
		{FP32, []byte{0x01, 0x02}}, // 2 bytes, needs multiple of 4
	}
	for _, c := range cases {
		if _, err := Compress(c.buf, c.layout); err == nil {
			t.Fatalf("%s: expected precondition error for %v", c.layout, c.buf)
		}
	}
}

func TestCompressUnknownLayout(t *testing.T) {
	if _, err := Compress([]byte{1, 2, 3, 4}, Layout(0xFF)); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}

func TestDecompressBadMagic(t *testing.T) {
	buf := make([]byte, headerSize)
	if _, err := Decompress(buf); err != ErrBadMagic {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestDecompressTruncatedHeader(t *testing.T) {
	compressed, err := Compress([]byte{0x01, 0x02, 0x03, 0x04}, INT8)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if _, err := Decompress(compressed[:5]); err == nil {
		t.Fatal("expected error decoding a truncated header")
	}
}

func TestDecompressUnknownLayoutByte(t *testing.T) {
	compressed, err := Compress([]byte{0x01, 0x02, 0x03, 0x04}, INT8)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	corrupted := append([]byte(nil), compressed...)
	corrupted[4] = 0xFF // kind byte
	if _, err := Decompress(corrupted); err == nil {
		t.Fatal("expected error for unknown layout byte")
	}
}

func TestDecompressTruncatedPayload(t *testing.T) {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i)
	}
	compressed, err := Compress(buf, INT8)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	truncated := compressed[:len(compressed)-4]
	if _, err := Decompress(truncated); err == nil {
		t.Fatal("expected error decoding truncated payload")
	}
}

func TestLayoutWireValues(t *testing.T) {
	if INT8 != 0x04 || BF16 != 0x02 || FP32 != 0x00 {
		t.Fatalf("wire values changed: INT8=%#x BF16=%#x FP32=%#x", uint8(INT8), uint8(BF16), uint8(FP32))
	}
}

func TestCompressDeterministic(t *testing.T) {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i * 13)
	}
	a, err := Compress(buf, BF16)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	b, err := Compress(buf, BF16)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("Compress is not deterministic on identical input")
	}
}

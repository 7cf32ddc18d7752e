package legday

import (
	"math"
	"math/rand"
	"testing"
)

// bf16Buffer generates a buffer of BF16-encoded samples drawn from a
// narrow Gaussian, the kind of skewed distribution this format targets.
func bf16Buffer(n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := float32(rng.NormFloat64() * 0.02)
		bits := math.Float32bits(v)
		bf16 := uint16(bits >> 16)
		buf[2*i] = byte(bf16)
		buf[2*i+1] = byte(bf16 >> 8)
	}
	return buf
}

func TestCoderBeatsZlibBaselineOnSkewedTensorData(t *testing.T) {
	buf := bf16Buffer(8192, 42)

	compressed, err := Compress(buf, BF16)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	zlibSize, err := ZlibBaselineSize(buf, BF16, 9)
	if err != nil {
		t.Fatalf("ZlibBaselineSize: %v", err)
	}

	if len(compressed) >= zlibSize {
		t.Fatalf("bit-plane coder (%d bytes) did not beat zlib baseline (%d bytes) on skewed tensor data", len(compressed), zlibSize)
	}
}

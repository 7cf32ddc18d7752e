package legday

import (
	"bytes"

	"github.com/klauspost/compress/zlib"

	"github.com/nadavrot/legday/transform"
)

// ZlibBaselineSize runs the same layout-specific pre-transform Compress
// uses, then compresses the transformed buffer with generic zlib instead
// of the bit-plane range coder, and returns the resulting size. It never
// mutates input. This exists purely as a regression sanity check: the
// bit-plane coder is expected to beat generic zlib on pre-transformed
// tensor data, and a benchmark or test can compare its output against
// this baseline to catch a regression that would otherwise go unnoticed
// (a correctness bug that still round-trips but compresses badly).
func ZlibBaselineSize(input []byte, layout Layout, level int) (int, error) {
	width, ok := widthOf(layout)
	if !ok {
		return 0, ErrUnknownLayout
	}

	buf := append([]byte(nil), input...)
	switch layout {
	case BF16:
		transform.RotateB16(buf, 15)
		transform.OffsetBias(buf, 2, 1, searchBiasParameter(buf, 2, 1, width))
	case FP32:
		transform.RotateB16(buf, 15)
		transform.OffsetBias(buf, 4, 3, searchBiasParameter(buf, 4, 3, width))
	case INT8:
	}

	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, level)
	if err != nil {
		return 0, err
	}
	if _, err := zw.Write(buf); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return out.Len(), nil
}

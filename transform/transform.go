// Package transform implements the layout-specific pre-transforms that
// reshape a raw numeric buffer before the bit-plane coder sees it:
// 16-bit rotation, additive byte bias, and a 256-symbol histogram-sorted
// permutation. All three operate in place and are documented with their
// exact inverse.
package transform

import "sort"

// RotateB16 treats buf as a sequence of big-endian uint16 words and
// rotates each one right by n bits, in place. RotateB16(buf, 16-n) is the
// inverse of RotateB16(buf, n). len(buf) must be a multiple of 2.
func RotateB16(buf []byte, n uint8) {
	for i := 0; i < len(buf); i += 2 {
		value := uint16(buf[i+1]) | (uint16(buf[i]) << 8)
		value = (value >> n) | (value << (16 - n))
		buf[i] = byte(value >> 8)
		buf[i+1] = byte(value)
	}
}

// OffsetBias adds v (mod 256) to byte offset of every stride-sized group
// in buf, in place. OffsetBias(buf, stride, offset, 256-v) is the inverse
// of OffsetBias(buf, stride, offset, v). len(buf) must be a multiple of
// stride, and offset must be < stride.
func OffsetBias(buf []byte, stride, offset int, v byte) {
	for i := 0; i < len(buf); i += stride {
		buf[i+offset] += v
	}
}

// SortSymbols builds a 256-bin histogram of buf[k*stride+offset] for each
// group k, then rewrites those bytes to the rank of their original value
// in the histogram (rank 0 is the most frequent symbol, ties broken by
// ascending value). It returns perm, where perm[0] is the most frequent
// original symbol and so on, so that DecodeSymbols(buf, stride, offset,
// perm) restores the original values.
func SortSymbols(buf []byte, stride, offset int) (perm [256]byte) {
	var hist [256]int
	for i := offset; i < len(buf); i += stride {
		hist[buf[i]]++
	}

	order := make([]int, 256)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if hist[order[a]] != hist[order[b]] {
			return hist[order[a]] > hist[order[b]]
		}
		return order[a] < order[b]
	})
	for rank, symbol := range order {
		perm[rank] = byte(symbol)
	}

	var inv [256]byte
	for rank, symbol := range perm {
		inv[symbol] = byte(rank)
	}
	for i := offset; i < len(buf); i += stride {
		buf[i] = inv[buf[i]]
	}
	return perm
}

// DecodeSymbols inverts SortSymbols given the perm table it produced.
func DecodeSymbols(buf []byte, stride, offset int, perm [256]byte) {
	for i := offset; i < len(buf); i += stride {
		buf[i] = perm[buf[i]]
	}
}

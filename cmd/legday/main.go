// legday compresses and decompresses buffers of small numeric samples
// (BF16, FP32, INT8) using the bit-plane range coder of the legday
// package.
//
// Usage:
//
//	legday compress   {INT8|BF16|FP32} <input> <output>
//	legday decompress <input> <output>
//	legday verify     {INT8|BF16|FP32} <input> <output>
//	legday inspect    <input> [bitplane-dump]
//
// verify compresses <input>, writes it to <output>, then decompresses it
// again and checks the result matches <input> byte for byte. It also
// reports how the coded size compares to a generic zlib pass over the
// same pre-transformed buffer, as a regression sanity check.
//
// inspect reads a compressed file's container header (magic, layout,
// word count, transform parameter), decodes its per-channel probability
// tables, and prints a summary of each. If a bitplane-dump path is
// given, it also writes a human-readable bit-plane dump of the decoded
// buffer to that path.
//
// Exit codes: 0 on success, 1 on any failure (bad usage, bad layout,
// verification failure, corrupted input, or an I/O error).
package main

import (
	"fmt"
	"os"

	"github.com/nadavrot/legday"
	"github.com/nadavrot/legday/bitplane"
	"github.com/nadavrot/legday/internal/xdr"
	"github.com/nadavrot/legday/model"
	"github.com/nadavrot/legday/transform"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "compress":
		err = runCompress(os.Args[2:])
	case "decompress":
		err = runDecompress(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "legday: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "legday: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  legday compress   {INT8|BF16|FP32} <input> <output>")
	fmt.Fprintln(os.Stderr, "  legday decompress <input> <output>")
	fmt.Fprintln(os.Stderr, "  legday verify     {INT8|BF16|FP32} <input> <output>")
	fmt.Fprintln(os.Stderr, "  legday inspect    <input> [bitplane-dump]")
}

func parseLayout(s string) (legday.Layout, error) {
	switch s {
	case "INT8":
		return legday.INT8, nil
	case "BF16":
		return legday.BF16, nil
	case "FP32":
		return legday.FP32, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}

func runCompress(args []string) error {
	if len(args) != 3 {
		usage()
		return fmt.Errorf("compress: expected {INT8|BF16|FP32} <input> <output>")
	}
	layout, err := parseLayout(args[0])
	if err != nil {
		return err
	}

	input, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	out, err := legday.Compress(input, layout)
	if err != nil {
		return err
	}

	if err := os.WriteFile(args[2], out, 0o644); err != nil {
		return err
	}

	percent := 100 * float64(len(out)) / float64(max(len(input), 1))
	fmt.Printf("Compressed %d to %d bytes (%.2f%%)\n", len(input), len(out), percent)
	return nil
}

func runDecompress(args []string) error {
	if len(args) != 2 {
		usage()
		return fmt.Errorf("decompress: expected <input> <output>")
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	out, err := legday.Decompress(input)
	if err != nil {
		return err
	}

	return os.WriteFile(args[1], out, 0o644)
}

func runVerify(args []string) error {
	if len(args) != 3 {
		usage()
		return fmt.Errorf("verify: expected {INT8|BF16|FP32} <input> <output>")
	}
	layout, err := parseLayout(args[0])
	if err != nil {
		return err
	}

	input, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	compressed, err := legday.Compress(input, layout)
	if err != nil {
		return err
	}

	percent := 100 * float64(len(compressed)) / float64(max(len(input), 1))
	fmt.Printf("Compressed %d to %d bytes (%.2f%%)\n", len(input), len(compressed), percent)

	if zlibSize, err := legday.ZlibBaselineSize(input, layout, 9); err != nil {
		fmt.Fprintf(os.Stderr, "legday: zlib baseline unavailable: %v\n", err)
	} else {
		fmt.Printf("zlib baseline on same transform: %d bytes (coder is %.2f%% of that)\n",
			zlibSize, 100*float64(len(compressed))/float64(max(zlibSize, 1)))
	}

	if err := os.WriteFile(args[2], compressed, 0o644); err != nil {
		return err
	}

	decompressed, err := legday.Decompress(compressed)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	if string(decompressed) != string(input) {
		return fmt.Errorf("verification failed: decompressed output does not match input")
	}

	fmt.Println("Verification succeeded")
	return nil
}

func runInspect(args []string) error {
	if len(args) != 1 && len(args) != 2 {
		usage()
		return fmt.Errorf("inspect: expected <input> [bitplane-dump]")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	r := xdr.NewReader(data)
	magic, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("truncated header: %w", err)
	}
	kind, err := r.ReadUint8()
	if err != nil {
		return fmt.Errorf("truncated header: %w", err)
	}
	param, err := r.ReadUint8()
	if err != nil {
		return fmt.Errorf("truncated header: %w", err)
	}
	words, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("truncated header: %w", err)
	}

	layout := legday.Layout(kind)
	fmt.Printf("magic:            %#08x (valid: %v)\n", magic, magic == 0x474C5944)
	fmt.Printf("layout:           %s\n", layout)
	fmt.Printf("transform param:  %d\n", param)
	fmt.Printf("words:            %d\n", words)
	fmt.Printf("payload bytes:    %d\n", r.Len())

	width, ok := legday.ChannelWidth(layout)
	if !ok {
		return nil
	}

	payload, err := r.ReadBytes(r.Len())
	if err != nil {
		return fmt.Errorf("truncated payload: %w", err)
	}

	buf, tables, err := model.DecodeWithTables(payload, int(words), width)
	if err != nil {
		return fmt.Errorf("truncated payload: %w", err)
	}

	fmt.Println("per-channel probability tables (mean P(bit=1) over the 16 contexts):")
	for c, table := range tables {
		var sum uint64
		for _, p := range table {
			sum += uint64(p)
		}
		mean := float64(sum) / float64(len(table)) / 65535
		fmt.Printf("  channel %2d: %.4f\n", c, mean)
	}

	if len(args) == 2 {
		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		stream := bitplane.New(buf, width)
		if err := transform.DumpBitPlanes(out, stream); err != nil {
			return fmt.Errorf("bitplane dump: %w", err)
		}
	}

	return nil
}

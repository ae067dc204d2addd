package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"strings"

	"github.com/seqsense/pcgol/pc"
	lzf "github.com/zhuyie/golzf"
)

// writePCD writes the cloud in PCD format with binary_compressed data.
// Compressed PCD stores the payload field-major, so the point-major
// data is transposed first. Incompressible payloads fall back to plain
// binary.
func writePCD(w io.Writer, pp *pc.PointCloud) error {
	bw := bufio.NewWriter(w)

	viewpoint := pp.Viewpoint
	if len(viewpoint) != 7 {
		viewpoint = []float32{0, 0, 0, 1, 0, 0, 0}
	}
	fmt.Fprintln(bw, "VERSION .7")
	fmt.Fprintln(bw, "FIELDS", strings.Join(pp.Fields, " "))
	fmt.Fprintln(bw, "SIZE", joinInts(pp.Size))
	fmt.Fprintln(bw, "TYPE", strings.Join(pp.Type, " "))
	fmt.Fprintln(bw, "COUNT", joinInts(pp.Count))
	fmt.Fprintln(bw, "WIDTH", pp.Width)
	fmt.Fprintln(bw, "HEIGHT", pp.Height)
	fmt.Fprintln(bw, "VIEWPOINT", joinFloats(viewpoint))
	fmt.Fprintln(bw, "POINTS", pp.Points)

	stride := pp.Stride()
	raw := pp.Data[:pp.Points*stride]

	head := make([]int, len(pp.Fields))
	offset := make([]int, len(pp.Fields))
	var pos, off int
	for i := range pp.Fields {
		head[i] = pos
		offset[i] = off
		pos += pp.Size[i] * pp.Count[i] * pp.Points
		off += pp.Size[i] * pp.Count[i]
	}
	transposed := make([]byte, len(raw))
	for p := 0; p < pp.Points; p++ {
		for i := range head {
			size := pp.Size[i] * pp.Count[i]
			from := p*stride + offset[i]
			to := head[i] + p*size
			copy(transposed[to:to+size], raw[from:from+size])
		}
	}

	compressed := make([]byte, len(transposed))
	n, err := lzf.Compress(transposed, compressed)
	if err != nil || n == 0 || n >= len(transposed) {
		fmt.Fprintln(bw, "DATA binary")
		if _, err := bw.Write(raw); err != nil {
			return err
		}
		return bw.Flush()
	}

	fmt.Fprintln(bw, "DATA binary_compressed")
	if err := binary.Write(bw, binary.LittleEndian, int32(n)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(transposed))); err != nil {
		return err
	}
	if _, err := bw.Write(compressed[:n]); err != nil {
		return err
	}
	return bw.Flush()
}

func joinInts(vs []int) string {
	out := ""
	for i, v := range vs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%d", v)
	}
	return out
}

func joinFloats(vs []float32) string {
	out := ""
	for i, v := range vs {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%g", v)
	}
	return out
}

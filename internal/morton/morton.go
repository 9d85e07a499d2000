// Package morton provides the bit-interleaved (Z-order) cell addressing used
// by the Barnes-Hut grid: PDEP-style bit deposit, and the layer-offset /
// relative-cell-id arithmetic built on top of it.
//
// The original implementation inlines a literal x86 PDEP instruction via
// inline assembly. Go has no portable PDEP intrinsic without cgo or
// hand-written per-architecture assembly, so this package follows the same
// "pure Go, scalar" posture the teacher's own bit-manipulation code takes:
// Pdep is always the portable software implementation. HasHardwarePdep is
// probed once via golang.org/x/sys/cpu for diagnostic purposes only; no
// behavior branches on it.
package morton

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// HasHardwarePdep reports whether the host CPU advertises BMI2, the x86
// instruction set extension that contains a hardware PDEP instruction. It is
// informational only: Pdep always executes the portable software algorithm
// below, never real BMI2 PDEP, since this repository never invokes the Go
// assembler.
var HasHardwarePdep bool

func init() {
	HasHardwarePdep = cpu.X86.HasBMI2
}

// evenBits and oddBits are the classic Z-order interleave masks: bits at
// even positions (0,2,4,...) and odd positions (1,3,5,...) respectively.
const (
	evenBits uint64 = 0x5555555555555555
	oddBits  uint64 = 0xAAAAAAAAAAAAAAAA
)

// Pdep deposits the low bits of x into the positions of mask that are set,
// in order from the least-significant set bit of mask upward — the same
// semantics as the x86 PDEP instruction.
func Pdep(x, mask uint64) uint64 {
	var result uint64
	for m := mask; m != 0; {
		// Isolate the lowest set bit of the remaining mask.
		lowest := m & (-m)
		if x&1 != 0 {
			result |= lowest
		}
		x >>= 1
		m &^= lowest
	}
	return result
}

// LayerOffset returns the absolute cell id of the first cell at layer l.
// Layer 0 is the implicit whole-canvas root and is never materialized as a
// stored cell; the grid's stored layers begin at layer 1 (4 cells), so
// LayerOffset(1) == 0 and LayerOffset(l+1)-LayerOffset(l) == 4^l holds for
// l >= 1.
func LayerOffset(layer int) int {
	if layer <= 0 {
		return 0
	}
	return int(Pdep((uint64(1)<<uint(layer))-1, evenBits)) - 1
}

// LayerSize returns 4^layer, the number of cells at the given layer.
func LayerSize(layer int) int {
	return 1 << (2 * layer)
}

// CellCoordinates returns the (column, row) grid coordinates of (x, y)
// within the square grid of side 2^layer that spans [minX,maxX]x[minY,maxY].
// The maximum coordinate on each axis is clamped to side-1 so that points on
// (or within floating-point epsilon of) the upper bounding-box edge still
// fall inside the grid.
func CellCoordinates(x, y, minX, maxX, minY, maxY float64, layer int) (col, row int) {
	const epsilon = 2.2204460492503131e-16 // float64 machine epsilon, matches Rust's f64::EPSILON
	side := float64(int(1) << uint(layer))

	col = clampCoord(int((x-minX)/(epsilon+maxX-minX)*side), int(side)-1)
	row = clampCoord(int((y-minY)/(epsilon+maxY-minY)*side), int(side)-1)
	return col, row
}

func clampCoord(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// RelativeCellID interleaves (col, row) into a single Z-order id within a
// layer: row bits go to odd positions, column bits to even positions.
func RelativeCellID(col, row int) int {
	return int(Pdep(uint64(row), oddBits) | Pdep(uint64(col), evenBits))
}

// AbsoluteCellID returns the absolute grid cell id of (col, row) at the
// given layer: LayerOffset(layer) + RelativeCellID(col, row).
func AbsoluteCellID(col, row, layer int) int {
	return LayerOffset(layer) + RelativeCellID(col, row)
}

// PopCount is a small convenience wrapper kept for symmetry with the
// teacher's own math/bits-backed bit-manipulation helpers. Neither the grid
// nor the tests call it.
func PopCount(x uint64) int {
	return bits.OnesCount64(x)
}

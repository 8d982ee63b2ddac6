// Package block implements fixed size cubes of voxels
// that alternate between a run-length encoded form
// and a flat, directly indexable form.
package block

import (
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

type (
	// Run is a sequence of Length consecutive elements
	// (in x, then y, then z order) that all hold Value.
	Run[Value comparable] struct {
		Length uint32
		Value  Value
	}
	// Block is a cube of side length [Block.SideLength] voxels.
	// Exactly one of its representations is authoritative at a time:
	// the run list while compressed, the flat slice otherwise.
	// The run list is retained while decompressed so that an
	// unmodified block can be recompressed without re-encoding.
	Block[Value comparable] struct {
		runs       []Run[Value]
		data       []Value
		sideLength uint16
		sidePower  uint8
		compressed bool
		dirty      bool
	}
	constError string
)

const (
	// MaxSideLength is the largest side length supported by [New].
	// MaxSideLength³ must fit within a [Run] length.
	MaxSideLength = 1024
	// ErrCorruptRuns is returned when a run list
	// does not cover the block exactly.
	ErrCorruptRuns = constError("run lengths do not cover block")
	// ErrSideLength is returned when a side length is not
	// a power of two within [1, MaxSideLength].
	ErrSideLength = constError("invalid side length")
)

// maxRunLength bounds the length of a single encoded run.
const maxRunLength = math.MaxUint32

func (errStr constError) Error() string { return string(errStr) }

// ValidSideLength reports whether sideLength can be used with [New].
func ValidSideLength(sideLength uint16) bool {
	return sideLength != 0 &&
		sideLength <= MaxSideLength &&
		sideLength&(sideLength-1) == 0
}

// New returns a decompressed block with every element
// set to the zero value.
func New[Value comparable](sideLength uint16) (*Block[Value], error) {
	if !ValidSideLength(sideLength) {
		return nil, fmt.Errorf("%w: %d", ErrSideLength, sideLength)
	}
	b := &Block[Value]{
		sideLength: sideLength,
		sidePower:  uint8(bits.TrailingZeros16(sideLength)),
	}
	b.data = make([]Value, b.Len())
	return b, nil
}

// fromRuns returns a compressed block described by runs.
// The run lengths must sum to exactly sideLength³.
func fromRuns[Value comparable](sideLength uint16, runs []Run[Value]) (*Block[Value], error) {
	b, err := New[Value](sideLength)
	if err != nil {
		return nil, err
	}
	var total uint64
	for _, run := range runs {
		total += uint64(run.Length)
	}
	if want := uint64(b.Len()); total != want {
		return nil, fmt.Errorf(
			"%w: got %d elements, want %d",
			ErrCorruptRuns, total, want)
	}
	b.runs = append([]Run[Value](nil), runs...)
	b.data = nil
	b.compressed = true
	return b, nil
}

// SideLength returns the number of voxels along each edge.
func (b *Block[_]) SideLength() uint16 { return b.sideLength }

// Len returns the number of voxels in the block.
func (b *Block[_]) Len() int {
	return 1 << (3 * int(b.sidePower))
}

// IsCompressed reports whether the run list is authoritative.
func (b *Block[_]) IsCompressed() bool { return b.compressed }

// RunCount returns the number of encoded runs.
// The count is only current while the block is compressed
// or has not been modified since decompression.
func (b *Block[_]) RunCount() int { return len(b.runs) }

// Index returns the flat offset of local position (x, y, z).
func (b *Block[_]) Index(x, y, z uint16) int {
	return int(x) |
		int(y)<<b.sidePower |
		int(z)<<(2*b.sidePower)
}

// Get returns the voxel at local position (x, y, z).
// The block must be decompressed.
func (b *Block[Value]) Get(x, y, z uint16) Value {
	return b.GetIndex(b.Index(x, y, z))
}

// GetIndex returns the voxel at a flat offset.
// The block must be decompressed.
func (b *Block[Value]) GetIndex(index int) Value {
	if debugging {
		assert(!b.compressed, "read from compressed block")
	}
	return b.data[index]
}

// Set stores value at local position (x, y, z).
// The block must be decompressed.
func (b *Block[Value]) Set(x, y, z uint16, value Value) {
	b.SetIndex(b.Index(x, y, z), value)
}

// SetIndex stores value at a flat offset.
// The block must be decompressed.
func (b *Block[Value]) SetIndex(index int, value Value) {
	if debugging {
		assert(!b.compressed, "write to compressed block")
	}
	b.data[index] = value
	b.dirty = true
}

// Fill sets every voxel in the block to value.
func (b *Block[Value]) Fill(value Value) {
	if b.compressed {
		b.runs = appendRuns(b.runs[:0], value, uint64(b.Len()), maxRunLength)
		return
	}
	for i := range b.data {
		b.data[i] = value
	}
	b.dirty = true
}

// Compress replaces the flat data with its run-length encoding.
// Blocks that were not modified since decompression
// reuse their previous encoding.
func (b *Block[Value]) Compress() {
	if b.compressed {
		return
	}
	if b.dirty || b.runs == nil {
		b.runs = encode(b.runs[:0], b.data, maxRunLength)
	}
	b.data = nil
	b.compressed = true
	b.dirty = false
}

// Decompress expands the run list into flat data.
// It panics if the runs do not cover the block exactly;
// that state is unreachable through this package's API.
func (b *Block[Value]) Decompress() {
	if !b.compressed {
		return
	}
	data, err := decode(b.runs, b.Len())
	if err != nil {
		panic(err)
	}
	b.data = data
	b.compressed = false
	b.dirty = false
}

// compressedSizeInBytes returns the footprint of the run list.
func (b *Block[Value]) compressedSizeInBytes() int {
	var run Run[Value]
	return len(b.runs) * int(unsafe.Sizeof(run))
}

// UncompressedSizeInBytes returns the footprint
// the block has while decompressed.
func (b *Block[Value]) UncompressedSizeInBytes() int {
	var value Value
	return b.Len() * int(unsafe.Sizeof(value))
}

// SizeInBytes approximates the memory currently held by the block.
func (b *Block[Value]) SizeInBytes() int {
	var (
		value Value
		run   Run[Value]
		size  = int(unsafe.Sizeof(*b))
	)
	size += cap(b.runs) * int(unsafe.Sizeof(run))
	size += cap(b.data) * int(unsafe.Sizeof(value))
	return size
}

// encoded returns a copy of the encoded runs.
func (b *Block[Value]) encoded() []Run[Value] {
	return append([]Run[Value](nil), b.runs...)
}

package voxel

import (
	"log/slog"
	"math"
	"math/bits"
	"unsafe"

	"github.com/djdv/go-voxel/internal/block"
	"github.com/djdv/go-voxel/internal/ring"
)

type (
	loadedBlock[V comparable] struct {
		block *block.Block[V]
		// cached links the block into the uncompressed cache
		// while its flat data is materialized.
		cached    ring.Ring[*loadedBlock[V]]
		coord     Vector3
		timestamp uint32
	}
	// Volume is a sparse 3D grid of voxels stored as cubic blocks.
	// Blocks are created on first access, kept run-length compressed
	// while outside a bounded cache of decompressed blocks,
	// and (if paging is enabled) handed to a [PagingHandler]
	// when the resident budget is exceeded.
	//
	// A Volume is not safe for concurrent use, including by readers:
	// every access updates cache bookkeeping.
	// Constructed by [New], [NewPaged], or [NewUnbounded].
	Volume[V comparable] struct {
		blocks  map[Vector3]*loadedBlock[V]
		cache   ring.Ring[*loadedBlock[V]]
		last    *loadedBlock[V]
		handler PagingHandler[V]
		log     *slog.Logger
		border  V
		valid,
		validInBlocks Region
		lastCoord Vector3
		// generation changes whenever a block is
		// compressed or evicted, invalidating samplers.
		generation uint64
		cacheCount,
		maxUncompressed,
		maxResident int
		timestamper uint32
		sideLength  uint16
		sidePower   uint8
		compression,
		paging bool
	}
)

// New creates a volume whose valid positions are those within valid.
// Paging is disabled; every block that is touched stays in memory.
func New[V comparable](valid Region, optFns ...func(o *Options)) (*Volume[V], error) {
	return newVolume[V](valid, nil, optFns)
}

// NewPaged creates a volume that calls handler to populate blocks
// on first access and to persist blocks evicted from memory.
func NewPaged[V comparable](valid Region, handler PagingHandler[V], optFns ...func(o *Options)) (*Volume[V], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	return newVolume(valid, handler, optFns)
}

// NewUnbounded creates a paged volume spanning [MaxRegion].
func NewUnbounded[V comparable](handler PagingHandler[V], optFns ...func(o *Options)) (*Volume[V], error) {
	return NewPaged(MaxRegion, handler, optFns...)
}

func newVolume[V comparable](valid Region, handler PagingHandler[V], optFns []func(o *Options)) (*Volume[V], error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	var (
		sideLength = opts.BlockSideLength
		sidePower  = uint8(bits.TrailingZeros16(sideLength))
		v          = &Volume[V]{
			blocks:          make(map[Vector3]*loadedBlock[V]),
			handler:         handler,
			log:             opts.logger(),
			valid:           valid,
			maxUncompressed: opts.MaxUncompressedBlocks,
			maxResident:     opts.MaxResidentBlocks,
			sideLength:      sideLength,
			sidePower:       sidePower,
			compression:     opts.Compression,
			paging:          handler != nil,
		}
	)
	v.validInBlocks = v.toBlockRegion(valid)
	return v, nil
}

// Voxel returns the voxel at (x, y, z),
// or the border value if the position is outside the valid region.
func (v *Volume[V]) Voxel(x, y, z int32) V {
	if !v.valid.Contains(Vector3{x, y, z}) {
		return v.border
	}
	loaded := v.uncompressedBlock(v.blockCoord(x, y, z))
	return loaded.block.Get(v.local(x), v.local(y), v.local(z))
}

// VoxelAt is [Volume.Voxel] for a vector position.
func (v *Volume[V]) VoxelAt(p Vector3) V { return v.Voxel(p.X, p.Y, p.Z) }

// SetVoxel stores value at (x, y, z).
// It returns false, without modifying the volume,
// if the position is outside the valid region.
func (v *Volume[V]) SetVoxel(x, y, z int32, value V) bool {
	if !v.valid.Contains(Vector3{x, y, z}) {
		return false
	}
	loaded := v.uncompressedBlock(v.blockCoord(x, y, z))
	loaded.block.Set(v.local(x), v.local(y), v.local(z), value)
	return true
}

// SetVoxelAt is [Volume.SetVoxel] for a vector position.
func (v *Volume[V]) SetVoxelAt(p Vector3, value V) bool {
	return v.SetVoxel(p.X, p.Y, p.Z, value)
}

// BorderValue returns the value read from positions outside the valid region.
func (v *Volume[V]) BorderValue() V { return v.border }

// SetBorderValue changes the value read from positions outside the valid region.
func (v *Volume[V]) SetBorderValue(value V) { v.border = value }

// EnclosingRegion returns the region of valid positions.
func (v *Volume[V]) EnclosingRegion() Region { return v.valid }

// Width returns the number of valid positions along X.
func (v *Volume[V]) Width() int64 { return v.valid.Width() }

// Height returns the number of valid positions along Y.
func (v *Volume[V]) Height() int64 { return v.valid.Height() }

// Depth returns the number of valid positions along Z.
func (v *Volume[V]) Depth() int64 { return v.valid.Depth() }

// LongestSideLength returns the largest of the volume's dimensions.
func (v *Volume[V]) LongestSideLength() int64 {
	return max(v.Width(), v.Height(), v.Depth())
}

// ShortestSideLength returns the smallest of the volume's dimensions.
func (v *Volume[V]) ShortestSideLength() int64 {
	return min(v.Width(), v.Height(), v.Depth())
}

// DiagonalLength returns the distance between the
// centres of the volume's opposite corner voxels.
func (v *Volume[V]) DiagonalLength() float64 {
	var (
		w = float64(v.Width() - 1)
		h = float64(v.Height() - 1)
		d = float64(v.Depth() - 1)
	)
	return math.Sqrt(w*w + h*h + d*d)
}

// BlockSideLength returns the number of voxels along each edge of a block.
func (v *Volume[V]) BlockSideLength() uint16 { return v.sideLength }

// BlockCoordinate returns the coordinate of the block holding position p.
func (v *Volume[V]) BlockCoordinate(p Vector3) Vector3 {
	return v.blockCoord(p.X, p.Y, p.Z)
}

// BlockRegion returns the voxel region covered by the block at coord.
func (v *Volume[V]) BlockRegion(coord Vector3) Region {
	var (
		lower = Vector3{
			coord.X << v.sidePower,
			coord.Y << v.sidePower,
			coord.Z << v.sidePower,
		}
		extent = int32(v.sideLength) - 1
	)
	return Region{
		lower: lower,
		upper: lower.Add(Vector3{extent, extent, extent}),
	}
}

// IsResident reports whether the block at coord is held in memory.
func (v *Volume[V]) IsResident(coord Vector3) bool {
	_, ok := v.blocks[coord]
	return ok
}

// IsUncompressed reports whether the block at coord is
// held in memory in decompressed form.
func (v *Volume[V]) IsUncompressed(coord Vector3) bool {
	loaded, ok := v.blocks[coord]
	return ok && !loaded.block.IsCompressed()
}

// ResidentBlocks returns the number of blocks held in memory.
func (v *Volume[V]) ResidentBlocks() int { return len(v.blocks) }

// UncompressedBlocks returns the number of blocks held decompressed.
func (v *Volume[V]) UncompressedBlocks() int { return v.cacheCount }

// PagingEnabled reports whether the volume was constructed with a [PagingHandler].
func (v *Volume[V]) PagingEnabled() bool { return v.paging }

// CalculateCompressionRatio returns the memory held by resident blocks
// relative to what they would occupy decompressed.
// It returns 0 when no blocks are resident.
func (v *Volume[V]) CalculateCompressionRatio() float64 {
	if len(v.blocks) == 0 {
		return 0
	}
	var held, raw int
	for _, loaded := range v.blocks {
		held += loaded.block.SizeInBytes()
		raw += loaded.block.UncompressedSizeInBytes()
	}
	return float64(held) / float64(raw)
}

// CalculateSizeInBytes approximates the memory used by the volume.
func (v *Volume[V]) CalculateSizeInBytes() int {
	var (
		loaded   loadedBlock[V]
		coord    Vector3
		pointer  *loadedBlock[V]
		perEntry = int(unsafe.Sizeof(coord) + unsafe.Sizeof(pointer))
		size     = int(unsafe.Sizeof(*v))
	)
	for _, entry := range v.blocks {
		size += perEntry + int(unsafe.Sizeof(loaded))
		size += entry.block.SizeInBytes()
	}
	return size
}

func (v *Volume[V]) blockCoord(x, y, z int32) Vector3 {
	return Vector3{x >> v.sidePower, y >> v.sidePower, z >> v.sidePower}
}

func (v *Volume[V]) local(component int32) uint16 {
	return uint16(component & int32(v.sideLength-1))
}

func (v *Volume[V]) toBlockRegion(r Region) Region {
	return Region{
		lower: v.blockCoord(r.lower.X, r.lower.Y, r.lower.Z),
		upper: v.blockCoord(r.upper.X, r.upper.Y, r.upper.Z),
	}
}

package voxel

import (
	"log/slog"

	"github.com/djdv/go-voxel/internal/block"
)

// Options configures a [Volume]. Start from [DefaultOptions]
// and adjust fields through the functions passed to [New].
type Options struct {
	// Logger receives debug records for block traffic
	// and reports paging failures. Nil discards output.
	Logger *slog.Logger
	// MaxUncompressedBlocks bounds how many blocks are held
	// in decompressed form while compression is enabled.
	MaxUncompressedBlocks int
	// MaxResidentBlocks bounds how many blocks are held in memory
	// (compressed or not) while paging is enabled.
	MaxResidentBlocks int
	// BlockSideLength is the number of voxels along each edge of a block.
	// It must be a power of two no larger than [MaxBlockSideLength].
	BlockSideLength uint16
	// Compression enables run-length compression of blocks
	// that fall out of the uncompressed cache.
	Compression bool
}

const (
	// MinimumCapacity is the lowest cache bound accepted
	// for either block budget.
	MinimumCapacity = 1
	// MaxBlockSideLength is the largest supported block side length.
	MaxBlockSideLength = block.MaxSideLength
)

// DefaultOptions are the options used when none are provided.
var DefaultOptions = Options{
	BlockSideLength:       32,
	MaxUncompressedBlocks: 16,
	MaxResidentBlocks:     1024,
	Compression:           true,
}

func (o *Options) validate() error {
	if !block.ValidSideLength(o.BlockSideLength) {
		return sideLengthError(o.BlockSideLength)
	}
	if o.MaxUncompressedBlocks < MinimumCapacity {
		return minCapacityError("max uncompressed blocks", o.MaxUncompressedBlocks)
	}
	if o.MaxResidentBlocks < MinimumCapacity {
		return minCapacityError("max resident blocks", o.MaxResidentBlocks)
	}
	return nil
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Package voxel implements a paged, compressed [Volume] of voxels.
//
// A volume is a conceptually unbounded 3D grid of fixed-size values.
// Storage is split into cubic blocks whose side length is a power of two;
// a block is created the first time any voxel inside it is accessed.
// Blocks are run-length compressed while they are not in use,
// a bounded number are kept decompressed for direct indexing,
// and (when a [PagingHandler] is provided) blocks beyond a resident
// budget are handed to the handler and dropped from memory.
//
// Glossary and invariants:
//
//   - Valid region
//
//     Positions outside it read as the border value and ignore writes.
//     No block is ever created for them.
//
//   - Block coordinate
//
//     A voxel position arithmetic-shifted right by log2(side length)
//     on each axis, so negative positions floor towards -∞.
//
//   - Resident block
//
//     Held in memory, either compressed or decompressed.
//     At most one block exists per block coordinate.
//
//   - Uncompressed cache
//
//     The decompressed resident blocks.
//     While compression is enabled it never holds more than
//     [Volume.MaxUncompressedBlocks] blocks.
//
//   - Timestamp
//
//     A monotonically increasing counter stamped on a block
//     whenever it is accessed (other than repeated access to the
//     most recently used block, which already holds the newest stamp).
//     The oldest block is the one with the smallest stamp,
//     with ties going to the lower block coordinate.
//
// Operations:
//
//   - Materialization
//
//     Creates a block. With paging, the handler's DataRequired
//     defines its contents; otherwise it is zero filled.
//     The new block is never chosen as an eviction victim
//     during its own materialization.
//
//   - Compression
//
//     When the uncompressed cache is full, the oldest
//     decompressed block is recompressed to make room.
//     Blocks that were not written to since decompression
//     reuse their previous encoding.
//
//   - Eviction
//
//     When paging is enabled and more than [Volume.MaxResidentBlocks]
//     blocks are resident, the oldest block is passed to the handler's
//     DataOverflow and removed.
//
// Handlers receive a [Proxy] scoped to the block's region.
// They are called synchronously, must not touch voxels outside
// that region, and must not retain the proxy.
// Builds tagged `voxel_debug` panic on contract violations;
// other builds log them and carry on.
//
// Traversals that walk whole blocks at a time
// (see [Volume.BlockCoordinate] and [Volume.BlockRegion])
// or use a [Sampler] avoid thrashing the uncompressed cache.
//
// None of the types in this package are safe for concurrent use.
package voxel

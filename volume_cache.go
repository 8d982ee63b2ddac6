package voxel

import (
	"maps"
	"math"
	"slices"
)

// uncompressedBlock returns the block at coord in decompressed form,
// materializing it first if it is not resident.
func (v *Volume[V]) uncompressedBlock(coord Vector3) *loadedBlock[V] {
	// The last accessed block already holds the newest timestamp,
	// so hits on it skip the touch.
	if v.last != nil && v.lastCoord == coord {
		if debugging {
			assert(!v.last.block.IsCompressed(),
				"last accessed block is compressed")
		}
		return v.last
	}
	loaded, resident := v.blocks[coord]
	if resident {
		v.touch(loaded)
		if loaded.block.IsCompressed() {
			v.reserveCacheSlot()
			loaded.block.Decompress()
			v.cachePush(loaded)
		}
	} else {
		loaded = v.materialize(coord)
	}
	v.last, v.lastCoord = loaded, coord
	return loaded
}

func (v *Volume[V]) touch(loaded *loadedBlock[V]) {
	if v.timestamper == math.MaxUint32 {
		v.renormalizeTimestamps()
	}
	v.timestamper++
	loaded.timestamp = v.timestamper
}

// renormalizeTimestamps reassigns timestamps from 1 upwards
// in eviction order, so the counter can keep increasing
// without changing which block is oldest.
func (v *Volume[V]) renormalizeTimestamps() {
	byAge := slices.SortedFunc(maps.Values(v.blocks), compareAge[V])
	for i, loaded := range byAge {
		loaded.timestamp = uint32(i + 1)
	}
	v.timestamper = uint32(len(byAge))
	v.log.Debug("renormalized block timestamps",
		"blocks", len(byAge))
}

// older reports whether a should be evicted before b:
// the lower timestamp goes first; ties go to
// the lower block coordinate.
func older[V comparable](a, b *loadedBlock[V]) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp < b.timestamp
	}
	return a.coord.Less(b.coord)
}

func compareAge[V comparable](a, b *loadedBlock[V]) int {
	switch {
	case older(a, b):
		return -1
	case older(b, a):
		return 1
	default:
		return 0
	}
}

func (v *Volume[V]) cachePush(loaded *loadedBlock[V]) {
	v.cache.PushBack(&loaded.cached)
	v.cacheCount++
}

func (v *Volume[V]) cacheRemove(loaded *loadedBlock[V]) {
	if !loaded.cached.Linked() {
		return
	}
	loaded.cached.Remove()
	v.cacheCount--
}

func (v *Volume[V]) oldestCached() *loadedBlock[V] {
	var oldest *loadedBlock[V]
	for loaded := range v.cache.All() {
		if oldest == nil || older(loaded, oldest) {
			oldest = loaded
		}
	}
	return oldest
}

// reserveCacheSlot recompresses the oldest cached blocks
// until one more block can be decompressed within bounds.
func (v *Volume[V]) reserveCacheSlot() {
	v.trimCache(v.maxUncompressed - 1)
}

// trimCache recompresses the oldest cached blocks
// until at most limit remain decompressed.
// Nothing is compressed while compression is disabled.
func (v *Volume[V]) trimCache(limit int) {
	if !v.compression {
		return
	}
	for v.cacheCount > limit {
		oldest := v.oldestCached()
		if oldest == nil {
			return
		}
		v.compressBlock(oldest)
	}
}

func (v *Volume[V]) compressBlock(loaded *loadedBlock[V]) {
	v.cacheRemove(loaded)
	loaded.block.Compress()
	v.invalidate(loaded)
	v.log.Debug("compressed block",
		"block", loaded.coord,
		"runs", loaded.block.RunCount())
}

// invalidate drops any fast path referring to loaded.
func (v *Volume[V]) invalidate(loaded *loadedBlock[V]) {
	if v.last == loaded {
		v.last = nil
	}
	v.generation++
}

// ClearBlockCache compresses every decompressed block.
func (v *Volume[V]) ClearBlockCache() {
	for loaded := range v.cache.All() {
		v.compressBlock(loaded)
	}
}

// CompressionEnabled reports whether blocks are
// compressed when they leave the uncompressed cache.
func (v *Volume[V]) CompressionEnabled() bool { return v.compression }

// SetCompressionEnabled toggles compression.
// While disabled, decompressed blocks are never recompressed
// and the uncompressed cache may exceed its bound.
// Enabling compression trims the cache back to its bound.
func (v *Volume[V]) SetCompressionEnabled(enabled bool) {
	if v.compression == enabled {
		return
	}
	v.compression = enabled
	v.trimCache(v.maxUncompressed)
}

// MaxUncompressedBlocks returns the bound on decompressed blocks.
func (v *Volume[V]) MaxUncompressedBlocks() int { return v.maxUncompressed }

// SetMaxUncompressedBlocks changes the bound on decompressed blocks,
// compressing the oldest ones immediately if the cache is over it.
func (v *Volume[V]) SetMaxUncompressedBlocks(count int) error {
	if count < MinimumCapacity {
		return minCapacityError("max uncompressed blocks", count)
	}
	v.maxUncompressed = count
	v.trimCache(count)
	return nil
}

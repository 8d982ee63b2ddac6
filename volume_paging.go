package voxel

import (
	"fmt"
	"maps"
	"slices"

	"github.com/djdv/go-voxel/internal/block"
)

// materialize creates the block at coord, populates it through
// the paging handler (if any), and makes it resident and decompressed.
func (v *Volume[V]) materialize(coord Vector3) *loadedBlock[V] {
	v.reserveCacheSlot()
	data, err := block.New[V](v.sideLength)
	if debugging {
		assert(err == nil, "block side length changed after validation")
	}
	loaded := &loadedBlock[V]{
		block: data,
		coord: coord,
	}
	loaded.cached.Value = loaded
	if v.paging {
		v.dataRequired(loaded)
	}
	v.touch(loaded)
	v.blocks[coord] = loaded
	v.cachePush(loaded)
	v.log.Debug("materialized block",
		"block", coord,
		"resident", len(v.blocks))
	if v.paging {
		v.enforceResidentBudget(loaded)
	}
	return loaded
}

// enforceResidentBudget evicts the oldest blocks, other than protected,
// until the resident budget is met.
func (v *Volume[V]) enforceResidentBudget(protected *loadedBlock[V]) {
	for len(v.blocks) > v.maxResident {
		victim := v.oldestResident(protected)
		if victim == nil {
			return
		}
		v.evict(victim)
	}
}

func (v *Volume[V]) oldestResident(protected *loadedBlock[V]) *loadedBlock[V] {
	var oldest *loadedBlock[V]
	for _, loaded := range v.blocks {
		if loaded == protected {
			continue
		}
		if oldest == nil || older(loaded, oldest) {
			oldest = loaded
		}
	}
	return oldest
}

// evict removes a block from memory, handing it to the
// paging handler first if paging is enabled.
func (v *Volume[V]) evict(loaded *loadedBlock[V]) {
	if v.paging {
		v.dataOverflow(loaded)
	}
	v.cacheRemove(loaded)
	delete(v.blocks, loaded.coord)
	v.invalidate(loaded)
	v.log.Debug("evicted block",
		"block", loaded.coord,
		"resident", len(v.blocks))
}

func (v *Volume[V]) dataRequired(loaded *loadedBlock[V]) {
	var (
		region = v.BlockRegion(loaded.coord)
		proxy  = newProxy(v, loaded.block, region)
		err    = v.handler.DataRequired(proxy, region)
	)
	proxy.release()
	if err != nil {
		v.handlerFailed("data required", region, err)
	}
}

func (v *Volume[V]) dataOverflow(loaded *loadedBlock[V]) {
	// The block is about to be dropped,
	// so it is expanded without passing through the cache.
	loaded.block.Decompress()
	var (
		region = v.BlockRegion(loaded.coord)
		proxy  = newProxy(v, loaded.block, region)
		err    = v.handler.DataOverflow(proxy, region)
	)
	proxy.release()
	if err != nil {
		v.handlerFailed("data overflow", region, err)
	}
}

// handlerFailed reports a handler that could not honour its contract.
// Release builds keep whatever the block holds.
func (v *Volume[V]) handlerFailed(operation string, region Region, err error) {
	v.log.Error("paging handler failed",
		"operation", operation,
		"region", region,
		"error", err)
	if debugging {
		assert(false, fmt.Sprintf(
			"%s handler failed for %v: %v",
			operation, region, err))
	}
}

// MaxResidentBlocks returns the bound on blocks held in memory
// while paging is enabled.
func (v *Volume[V]) MaxResidentBlocks() int { return v.maxResident }

// SetMaxResidentBlocks changes the bound on blocks held in memory.
// If paging is enabled and the volume is over the new bound,
// the oldest blocks are evicted immediately.
func (v *Volume[V]) SetMaxResidentBlocks(count int) error {
	if count < MinimumCapacity {
		return minCapacityError("max resident blocks", count)
	}
	v.maxResident = count
	if v.paging {
		v.enforceResidentBudget(nil)
	}
	return nil
}

// Prefetch makes the blocks overlapping region resident
// without reading or writing voxels, returning how many blocks
// were loaded. Blocks that are already resident count as accessed.
// With paging enabled, at most [Volume.MaxResidentBlocks]
// blocks of the region are visited, so that the prefetch
// does not evict its own targets.
func (v *Volume[V]) Prefetch(region Region) int {
	cropped, ok := region.Crop(v.valid)
	if !ok {
		return 0
	}
	var (
		blocks = v.toBlockRegion(cropped)
		lower  = blocks.lower
		upper  = blocks.upper
		fetched,
		visited int
	)
	for z := int64(lower.Z); z <= int64(upper.Z); z++ {
		for y := int64(lower.Y); y <= int64(upper.Y); y++ {
			for x := int64(lower.X); x <= int64(upper.X); x++ {
				if v.paging && visited == v.maxResident {
					return fetched
				}
				visited++
				coord := Vector3{int32(x), int32(y), int32(z)}
				if loaded, resident := v.blocks[coord]; resident {
					v.touch(loaded)
					if loaded != v.last {
						// The fast path assumes the last block is the newest.
						v.last = nil
					}
					continue
				}
				v.uncompressedBlock(coord)
				fetched++
			}
		}
	}
	return fetched
}

// Flush evicts every resident block overlapping region,
// oldest first, and returns how many were evicted.
// With paging enabled each block is handed to the
// handler's DataOverflow before it is dropped;
// otherwise its contents are discarded.
func (v *Volume[V]) Flush(region Region) int {
	cropped, ok := region.Crop(v.valid)
	if !ok {
		return 0
	}
	blocks := v.toBlockRegion(cropped)
	return v.evictWhere(func(loaded *loadedBlock[V]) bool {
		return blocks.Contains(loaded.coord)
	})
}

// FlushAll evicts every resident block, oldest first,
// and returns how many were evicted.
func (v *Volume[V]) FlushAll() int {
	return v.evictWhere(func(*loadedBlock[V]) bool { return true })
}

func (v *Volume[V]) evictWhere(match func(*loadedBlock[V]) bool) int {
	var victims []*loadedBlock[V]
	for loaded := range maps.Values(v.blocks) {
		if match(loaded) {
			victims = append(victims, loaded)
		}
	}
	slices.SortFunc(victims, compareAge[V])
	for _, loaded := range victims {
		v.evict(loaded)
	}
	return len(victims)
}

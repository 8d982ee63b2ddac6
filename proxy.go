package voxel

import (
	"fmt"

	"github.com/djdv/go-voxel/internal/block"
)

// Proxy is the view of a single block handed to a [PagingHandler].
// Accesses are checked against the proxy's region rather than
// the volume's valid region, and the proxy stops working
// once the handler returns.
//
// Out of region accesses panic in builds tagged `voxel_debug`.
// Otherwise reads return the volume's border value,
// writes are dropped, and a warning is logged.
type Proxy[V comparable] struct {
	volume *Volume[V]
	block  *block.Block[V]
	region Region
}

func newProxy[V comparable](volume *Volume[V], data *block.Block[V], region Region) *Proxy[V] {
	return &Proxy[V]{
		volume: volume,
		block:  data,
		region: region,
	}
}

func (p *Proxy[V]) release() { p.block = nil }

// Region returns the region the proxy may access.
func (p *Proxy[V]) Region() Region { return p.region }

// Voxel returns the voxel at (x, y, z).
func (p *Proxy[V]) Voxel(x, y, z int32) V {
	if !p.permits(x, y, z) {
		return p.volume.border
	}
	v := p.volume
	return p.block.Get(v.local(x), v.local(y), v.local(z))
}

// VoxelAt is [Proxy.Voxel] for a vector position.
func (p *Proxy[V]) VoxelAt(pos Vector3) V { return p.Voxel(pos.X, pos.Y, pos.Z) }

// SetVoxel stores value at (x, y, z).
// It returns false if the access violated the proxy's contract.
func (p *Proxy[V]) SetVoxel(x, y, z int32, value V) bool {
	if !p.permits(x, y, z) {
		return false
	}
	v := p.volume
	p.block.Set(v.local(x), v.local(y), v.local(z), value)
	return true
}

// SetVoxelAt is [Proxy.SetVoxel] for a vector position.
func (p *Proxy[V]) SetVoxelAt(pos Vector3, value V) bool {
	return p.SetVoxel(pos.X, pos.Y, pos.Z, value)
}

// Fill sets every voxel of the proxy's region to value.
// It returns false if the proxy was used after its handler returned.
func (p *Proxy[V]) Fill(value V) bool {
	if p.block == nil {
		p.violation("proxy used after its handler returned", p.region.Lower())
		return false
	}
	p.block.Fill(value)
	return true
}

func (p *Proxy[V]) permits(x, y, z int32) bool {
	pos := Vector3{x, y, z}
	switch {
	case p.block == nil:
		p.violation("proxy used after its handler returned", pos)
		return false
	case !p.region.Contains(pos):
		p.violation("access outside paged region", pos)
		return false
	default:
		return true
	}
}

func (p *Proxy[V]) violation(reason string, pos Vector3) {
	p.volume.log.Warn("paging contract violation",
		"reason", reason,
		"position", pos,
		"region", p.region)
	if debugging {
		assert(false, fmt.Sprintf("%s: %v not usable in %v",
			reason, pos, p.region))
	}
}

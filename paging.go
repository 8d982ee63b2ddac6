package voxel

type (
	// PagingHandler extends a [Volume] beyond its resident budget.
	//
	// DataRequired is called once when a block is first touched;
	// it must define every voxel of region through the proxy
	// (voxels it leaves alone hold the zero value).
	//
	// DataOverflow is called once when a block is evicted,
	// before its memory is reclaimed; after it returns the
	// volume considers the region's contents gone.
	//
	// Both are called synchronously from the accessor that
	// triggered them. Handlers must only access voxels within region,
	// and must not retain the proxy after returning.
	// A returned error has no recovery path: it is logged,
	// and builds tagged `voxel_debug` panic.
	PagingHandler[V comparable] interface {
		DataRequired(proxy *Proxy[V], region Region) error
		DataOverflow(proxy *Proxy[V], region Region) error
	}
	// PagingFuncs adapts a pair of functions to a [PagingHandler].
	// Nil functions are skipped.
	PagingFuncs[V comparable] struct {
		Required,
		Overflow func(proxy *Proxy[V], region Region) error
	}
)

// DataRequired calls f.Required if it is set.
func (f PagingFuncs[V]) DataRequired(proxy *Proxy[V], region Region) error {
	if f.Required == nil {
		return nil
	}
	return f.Required(proxy, region)
}

// DataOverflow calls f.Overflow if it is set.
func (f PagingFuncs[V]) DataOverflow(proxy *Proxy[V], region Region) error {
	if f.Overflow == nil {
		return nil
	}
	return f.Overflow(proxy, region)
}

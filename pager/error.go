package pager

type constError string

const (
	// ErrNotFound is returned by a [Store] when a key holds no data.
	ErrNotFound = constError("not found")
	// ErrInvalidKey is returned by [FileStore]
	// for keys that do not name a single file.
	ErrInvalidKey = constError("invalid key")
	// ErrCorrupt is returned when stored data
	// cannot be decoded into a block.
	ErrCorrupt = constError("corrupt block data")
	// ErrUnknownCompression is returned for
	// compression identifiers this package does not implement.
	ErrUnknownCompression = constError("unknown compression")
	// ErrUnsupportedType is returned from [New] when
	// the voxel type has no fixed-size binary encoding.
	ErrUnsupportedType = constError("voxel type has no fixed size")
)

func (errStr constError) Error() string { return string(errStr) }

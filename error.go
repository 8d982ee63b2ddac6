package voxel

import "fmt"

type constError string

const (
	// ErrInvalidSideLength may be returned from [New]
	// when the block side length is not a supported power of two.
	ErrInvalidSideLength = constError("invalid block side length")
	// ErrInvalidRegion is returned when a [Region]'s
	// upper corner is below its lower corner on any axis.
	ErrInvalidRegion = constError("invalid region")
	// ErrInvalidCapacity may be returned when a cache bound
	// is below [MinimumCapacity].
	ErrInvalidCapacity = constError("invalid capacity")
	// ErrNilHandler is returned from [NewPaged]
	// when no [PagingHandler] is provided.
	ErrNilHandler = constError("paging handler is nil")
)

func (errStr constError) Error() string { return string(errStr) }

func minCapacityError(name string, capacity int) error {
	return fmt.Errorf(
		"%w: %s must be >=%d but %d was requested",
		ErrInvalidCapacity, name, MinimumCapacity, capacity)
}

func sideLengthError(sideLength uint16) error {
	return fmt.Errorf(
		"%w: must be a power of two in [1,%d] but %d was requested",
		ErrInvalidSideLength, MaxBlockSideLength, sideLength)
}

func regionError(lower, upper Vector3) error {
	return fmt.Errorf(
		"%w: upper corner %v is below lower corner %v",
		ErrInvalidRegion, upper, lower)
}

func shiftError(region Region, amount Vector3) error {
	return fmt.Errorf(
		"%w: shifting %v by %v leaves the int32 range",
		ErrInvalidRegion, region, amount)
}

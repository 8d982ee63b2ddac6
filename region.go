package voxel

import (
	"fmt"
	"iter"
	"math"
)

type (
	// Vector3 is an integer position or offset.
	Vector3 struct{ X, Y, Z int32 }
	// Region is an axis-aligned box of voxels whose corners
	// are both inclusive. Construct with [NewRegion];
	// the lower corner never exceeds the upper corner on any axis.
	Region struct {
		lower, upper Vector3
	}
)

// MaxRegion spans every representable position.
var MaxRegion = Region{
	lower: Vector3{math.MinInt32, math.MinInt32, math.MinInt32},
	upper: Vector3{math.MaxInt32, math.MaxInt32, math.MaxInt32},
}

// Add returns the component-wise sum of v and other.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns the component-wise difference of v and other.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Less orders vectors by X, then Y, then Z.
func (v Vector3) Less(other Vector3) bool {
	switch {
	case v.X != other.X:
		return v.X < other.X
	case v.Y != other.Y:
		return v.Y < other.Y
	default:
		return v.Z < other.Z
	}
}

// offset is Add, reporting false instead of wrapping
// when a component leaves the int32 range.
func (v Vector3) offset(amount Vector3) (Vector3, bool) {
	var (
		x = int64(v.X) + int64(amount.X)
		y = int64(v.Y) + int64(amount.Y)
		z = int64(v.Z) + int64(amount.Z)
	)
	if !inInt32(x) || !inInt32(y) || !inInt32(z) {
		return Vector3{}, false
	}
	return Vector3{int32(x), int32(y), int32(z)}, true
}

func inInt32(n int64) bool {
	return n >= math.MinInt32 && n <= math.MaxInt32
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// NewRegion returns the region spanning lower through upper, inclusive.
func NewRegion(lower, upper Vector3) (Region, error) {
	if upper.X < lower.X ||
		upper.Y < lower.Y ||
		upper.Z < lower.Z {
		return Region{}, regionError(lower, upper)
	}
	return Region{lower: lower, upper: upper}, nil
}

// Lower returns the inclusive lower corner.
func (r Region) Lower() Vector3 { return r.lower }

// Upper returns the inclusive upper corner.
func (r Region) Upper() Vector3 { return r.upper }

// Width returns the number of voxels spanned along X.
func (r Region) Width() int64 { return int64(r.upper.X) - int64(r.lower.X) + 1 }

// Height returns the number of voxels spanned along Y.
func (r Region) Height() int64 { return int64(r.upper.Y) - int64(r.lower.Y) + 1 }

// Depth returns the number of voxels spanned along Z.
func (r Region) Depth() int64 { return int64(r.upper.Z) - int64(r.lower.Z) + 1 }

// VoxelCount returns the number of voxels within the region.
// The result saturates for regions near the size of [MaxRegion].
func (r Region) VoxelCount() uint64 {
	var (
		w, h, d = uint64(r.Width()), uint64(r.Height()), uint64(r.Depth())
		area    = w * h
	)
	if area/h != w {
		return math.MaxUint64
	}
	count := area * d
	if count/d != area {
		return math.MaxUint64
	}
	return count
}

// Contains reports whether p lies within the region.
func (r Region) Contains(p Vector3) bool {
	return r.ContainsX(p.X) &&
		r.ContainsY(p.Y) &&
		r.ContainsZ(p.Z)
}

// ContainsBoundary reports whether p lies within the region
// after every face has been moved inwards by boundary voxels.
func (r Region) ContainsBoundary(p Vector3, boundary uint8) bool {
	return containsBoundary(p.X, r.lower.X, r.upper.X, boundary) &&
		containsBoundary(p.Y, r.lower.Y, r.upper.Y, boundary) &&
		containsBoundary(p.Z, r.lower.Z, r.upper.Z, boundary)
}

func containsBoundary(pos, lower, upper int32, boundary uint8) bool {
	b := int64(boundary)
	return int64(pos) >= int64(lower)+b &&
		int64(pos) <= int64(upper)-b
}

// ContainsX reports whether x lies within the region's X span.
func (r Region) ContainsX(x int32) bool { return x >= r.lower.X && x <= r.upper.X }

// ContainsY reports whether y lies within the region's Y span.
func (r Region) ContainsY(y int32) bool { return y >= r.lower.Y && y <= r.upper.Y }

// ContainsZ reports whether z lies within the region's Z span.
func (r Region) ContainsZ(z int32) bool { return z >= r.lower.Z && z <= r.upper.Z }

// Intersects reports whether the two regions share any voxel.
func (r Region) Intersects(other Region) bool {
	return r.lower.X <= other.upper.X && other.lower.X <= r.upper.X &&
		r.lower.Y <= other.upper.Y && other.lower.Y <= r.upper.Y &&
		r.lower.Z <= other.upper.Z && other.lower.Z <= r.upper.Z
}

// Crop returns the part of r that lies within other.
// It returns false if the regions do not intersect.
func (r Region) Crop(other Region) (Region, bool) {
	if !r.Intersects(other) {
		return Region{}, false
	}
	return Region{
		lower: Vector3{
			max(r.lower.X, other.lower.X),
			max(r.lower.Y, other.lower.Y),
			max(r.lower.Z, other.lower.Z),
		},
		upper: Vector3{
			min(r.upper.X, other.upper.X),
			min(r.upper.Y, other.upper.Y),
			min(r.upper.Z, other.upper.Z),
		},
	}, true
}

// All returns an iterator over every position in the region,
// with X varying fastest and Z slowest.
func (r Region) All() iter.Seq[Vector3] {
	return func(yield func(Vector3) bool) {
		for z := int64(r.lower.Z); z <= int64(r.upper.Z); z++ {
			for y := int64(r.lower.Y); y <= int64(r.upper.Y); y++ {
				for x := int64(r.lower.X); x <= int64(r.upper.X); x++ {
					if !yield(Vector3{int32(x), int32(y), int32(z)}) {
						return
					}
				}
			}
		}
	}
}

// Shift returns the region moved by amount.
// It fails if either corner would leave the representable range.
func (r Region) Shift(amount Vector3) (Region, error) {
	lower, lowerOK := r.lower.offset(amount)
	upper, upperOK := r.upper.offset(amount)
	if !lowerOK || !upperOK {
		return Region{}, shiftError(r, amount)
	}
	return Region{lower: lower, upper: upper}, nil
}

// ShiftLower returns the region with only its lower corner moved.
func (r Region) ShiftLower(amount Vector3) (Region, error) {
	lower, ok := r.lower.offset(amount)
	if !ok {
		return Region{}, shiftError(r, amount)
	}
	return NewRegion(lower, r.upper)
}

// ShiftUpper returns the region with only its upper corner moved.
func (r Region) ShiftUpper(amount Vector3) (Region, error) {
	upper, ok := r.upper.offset(amount)
	if !ok {
		return Region{}, shiftError(r, amount)
	}
	return NewRegion(r.lower, upper)
}

// WithLower returns the region with its lower corner replaced.
func (r Region) WithLower(lower Vector3) (Region, error) {
	return NewRegion(lower, r.upper)
}

// WithUpper returns the region with its upper corner replaced.
func (r Region) WithUpper(upper Vector3) (Region, error) {
	return NewRegion(r.lower, upper)
}

func (r Region) String() string {
	return fmt.Sprintf("[%v..%v]", r.lower, r.upper)
}

package voxel

// Sampler is a positioned cursor over a [Volume] for algorithms
// that visit neighbouring voxels densely.
// Moves and peeks that stay inside the current block
// index its data directly; anything else resolves
// through the volume.
//
// A Sampler shares its volume's threading restrictions.
type Sampler[V comparable] struct {
	volume *Volume[V]
	// current is nil while the position is outside the valid region.
	current    *loadedBlock[V]
	position   Vector3
	generation uint64
	index      int
	resolved   bool
}

// NewSampler returns a sampler positioned at the origin.
func NewSampler[V comparable](volume *Volume[V]) *Sampler[V] {
	return &Sampler[V]{volume: volume}
}

// Sampler returns a new [Sampler] over v positioned at the origin.
func (v *Volume[V]) Sampler() *Sampler[V] { return NewSampler(v) }

// Position returns the sampler's current position.
func (s *Sampler[V]) Position() Vector3 { return s.position }

// SetPosition moves the sampler to (x, y, z).
func (s *Sampler[V]) SetPosition(x, y, z int32) {
	s.SetPositionAt(Vector3{x, y, z})
}

// SetPositionAt moves the sampler to p.
func (s *Sampler[V]) SetPositionAt(p Vector3) {
	s.position = p
	s.resolve()
}

// Voxel returns the voxel at the sampler's position.
func (s *Sampler[V]) Voxel() V {
	if !s.fresh() {
		s.resolve()
	}
	if s.current == nil {
		return s.volume.border
	}
	return s.current.block.GetIndex(s.index)
}

// SetVoxel stores value at the sampler's position.
// It returns false if the position is outside the valid region.
func (s *Sampler[V]) SetVoxel(value V) bool {
	if !s.fresh() {
		s.resolve()
	}
	if s.current == nil {
		return false
	}
	s.current.block.SetIndex(s.index, value)
	return true
}

// MovePositiveX moves the sampler one voxel along +X.
func (s *Sampler[V]) MovePositiveX() { s.move(Vector3{X: 1}, 1) }

// MovePositiveY moves the sampler one voxel along +Y.
func (s *Sampler[V]) MovePositiveY() { s.move(Vector3{Y: 1}, 1<<s.volume.sidePower) }

// MovePositiveZ moves the sampler one voxel along +Z.
func (s *Sampler[V]) MovePositiveZ() { s.move(Vector3{Z: 1}, 1<<(2*s.volume.sidePower)) }

// MoveNegativeX moves the sampler one voxel along -X.
func (s *Sampler[V]) MoveNegativeX() { s.move(Vector3{X: -1}, -1) }

// MoveNegativeY moves the sampler one voxel along -Y.
func (s *Sampler[V]) MoveNegativeY() { s.move(Vector3{Y: -1}, -(1 << s.volume.sidePower)) }

// MoveNegativeZ moves the sampler one voxel along -Z.
func (s *Sampler[V]) MoveNegativeZ() { s.move(Vector3{Z: -1}, -(1 << (2 * s.volume.sidePower))) }

// Peek returns the voxel at the given offset from the sampler's
// position without moving it. Offsets within the 26-neighbourhood
// (each component in [-1, 1]) are the intended use;
// larger offsets are resolved through the volume.
func (s *Sampler[V]) Peek(dx, dy, dz int32) V {
	var (
		offset = Vector3{dx, dy, dz}
		target = s.position.Add(offset)
	)
	if s.sameBlock(target) {
		var (
			power = s.volume.sidePower
			delta = int(dx) + int(dy)<<power + int(dz)<<(2*power)
		)
		return s.current.block.GetIndex(s.index + delta)
	}
	return s.volume.VoxelAt(target)
}

func (s *Sampler[V]) move(step Vector3, delta int) {
	target := s.position.Add(step)
	if s.sameBlock(target) {
		s.position = target
		s.index += delta
		return
	}
	s.SetPositionAt(target)
}

// sameBlock reports whether target can be reached
// by offsetting into the current block's data.
func (s *Sampler[V]) sameBlock(target Vector3) bool {
	v := s.volume
	return s.fresh() &&
		s.current != nil &&
		v.valid.Contains(target) &&
		v.BlockCoordinate(target) == s.current.coord
}

func (s *Sampler[V]) fresh() bool {
	return s.resolved && s.generation == s.volume.generation
}

func (s *Sampler[V]) resolve() {
	var (
		v = s.volume
		p = s.position
	)
	s.current = nil
	if v.valid.Contains(p) {
		current := v.uncompressedBlock(v.BlockCoordinate(p))
		s.current = current
		s.index = current.block.Index(v.local(p.X), v.local(p.Y), v.local(p.Z))
	}
	s.generation = v.generation
	s.resolved = true
}

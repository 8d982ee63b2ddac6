package pager

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/djdv/go-voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type material struct {
	Kind    uint8
	Density float32
}

func newVolume[V comparable](t *testing.T, handler voxel.PagingHandler[V], resident int) *voxel.Volume[V] {
	t.Helper()
	valid, err := voxel.NewRegion(
		voxel.Vector3{X: -16, Y: -16, Z: -16},
		voxel.Vector3{X: 15, Y: 15, Z: 15},
	)
	require.NoError(t, err)
	volume, err := voxel.NewPaged(valid, handler, func(o *voxel.Options) {
		o.BlockSideLength = 8
		o.MaxResidentBlocks = resident
		o.MaxUncompressedBlocks = 2
	})
	require.NoError(t, err)
	return volume
}

func TestNew(t *testing.T) {
	_, err := New[int](NewMemoryStore(), nil)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = New[uint8](NewMemoryStore(), nil, func(o *Options) {
		o.Compression = Compression(9)
	})
	require.ErrorIs(t, err, ErrUnknownCompression)

	p, err := New[material](NewMemoryStore(), nil)
	require.NoError(t, err)
	assert.Equal(t, CompressionLZ4, p.compression)
}

func TestKey(t *testing.T) {
	region, err := voxel.NewRegion(
		voxel.Vector3{X: -32, Y: 0, Z: 64},
		voxel.Vector3{X: -1, Y: 31, Z: 95},
	)
	require.NoError(t, err)
	assert.Equal(t, "-32_0_64_32", Key(region))
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			store := NewMemoryStore()
			p, err := New[material](store, nil, func(o *Options) {
				o.Compression = codec
			})
			require.NoError(t, err)

			volume := newVolume[material](t, p, 4)
			written := map[voxel.Vector3]material{
				{X: -16, Y: -16, Z: -16}: {Kind: 1, Density: 0.5},
				{X: 0, Y: 0, Z: 0}:       {Kind: 2, Density: 1},
				{X: 15, Y: 3, Z: -9}:     {Kind: 3, Density: -2.25},
				{X: 7, Y: 15, Z: 15}:     {Kind: 4, Density: 3},
				{X: -1, Y: 8, Z: 12}:     {Kind: 5, Density: 0.125},
				{X: 8, Y: -8, Z: 0}:      {Kind: 6, Density: 9},
			}
			for pos, value := range written {
				require.True(t, volume.SetVoxelAt(pos, value))
			}
			// Each value lands in its own block, and every block is
			// saved exactly once, by eviction or by the flush.
			assert.LessOrEqual(t, volume.FlushAll(), 4)
			assert.Equal(t, len(written), store.Len())
			assert.Equal(t, len(written), p.Stats().Saves)

			// A fresh volume over the same store sees the saved data.
			reopened := newVolume[material](t, p, 2)
			for pos, want := range written {
				assert.Equal(t, want, reopened.VoxelAt(pos), "voxel at %v", pos)
			}
			assert.Equal(t, material{}, reopened.Voxel(1, 1, 1))
			stats := p.Stats()
			assert.Positive(t, stats.Loads)
			assert.Zero(t, stats.Failures)
			assert.Positive(t, stats.BytesWritten)
		})
	}
}

func TestFileBacked(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "world"))
	require.NoError(t, err)
	cached, err := NewCachingStore(store, 16)
	require.NoError(t, err)
	p, err := New[uint16](cached, nil, func(o *Options) {
		o.Compression = CompressionZstd
	})
	require.NoError(t, err)

	volume := newVolume[uint16](t, p, 1)
	for i := range int32(32) {
		require.True(t, volume.SetVoxel(i-16, i-16, i-16, uint16(i+1)))
	}
	for i := range int32(32) {
		assert.Equal(t, uint16(i+1), volume.Voxel(i-16, i-16, i-16))
	}
	assert.Equal(t, 1, volume.ResidentBlocks())
	assert.Zero(t, p.Stats().Failures)
}

func TestGenerator(t *testing.T) {
	var (
		store    = NewMemoryStore()
		generate = func(proxy *voxel.Proxy[uint8], region voxel.Region) error {
			for pos := range region.All() {
				if pos.Y < 0 {
					proxy.SetVoxelAt(pos, 1)
				}
			}
			return nil
		}
	)
	p, err := New[uint8](store, generate)
	require.NoError(t, err)

	volume := newVolume[uint8](t, p, 2)
	assert.Equal(t, uint8(1), volume.Voxel(3, -1, 3), "below ground")
	assert.Equal(t, uint8(0), volume.Voxel(3, 0, 3), "above ground")

	require.True(t, volume.SetVoxel(3, -1, 3, 7))
	volume.FlushAll()
	assert.Equal(t, uint8(7), volume.Voxel(3, -1, 3), "saved data wins over generation")

	region := volume.BlockRegion(volume.BlockCoordinate(voxel.Vector3{X: 3, Y: -1, Z: 3}))
	volume.FlushAll()
	require.NoError(t, p.Discard(region))
	assert.Equal(t, uint8(1), volume.Voxel(3, -1, 3), "discarded data is regenerated")

	stats := p.Stats()
	assert.Equal(t, stats.Misses, stats.Generated)
	assert.Positive(t, stats.Generated)
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Save(context.Context, string, []byte) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error         { return f.err }

func TestDecode(t *testing.T) {
	p, err := New[uint32](failingStore{errors.New("offline")}, nil)
	require.NoError(t, err)
	region, err := voxel.NewRegion(voxel.Vector3{}, voxel.Vector3{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)

	frame, err := p.encode([]uint32{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	values, err := p.decode(frame, region)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8}, values)

	short, err := p.encode([]uint32{1, 2, 3})
	require.NoError(t, err)
	_, err = p.decode(short, region)
	assert.ErrorIs(t, err, ErrCorrupt)

	long, err := p.encode(make([]uint32, 9))
	require.NoError(t, err)
	_, err = p.decode(long, region)
	assert.ErrorIs(t, err, ErrCorrupt)
}

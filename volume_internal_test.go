package voxel

import (
	"math"
	"testing"
)

func TestEvictionOrder(t *testing.T) {
	t.Run("tie break", tieBreak)
	t.Run("timestamp wrap", timestampWrap)
}

func tieBreak(t *testing.T) {
	t.Parallel()
	var (
		handler = PagingFuncs[uint8]{}
		volume  = newTestVolume(t, handler)
		coords  = []Vector3{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
			{1, 1, 1},
		}
	)
	for _, coord := range coords {
		volume.uncompressedBlock(coord)
	}
	for _, loaded := range volume.blocks {
		loaded.timestamp = 1
	}
	want := []Vector3{
		{0, 0, 1},
		{0, 1, 0},
		{1, 0, 0},
		{1, 1, 1},
	}
	for _, coord := range want {
		victim := volume.oldestResident(nil)
		if victim.coord != coord {
			t.Fatalf("tie break chose %v, want %v",
				victim.coord, coord)
		}
		volume.evict(victim)
	}
}

func timestampWrap(t *testing.T) {
	t.Parallel()
	var (
		volume = newTestVolume(t, PagingFuncs[uint8]{})
		coords = []Vector3{
			{0, 0, 0},
			{1, 0, 0},
			{2, 0, 0},
		}
	)
	volume.timestamper = math.MaxUint32 - 2
	for _, coord := range coords {
		volume.uncompressedBlock(coord)
	}
	if got := volume.timestamper; got >= math.MaxUint32-2 {
		t.Fatalf("timestamps were not renormalized: %d", got)
	}
	for i := range len(coords) - 1 {
		var (
			older   = volume.blocks[coords[i]]
			younger = volume.blocks[coords[i+1]]
		)
		if older.timestamp >= younger.timestamp {
			t.Errorf("renormalization reordered %v (%d) and %v (%d)",
				older.coord, older.timestamp,
				younger.coord, younger.timestamp)
		}
	}
	if victim := volume.oldestResident(nil); victim.coord != coords[0] {
		t.Errorf("oldest block after renormalization: got %v want %v",
			victim.coord, coords[0])
	}
}

func newTestVolume(tb testing.TB, handler PagingHandler[uint8]) *Volume[uint8] {
	tb.Helper()
	volume, err := NewUnbounded(handler, func(o *Options) {
		o.BlockSideLength = 4
	})
	if err != nil {
		tb.Fatal(err)
	}
	return volume
}

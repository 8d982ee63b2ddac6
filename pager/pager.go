// Package pager provides a [voxel.PagingHandler] that
// persists evicted blocks in a [Store].
//
// Each block's voxels are encoded little-endian in X, then Y,
// then Z order, compressed with the configured [Compression],
// and saved under [Key]. Blocks that were never saved are
// left at their default value or filled by a [Generator].
package pager

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/djdv/go-voxel"
)

type (
	// Generator defines the contents of a block
	// that has never been saved.
	Generator[V comparable] func(proxy *voxel.Proxy[V], region voxel.Region) error
	// Options configures a [Pager].
	Options struct {
		// Logger receives a record for every load and save.
		// Nil discards output.
		Logger *slog.Logger
		// Timeout bounds each store operation. Zero means no limit.
		Timeout time.Duration
		// Compression is applied to newly saved blocks.
		// Blocks saved with another codec remain readable.
		Compression Compression
	}
	// Stats counts a pager's store traffic.
	Stats struct {
		Loads,
		Misses,
		Generated,
		Saves,
		Failures int
		BytesRead,
		BytesWritten int64
	}
	// Pager pages blocks of a [voxel.Volume] in and out of a [Store].
	// Like the volume it serves, it is not safe for concurrent use.
	Pager[V comparable] struct {
		store       Store
		generate    Generator[V]
		log         *slog.Logger
		scratch     []V
		stats       Stats
		timeout     time.Duration
		compression Compression
	}
)

// DefaultOptions are the options used when none are provided.
var DefaultOptions = Options{
	Compression: CompressionLZ4,
}

var _ voxel.PagingHandler[uint8] = (*Pager[uint8])(nil)

// New returns a pager backed by store.
// generate may be nil, in which case unsaved blocks
// keep the volume's default fill.
func New[V comparable](store Store, generate Generator[V], optFns ...func(o *Options)) (*Pager[V], error) {
	var zero V
	if binary.Size(zero) <= 0 {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, zero)
	}
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.Compression.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, opts.Compression)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pager[V]{
		store:       store,
		generate:    generate,
		log:         log,
		timeout:     opts.Timeout,
		compression: opts.Compression,
	}, nil
}

// Key returns the store key for the block covering region.
func Key(region voxel.Region) string {
	lower := region.Lower()
	return fmt.Sprintf("%d_%d_%d_%d",
		lower.X, lower.Y, lower.Z, region.Width())
}

// Stats returns the pager's counters.
func (p *Pager[V]) Stats() Stats { return p.stats }

// DataRequired fills region from the store,
// or from the generator if the block was never saved.
func (p *Pager[V]) DataRequired(proxy *voxel.Proxy[V], region voxel.Region) error {
	ctx, cancel := p.context()
	defer cancel()
	key := Key(region)
	frame, err := p.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return p.generated(proxy, region)
		}
		p.stats.Failures++
		return fmt.Errorf("load block %s: %w", key, err)
	}
	p.stats.Loads++
	p.stats.BytesRead += int64(len(frame))
	values, err := p.decode(frame, region)
	if err != nil {
		p.stats.Failures++
		return fmt.Errorf("decode block %s: %w", key, err)
	}
	var i int
	for pos := range region.All() {
		proxy.SetVoxelAt(pos, values[i])
		i++
	}
	p.log.Debug("loaded block",
		"key", key,
		"bytes", len(frame))
	return nil
}

func (p *Pager[V]) generated(proxy *voxel.Proxy[V], region voxel.Region) error {
	p.stats.Misses++
	if p.generate == nil {
		return nil
	}
	p.stats.Generated++
	if err := p.generate(proxy, region); err != nil {
		p.stats.Failures++
		return fmt.Errorf("generate block %s: %w", Key(region), err)
	}
	return nil
}

// DataOverflow saves region's voxels to the store.
func (p *Pager[V]) DataOverflow(proxy *voxel.Proxy[V], region voxel.Region) error {
	ctx, cancel := p.context()
	defer cancel()
	values := p.scratch[:0]
	for pos := range region.All() {
		values = append(values, proxy.VoxelAt(pos))
	}
	p.scratch = values
	var (
		key        = Key(region)
		frame, err = p.encode(values)
	)
	if err != nil {
		p.stats.Failures++
		return fmt.Errorf("encode block %s: %w", key, err)
	}
	if err := p.store.Save(ctx, key, frame); err != nil {
		p.stats.Failures++
		return fmt.Errorf("save block %s: %w", key, err)
	}
	p.stats.Saves++
	p.stats.BytesWritten += int64(len(frame))
	p.log.Debug("saved block",
		"key", key,
		"bytes", len(frame),
		"compression", p.compression)
	return nil
}

// Discard deletes any saved data for region,
// so the next load falls back to the generator.
func (p *Pager[V]) Discard(region voxel.Region) error {
	ctx, cancel := p.context()
	defer cancel()
	return p.store.Delete(ctx, Key(region))
}

func (p *Pager[V]) encode(values []V) ([]byte, error) {
	raw, err := binary.Append(nil, binary.LittleEndian, values)
	if err != nil {
		return nil, err
	}
	return compress(raw, p.compression)
}

func (p *Pager[V]) decode(frame []byte, region voxel.Region) ([]V, error) {
	raw, err := decompress(frame)
	if err != nil {
		return nil, err
	}
	values := make([]V, region.VoxelCount())
	n, err := binary.Decode(raw, binary.LittleEndian, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if n != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing bytes",
			ErrCorrupt, len(raw)-n)
	}
	return values, nil
}

func (p *Pager[V]) context() (context.Context, context.CancelFunc) {
	if p.timeout == 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), p.timeout)
}

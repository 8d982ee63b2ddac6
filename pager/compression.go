package pager

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec applied to paged blocks.
type Compression uint8

const (
	// CompressionNone stores encoded voxels as is.
	CompressionNone Compression = iota
	// CompressionLZ4 favours speed.
	CompressionLZ4
	// CompressionZstd favours ratio.
	CompressionZstd
)

// Frame layout:
// [codec u8][raw size u32][compressed size u32][payload...]
// A compressed size of 0 means the payload is stored raw.
const frameHeaderSize = 9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool { return c <= CompressionZstd }

func getZstdEncoder() (*zstd.Encoder, error) {
	if enc, ok := zstdEncoderPool.Get().(*zstd.Encoder); ok {
		return enc, nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if dec, ok := zstdDecoderPool.Get().(*zstd.Decoder); ok {
		return dec, nil
	}
	return zstd.NewReader(nil)
}

// compress frames data, falling back to a raw payload
// when the codec does not shrink it.
func compress(data []byte, codec Compression) ([]byte, error) {
	if !codec.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, codec)
	}
	var (
		payload []byte
		err     error
	)
	switch {
	case len(data) == 0, codec == CompressionNone:
	case codec == CompressionLZ4:
		payload, err = compressLZ4(data)
	case codec == CompressionZstd:
		payload, err = compressZstd(data)
	}
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 || len(payload) >= len(data) {
		return appendFrame(nil, codec, data, nil), nil
	}
	return appendFrame(nil, codec, data, payload), nil
}

func appendFrame(frame []byte, codec Compression, raw, payload []byte) []byte {
	frame = append(frame, byte(codec))
	frame = binary.LittleEndian.AppendUint32(frame, uint32(len(raw)))
	frame = binary.LittleEndian.AppendUint32(frame, uint32(len(payload)))
	if payload == nil {
		return append(frame, raw...)
	}
	return append(frame, payload...)
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	return compressed[:n], nil
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

// decompress returns the raw bytes held by a frame
// produced by [compress], whatever codec produced it.
func decompress(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, fmt.Errorf("%w: frame of %d bytes is shorter than its header",
			ErrCorrupt, len(frame))
	}
	var (
		codec          = Compression(frame[0])
		rawSize        = int(binary.LittleEndian.Uint32(frame[1:]))
		compressedSize = int(binary.LittleEndian.Uint32(frame[5:]))
		payload        = frame[frameHeaderSize:]
	)
	if !codec.valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, codec)
	}
	if compressedSize == 0 {
		if len(payload) != rawSize {
			return nil, fmt.Errorf("%w: raw payload is %d bytes, header says %d",
				ErrCorrupt, len(payload), rawSize)
		}
		return payload, nil
	}
	if len(payload) != compressedSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d",
			ErrCorrupt, len(payload), compressedSize)
	}
	var (
		raw []byte
		err error
	)
	switch codec {
	case CompressionLZ4:
		raw, err = decompressLZ4(payload, rawSize)
	case CompressionZstd:
		raw, err = decompressZstd(payload, rawSize)
	default:
		return nil, fmt.Errorf("%w: %v frame has a compressed payload",
			ErrCorrupt, codec)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: decompressed %d bytes, header says %d",
			ErrCorrupt, len(raw), rawSize)
	}
	return raw, nil
}

func decompressLZ4(payload []byte, rawSize int) ([]byte, error) {
	raw := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(payload, raw)
	if err != nil {
		return nil, err
	}
	return raw[:n], nil
}

func decompressZstd(payload []byte, rawSize int) ([]byte, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, err
	}
	defer zstdDecoderPool.Put(dec)
	return dec.DecodeAll(payload, make([]byte, 0, rawSize))
}

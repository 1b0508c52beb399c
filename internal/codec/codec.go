// Package codec compresses backup payloads and defines the snapshot wire
// format stored in backup blobs.
package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec compresses and decompresses byte payloads.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// maxDecodedSize bounds decompressed payloads.
const maxDecodedSize = 256 << 20

// Zstd is a Codec backed by zstd. It is safe for concurrent use.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd creates a zstd codec at the default compression level.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

// Compress returns the zstd frame for data.
func (z *Zstd) Compress(data []byte) ([]byte, error) {
	return z.enc.EncodeAll(data, nil), nil
}

// Decompress decodes a zstd frame.
func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return out, nil
}

// Close releases the encoder and decoder.
func (z *Zstd) Close() error {
	z.dec.Close()
	return z.enc.Close()
}

package compress

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// BrotliQuality is the fixed quality level used for memdb source-contents
// entries. Quality 4 trades ratio for encode speed, matching the original
// memdb writer's choice.
const BrotliQuality = 4

// BrotliCompressor implements Codec using Brotli.
type BrotliCompressor struct{}

var _ Codec = (*BrotliCompressor)(nil)

// NewBrotliCompressor creates a Brotli codec at BrotliQuality.
func NewBrotliCompressor() BrotliCompressor {
	return BrotliCompressor{}
}

// Compress Brotli-compresses data at BrotliQuality.
func (c BrotliCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, BrotliQuality)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func (c BrotliCompressor) Decompress(data []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(data))

	return io.ReadAll(r)
}

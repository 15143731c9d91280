package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// envelopeCompressorPool reuses lz4.Compressor instances across Compress
// calls made by the CLI's build/unwrap path.
var envelopeCompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4Compressor is the fastest-decompress transport envelope.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	comp, _ := envelopeCompressorPool.Get().(*lz4.Compressor)
	defer envelopeCompressorPool.Put(comp)

	n, err := comp.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// lz4MaxDecompressedSize bounds the growing scratch buffer Decompress
// tries, since an lz4 block carries no decompressed-size prefix.
const lz4MaxDecompressedSize = 128 * 1024 * 1024

// Decompress reverses Compress. The decompressed size isn't recorded
// anywhere, so it guesses a 4x expansion and doubles on
// ErrInvalidSourceShortBuffer until it succeeds or hits
// lz4MaxDecompressedSize.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for bufSize := len(data) * 4; bufSize <= lz4MaxDecompressedSize; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

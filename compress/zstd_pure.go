//go:build !nobuild

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstd's encoder/decoder are explicitly designed to be reused after a
// warmup, so envelope (de)compression pulls from a pool rather than
// constructing one per call.
var (
	envelopeEncoderPool = sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.SpeedDefault),
				zstd.WithEncoderCRC(false),
			)
			if err != nil {
				panic(fmt.Sprintf("zstd: building pooled encoder: %v", err))
			}

			return enc
		},
	}
	envelopeDecoderPool = sync.Pool{
		New: func() any {
			dec, err := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderLowmem(false),
			)
			if err != nil {
				panic(fmt.Sprintf("zstd: building pooled decoder: %v", err))
			}

			return dec
		},
	}
)

func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := envelopeEncoderPool.Get().(*zstd.Encoder)
	defer envelopeEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec := envelopeDecoderPool.Get().(*zstd.Decoder)
	defer envelopeDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: decompressing envelope: %w", err)
	}

	return out, nil
}

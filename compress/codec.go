// Package compress provides compression codecs for smapdb's on-disk artifacts.
//
// Two distinct uses exist:
//
//  1. Brotli is the mandatory codec for memdb source-contents entries
//     (quality 4), applied per-entry inside the sealed container.
//  2. Zstd, S2, and LZ4 are optional whole-file "transport envelope"
//     codecs a caller can apply to a finished .memdb file for storage or
//     transfer; they never appear inside the container itself.
package compress

import "fmt"

// CompressionType identifies a compression algorithm.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionZstd
	CompressionS2
	CompressionLZ4
	CompressionBrotli
)

func (t CompressionType) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	case CompressionBrotli:
		return "brotli"
	default:
		return "unknown"
	}
}

// Compressor compresses a buffer.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a buffer previously produced by the matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec builds a Codec for the given compression type.
//
// target names the caller's use (for error messages), e.g. "envelope" or
// "source contents".
func CreateCodec(compressionType CompressionType, target string) (Codec, error) {
	switch compressionType {
	case CompressionNone:
		return NewNoOpCompressor(), nil
	case CompressionZstd:
		return NewZstdCompressor(), nil
	case CompressionS2:
		return NewS2Compressor(), nil
	case CompressionLZ4:
		return NewLZ4Compressor(), nil
	case CompressionBrotli:
		return NewBrotliCompressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[CompressionType]Codec{
	CompressionNone:   NewNoOpCompressor(),
	CompressionZstd:   NewZstdCompressor(),
	CompressionS2:     NewS2Compressor(),
	CompressionLZ4:    NewLZ4Compressor(),
	CompressionBrotli: NewBrotliCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

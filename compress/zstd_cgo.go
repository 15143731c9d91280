//go:build nobuild

// Dormant cgo-backed alternative to zstd_pure.go, kept behind a build tag
// that never matches: the pure-Go klauspost/compress/zstd path is what
// actually ships, since it needs no C toolchain at build time.
package compress

import "github.com/valyala/gozstd"

func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}

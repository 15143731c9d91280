package compress

// ZstdCompressor applies Zstandard as a transport envelope around a
// finished memdb file.
//
// This is the envelope to reach for when the ratio matters more than
// encode speed, e.g.:
//   - archiving built memdb files for cold storage
//   - shipping a memdb over a bandwidth-constrained link
//   - any case where the envelope is applied once and decoded rarely
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

package compress

// NoOpCompressor is the "none" envelope: it passes data through unchanged.
// Useful for testing and for inputs (already brotli-compressed memdb
// contents, mostly) where a second compression pass wouldn't help.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged. The caller must not mutate it afterward,
// since the returned slice aliases the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged, mirroring Compress.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

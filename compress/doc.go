// Package compress provides the codec layer used by smapdb.
//
// # Algorithm selection
//
//	Brotli  mandatory, per-entry compression of memdb source contents
//	Zstd    optional whole-file transport envelope, best ratio
//	S2      optional whole-file transport envelope, balanced
//	LZ4     optional whole-file transport envelope, fastest decompress
//	None    no-op, useful for testing and already-compressed inputs
//
// Whole-file envelopes are applied by the CLI's build/unwrap commands and
// never appear inside the sealed .memdb buffer; memdb always stores source
// contents as raw Brotli streams regardless of the envelope chosen outside.
package compress

// Package header implements the memdb header (MapHead): version, index
// layout, and the start/count pairs for the index and each string table.
//
// Size is 36 bytes: version(2) + index_layout(6) + index_size(4) +
// names_start/count(8) + sources_start/count(8) + source_contents_start/
// count(8). This corrects spec's "32 bytes / 0x20" header-size notation,
// which doesn't leave room for all nine fields it itself lists; the
// original source's repr(C) packed MapHead struct (memdb.rs) carries the
// same nine fields with no padding, confirming 36 is the intended size.
package header

import (
	"github.com/smapdb/smapdb/endian"
	"github.com/smapdb/smapdb/errs"
	"github.com/smapdb/smapdb/token"
)

// Size is the fixed on-disk size of a Header, in bytes.
const Size = 36

// byteOrder is the wire byte order for every multi-byte header field.
var byteOrder = endian.GetLittleEndianEngine()

// Version is the only version this package's reader accepts.
const Version = 1

// Header is the memdb's fixed preamble.
type Header struct {
	Version             uint16
	IndexLayout         token.IndexLayout
	IndexSize           uint32
	NamesStart          uint32
	NamesCount          uint32
	SourcesStart        uint32
	SourcesCount        uint32
	SourceContentsStart uint32
	SourceContentsCount uint32
}

// Bytes encodes h into its little-endian on-disk representation.
func (h Header) Bytes() [Size]byte {
	var buf [Size]byte
	byteOrder.PutUint16(buf[0:2], h.Version)
	layout := h.IndexLayout.Bytes()
	copy(buf[2:8], layout[:])
	byteOrder.PutUint32(buf[8:12], h.IndexSize)
	byteOrder.PutUint32(buf[12:16], h.NamesStart)
	byteOrder.PutUint32(buf[16:20], h.NamesCount)
	byteOrder.PutUint32(buf[20:24], h.SourcesStart)
	byteOrder.PutUint32(buf[24:28], h.SourcesCount)
	byteOrder.PutUint32(buf[28:32], h.SourceContentsStart)
	byteOrder.PutUint32(buf[32:36], h.SourceContentsCount)

	return buf
}

// ParseHeader decodes the first Size bytes of buf into a Header; any
// bytes after them are ignored. It validates the buffer length (at least
// Size bytes) and the version field.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < Size {
		return Header{}, errs.Wrap(errs.KindBadMemDb, "invalid header size", errs.ErrInvalidHeaderSize)
	}

	var h Header
	h.Version = byteOrder.Uint16(buf[0:2])
	if h.Version != Version {
		return Header{}, errs.Wrap(errs.KindUnsupportedMemDbVersion, "unsupported memdb version", errs.ErrUnsupportedMemDbVersion)
	}

	var layoutBytes [6]byte
	copy(layoutBytes[:], buf[2:8])
	h.IndexLayout = token.ParseIndexLayout(layoutBytes)
	h.IndexSize = byteOrder.Uint32(buf[8:12])
	h.NamesStart = byteOrder.Uint32(buf[12:16])
	h.NamesCount = byteOrder.Uint32(buf[16:20])
	h.SourcesStart = byteOrder.Uint32(buf[20:24])
	h.SourcesCount = byteOrder.Uint32(buf[24:28])
	h.SourceContentsStart = byteOrder.Uint32(buf[28:32])
	h.SourceContentsCount = byteOrder.Uint32(buf[32:36])

	return h, nil
}

// Package token implements the token record codec (spec component C): a
// sizing pass over a RawToken stream produces a minimal-width IndexLayout,
// which then determines a uniform item_size for every packed record.
package token

import "github.com/smapdb/smapdb/bitpack"

// Absent is the sentinel value for id fields that have no meaningful value.
const Absent = ^uint32(0)

// RawToken is one source-map mapping: a destination position with its
// originating source position, source id, and optional name id.
type RawToken struct {
	DstLine uint32
	DstCol  uint32
	SrcLine uint32
	SrcCol  uint32
	SrcID   uint32
	NameID  uint32
}

// IndexLayout holds the per-field bit widths sized to the smallest values
// that still fit every record in a token stream. NameIDBits is zero when
// names are not persisted.
type IndexLayout struct {
	DstLineBits uint8
	DstColBits  uint8
	SrcLineBits uint8
	SrcColBits  uint8
	SrcIDBits   uint8
	NameIDBits  uint8
}

func maxU8(a uint8, b int) uint8 {
	if b > int(a) {
		return uint8(b)
	}

	return a
}

// Reshape widens the layout, if needed, so that tok encodes without loss.
// NameIDBits is only considered when withNames is true.
func (l *IndexLayout) Reshape(tok RawToken, withNames bool) {
	l.DstLineBits = maxU8(l.DstLineBits, bitpack.ICLZ(tok.DstLine))
	l.DstColBits = maxU8(l.DstColBits, bitpack.ICLZ(tok.DstCol))
	l.SrcLineBits = maxU8(l.SrcLineBits, bitpack.ICLZ(tok.SrcLine))
	l.SrcColBits = maxU8(l.SrcColBits, bitpack.ICLZ(tok.SrcCol))
	l.SrcIDBits = maxU8(l.SrcIDBits, bitpack.IDSZ(tok.SrcID))
	if withNames {
		l.NameIDBits = maxU8(l.NameIDBits, bitpack.IDSZ(tok.NameID))
	}
}

// TotalBits returns the sum of the six field widths.
func (l IndexLayout) TotalBits() int {
	return int(l.DstLineBits) + int(l.DstColBits) + int(l.SrcLineBits) +
		int(l.SrcColBits) + int(l.SrcIDBits) + int(l.NameIDBits)
}

// ItemSize returns the per-record byte size: ceil(TotalBits/8).
func (l IndexLayout) ItemSize() int {
	return (l.TotalBits() + 7) / 8
}

// Bytes encodes the layout as its 6-byte on-disk representation.
func (l IndexLayout) Bytes() [6]byte {
	return [6]byte{
		l.DstLineBits, l.DstColBits, l.SrcLineBits,
		l.SrcColBits, l.SrcIDBits, l.NameIDBits,
	}
}

// ParseIndexLayout decodes a 6-byte on-disk layout.
func ParseIndexLayout(b [6]byte) IndexLayout {
	return IndexLayout{
		DstLineBits: b[0], DstColBits: b[1], SrcLineBits: b[2],
		SrcColBits: b[3], SrcIDBits: b[4], NameIDBits: b[5],
	}
}

// scratchSize is the bit-codec scratch buffer constraint: item_size must
// never exceed this (in practice it stays under 16).
const scratchSize = 64

// WriteToken encodes tok into buf (which must be at least ItemSize()
// bytes), in field order dst_line, dst_col, src_line, src_col, src_id,
// name_id. The name_id field is skipped entirely when NameIDBits == 0.
//
// Encoding uses a fixed scratch register sized to scratchSize so the bit
// writer always has room to flush a full 32-bit word, then copies out
// only the item_size bytes the layout actually needs.
func (l IndexLayout) WriteToken(buf []byte, tok RawToken) {
	var scratch [scratchSize]byte
	w := bitpack.NewWriter(scratch[:])
	w.Write(tok.DstLine, int(l.DstLineBits))
	w.Write(tok.DstCol, int(l.DstColBits))
	w.Write(tok.SrcLine, int(l.SrcLineBits))
	w.Write(tok.SrcCol, int(l.SrcColBits))
	w.WriteID(tok.SrcID, int(l.SrcIDBits))
	if l.NameIDBits > 0 {
		w.WriteID(tok.NameID, int(l.NameIDBits))
	}
	w.Flush()
	copy(buf, scratch[:l.ItemSize()])
}

// ReadToken decodes one record of ItemSize() bytes from buf.
func (l IndexLayout) ReadToken(buf []byte) RawToken {
	var scratch [scratchSize]byte
	copy(scratch[:], buf[:l.ItemSize()])
	r := bitpack.NewReader(scratch[:])
	var tok RawToken
	tok.DstLine = r.Read(int(l.DstLineBits))
	tok.DstCol = r.Read(int(l.DstColBits))
	tok.SrcLine = r.Read(int(l.SrcLineBits))
	tok.SrcCol = r.Read(int(l.SrcColBits))
	tok.SrcID = r.ReadID(int(l.SrcIDBits))
	if l.NameIDBits > 0 {
		tok.NameID = r.ReadID(int(l.NameIDBits))
	} else {
		tok.NameID = Absent
	}

	return tok
}

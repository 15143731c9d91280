package memdb

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/smapdb/smapdb/compress"
	"github.com/smapdb/smapdb/errs"
	"github.com/smapdb/smapdb/header"
	"github.com/smapdb/smapdb/token"
	"github.com/smapdb/smapdb/varint"
)

// MemDb is a sealed, read-only index over a byte buffer produced by
// Build/BuildTo. All accessors bounds-check against the buffer and fail
// softly (returning false/"") rather than panicking on corrupt input,
// except where the corruption prevents the header itself from being
// trusted.
type MemDb struct {
	data   []byte
	region mmap.MMap // non-nil only when opened via OpenFile
	file   *os.File
	head   header.Header
}

// Open wraps an in-memory buffer, validating the header and version.
func Open(data []byte) (*MemDb, error) {
	h, err := header.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	return &MemDb{data: data, head: h}, nil
}

// OpenFile memory-maps path read-only and wraps it as a MemDb.
func OpenFile(path string) (*MemDb, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	h, err := header.ParseHeader(region)
	if err != nil {
		region.Unmap()
		f.Close()
		return nil, err
	}

	return &MemDb{data: []byte(region), region: region, file: f, head: h}, nil
}

// Close releases the memory mapping, if any.
func (m *MemDb) Close() error {
	if m.region != nil {
		if err := m.region.Unmap(); err != nil {
			return err
		}
	}
	if m.file != nil {
		return m.file.Close()
	}

	return nil
}

// Version reports the memdb format version.
func (m *MemDb) Version() uint16 { return m.head.Version }

// TokenCount reports the number of tokens in the index.
func (m *MemDb) TokenCount() int { return int(m.head.IndexSize) }

// SourceCount reports the number of distinct sources.
func (m *MemDb) SourceCount() int { return int(m.head.SourcesCount) }

// getData returns a bounds-checked slice data[start:start+length]. length
// is taken as uint64 (matching original_source/src/memdb.rs's usize
// arithmetic) so that start+length is computed without risk of wrapping
// before the bounds check runs.
func (m *MemDb) getData(start uint32, length uint64) ([]byte, error) {
	end := uint64(start) + length
	if end > uint64(len(m.data)) {
		return nil, errs.ErrBadMemDb
	}

	return m.data[start:end], nil
}

func (m *MemDb) getSlice(start, count uint32) ([]uint32, error) {
	raw, err := m.getData(start, uint64(count)*4)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, count)
	for i := range out {
		out[i] = byteOrder.Uint32(raw[4*i : 4*i+4])
	}

	return out, nil
}

// getBytes reads coll[idx] as a byte offset into the buffer, then
// varint-decodes a length prefix at that offset and returns the
// following length bytes.
func (m *MemDb) getBytes(coll []uint32, idx uint32) ([]byte, bool) {
	if idx == token.Absent || int(idx) >= len(coll) {
		return nil, false
	}

	offset := coll[idx]
	if offset == token.Absent || int(offset) >= len(m.data) {
		return nil, false
	}

	length, n, err := varint.Decode(m.data[offset:])
	if err != nil {
		return nil, false
	}

	start := offset + uint32(n)
	data, err := m.getData(start, length)
	if err != nil {
		return nil, false
	}

	return data, true
}

func (m *MemDb) names() ([]uint32, error) {
	return m.getSlice(m.head.NamesStart, m.head.NamesCount)
}

func (m *MemDb) sources() ([]uint32, error) {
	return m.getSlice(m.head.SourcesStart, m.head.SourcesCount)
}

func (m *MemDb) sourceContents() ([]uint32, error) {
	return m.getSlice(m.head.SourceContentsStart, m.head.SourceContentsCount)
}

// GetName resolves a name id to its string, when present.
func (m *MemDb) GetName(id uint32) (string, bool) {
	coll, err := m.names()
	if err != nil {
		return "", false
	}

	b, ok := m.getBytes(coll, id)
	if !ok {
		return "", false
	}

	return string(b), true
}

// GetSource resolves a source id to its display name.
func (m *MemDb) GetSource(id uint32) (string, bool) {
	coll, err := m.sources()
	if err != nil {
		return "", false
	}

	b, ok := m.getBytes(coll, id)
	if !ok {
		return "", false
	}

	return string(b), true
}

// GetSourceContents resolves a source id to its decompressed original
// file contents, when the memdb was built with WithSourceContents and
// that particular source had contents recorded. Any failure along the
// way (absent entry, truncated buffer, bad brotli stream) is reported
// as (,"", false) rather than an error.
func (m *MemDb) GetSourceContents(id uint32) (string, bool) {
	coll, err := m.sourceContents()
	if err != nil {
		return "", false
	}

	b, ok := m.getBytes(coll, id)
	if !ok {
		return "", false
	}

	dec := compress.NewBrotliCompressor()
	raw, err := dec.Decompress(b)
	if err != nil {
		return "", false
	}

	return string(raw), true
}

func (m *MemDb) indexAt(i uint32) (token.RawToken, bool) {
	if i >= m.head.IndexSize {
		return token.RawToken{}, false
	}

	itemSize := m.head.IndexLayout.ItemSize()
	off := header.Size + itemSize*int(i)
	if off+itemSize > len(m.data) {
		return token.RawToken{}, false
	}

	return m.head.IndexLayout.ReadToken(m.data[off : off+itemSize]), true
}

// Token is a resolved view over one index entry, with name/source
// lookups attached to its owning MemDb.
type Token struct {
	db  *MemDb
	Raw token.RawToken
}

// GetToken resolves the i'th index entry.
func (m *MemDb) GetToken(i uint32) (Token, bool) {
	raw, ok := m.indexAt(i)
	if !ok {
		return Token{}, false
	}

	return Token{db: m, Raw: raw}, true
}

// DstLine returns the generated-position line.
func (t Token) DstLine() uint32 { return t.Raw.DstLine }

// DstCol returns the generated-position column.
func (t Token) DstCol() uint32 { return t.Raw.DstCol }

// SrcLine returns the original-position line.
func (t Token) SrcLine() uint32 { return t.Raw.SrcLine }

// SrcCol returns the original-position column.
func (t Token) SrcCol() uint32 { return t.Raw.SrcCol }

// HasName reports whether this token carries a name id.
func (t Token) HasName() bool { return t.Raw.NameID != token.Absent }

// GetName resolves this token's name, if any.
func (t Token) GetName() (string, bool) {
	if !t.HasName() {
		return "", false
	}

	return t.db.GetName(t.Raw.NameID)
}

// GetSource resolves this token's source file name. Unlike GetName,
// an absent source id resolves to "" rather than (,"",false): every
// token is expected to belong to some source.
func (t Token) GetSource() string {
	if t.Raw.SrcID == token.Absent {
		return ""
	}

	name, _ := t.db.GetSource(t.Raw.SrcID)

	return name
}

// LookupToken finds the token with the greatest (DstLine, DstCol) that
// is <= (line, col). It returns false if no such token exists (the
// query position precedes every token in the index).
func (m *MemDb) LookupToken(line, col uint32) (Token, bool) {
	low, high := uint32(0), m.head.IndexSize
	for low < high {
		mid := low + (high-low)/2
		tok, ok := m.indexAt(mid)
		if !ok {
			return Token{}, false
		}

		if tok.DstLine < line || (tok.DstLine == line && tok.DstCol <= col) {
			low = mid + 1
		} else {
			high = mid
		}
	}

	if low == 0 {
		return Token{}, false
	}

	return m.GetToken(low - 1)
}

// Package view implements the unified View/Index abstraction over a
// parsed JSON source map or a sealed memdb buffer, so callers can query
// either representation through one API.
package view

import (
	"github.com/smapdb/smapdb/errs"
	"github.com/smapdb/smapdb/internal/smjson"
	"github.com/smapdb/smapdb/memdb"
	"github.com/smapdb/smapdb/token"
)

// TokenMatch is a resolved mapping entry, independent of whether it came
// from a parsed JSON map or a sealed memdb.
type TokenMatch struct {
	DstLine uint32
	DstCol  uint32
	SrcLine uint32
	SrcCol  uint32
	Name    string
	HasName bool
	Source  string
	SrcID   uint32
}

// View wraps either a parsed JSON source map or a sealed *memdb.MemDb,
// exposing the same query surface regardless of representation.
type View struct {
	json *smjson.SourceMap
	db   *memdb.MemDb
}

// FromJSON parses a flat JSON source map into a View.
func FromJSON(data []byte) (*View, error) {
	sm, err := smjson.Parse(data)
	if err != nil {
		return nil, err
	}

	return FromSourceMap(sm), nil
}

// FromSourceMap wraps an already-decoded source map.
func FromSourceMap(sm *smjson.SourceMap) *View {
	return &View{json: sm}
}

// FromMemDb wraps an already-open memdb.
func FromMemDb(db *memdb.MemDb) *View {
	return &View{db: db}
}

// OpenMemDb wraps a sealed memdb buffer already read into memory.
func OpenMemDb(data []byte) (*View, error) {
	db, err := memdb.Open(data)
	if err != nil {
		return nil, err
	}

	return FromMemDb(db), nil
}

// OpenMemDbFile memory-maps a sealed memdb file.
func OpenMemDbFile(path string) (*View, error) {
	db, err := memdb.OpenFile(path)
	if err != nil {
		return nil, err
	}

	return FromMemDb(db), nil
}

// Close releases the underlying memdb mapping, if this View wraps one.
func (v *View) Close() error {
	if v.db != nil {
		return v.db.Close()
	}

	return nil
}

// IsMemDb reports whether this View wraps a sealed memdb rather than a
// parsed JSON source map.
func (v *View) IsMemDb() bool { return v.db != nil }

func tokenMatchFromRaw(v *View, raw token.RawToken) TokenMatch {
	tm := TokenMatch{
		DstLine: raw.DstLine,
		DstCol:  raw.DstCol,
		SrcLine: raw.SrcLine,
		SrcCol:  raw.SrcCol,
		SrcID:   raw.SrcID,
	}

	if raw.SrcID != token.Absent {
		tm.Source, _ = v.GetSource(raw.SrcID)
	}
	if raw.NameID != token.Absent {
		if name, ok := v.GetName(raw.NameID); ok {
			tm.Name = name
			tm.HasName = true
		}
	}

	return tm
}

// GetName resolves a name id against the underlying representation.
func (v *View) GetName(id uint32) (string, bool) {
	if v.db != nil {
		return v.db.GetName(id)
	}
	if int(id) >= len(v.json.Names) {
		return "", false
	}

	return v.json.Names[id], true
}

// GetSource resolves a source id to its display name.
func (v *View) GetSource(id uint32) (string, bool) {
	if v.db != nil {
		return v.db.GetSource(id)
	}
	if int(id) >= len(v.json.Sources) {
		return "", false
	}

	return v.json.Sources[id], true
}

// GetSourceCount reports the number of distinct sources.
func (v *View) GetSourceCount() uint32 {
	if v.db != nil {
		return uint32(v.db.SourceCount())
	}

	return uint32(len(v.json.Sources))
}

// GetSourceContents resolves a source id to its original file contents.
func (v *View) GetSourceContents(id uint32) (string, bool) {
	if v.db != nil {
		return v.db.GetSourceContents(id)
	}
	if int(id) >= len(v.json.SourcesContent) || !v.json.HasContent[id] {
		return "", false
	}

	return v.json.SourcesContent[id], true
}

// GetTokenCount reports the number of tokens in the index.
func (v *View) GetTokenCount() uint32 {
	if v.db != nil {
		return uint32(v.db.TokenCount())
	}

	return uint32(len(v.json.Tokens))
}

// GetToken resolves the idx'th token.
func (v *View) GetToken(idx uint32) (TokenMatch, bool) {
	if v.db != nil {
		tok, ok := v.db.GetToken(idx)
		if !ok {
			return TokenMatch{}, false
		}

		return tokenMatchFromRaw(v, tok.Raw), true
	}

	if int(idx) >= len(v.json.Tokens) {
		return TokenMatch{}, false
	}

	return tokenMatchFromRaw(v, v.json.Tokens[idx]), true
}

// LookupToken finds the token with the greatest (line, col) <= the query
// position.
func (v *View) LookupToken(line, col uint32) (TokenMatch, bool) {
	if v.db != nil {
		tok, ok := v.db.LookupToken(line, col)
		if !ok {
			return TokenMatch{}, false
		}

		return tokenMatchFromRaw(v, tok.Raw), true
	}

	low, high := 0, len(v.json.Tokens)
	for low < high {
		mid := low + (high-low)/2
		tok := v.json.Tokens[mid]
		if tok.DstLine < line || (tok.DstLine == line && tok.DstCol <= col) {
			low = mid + 1
		} else {
			high = mid
		}
	}

	if low == 0 {
		return TokenMatch{}, false
	}

	return tokenMatchFromRaw(v, v.json.Tokens[low-1]), true
}

type jsonContentsProvider struct{ sm *smjson.SourceMap }

func (p jsonContentsProvider) SourceContents(id uint32) (string, bool) {
	if int(id) >= len(p.sm.SourcesContent) || !p.sm.HasContent[id] {
		return "", false
	}

	return p.sm.SourcesContent[id], true
}

// DumpMemdb serializes this view into a sealed memdb buffer. It fails
// with errs.ErrAlreadyMemDb when the view already wraps one — unlike the
// original implementation, which silently re-clones the existing buffer.
func (v *View) DumpMemdb(opts memdb.DumpOptions) ([]byte, error) {
	if v.db != nil {
		return nil, errs.ErrAlreadyMemDb
	}

	return memdb.Build(v.json.Tokens, v.json.Names, v.json.Sources, jsonContentsProvider{v.json}, opts)
}

// Index represents a source-map-index: a sectioned composite that can be
// flattened into a View when every section is inline.
type Index struct {
	idx *smjson.IndexedSourceMap
}

// ParseIndex decodes an indexed JSON source map.
func ParseIndex(data []byte) (*Index, error) {
	idx, err := smjson.ParseIndex(data)
	if err != nil {
		return nil, err
	}

	return &Index{idx: idx}, nil
}

// CanFlatten reports whether every section is inline.
func (i *Index) CanFlatten() bool { return i.idx.CanFlatten() }

// Flatten merges all sections into a single View. It fails with
// errs.ErrIndexedNotFlat when any section is not inline.
func (i *Index) Flatten() (*View, error) {
	if !i.idx.CanFlatten() {
		return nil, errs.ErrIndexedNotFlat
	}

	sm, err := i.idx.Flatten()
	if err != nil {
		return nil, err
	}

	return FromSourceMap(sm), nil
}

// Package memdb implements the sealed, memory-mappable container format
// (spec component D): Build and BuildTo build one from a token stream plus
// name and source tables; a MemDb opens a sealed buffer for zero-copy,
// bounds-checked random access and binary-search lookup.
package memdb

import (
	"bytes"
	"io"

	"github.com/smapdb/smapdb/compress"
	"github.com/smapdb/smapdb/endian"
	"github.com/smapdb/smapdb/errs"
	"github.com/smapdb/smapdb/header"
	"github.com/smapdb/smapdb/internal/hash"
	"github.com/smapdb/smapdb/token"
	"github.com/smapdb/smapdb/varint"
)

// byteOrder is the wire byte order for the offset tables (names, sources,
// source contents), matching the header's own little-endian fields.
var byteOrder = endian.GetLittleEndianEngine()

// DumpOptions controls which optional tables Build and BuildTo populate.
type DumpOptions struct {
	WithNames          bool
	WithSourceContents bool
}

// SourceContentsProvider resolves a source id to its original file
// contents, when known.
type SourceContentsProvider interface {
	SourceContents(sourceID uint32) (contents string, ok bool)
}

// Build constructs a sealed memdb buffer in memory. tokens must be sorted
// ascending by (DstLine, DstCol); sources[i] is the display name for
// source id i.
func Build(tokens []token.RawToken, names, sources []string, contents SourceContentsProvider, opts DumpOptions) ([]byte, error) {
	var bb bytes.Buffer

	h, err := build(&bb, tokens, names, sources, contents, opts)
	if err != nil {
		return nil, err
	}

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	headBytes := h.Bytes()
	copy(out[:header.Size], headBytes[:])

	return out, nil
}

// BuildTo streams a sealed memdb to w, which must support Seek (the
// header is rewritten in place at offset 0 once the real offsets and
// counts are known).
func BuildTo(w io.WriteSeeker, tokens []token.RawToken, names, sources []string, contents SourceContentsProvider, opts DumpOptions) error {
	h, err := build(w, tokens, names, sources, contents, opts)
	if err != nil {
		return err
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	headBytes := h.Bytes()
	_, err = w.Write(headBytes[:])

	return err
}

func writeStr(w io.Writer, b []byte) (int, error) {
	buf := varint.Append(make([]byte, 0, varint.MaxBytes), uint64(len(b)))
	n, err := w.Write(buf)
	if err != nil {
		return 0, err
	}
	m, err := w.Write(b)
	if err != nil {
		return 0, err
	}

	return n + m, nil
}

func writeU32Slice(w io.Writer, vals []uint32) (int, error) {
	buf := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		buf = byteOrder.AppendUint32(buf, v)
	}

	return w.Write(buf)
}

func build(w io.Writer, tokens []token.RawToken, names, sources []string, contents SourceContentsProvider, opts DumpOptions) (header.Header, error) {
	if len(sources) > 1<<31 {
		return header.Header{}, errs.ErrTooManySources
	}
	if len(names) > 1<<31 {
		return header.Header{}, errs.ErrTooManyNames
	}

	h := header.Header{
		Version:      header.Version,
		IndexSize:    uint32(len(tokens)),
		SourcesCount: uint32(len(sources)),
	}

	// 1. reserve the header.
	idx, err := w.Write(make([]byte, header.Size))
	if err != nil {
		return header.Header{}, err
	}

	// 2. sizing pass.
	for _, tok := range tokens {
		h.IndexLayout.Reshape(tok, opts.WithNames)
	}

	// 3. record pass.
	itemSize := h.IndexLayout.ItemSize()
	rec := make([]byte, itemSize)
	var prevLine, prevCol uint32
	for i, tok := range tokens {
		if i > 0 && (tok.DstLine < prevLine || (tok.DstLine == prevLine && tok.DstCol < prevCol)) {
			return header.Header{}, errs.New(errs.KindBadMemDb, "token stream is not sorted by destination position")
		}
		prevLine, prevCol = tok.DstLine, tok.DstCol

		h.IndexLayout.WriteToken(rec, tok)
		n, err := w.Write(rec)
		if err != nil {
			return header.Header{}, err
		}
		idx += n
	}

	// 4. pad to a 4-byte boundary.
	if pad := idx % 4; pad != 0 {
		n, err := w.Write(make([]byte, 4-pad))
		if err != nil {
			return header.Header{}, err
		}
		idx += n
	}

	// 5. names.
	var nameOffsets []uint32
	if opts.WithNames {
		nameOffsets = make([]uint32, 0, len(names))
		for _, name := range names {
			nameOffsets = append(nameOffsets, uint32(idx))
			n, err := writeStr(w, []byte(name))
			if err != nil {
				return header.Header{}, err
			}
			idx += n
		}
	}

	// 6. sources and, optionally, source contents (deduplicated by content
	// hash: repeated vendored text is compressed once).
	sourceOffsets := make([]uint32, 0, len(sources))
	var contentOffsets []uint32
	haveSources := false
	seen := map[uint64]uint32{}
	brotli := compress.NewBrotliCompressor()

	for i, src := range sources {
		sourceOffsets = append(sourceOffsets, uint32(idx))
		n, err := writeStr(w, []byte(src))
		if err != nil {
			return header.Header{}, err
		}
		idx += n

		if !opts.WithSourceContents {
			continue
		}

		text, ok := contents.SourceContents(uint32(i))
		if !ok {
			contentOffsets = append(contentOffsets, token.Absent)
			continue
		}

		digest := hash.ID(text)
		if off, dup := seen[digest]; dup {
			haveSources = true
			contentOffsets = append(contentOffsets, off)
			continue
		}

		compressed, err := brotli.Compress([]byte(text))
		if err != nil {
			return header.Header{}, err
		}

		haveSources = true
		offset := uint32(idx)
		contentOffsets = append(contentOffsets, offset)
		seen[digest] = offset

		n, err = writeStr(w, compressed)
		if err != nil {
			return header.Header{}, err
		}
		idx += n
	}

	// 7. offset tables.
	if opts.WithNames {
		h.NamesStart = uint32(idx)
		h.NamesCount = uint32(len(nameOffsets))
		n, err := writeU32Slice(w, nameOffsets)
		if err != nil {
			return header.Header{}, err
		}
		idx += n
	}

	h.SourcesStart = uint32(idx)
	n, err := writeU32Slice(w, sourceOffsets)
	if err != nil {
		return header.Header{}, err
	}
	idx += n

	if haveSources {
		h.SourceContentsStart = uint32(idx)
		h.SourceContentsCount = uint32(len(contentOffsets))
		if _, err := writeU32Slice(w, contentOffsets); err != nil {
			return header.Header{}, err
		}
	}

	return h, nil
}

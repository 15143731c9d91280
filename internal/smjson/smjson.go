// Package smjson decodes plain and indexed JSON source maps, including
// their base64-VLQ "mappings" payload, into the token/source/name tables
// the rest of smapdb operates on. It exists because enumerating a full
// token stream (not just answering point queries) requires VLQ access no
// retrieved example or ecosystem dependency offers cleanly; see
// DESIGN.md for why this one piece is stdlib-only.
package smjson

import (
	"encoding/json"
	"fmt"

	"github.com/smapdb/smapdb/errs"
	"github.com/smapdb/smapdb/token"
)

// SourceMap is a decoded, flat (non-indexed) JSON source map.
type SourceMap struct {
	File           string
	Sources        []string
	SourcesContent []string // empty string where content was null/absent
	HasContent     []bool
	Names          []string
	Tokens         []token.RawToken
}

type rawMap struct {
	Version        int          `json:"version"`
	File           string       `json:"file"`
	Sources        []string     `json:"sources"`
	SourcesContent []*string    `json:"sourcesContent"`
	Names          []string     `json:"names"`
	Mappings       string       `json:"mappings"`
	Sections       []rawSection `json:"sections"`
	SourceRoot     string       `json:"sourceRoot"`
}

type rawSection struct {
	Offset struct {
		Line   uint32 `json:"line"`
		Column uint32 `json:"column"`
	} `json:"offset"`
	Map *json.RawMessage `json:"map"`
	URL string           `json:"url"`
}

// Parse decodes a flat JSON source map. It rejects indexed source maps
// (those carrying a "sections" array); use ParseIndex for those.
func Parse(data []byte) (*SourceMap, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.KindBadJSON, "malformed source map JSON", err)
	}
	if raw.Sections != nil {
		return nil, errs.New(errs.KindBadJSON, "source map is indexed, not flat")
	}

	return decodeFlat(&raw)
}

func decodeFlat(raw *rawMap) (*SourceMap, error) {
	sm := &SourceMap{
		File:       raw.File,
		Sources:    append([]string(nil), raw.Sources...),
		Names:      append([]string(nil), raw.Names...),
		HasContent: make([]bool, len(raw.Sources)),
	}

	sm.SourcesContent = make([]string, len(raw.Sources))
	for i := range sm.SourcesContent {
		if i < len(raw.SourcesContent) && raw.SourcesContent[i] != nil {
			sm.SourcesContent[i] = *raw.SourcesContent[i]
			sm.HasContent[i] = true
		}
	}

	tokens, err := decodeMappings(raw.Mappings)
	if err != nil {
		return nil, err
	}
	sm.Tokens = tokens

	return sm, nil
}

// IndexedSourceMap is a decoded "sections" composite source map.
type IndexedSourceMap struct {
	sections []section
}

type section struct {
	line, column uint32
	inline       *rawMap
	isURL        bool
}

// ParseIndex decodes an indexed JSON source map.
func ParseIndex(data []byte) (*IndexedSourceMap, error) {
	var raw rawMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.KindBadJSON, "malformed source map JSON", err)
	}

	idx := &IndexedSourceMap{}
	for _, s := range raw.Sections {
		if s.Map == nil {
			idx.sections = append(idx.sections, section{line: s.Offset.Line, column: s.Offset.Column, isURL: true})
			continue
		}

		var inline rawMap
		if err := json.Unmarshal(*s.Map, &inline); err != nil {
			return nil, errs.Wrap(errs.KindBadJSON, "malformed inline section map", err)
		}

		idx.sections = append(idx.sections, section{line: s.Offset.Line, column: s.Offset.Column, inline: &inline})
	}

	return idx, nil
}

// CanFlatten reports whether every section is inline (no external "url"
// references this decoder cannot resolve).
func (idx *IndexedSourceMap) CanFlatten() bool {
	for _, s := range idx.sections {
		if s.isURL {
			return false
		}
	}

	return true
}

// Flatten merges all inline sections into a single SourceMap, offsetting
// each section's tokens by its (line, column) offset and renumbering its
// source/name ids into the merged tables.
func (idx *IndexedSourceMap) Flatten() (*SourceMap, error) {
	if !idx.CanFlatten() {
		return nil, errs.ErrCannotFlatten
	}

	merged := &SourceMap{}
	for _, s := range idx.sections {
		part, err := decodeFlat(s.inline)
		if err != nil {
			return nil, err
		}

		sourceBase := uint32(len(merged.Sources))
		nameBase := uint32(len(merged.Names))
		merged.Sources = append(merged.Sources, part.Sources...)
		merged.SourcesContent = append(merged.SourcesContent, part.SourcesContent...)
		merged.HasContent = append(merged.HasContent, part.HasContent...)
		merged.Names = append(merged.Names, part.Names...)

		for _, tok := range part.Tokens {
			tok.DstLine += s.line
			if tok.DstLine == s.line {
				tok.DstCol += s.column
			}
			if tok.SrcID != token.Absent {
				tok.SrcID += sourceBase
			}
			if tok.NameID != token.Absent {
				tok.NameID += nameBase
			}
			merged.Tokens = append(merged.Tokens, tok)
		}
	}

	return merged, nil
}

const vlqBase64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var vlqDigitValue [128]int8

func init() {
	for i := range vlqDigitValue {
		vlqDigitValue[i] = -1
	}
	for i, c := range vlqBase64Alphabet {
		vlqDigitValue[c] = int8(i)
	}
}

const (
	vlqBaseShift   = 5
	vlqBase        = 1 << vlqBaseShift
	vlqBaseMask    = vlqBase - 1
	vlqContinueBit = vlqBase
)

// decodeVLQSegment decodes one VLQ-encoded signed integer starting at
// s[pos], returning the value and the index immediately after it.
func decodeVLQSegment(s string, pos int) (int64, int, error) {
	var result int64
	shift := uint(0)
	for {
		if pos >= len(s) {
			return 0, 0, errs.New(errs.KindBadJSON, "truncated VLQ segment")
		}

		c := s[pos]
		if c >= 128 || vlqDigitValue[c] < 0 {
			return 0, 0, errs.New(errs.KindBadJSON, fmt.Sprintf("invalid VLQ digit %q", c))
		}

		digit := int64(vlqDigitValue[c])
		pos++

		result += (digit & vlqBaseMask) << shift
		if digit&vlqContinueBit == 0 {
			break
		}
		shift += vlqBaseShift
	}

	negative := result&1 != 0
	value := result >> 1
	if negative {
		value = -value
	}

	return value, pos, nil
}

func decodeMappings(mappings string) ([]token.RawToken, error) {
	var tokens []token.RawToken

	var genLine uint32
	var genCol, srcLine, srcCol int64
	var srcIndex, nameIndex int64

	lineStart := 0
	for i := 0; i <= len(mappings); i++ {
		if i < len(mappings) && mappings[i] != ';' && mappings[i] != ',' {
			continue
		}

		segment := mappings[lineStart:i]
		lineStart = i + 1

		if segment != "" {
			delta, pos, err := decodeVLQSegment(segment, 0)
			if err != nil {
				return nil, err
			}
			genCol += delta

			tok := token.RawToken{
				DstLine: genLine,
				DstCol:  uint32(genCol),
				SrcID:   token.Absent,
				NameID:  token.Absent,
			}

			if pos < len(segment) {
				delta, pos, err = decodeVLQSegment(segment, pos)
				if err != nil {
					return nil, err
				}
				srcIndex += delta

				delta, pos, err = decodeVLQSegment(segment, pos)
				if err != nil {
					return nil, err
				}
				srcLine += delta

				delta, pos, err = decodeVLQSegment(segment, pos)
				if err != nil {
					return nil, err
				}
				srcCol += delta

				tok.SrcID = uint32(srcIndex)
				tok.SrcLine = uint32(srcLine)
				tok.SrcCol = uint32(srcCol)

				if pos < len(segment) {
					delta, _, err = decodeVLQSegment(segment, pos)
					if err != nil {
						return nil, err
					}
					nameIndex += delta
					tok.NameID = uint32(nameIndex)
				}
			}

			tokens = append(tokens, tok)
		}

		if i < len(mappings) && mappings[i] == ';' {
			genLine++
			genCol = 0
		}
	}

	return tokens, nil
}

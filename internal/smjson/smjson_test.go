package smjson

import (
	"testing"

	"github.com/smapdb/smapdb/token"
	"github.com/stretchr/testify/require"
)

func TestParseFlatSourceMap(t *testing.T) {
	// Two generated lines: line 0 has a source-less segment followed by
	// a full 5-field segment (column delta 1, source/name ids 0), line
	// 1 has one source-less segment. "A" decodes to delta 0, "C" to
	// delta 1 under the base64-VLQ scheme.
	doc := []byte(`{
		"version": 3,
		"file": "out.js",
		"sources": ["a.js"],
		"sourcesContent": ["var a = 1;"],
		"names": ["a"],
		"mappings": "A,CAAAA;A"
	}`)

	sm, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, "out.js", sm.File)
	require.Equal(t, []string{"a.js"}, sm.Sources)
	require.True(t, sm.HasContent[0])
	require.Equal(t, "var a = 1;", sm.SourcesContent[0])
	require.Equal(t, []string{"a"}, sm.Names)

	require.Len(t, sm.Tokens, 3)

	first := sm.Tokens[0]
	require.Equal(t, uint32(0), first.DstLine)
	require.Equal(t, uint32(0), first.DstCol)
	require.Equal(t, token.Absent, first.SrcID)

	second := sm.Tokens[1]
	require.Equal(t, uint32(0), second.DstLine)
	require.NotEqual(t, token.Absent, second.SrcID)
	require.NotEqual(t, token.Absent, second.NameID)

	third := sm.Tokens[2]
	require.Equal(t, uint32(1), third.DstLine)
}

func TestParseRejectsIndexedMap(t *testing.T) {
	doc := []byte(`{"version":3,"sections":[]}`)
	_, err := Parse(doc)
	require.Error(t, err)
}

func TestParseIndexFlatten(t *testing.T) {
	doc := []byte(`{
		"version": 3,
		"sections": [
			{"offset": {"line": 0, "column": 0}, "map": {
				"version": 3,
				"sources": ["a.js"],
				"names": [],
				"mappings": "AAAA"
			}},
			{"offset": {"line": 5, "column": 0}, "map": {
				"version": 3,
				"sources": ["b.js"],
				"names": [],
				"mappings": "AAAA"
			}}
		]
	}`)

	idx, err := ParseIndex(doc)
	require.NoError(t, err)
	require.True(t, idx.CanFlatten())

	merged, err := idx.Flatten()
	require.NoError(t, err)
	require.Equal(t, []string{"a.js", "b.js"}, merged.Sources)
	require.Len(t, merged.Tokens, 2)
	require.Equal(t, uint32(0), merged.Tokens[0].DstLine)
	require.Equal(t, uint32(5), merged.Tokens[1].DstLine)
	require.Equal(t, uint32(1), merged.Tokens[1].SrcID)
}

func TestParseIndexCannotFlattenWithURL(t *testing.T) {
	doc := []byte(`{
		"version": 3,
		"sections": [
			{"offset": {"line": 0, "column": 0}, "url": "external.map"}
		]
	}`)

	idx, err := ParseIndex(doc)
	require.NoError(t, err)
	require.False(t, idx.CanFlatten())

	_, err = idx.Flatten()
	require.Error(t, err)
}

func TestDecodeVLQSegmentRejectsGarbage(t *testing.T) {
	_, _, err := decodeVLQSegment("!!!", 0)
	require.Error(t, err)

	_, _, err = decodeVLQSegment("A", 5)
	require.Error(t, err)
}

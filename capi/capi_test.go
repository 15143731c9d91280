package main

/*
#include <stdint.h>
#include <string.h>
*/
import "C"

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

const flatDoc = `{
	"version": 3,
	"file": "out.js",
	"sources": ["a.js"],
	"sourcesContent": ["var a = 1;"],
	"names": ["a"],
	"mappings": "A,CAAAA;A"
}`

func TestViewFromJSONRoundTrip(t *testing.T) {
	data := []byte(flatDoc)
	cBytes := C.CBytes(data)
	defer C.free(cBytes)

	var cerr C.smapdb_CError
	handle := smapdb_view_from_json((*C.uint8_t)(cBytes), C.uint32_t(len(data)), &cerr)
	require.NotZero(t, handle)
	require.Zero(t, cerr.failed)

	count := smapdb_view_get_token_count(handle)
	require.Equal(t, C.uint32_t(3), count)

	var tok C.smapdb_Token
	ok := smapdb_view_lookup_token(handle, 0, 5, &tok)
	require.Equal(t, C.int(1), ok)
	require.NotNil(t, tok.name)

	smapdb_view_free(handle)
}

func TestViewFromJSONBadInput(t *testing.T) {
	data := []byte("{not json")
	cBytes := C.CBytes(data)
	defer C.free(cBytes)

	var cerr C.smapdb_CError
	handle := smapdb_view_from_json((*C.uint8_t)(cBytes), C.uint32_t(len(data)), &cerr)
	require.Zero(t, handle)
	require.Equal(t, C.int(1), cerr.failed)
	require.NotNil(t, cerr.message)
}

func TestViewGetTokenCountOnInvalidHandle(t *testing.T) {
	require.Equal(t, C.uint32_t(0), smapdb_view_get_token_count(0))
}

func TestBufferFreeAcceptsNil(t *testing.T) {
	smapdb_buffer_free(unsafe.Pointer(nil))
}

// Package varint implements the unsigned LEB128-style encoding used to
// prefix string-blob entries: 7 bits per byte, MSB of each byte is the
// continuation flag.
package varint

import "github.com/smapdb/smapdb/errs"

// MaxBytes bounds a single varint's encoded length (ceil(64/7)).
const MaxBytes = 10

// Append appends the varint encoding of v to buf and returns the result.
func Append(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}

	return append(buf, byte(v))
}

// Decode reads a varint from the start of buf, returning the decoded
// value and the number of bytes consumed. It fails with errs.ErrBadMemDb
// if buf is exhausted before a terminating byte is found.
func Decode(buf []byte) (v uint64, n int, err error) {
	var shift uint
	for n < len(buf) && n < MaxBytes {
		b := buf[n]
		n++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, n, nil
		}
		shift += 7
	}

	return 0, 0, errs.ErrBadMemDb
}

// Package position implements the legacy (line, col) packer documented in
// the format's history: a 32-bit value plus a 1-bit shape flag. The
// current token record layout (package token) supersedes this packer;
// smapdb keeps it only for documentation and interop with pre-version-1
// memdb files, and does not wire it into the live reader, which targets
// version 1 exclusively.
package position

import "github.com/smapdb/smapdb/errs"

const (
	shape0LineBits = 14
	shape0ColBits  = 17
	shape1LineBits = 17
	shape1ColBits  = 14
)

// Shape selects which of the two bit splits a packed position uses.
type Shape uint8

const (
	// Shape0 is used when line <= col: 14 bits of line, 17 of col.
	Shape0 Shape = iota
	// Shape1 is used when line > col: 17 bits of line, 14 of col.
	Shape1
)

// Pack encodes (line, col) into a 32-bit value and reports which shape was
// used. It returns errs.ErrLocationOverflow if either field doesn't fit
// its shape's budget.
func Pack(line, col uint32) (value uint32, shape Shape, err error) {
	if line <= col {
		if line >= 1<<shape0LineBits || col >= 1<<shape0ColBits {
			return 0, 0, errs.ErrLocationOverflow
		}

		return (line << shape0ColBits) | col, Shape0, nil
	}

	if line >= 1<<shape1LineBits || col >= 1<<shape1ColBits {
		return 0, 0, errs.ErrLocationOverflow
	}

	return (line << shape1ColBits) | col, Shape1, nil
}

// Unpack reverses Pack.
func Unpack(value uint32, shape Shape) (line, col uint32) {
	if shape == Shape0 {
		return value >> shape0ColBits, value & 0x1ffff
	}

	return value >> shape1ColBits, value & 0x3fff
}

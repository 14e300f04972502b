// Package reader provides a small endian-aware cursor over a byte slice,
// the shared primitive every BTF decoding stage reads through.
package reader

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
)

// ErrShortRead is returned whenever a read would run past the end of the
// underlying buffer. It aliases btferr.ErrTruncated so callers up the stack
// can match on one sentinel regardless of which layer detected it.
var ErrShortRead = btferr.ErrTruncated

// ErrInvalidString is returned for a string offset at or past the end of the
// section, or for a NUL-terminated run of bytes that is not valid UTF-8. It
// aliases btferr.ErrInvalidString so callers up the stack can match on one
// sentinel regardless of which layer detected it.
var ErrInvalidString = btferr.ErrInvalidString

// Reader is a cursor over a byte slice with a configurable byte order.
// Reads advance it; Seek repositions it to any absolute offset. It never
// allocates beyond the slices it returns.
type Reader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// New wraps buf for sequential decoding in the given byte order.
func New(buf []byte, order binary.ByteOrder) *Reader {
	return &Reader{buf: buf, order: order}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Pos returns the current offset from the start of the buffer.
func (r *Reader) Pos() int {
	return r.pos
}

// Seek moves the cursor to an absolute offset within the buffer.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return fmt.Errorf("reader: seek %d out of range [0,%d]: %w", pos, len(r.buf), ErrShortRead)
	}
	r.pos = pos
	return nil
}

// Bytes returns n bytes from the current position and advances the cursor.
// The returned slice aliases the underlying buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("reader: need %d bytes, have %d: %w", n, r.Len(), ErrShortRead)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a uint16 in the reader's byte order.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// U32 reads a uint32 in the reader's byte order.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// I32 reads an int32 in the reader's byte order.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U64 reads a uint64 in the reader's byte order.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// I64 reads an int64 in the reader's byte order.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// CString scans a NUL-terminated string starting at offset within buf and
// returns it without the terminator. It does not move the cursor; string
// sections are addressed by offset, not read sequentially.
func CString(buf []byte, offset uint32) (string, error) {
	if int(offset) >= len(buf) {
		return "", fmt.Errorf("reader: string offset %d out of range [0,%d): %w", offset, len(buf), ErrInvalidString)
	}
	end := int(offset)
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	if end >= len(buf) {
		return "", fmt.Errorf("reader: unterminated string at offset %d: %w", offset, ErrInvalidString)
	}
	s := buf[offset:end]
	if !utf8.Valid(s) {
		return "", fmt.Errorf("reader: string at offset %d is not valid UTF-8: %w", offset, ErrInvalidString)
	}
	return string(s), nil
}

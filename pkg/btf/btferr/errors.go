// Package btferr holds the sentinel errors shared across the btf packages,
// split out from pkg/btf itself to avoid an import cycle (pkg/btf imports
// header, rawtype, strtab, cache and mmapbackend, all of which need to
// return these).
package btferr

import "errors"

// Taxonomy per the error handling design: one sentinel per distinguishable
// failure kind, wrapped with fmt.Errorf("%w", ...) for context.
var (
	// ErrBadHeader covers a missing/incorrect magic, a too-small hdr_len,
	// or a section falling outside the blob.
	ErrBadHeader = errors.New("btf: malformed header")
	// ErrTruncated covers a read, at any stage, that runs past the end of
	// the relevant section.
	ErrTruncated = errors.New("btf: truncated record")
	// ErrUnknownKind covers a type kind byte outside the known range.
	ErrUnknownKind = errors.New("btf: unknown type kind")
	// ErrInvalidString covers a non-UTF-8 decode or an out-of-range string
	// offset.
	ErrInvalidString = errors.New("btf: invalid string")
	// ErrUnknownId covers a type id with no corresponding record, including
	// id 0 and any id in a split/base gap.
	ErrUnknownId = errors.New("btf: unknown type id")
	// ErrUnknownName covers a name query with zero matches.
	ErrUnknownName = errors.New("btf: unknown name")
	// ErrNotChained covers resolving a chained edge from a kind that has
	// none.
	ErrNotChained = errors.New("btf: type has no chained edge")
	// ErrEmptyName covers resolving a zero name offset through a context
	// that disallows it (RequireName); ordinary Name resolution returns
	// "" without error.
	ErrEmptyName = errors.New("btf: name offset is empty")
	// ErrIO covers convenience file constructors.
	ErrIO = errors.New("btf: i/o error")
	// ErrDecompress covers the ELF section decompression helper.
	ErrDecompress = errors.New("btf: decompression error")
	// ErrRegex covers an invalid pattern passed to a regex query.
	ErrRegex = errors.New("btf: regex error")
)

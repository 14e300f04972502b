package btf

import "github.com/go-btf/gobtf/pkg/btf/btferr"

// Error taxonomy, re-exported from btferr at the package callers actually
// import. Match with errors.Is.
var (
	ErrBadHeader     = btferr.ErrBadHeader
	ErrTruncated     = btferr.ErrTruncated
	ErrUnknownKind   = btferr.ErrUnknownKind
	ErrInvalidString = btferr.ErrInvalidString
	ErrUnknownId     = btferr.ErrUnknownId
	ErrUnknownName   = btferr.ErrUnknownName
	ErrNotChained    = btferr.ErrNotChained
	ErrEmptyName     = btferr.ErrEmptyName
	ErrIO            = btferr.ErrIO
	ErrDecompress    = btferr.ErrDecompress
	ErrRegex         = btferr.ErrRegex
)

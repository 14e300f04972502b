// Package strtab resolves BTF string offsets into Go strings, transparently
// spanning a base blob's string section and an optional split blob's own
// section the way spec'd split BTF addressing requires.
package strtab

import (
	"fmt"
	"sync"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/reader"
)

// Table resolves offsets against one string section, optionally delegating
// offsets below its base's section length to that base, the same
// base/split relationship the facade holds for type ids, mirrored here for
// string offsets per the split-rebasing rule.
type Table struct {
	buf  []byte
	base *Table

	mu    sync.RWMutex
	cache map[uint32]string
}

// New wraps a base blob's string section.
func New(buf []byte) *Table {
	return &Table{buf: buf, cache: make(map[uint32]string)}
}

// NewSplit wraps a split blob's own string section, delegating offsets
// below base's section length to base.
func NewSplit(buf []byte, base *Table) *Table {
	return &Table{buf: buf, base: base, cache: make(map[uint32]string)}
}

// Len returns the length of this table's own string section (not
// including any base it delegates to).
func (t *Table) Len() uint32 { return uint32(len(t.buf)) }

// Resolve returns the string at offset. Offset 0 is always the empty
// string per the format's invariant that the section begins with \0.
func (t *Table) Resolve(offset uint32) (string, error) {
	if offset == 0 {
		return "", nil
	}
	if t.base != nil && offset < t.base.Len() {
		return t.base.Resolve(offset)
	}
	local := offset
	if t.base != nil {
		local = offset - t.base.Len()
	}

	t.mu.RLock()
	if s, ok := t.cache[local]; ok {
		t.mu.RUnlock()
		return s, nil
	}
	t.mu.RUnlock()

	s, err := reader.CString(t.buf, local)
	if err != nil {
		return "", fmt.Errorf("strtab: offset %d: %w", offset, btferr.ErrInvalidString)
	}

	t.mu.Lock()
	t.cache[local] = s
	t.mu.Unlock()
	return s, nil
}

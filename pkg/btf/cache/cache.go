// Package cache implements the eager BTF storage backend: every type is
// decoded once at construction time into an indexed slice, alongside a
// name→ids multimap, trading memory for O(1) id lookups and O(k) name
// lookups. Grounded on the teacher's streams.TPIStream.ReadTPIStream,
// which decodes every TPI record up front into TypeRecords/typeMap rather
// than re-parsing on each query.
package cache

import (
	"fmt"
	"sort"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/header"
	"github.com/go-btf/gobtf/pkg/btf/rawtype"
	"github.com/go-btf/gobtf/pkg/btf/reader"
	"github.com/go-btf/gobtf/pkg/btf/store"
	"github.com/go-btf/gobtf/pkg/btf/strtab"
)

var _ store.Backend = (*Backend)(nil)

// Backend is the eager, fully-decoded storage strategy.
type Backend struct {
	types    []rawtype.Type // index i holds local id i+1
	nameOffs map[uint32][]rawtype.ID
	strings  *strtab.Table
}

// Build decodes every type record in the type section described by hdr out
// of buf, indexing ids by their raw name_off. Names are not resolved here:
// a malformed string elsewhere in the blob must not prevent the backend
// from being constructed at all, so resolution is deferred to query time.
func Build(buf []byte, hdr *header.Header, strings *strtab.Table) (*Backend, error) {
	start := hdr.TypeSectionStart()
	end := start + hdr.TypeLen
	if uint64(end) > uint64(len(buf)) {
		return nil, fmt.Errorf("cache: type section end %d exceeds blob size %d: %w", end, len(buf), btferr.ErrBadHeader)
	}
	section := buf[start:end]

	r := reader.New(section, hdr.Order)
	var types []rawtype.Type
	for r.Len() > 0 {
		t, err := rawtype.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("cache: decoding type %d: %w", len(types)+1, err)
		}
		types = append(types, t)
	}

	nameOffs := make(map[uint32][]rawtype.ID)
	for i, t := range types {
		if off := t.NameOff(); off != 0 {
			id := rawtype.ID(i + 1)
			nameOffs[off] = append(nameOffs[off], id)
		}
	}

	return &Backend{types: types, nameOffs: nameOffs, strings: strings}, nil
}

// TypeByID implements store.Backend.
func (b *Backend) TypeByID(id rawtype.ID) (rawtype.Type, error) {
	if id == 0 || int(id) > len(b.types) {
		return nil, fmt.Errorf("cache: id %d: %w", id, btferr.ErrUnknownId)
	}
	return b.types[id-1], nil
}

// KindByID is a cheap kind-only probe. The cache backend has every record
// fully decoded already, so this costs the same as TypeByID; it exists to
// satisfy the same kindProber contract the mmap backend provides more
// cheaply.
func (b *Backend) KindByID(id rawtype.ID) (rawtype.Kind, error) {
	t, err := b.TypeByID(id)
	if err != nil {
		return 0, err
	}
	return t.Kind(), nil
}

// StringTable returns the concrete string table backing this cache, needed
// by the facade when a split blob is opened over this one as its base.
func (b *Backend) StringTable() *strtab.Table { return b.strings }

// IDsByName implements store.Backend. It resolves each distinct name_off
// lazily (through the string table's own cache) and collects the ids whose
// resolved name matches; a name_off that fails to resolve is skipped
// rather than failing the whole query, so one bad string elsewhere in the
// blob never makes other names unqueryable.
func (b *Backend) IDsByName(name string) []rawtype.ID {
	var out []rawtype.ID
	for off, ids := range b.nameOffs {
		resolved, err := b.strings.Resolve(off)
		if err != nil || resolved != name {
			continue
		}
		out = append(out, ids...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names implements store.Backend, resolving every distinct name_off and
// skipping any that fail.
func (b *Backend) Names() []string {
	names := make([]string, 0, len(b.nameOffs))
	for off := range b.nameOffs {
		if resolved, err := b.strings.Resolve(off); err == nil {
			names = append(names, resolved)
		}
	}
	return names
}

// MaxID implements store.Backend.
func (b *Backend) MaxID() rawtype.ID { return rawtype.ID(len(b.types)) }

// NumTypes implements store.Backend.
func (b *Backend) NumTypes() int { return len(b.types) }

// Strings implements store.Backend.
func (b *Backend) Strings() store.StringResolver { return b.strings }

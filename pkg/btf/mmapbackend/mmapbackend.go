// Package mmapbackend implements the lazy BTF storage backend: the raw
// bytes are retained (memory-mapped or owned), and only an id→offset table
// and a name→ids index are built up front; each query re-decodes its
// record on the fly. Grounded on the teacher's msf.StreamReader, which
// never materializes a whole stream either: it seeks into the underlying
// blocks and reads only what a caller asks for.
//
// Only base blobs are supported here: split BTF interleaves split-ids with
// base-ids at the facade layer and its name queries must union base and
// split results, which the facade's cache-backed split handles uniformly.
package mmapbackend

import (
	"fmt"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"

	"github.com/go-btf/gobtf/internal/madvise"
	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/header"
	"github.com/go-btf/gobtf/pkg/btf/rawtype"
	"github.com/go-btf/gobtf/pkg/btf/reader"
	"github.com/go-btf/gobtf/pkg/btf/store"
	"github.com/go-btf/gobtf/pkg/btf/strtab"
)

// Backend is the lazy, decode-on-demand storage strategy.
type Backend struct {
	section  []byte // the type section only, relative offsets below
	hdr      *header.Header
	offsets  []uint32       // offsets[i] is the start of id i+1 within section
	kinds    []rawtype.Kind // kinds[i] is the kind of id i+1, free from the scan decode
	nameOffs map[uint32][]rawtype.ID
	strings  *strtab.Table

	mapping mmap.MMap // non-nil when this Backend owns a memory mapping
	file    *os.File  // non-nil when this Backend owns the open file
}

var _ store.Backend = (*Backend)(nil)

// Build scans buf's type section, recording per-id offsets and grouping
// ids by their raw name_off, without retaining decoded records or
// resolving any name: a malformed string elsewhere in the blob must not
// prevent the scan from completing, so resolution is deferred to query
// time. strings resolves this blob's own string section (mmap backends
// never delegate to a base).
func Build(buf []byte, hdr *header.Header, strings *strtab.Table) (*Backend, error) {
	start := hdr.TypeSectionStart()
	end := start + hdr.TypeLen
	if uint64(end) > uint64(len(buf)) {
		return nil, fmt.Errorf("mmapbackend: type section end %d exceeds blob size %d: %w", end, len(buf), btferr.ErrBadHeader)
	}
	section := buf[start:end]

	r := reader.New(section, hdr.Order)
	var offsets []uint32
	var kinds []rawtype.Kind
	nameOffs := make(map[uint32][]rawtype.ID)

	for r.Len() > 0 {
		recStart := uint32(r.Pos())
		t, err := rawtype.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("mmapbackend: scanning type %d: %w", len(offsets)+1, err)
		}
		offsets = append(offsets, recStart)
		kinds = append(kinds, t.Kind())

		if off := t.NameOff(); off != 0 {
			id := rawtype.ID(len(offsets))
			nameOffs[off] = append(nameOffs[off], id)
		}
	}

	return &Backend{
		section:  section,
		hdr:      hdr,
		offsets:  offsets,
		kinds:    kinds,
		nameOffs: nameOffs,
		strings:  strings,
	}, nil
}

// OpenFile memory-maps path read-only, parses its header, and scans it as
// a base BTF blob. The returned Backend must be Closed to release the
// mapping.
func OpenFile(path string) (*Backend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapbackend: opening %s: %w", path, btferr.ErrIO)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapbackend: mapping %s: %w", path, btferr.ErrIO)
	}

	madvise.Random(m)

	hdr, err := header.Parse(m)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}

	strs := strtab.New(m[hdr.StrSectionStart() : hdr.StrSectionStart()+hdr.StrLen])
	b, err := Build(m, hdr, strs)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}
	b.mapping = m
	b.file = f
	return b, nil
}

// Close releases the memory mapping and underlying file, if this Backend
// owns one (a Backend built from Build over caller-owned bytes has
// nothing to release).
func (b *Backend) Close() error {
	var err error
	if b.mapping != nil {
		err = b.mapping.Unmap()
	}
	if b.file != nil {
		if cerr := b.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// TypeByID implements store.Backend, decoding the record fresh every call.
func (b *Backend) TypeByID(id rawtype.ID) (rawtype.Type, error) {
	if id == 0 || int(id) > len(b.offsets) {
		return nil, fmt.Errorf("mmapbackend: id %d: %w", id, btferr.ErrUnknownId)
	}
	r := reader.New(b.section, b.hdr.Order)
	if err := r.Seek(int(b.offsets[id-1])); err != nil {
		return nil, fmt.Errorf("mmapbackend: seeking to id %d: %w", id, err)
	}
	t, err := rawtype.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("mmapbackend: decoding id %d: %w", id, err)
	}
	return t, nil
}

// KindByID is a cheap kind-only probe: the construction-time scan already
// recorded it, so this never decodes a record's vlen trailer.
func (b *Backend) KindByID(id rawtype.ID) (rawtype.Kind, error) {
	if id == 0 || int(id) > len(b.kinds) {
		return 0, fmt.Errorf("mmapbackend: id %d: %w", id, btferr.ErrUnknownId)
	}
	return b.kinds[id-1], nil
}

// StringTable returns the concrete string table backing this blob, needed
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
func (b *Backend) MaxID() rawtype.ID { return rawtype.ID(len(b.offsets)) }

// NumTypes implements store.Backend.
func (b *Backend) NumTypes() int { return len(b.offsets) }

// Strings implements store.Backend.
func (b *Backend) Strings() store.StringResolver { return b.strings }

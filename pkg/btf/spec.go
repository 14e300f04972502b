// Package btf unifies the BTF header decoder, type decoder, string
// resolver, and the two storage backends behind one query facade: id/name/
// regex lookup, chained-type walks, and name resolution over a base blob
// plus zero or more split blobs. Grounded on the teacher's PDB facade
// (pkg/pdb/pdb.go's PDB type), which likewise aggregates several decoded
// streams behind one set of public accessors.
package btf

import (
	"fmt"
	"io"
	"os"

	"github.com/go-btf/gobtf/internal/elfsection"
	"github.com/go-btf/gobtf/internal/namematch"
	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/cache"
	"github.com/go-btf/gobtf/pkg/btf/header"
	"github.com/go-btf/gobtf/pkg/btf/mmapbackend"
	"github.com/go-btf/gobtf/pkg/btf/rawtype"
	"github.com/go-btf/gobtf/pkg/btf/store"
	"github.com/go-btf/gobtf/pkg/btf/strtab"
)

// Spec is a decoded, queryable BTF blob: either a self-contained base, or a
// split blob extending a base Spec's id and string-offset space. It is
// immutable after construction and safe for concurrent queries.
type Spec struct {
	backend store.Backend
	strings *strtab.Table
	base    *Spec
	logger  interface {
		Debugf(format string, args ...interface{})
	}
	closer io.Closer
}

// kindProber is implemented by backends that can report a type's kind
// directly. Both backends implement it: mmapbackend.Backend answers from its
// scan-time kind table without decoding the vlen trailer, and cache.Backend
// from its already-decoded record.
type kindProber interface {
	KindByID(id rawtype.ID) (rawtype.Kind, error)
}

// Open decodes buf as a base BTF blob.
func Open(buf []byte, opts ...Option) (*Spec, error) {
	return build(buf, nil, resolveOptions(opts))
}

// OpenSplit decodes buf as a split BTF blob extending base. Split blobs
// always use the cache backend regardless of WithBackend, since split name
// queries must union base and split results and only the cache backend
// supports that.
func OpenSplit(buf []byte, base *Spec, opts ...Option) (*Spec, error) {
	o := resolveOptions(opts)
	if o.backend == BackendMmap {
		o.logger.Debugf("btf: mmap backend not supported for split blobs, using cache")
		o.backend = BackendCache
	}
	return build(buf, base, o)
}

// OpenFile reads path and decodes it as a base BTF blob. With
// WithBackend(BackendMmap), the file is memory-mapped instead of read
// fully.
func OpenFile(path string, opts ...Option) (*Spec, error) {
	o := resolveOptions(opts)
	if o.backend == BackendMmap {
		b, err := mmapbackend.OpenFile(path)
		if err != nil {
			return nil, err
		}
		o.logger.Debugf("btf: mapped %s, %d types", path, b.NumTypes())
		return &Spec{backend: b, strings: b.StringTable(), logger: o.logger, closer: b}, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("btf: reading %s: %w", path, btferr.ErrIO)
	}
	return build(buf, nil, o)
}

// OpenELFFile extracts the .BTF section from an ELF binary at path
// (decompressing it first if it is Gzip/Zstd/Xz/Bzip2-compressed, as the
// kernel's own build tooling may leave it) and decodes it as a base BTF
// blob. Always uses the cache backend: the extracted bytes are a one-off
// buffer, not a file worth memory-mapping.
func OpenELFFile(path string, opts ...Option) (*Spec, error) {
	buf, err := elfsection.Extract(path)
	if err != nil {
		return nil, err
	}
	o := resolveOptions(opts)
	o.backend = BackendCache
	return build(buf, nil, o)
}

// OpenSplitFile reads path and decodes it as a split BTF blob extending
// base.
func OpenSplitFile(path string, base *Spec, opts ...Option) (*Spec, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("btf: reading %s: %w", path, btferr.ErrIO)
	}
	return OpenSplit(buf, base, opts...)
}

func build(buf []byte, base *Spec, o options) (*Spec, error) {
	hdr, err := header.Parse(buf)
	if err != nil {
		return nil, err
	}

	strStart := hdr.StrSectionStart()
	strSection := buf[strStart : strStart+hdr.StrLen]

	var strs *strtab.Table
	if base != nil {
		strs = strtab.NewSplit(strSection, base.strings)
	} else {
		strs = strtab.New(strSection)
	}

	var backend store.Backend
	switch o.backend {
	case BackendMmap:
		b, err := mmapbackend.Build(buf, hdr, strs)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		b, err := cache.Build(buf, hdr, strs)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	o.logger.Debugf("btf: decoded %d types (backend=%v, split=%v)", backend.NumTypes(), o.backend, base != nil)
	return &Spec{backend: backend, strings: strs, base: base, logger: o.logger}, nil
}

// Close releases any file or memory mapping this Spec owns. Specs built
// from in-memory byte slices own nothing and Close is a no-op for them.
func (s *Spec) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// baseMaxID returns the highest id owned by this Spec's base chain, or 0
// for a base Spec with no base of its own.
func (s *Spec) baseMaxID() rawtype.ID {
	if s.base == nil {
		return 0
	}
	return s.base.absoluteMaxID()
}

// absoluteMaxID returns the highest id resolvable through this Spec,
// counting any base it extends.
func (s *Spec) absoluteMaxID() rawtype.ID {
	return s.baseMaxID() + s.backend.MaxID()
}

// MaxID returns the highest type id resolvable through this Spec.
func (s *Spec) MaxID() rawtype.ID { return s.absoluteMaxID() }

// TypeByID resolves an id to its decoded type. Id 0 (void) is always
// UnknownId; callers of chained walks must stop before dereferencing it.
func (s *Spec) TypeByID(id rawtype.ID) (rawtype.Type, error) {
	if id == 0 {
		return nil, fmt.Errorf("btf: id 0 is void: %w", btferr.ErrUnknownId)
	}
	bmax := s.baseMaxID()
	if id > bmax {
		t, err := s.backend.TypeByID(id - bmax)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	if s.base == nil {
		return nil, fmt.Errorf("btf: id %d: %w", id, btferr.ErrUnknownId)
	}
	return s.base.TypeByID(id)
}

// Kind is a cheap kind-only probe, avoiding a full vlen-trailer decode when
// the backend can answer it directly.
func (s *Spec) Kind(id rawtype.ID) (rawtype.Kind, error) {
	if id == 0 {
		return 0, fmt.Errorf("btf: id 0 is void: %w", btferr.ErrUnknownId)
	}
	bmax := s.baseMaxID()
	if id > bmax {
		if kp, ok := s.backend.(kindProber); ok {
			return kp.KindByID(id - bmax)
		}
		t, err := s.backend.TypeByID(id - bmax)
		if err != nil {
			return 0, err
		}
		return t.Kind(), nil
	}
	if s.base == nil {
		return 0, fmt.Errorf("btf: id %d: %w", id, btferr.ErrUnknownId)
	}
	return s.base.Kind(id)
}

// TypesByName returns every type named name, base results first, then this
// Spec's own, each group in the order its ids were encountered during
// construction.
func (s *Spec) TypesByName(name string) []rawtype.Type {
	var out []rawtype.Type
	if s.base != nil {
		out = append(out, s.base.TypesByName(name)...)
	}
	for _, id := range s.backend.IDsByName(name) {
		if t, err := s.backend.TypeByID(id); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// TypesByRegex scans every indexed name for a match against pattern,
// returning the same per-name ordering TypesByName guarantees.
func (s *Spec) TypesByRegex(pattern string) ([]rawtype.Type, error) {
	re, err := namematch.Compile(pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []rawtype.Type
	for _, name := range s.allNames() {
		if seen[name] || !re.MatchString(name) {
			continue
		}
		seen[name] = true
		out = append(out, s.TypesByName(name)...)
	}
	return out, nil
}

func (s *Spec) allNames() []string {
	names := s.backend.Names()
	if s.base != nil {
		names = append(names, s.base.allNames()...)
	}
	return names
}

// ResolveChained follows t's single outgoing type-id edge. NotChained if
// the kind carries none; a chain edge of 0 (e.g. a void pointer) recurses
// into TypeByID(0), which is always UnknownId.
func (s *Spec) ResolveChained(t rawtype.Type) (rawtype.Type, error) {
	id, ok := chainedID(t)
	if !ok {
		return nil, fmt.Errorf("btf: kind %s: %w", t.Kind(), btferr.ErrNotChained)
	}
	return s.TypeByID(id)
}

func chainedID(t rawtype.Type) (rawtype.ID, bool) {
	if arr, ok := t.(rawtype.Array); ok {
		return arr.ElementType, true
	}
	return rawtype.ChainedID(t)
}

// Name resolves a string offset through this Spec's string section,
// transparently spanning into its base if offset addresses base's section.
// Offset 0 always yields "" without error.
func (s *Spec) Name(offset uint32) (string, error) {
	return s.strings.Resolve(offset)
}

// RequireName is Name but treats an empty result as an error, for callers
// in a context where an unnamed entity is unexpected.
func (s *Spec) RequireName(offset uint32) (string, error) {
	name, err := s.strings.Resolve(offset)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("btf: name offset %d: %w", offset, btferr.ErrEmptyName)
	}
	return name, nil
}

// NumTypes returns the number of types this Spec itself decodes, not
// counting any base it extends.
func (s *Spec) NumTypes() int { return s.backend.NumTypes() }

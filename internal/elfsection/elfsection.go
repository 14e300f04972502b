// Package elfsection extracts the raw bytes of the .BTF section from an ELF
// file, decompressing it first if its magic bytes identify one of the
// formats the kernel's own BTF tooling emits (Gzip, Zstd, Xz, Bzip2). This
// is the "external collaborator" the core spec describes only by the
// interface it exposes: a byte buffer in, a byte buffer out.
package elfsection

import (
	"bytes"
	"compress/bzip2"
	"debug/elf"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
)

// SectionName is the conventional ELF section name BTF is embedded under.
const SectionName = ".BTF"

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte{'B', 'Z', 'h'}
)

// Extract opens path as an ELF file, locates SectionName, and returns its
// bytes, decompressed if they carry a recognized compressed-format magic.
func Extract(path string) ([]byte, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfsection: opening %s: %w", path, btferr.ErrIO)
	}
	defer f.Close()

	sec := f.Section(SectionName)
	if sec == nil {
		return nil, fmt.Errorf("elfsection: no %s section in %s: %w", SectionName, path, btferr.ErrIO)
	}

	raw, err := sec.Data()
	if err != nil {
		return nil, fmt.Errorf("elfsection: reading %s: %w", SectionName, btferr.ErrIO)
	}

	return Decompress(raw)
}

// Decompress inspects buf's leading bytes and runs the matching decoder, or
// returns buf unchanged if no known compression magic matches.
func Decompress(buf []byte) ([]byte, error) {
	switch {
	case hasPrefix(buf, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("elfsection: gzip: %w", btferr.ErrDecompress)
		}
		defer r.Close()
		return readAll(r)

	case hasPrefix(buf, zstdMagic):
		r, err := zstd.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("elfsection: zstd: %w", btferr.ErrDecompress)
		}
		defer r.Close()
		return readAll(r)

	case hasPrefix(buf, xzMagic):
		r, err := xz.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("elfsection: xz: %w", btferr.ErrDecompress)
		}
		return readAll(r)

	case hasPrefix(buf, bzip2Magic):
		return readAll(bzip2.NewReader(bytes.NewReader(buf)))

	default:
		return buf, nil
	}
}

func hasPrefix(buf, magic []byte) bool {
	return len(buf) >= len(magic) && bytes.Equal(buf[:len(magic)], magic)
}

func readAll(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("elfsection: decompressing: %w", btferr.ErrDecompress)
	}
	return out, nil
}

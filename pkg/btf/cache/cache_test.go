package cache

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/header"
	"github.com/go-btf/gobtf/pkg/btf/rawtype"
	"github.com/go-btf/gobtf/pkg/btf/strtab"
)

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func infoWord(kind rawtype.Kind, vlen int) uint32 {
	return uint32(vlen)&0xFFFF | uint32(kind)<<24
}

// buildBlob constructs a minimal BTF blob with two Int types named "foo"
// and "bar", for backend-level tests.
func buildBlob(t *testing.T) ([]byte, *header.Header, *strtab.Table) {
	t.Helper()
	strSection := []byte("\x00foo\x00bar\x00")

	var typeSection []byte
	typeSection = append(typeSection, u32(1)...) // name_off "foo"
	typeSection = append(typeSection, u32(infoWord(rawtype.KindInt, 0))...)
	typeSection = append(typeSection, u32(0)...)
	typeSection = append(typeSection, u32(0x00000020)...) // trailer

	typeSection = append(typeSection, u32(5)...) // name_off "bar"
	typeSection = append(typeSection, u32(infoWord(rawtype.KindInt, 0))...)
	typeSection = append(typeSection, u32(0)...)
	typeSection = append(typeSection, u32(0x00000020)...)

	hdrLen := uint32(24)
	buf := make([]byte, hdrLen)
	binary.LittleEndian.PutUint16(buf[0:2], header.Magic)
	buf[2] = 1
	binary.LittleEndian.PutUint32(buf[4:8], hdrLen)
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(typeSection)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(typeSection)))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(strSection)))
	buf = append(buf, typeSection...)
	buf = append(buf, strSection...)

	hdr, err := header.Parse(buf)
	require.NoError(t, err)
	strs := strtab.New(buf[hdr.StrSectionStart() : hdr.StrSectionStart()+hdr.StrLen])
	return buf, hdr, strs
}

func TestBuildAndLookup(t *testing.T) {
	buf, hdr, strs := buildBlob(t)
	b, err := Build(buf, hdr, strs)
	require.NoError(t, err)

	assert.Equal(t, 2, b.NumTypes())
	assert.EqualValues(t, 2, b.MaxID())

	typ, err := b.TypeByID(1)
	require.NoError(t, err)
	assert.Equal(t, rawtype.KindInt, typ.Kind())

	ids := b.IDsByName("foo")
	require.Len(t, ids, 1)
	assert.EqualValues(t, 1, ids[0])

	ids = b.IDsByName("bar")
	require.Len(t, ids, 1)
	assert.EqualValues(t, 2, ids[0])
}

func TestTypeByIDUnknown(t *testing.T) {
	buf, hdr, strs := buildBlob(t)
	b, err := Build(buf, hdr, strs)
	require.NoError(t, err)

	_, err = b.TypeByID(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, btferr.ErrUnknownId))

	_, err = b.TypeByID(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, btferr.ErrUnknownId))
}

func TestIDsByNameMissing(t *testing.T) {
	buf, hdr, strs := buildBlob(t)
	b, err := Build(buf, hdr, strs)
	require.NoError(t, err)
	assert.Empty(t, b.IDsByName("nonexistent"))
}

// TestBuildToleratesBadNameOffset constructs a blob where one type's
// name_off points past the string section. Construction must still
// succeed and every other id/name must remain queryable: a single bad
// string may not abort the whole backend.
func TestBuildToleratesBadNameOffset(t *testing.T) {
	strSection := []byte("\x00foo\x00")

	var typeSection []byte
	typeSection = append(typeSection, u32(1)...) // name_off "foo"
	typeSection = append(typeSection, u32(infoWord(rawtype.KindInt, 0))...)
	typeSection = append(typeSection, u32(0)...)
	typeSection = append(typeSection, u32(0x00000020)...)

	typeSection = append(typeSection, u32(999)...) // name_off out of range
	typeSection = append(typeSection, u32(infoWord(rawtype.KindInt, 0))...)
	typeSection = append(typeSection, u32(0)...)
	typeSection = append(typeSection, u32(0x00000020)...)

	hdrLen := uint32(24)
	buf := make([]byte, hdrLen)
	binary.LittleEndian.PutUint16(buf[0:2], header.Magic)
	buf[2] = 1
	binary.LittleEndian.PutUint32(buf[4:8], hdrLen)
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(typeSection)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(typeSection)))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(strSection)))
	buf = append(buf, typeSection...)
	buf = append(buf, strSection...)

	hdr, err := header.Parse(buf)
	require.NoError(t, err)
	strs := strtab.New(buf[hdr.StrSectionStart() : hdr.StrSectionStart()+hdr.StrLen])

	b, err := Build(buf, hdr, strs)
	require.NoError(t, err)
	assert.Equal(t, 2, b.NumTypes())

	ids := b.IDsByName("foo")
	require.Len(t, ids, 1)
	assert.EqualValues(t, 1, ids[0])

	typ, err := b.TypeByID(2)
	require.NoError(t, err)
	assert.Equal(t, rawtype.KindInt, typ.Kind())
}

package rawtype

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
	"github.com/go-btf/gobtf/pkg/btf/reader"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func info(kind Kind, vlen int, kindFlag bool) uint32 {
	v := uint32(vlen) & 0xFFFF
	v |= uint32(kind) << 24
	if kindFlag {
		v |= 1 << 31
	}
	return v
}

func TestDecodeInt(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(5)...)               // name_off
	buf = append(buf, u32le(info(KindInt, 0, false))...)
	buf = append(buf, u32le(0)...) // size (unused directly by Int)
	buf = append(buf, u32le(0x00200008)...)       // encoding=8 (low byte), offset=0, bits=32

	r := reader.New(buf, binary.LittleEndian)
	typ, err := Decode(r)
	require.NoError(t, err)
	i, ok := typ.(Int)
	require.True(t, ok)
	assert.EqualValues(t, 5, i.NameOff())
	assert.Equal(t, KindInt, i.Kind())
}

func TestDecodePtr(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(0)...)
	buf = append(buf, u32le(info(KindPtr, 0, false))...)
	buf = append(buf, u32le(42)...)

	r := reader.New(buf, binary.LittleEndian)
	typ, err := Decode(r)
	require.NoError(t, err)
	p, ok := typ.(Ptr)
	require.True(t, ok)
	assert.EqualValues(t, 42, p.ChainedID())
}

func TestDecodeStructWithBitfield(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(1)...)                          // name_off
	buf = append(buf, u32le(info(KindStruct, 1, true))...)  // vlen=1, kind_flag=1
	buf = append(buf, u32le(8)...)                          // size
	buf = append(buf, u32le(2)...)                          // member name_off
	buf = append(buf, u32le(7)...)                          // member type_id
	buf = append(buf, u32le((3<<24)|16)...)                 // bit_size=3, bit_offset=16

	r := reader.New(buf, binary.LittleEndian)
	typ, err := Decode(r)
	require.NoError(t, err)
	s, ok := typ.(Struct)
	require.True(t, ok)
	require.Len(t, s.Members, 1)
	assert.EqualValues(t, 16, s.Members[0].BitOffset)
	assert.EqualValues(t, 3, s.Members[0].BitSize)
}

func TestDecodeFuncProtoWithVararg(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(0)...)
	buf = append(buf, u32le(info(KindFuncProto, 2, false))...)
	buf = append(buf, u32le(99)...) // return type
	buf = append(buf, u32le(10)...) // param name
	buf = append(buf, u32le(20)...) // param type
	buf = append(buf, u32le(0)...)  // vararg name
	buf = append(buf, u32le(0)...)  // vararg type

	r := reader.New(buf, binary.LittleEndian)
	typ, err := Decode(r)
	require.NoError(t, err)
	fp, ok := typ.(FuncProto)
	require.True(t, ok)
	assert.EqualValues(t, 99, fp.ReturnType())
	require.Len(t, fp.Params, 2)
	assert.False(t, fp.Params[0].IsVararg())
	assert.True(t, fp.Params[1].IsVararg())
}

func TestDecodeEnum64(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(0)...)
	buf = append(buf, u32le(info(KindEnum64, 1, true))...)
	buf = append(buf, u32le(8)...) // size
	buf = append(buf, u32le(3)...) // value name
	buf = append(buf, u32le(0xFFFFFFFF)...) // lo32
	buf = append(buf, u32le(0xFFFFFFFF)...) // hi32

	r := reader.New(buf, binary.LittleEndian)
	typ, err := Decode(r)
	require.NoError(t, err)
	e, ok := typ.(Enum64)
	require.True(t, ok)
	require.Len(t, e.Values, 1)
	assert.Equal(t, int64(-1), e.Values[0].Signed())
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), e.Values[0].Unsigned())
}

func TestDecodeUnknownKind(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(0)...)
	buf = append(buf, u32le(info(Kind(31), 0, false))...)
	buf = append(buf, u32le(0)...)

	r := reader.New(buf, binary.LittleEndian)
	_, err := Decode(r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, btferr.ErrUnknownKind))
}

func TestDecodeTruncated(t *testing.T) {
	buf := u32le(0)
	r := reader.New(buf, binary.LittleEndian)
	_, err := Decode(r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, btferr.ErrTruncated))
}

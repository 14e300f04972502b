package elfsection

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

func TestDecompressPassthrough(t *testing.T) {
	payload := []byte{0x9F, 0xEB, 0x01, 0x00}
	out, err := Decompress(payload)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressGzip(t *testing.T) {
	payload := []byte("hello btf")
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := Decompress(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressZstd(t *testing.T) {
	payload := []byte("hello btf zstd")
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())

	out, err := Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressXz(t *testing.T) {
	payload := []byte("hello btf xz")
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := Decompress(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

// Package header decodes the fixed 24-byte BTF header and self-detects the
// blob's declared byte order from its magic bytes.
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/go-btf/gobtf/pkg/btf/btferr"
)

// Magic is the BTF magic value, always read as 0xEB9F once the correct
// byte order has been chosen.
const Magic = 0xEB9F

// Size is the fixed on-disk size of the header, in bytes.
const Size = 24

// ErrBadHeader is returned for a missing/incorrect magic, an hdr_len below
// the minimum, or a section that falls outside the blob.
var ErrBadHeader = btferr.ErrBadHeader

// Header is the decoded fixed BTF header. Section offsets are relative to
// the end of the header (hdr_len), as in the wire format.
type Header struct {
	Magic   uint16
	Version uint8
	Flags   uint8
	HdrLen  uint32

	TypeOff uint32
	TypeLen uint32
	StrOff  uint32
	StrLen  uint32

	// Order is the byte order the magic bytes were found to encode.
	Order binary.ByteOrder
}

// TypeSectionStart returns the absolute offset of the type section.
func (h *Header) TypeSectionStart() uint32 { return h.HdrLen + h.TypeOff }

// StrSectionStart returns the absolute offset of the string section.
func (h *Header) StrSectionStart() uint32 { return h.HdrLen + h.StrOff }

// Parse reads and validates the header from the start of buf, self-detecting
// endianness by trying little-endian first and falling back to big-endian.
func Parse(buf []byte) (*Header, error) {
	if len(buf) < Size {
		return nil, fmt.Errorf("header: need %d bytes, have %d: %w", Size, len(buf), ErrBadHeader)
	}

	order, err := detectOrder(buf)
	if err != nil {
		return nil, err
	}

	h := &Header{
		Magic:   order.Uint16(buf[0:2]),
		Version: buf[2],
		Flags:   buf[3],
		HdrLen:  order.Uint32(buf[4:8]),
		TypeOff: order.Uint32(buf[8:12]),
		TypeLen: order.Uint32(buf[12:16]),
		StrOff:  order.Uint32(buf[16:20]),
		StrLen:  order.Uint32(buf[20:24]),
		Order:   order,
	}

	if h.HdrLen < Size {
		return nil, fmt.Errorf("header: hdr_len %d below minimum %d: %w", h.HdrLen, Size, ErrBadHeader)
	}
	if uint64(h.HdrLen) > uint64(len(buf)) {
		return nil, fmt.Errorf("header: hdr_len %d exceeds blob size %d: %w", h.HdrLen, len(buf), ErrBadHeader)
	}

	blobLen := uint64(len(buf))
	typeEnd := uint64(h.HdrLen) + uint64(h.TypeOff) + uint64(h.TypeLen)
	strEnd := uint64(h.HdrLen) + uint64(h.StrOff) + uint64(h.StrLen)
	if typeEnd > blobLen {
		return nil, fmt.Errorf("header: type section end %d exceeds blob size %d: %w", typeEnd, blobLen, ErrBadHeader)
	}
	if strEnd > blobLen {
		return nil, fmt.Errorf("header: string section end %d exceeds blob size %d: %w", strEnd, blobLen, ErrBadHeader)
	}

	return h, nil
}

// detectOrder tries both byte orders against the magic field and returns
// whichever produces 0xEB9F; neither matching is a BadHeader.
func detectOrder(buf []byte) (binary.ByteOrder, error) {
	if binary.LittleEndian.Uint16(buf[0:2]) == Magic {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint16(buf[0:2]) == Magic {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("header: bad magic %#x: %w", buf[0:2], ErrBadHeader)
}

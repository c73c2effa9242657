package codec

import (
	"encoding/binary"
	"math"

	perr "userfreqs/internal/platform/errors"
)

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// layout is the per-version framing: integer byte order, width of length
// prefixes, and whether the stream opens with magic+version
type layout struct {
	order    byteOrder
	lenWidth int
	header   bool
}

func layoutOf(v Version) (layout, error) {
	switch v {
	case V1:
		return layout{order: binary.LittleEndian, lenWidth: 8}, nil
	case V2:
		return layout{order: binary.BigEndian, lenWidth: 4, header: true}, nil
	}
	return layout{}, perr.Wrapf(ErrUnsupportedVersion, perr.ErrorCodeDecode, "codec: no layout for %s", v)
}

// maxLen is the largest key length the prefix can carry
func (l layout) maxLen() uint64 {
	if l.lenWidth == 4 {
		return math.MaxUint32
	}
	return math.MaxUint64
}

func (l layout) appendLen(b []byte, n int) []byte {
	if l.lenWidth == 4 {
		return l.order.AppendUint32(b, uint32(n))
	}
	return l.order.AppendUint64(b, uint64(n))
}

func (l layout) parseLen(b []byte) uint64 {
	if l.lenWidth == 4 {
		return uint64(l.order.Uint32(b))
	}
	return l.order.Uint64(b)
}

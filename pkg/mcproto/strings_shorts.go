package mcproto

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// WriteUShort writes v as 2 big-endian bytes.
func WriteUShort(w io.Writer, v uint16) (int, error) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return w.Write(buf[:])
}

// ReadUShort decodes a 2-byte big-endian unsigned short from the start of buf.
func ReadUShort(buf []byte) (consumed int, v uint16, err error) {
	if len(buf) < 2 {
		return 0, 0, ErrIncomplete
	}
	return 2, binary.BigEndian.Uint16(buf[:2]), nil
}

// WriteString writes a length-prefixed UTF-8 string: VarInt byte-length
// followed by the raw bytes. maxLen bounds the encoded byte length; a string
// whose UTF-8 encoding is maxLen bytes or longer is rejected rather than
// silently truncated.
func WriteString(w io.Writer, s string, maxLen int) (int, error) {
	if len(s) >= maxLen {
		return 0, fmt.Errorf("mcproto: string of %d bytes exceeds max length %d", len(s), maxLen)
	}
	n1, err := WriteVarInt(w, int32(len(s)))
	if err != nil {
		return n1, err
	}
	n2, err := io.WriteString(w, s)
	return n1 + n2, err
}

// ReadString decodes a length-prefixed UTF-8 string from the start of buf.
//
// ErrIncomplete is returned when either the length VarInt or the string
// bytes are not yet fully present. ErrMalformed is returned for a
// non-positive length or invalid UTF-8.
func ReadString(buf []byte) (consumed int, s string, err error) {
	lnLen, ln, err := ReadVarInt(buf)
	if err != nil {
		return 0, "", err
	}
	if ln <= 0 {
		return 0, "", fmt.Errorf("%w: non-positive string length %d", ErrMalformed, ln)
	}
	end := lnLen + int(ln)
	if len(buf) < end {
		return 0, "", ErrIncomplete
	}
	data := buf[lnLen:end]
	if !utf8.Valid(data) {
		return 0, "", fmt.Errorf("%w: string contains invalid UTF-8", ErrMalformed)
	}
	return end, string(data), nil
}

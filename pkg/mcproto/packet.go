package mcproto

import (
	"bytes"
	"fmt"
)

// WritePacket builds the packet envelope: VarInt packet_length, VarInt
// packet_id, then data verbatim. packet_length counts only packet_id and
// data, never itself.
func WritePacket(id int32, data []byte) []byte {
	idLen := VarIntLen(id)
	packetLen := idLen + len(data)

	var buf bytes.Buffer
	buf.Grow(VarIntLen(int32(packetLen)) + packetLen)
	_, _ = WriteVarInt(&buf, int32(packetLen))
	_, _ = WriteVarInt(&buf, id)
	buf.Write(data)
	return buf.Bytes()
}

// ReadPacket decodes the packet envelope from the start of buf.
//
// data is a slice into buf (no copy); it is only valid until buf is
// mutated or reused. ErrIncomplete is returned when the length, id, or data
// are not yet fully present; ErrMalformed when packet_length is not
// strictly positive.
func ReadPacket(buf []byte) (consumed int, id int32, data []byte, err error) {
	lenLen, packetLen, err := ReadVarInt(buf)
	if err != nil {
		return 0, 0, nil, err
	}
	if packetLen <= 0 {
		return 0, 0, nil, fmt.Errorf("%w: non-positive packet length %d", ErrMalformed, packetLen)
	}

	bodyEnd := lenLen + int(packetLen)
	if len(buf) < bodyEnd {
		return 0, 0, nil, ErrIncomplete
	}
	body := buf[lenLen:bodyEnd]

	idLen, pid, err := ReadVarInt(body)
	if err != nil {
		// body is already fully buffered, so any error here is malformed,
		// not incomplete: a valid id must fit within a buffered body.
		return 0, 0, nil, fmt.Errorf("%w: bad packet id", ErrMalformed)
	}

	return bodyEnd, pid, body[idLen:], nil
}

package mcproto

import (
	"bytes"
)

const (
	// HandshakePacketID is the packet id of the client->server handshake.
	HandshakePacketID = 0x00
	// StatusRequestPacketID is the packet id of the (empty-body) status request.
	StatusRequestPacketID = 0x00
	// NextStateStatus requests the status (SLP) sub-protocol.
	NextStateStatus = 1
	// maxHostLen bounds the server_host field per spec.md §3.
	maxHostLen = 32767
)

// EncodeHandshake builds the handshake packet: VarInt protocol_version,
// String server_host, u16 server_port, VarInt next_state.
func EncodeHandshake(protocolVersion int32, host string, port uint16, nextState int32) ([]byte, error) {
	var body bytes.Buffer
	if _, err := WriteVarInt(&body, protocolVersion); err != nil {
		return nil, err
	}
	if _, err := WriteString(&body, host, maxHostLen); err != nil {
		return nil, err
	}
	if _, err := WriteUShort(&body, port); err != nil {
		return nil, err
	}
	if _, err := WriteVarInt(&body, nextState); err != nil {
		return nil, err
	}
	return WritePacket(HandshakePacketID, body.Bytes()), nil
}

// EncodeStatusRequest builds the empty-body status-request packet.
func EncodeStatusRequest() []byte {
	return WritePacket(StatusRequestPacketID, nil)
}

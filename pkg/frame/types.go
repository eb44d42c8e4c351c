// Package frame implements the PS4 control-protocol wire framing: the
// length-prefixed binary frame shape, the RSA-OAEP/AES-CBC-128 handshake,
// and the chained session cipher used to encrypt every frame after it.
package frame

import "encoding/binary"

// HeaderSize is the size in bytes of the common [length][type] prefix that
// begins every frame.
const HeaderSize = 8

// Frame type tags. Values without a stable constant (the hello-ack
// response) are identified positionally instead.
const (
	TypeHello          uint32 = 0x6f636370
	TypeHandshake      uint32 = 0x20
	TypeLogin          uint32 = 0x1e
	TypeStandby        uint32 = 0x1a
	TypeBoot           uint32 = 0x0a
	TypeRemoteControl  uint32 = 0x1c
	TypeStatusAck      uint32 = 0x14
	TypeHeartbeatReply uint32 = 0x12
)

// HeartbeatLiteral is the exact 16-byte decrypted frame the console sends
// as a keepalive. It must be matched byte-for-byte and never treated as a
// reply to an outstanding command.
var HeartbeatLiteral = [16]byte{
	0x0c, 0x00, 0x00, 0x00, 0x12, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// Remote control opcodes (spec.md §4.6 / GLOSSARY).
const (
	OpUp        uint32 = 1
	OpDown      uint32 = 2
	OpRight     uint32 = 4
	OpLeft      uint32 = 8
	OpEnter     uint32 = 16
	OpBack      uint32 = 32
	OpOption    uint32 = 64
	OpPS        uint32 = 128
	OpKeyOff    uint32 = 256
	OpCancel    uint32 = 512
	OpOpenRC    uint32 = 1024
	OpCloseRC   uint32 = 2048
)

// putHeader writes [length][type] little-endian into the first 8 bytes of
// buf, where length is len(buf) itself. This holds for hello, hello-ack,
// handshake, login and remote-control, whose declared length matches their
// true wire size.
func putHeader(buf []byte, typ uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[4:8], typ)
}

// putHeaderLength writes [length][type] with an explicit declared length
// that need not match len(buf). Standby, boot and status-ack are
// AES-CBC-128 block-padded out to 16/32/16 wire bytes, but the console
// expects the declared length it had before padding (8/24/12) rather than
// the padded wire size (spec.md §4.1's Length column; see also the literal
// heartbeat frame, whose length field is likewise smaller than its 16-byte
// wire size).
func putHeaderLength(buf []byte, declaredLength, typ uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], declaredLength)
	binary.LittleEndian.PutUint32(buf[4:8], typ)
}

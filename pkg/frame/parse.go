package frame

import "fmt"

func errShortFrame(name string, want, got int) error {
	return fmt.Errorf("frame: %s frame too short: got %d bytes, want at least %d", name, got, want)
}

// LoginSucceeded reports whether a decrypted login reply indicates success.
// The byte at offset 8 must be 0x00 or 0x11; any other value is a failure
// (spec.md §4.1, open question resolved in favor of the {0x00, 0x11} set).
func LoginSucceeded(reply []byte) bool {
	if len(reply) <= 8 {
		return false
	}
	b := reply[8]
	return b == 0x00 || b == 0x11
}

// StandbyAcked reports whether a decrypted standby reply indicates success:
// the byte at offset 4 must be 0x1b.
func StandbyAcked(reply []byte) bool {
	return len(reply) > 4 && reply[4] == 0x1b
}

// StartTitleAcked reports whether a decrypted start-title reply indicates
// success: the byte at offset 4 must be 0x0b or 0x12.
func StartTitleAcked(reply []byte) bool {
	if len(reply) <= 4 {
		return false
	}
	b := reply[4]
	return b == 0x0b || b == 0x12
}

// IsHeartbeat reports whether a decrypted 16-byte frame is the literal
// heartbeat frame the console sends during idle.
func IsHeartbeat(decrypted []byte) bool {
	if len(decrypted) != len(HeartbeatLiteral) {
		return false
	}
	for i, b := range HeartbeatLiteral {
		if decrypted[i] != b {
			return false
		}
	}
	return true
}

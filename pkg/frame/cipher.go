package frame

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"fmt"
)

// randomSeed is the fixed 16-byte AES key used for every session: one 0x10
// byte followed by fifteen 0x00 bytes (spec.md §3). It is wrapped under the
// console's RSA public key during the handshake and is never derived from
// anything session-specific; only the IV varies per connection.
var randomSeed = [16]byte{0x10}

// WrapSeed RSA-OAEP-encrypts randomSeed under the embedded console public
// key, producing the 256-byte ciphertext carried in the handshake frame.
// The console's firmware uses SHA-1 as the OAEP hash.
func WrapSeed() ([]byte, error) {
	pub, err := PublicKey()
	if err != nil {
		return nil, err
	}
	ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, randomSeed[:], nil)
	if err != nil {
		return nil, fmt.Errorf("frame: RSA-OAEP wrap seed: %w", err)
	}
	return ciphertext, nil
}

// SessionCipher is the per-connection AES-CBC-128 encrypt/decrypt pair
// derived from the handshake seed. Both directions are keyed with the
// fixed randomSeed and initialized with the server-supplied seed as IV.
//
// The cipher is a single stateful stream: each call chains its IV from the
// previous call's output, exactly mirroring CBC ciphertext chaining across
// frames. It is NOT safe for concurrent use — it must be owned exclusively
// by one session, which serializes its Encrypt calls and its Decrypt calls
// so that each direction runs in strict frame order.
type SessionCipher struct {
	enc cipher.BlockMode
	dec cipher.BlockMode
}

// NewSessionCipher builds the encryptor and decryptor for a connection
// using the 16-byte seed read from the hello-ack frame as the shared IV.
func NewSessionCipher(seed [16]byte) (*SessionCipher, error) {
	block, err := aes.NewCipher(randomSeed[:])
	if err != nil {
		return nil, fmt.Errorf("frame: new AES cipher: %w", err)
	}
	return &SessionCipher{
		enc: cipher.NewCBCEncrypter(block, seed[:]),
		dec: cipher.NewCBCDecrypter(block, seed[:]),
	}, nil
}

// Encrypt encrypts frame into a new slice, mutating the encryptor's chained
// IV state. Frames MUST be passed to Encrypt in the exact order they will
// be written to the wire.
func (sc *SessionCipher) Encrypt(frame []byte) ([]byte, error) {
	if len(frame)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("frame: ciphertext length %d is not a multiple of the AES block size", len(frame))
	}
	out := make([]byte, len(frame))
	sc.enc.CryptBlocks(out, frame)
	return out, nil
}

// Decrypt decrypts ciphertext in the order it was received, mutating the
// decryptor's chained IV state. Frames MUST be passed to Decrypt in the
// exact order they arrived on the wire.
func (sc *SessionCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("frame: ciphertext length %d is not a multiple of the AES block size", len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	sc.dec.CryptBlocks(out, ciphertext)
	return out, nil
}

// Zero drops the cipher's block-mode state so the session's chained IVs
// cannot be advanced again, once a session is torn down. Go's standard
// library keeps the expanded AES key schedule internal to cipher.Block, so
// this cannot scrub the key material itself; it only releases the
// CBC chain state this type owns.
func (sc *SessionCipher) Zero() {
	sc.enc = nil
	sc.dec = nil
}

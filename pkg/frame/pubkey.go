package frame

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sync"
)

// publicKeyPEM is the console's fixed 2048-bit RSA public key, embedded as
// a compile-time constant per spec.md §9 ("RSA public key: embed the PEM
// as a compile-time constant; parse once at process start; share across
// sessions (read-only)").
const publicKeyPEM = `-----BEGIN PUBLIC KEY-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAxfAO/MDk5ovZpp7xlG9J
JKc4Sg4ztAz+BbOt6Gbhub02tF9bryklpTIyzM0v817pwQ3TCoigpxEcWdTykhDL
cGhAbcp6E7Xh8aHEsqgtQ/c+wY1zIl3fU//uddlB1XuipXthDv6emXsyyU/tJWqc
zy9HCJncLJeYo7MJvf2TE9nnlVm1x4flmD0k1zrvb3MONqoZbKb/TQVuVhBv7SM+
U5PSi3diXIx1Nnj4vQ8clRNUJ5X1tT9XfVmKQS1J513XNZ0uYHYRDzQYujpLWucu
ob7v50wCpUm3iKP1fYCixMP6xFm0jPYz1YQaMV35VkYwc40qgk3av0PDS+1G0dCm
swIDAQAB
-----END PUBLIC KEY-----`

var (
	pubKeyOnce sync.Once
	pubKey     *rsa.PublicKey
	pubKeyErr  error
)

// PublicKey returns the embedded console RSA public key, parsed exactly
// once and shared read-only across every session.
func PublicKey() (*rsa.PublicKey, error) {
	pubKeyOnce.Do(func() {
		block, _ := pem.Decode([]byte(publicKeyPEM))
		if block == nil {
			pubKeyErr = fmt.Errorf("frame: embedded public key PEM did not decode")
			return
		}
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			pubKeyErr = fmt.Errorf("frame: parse embedded public key: %w", err)
			return
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			pubKeyErr = fmt.Errorf("frame: embedded public key is not RSA")
			return
		}
		pubKey = rsaKey
	})
	return pubKey, pubKeyErr
}

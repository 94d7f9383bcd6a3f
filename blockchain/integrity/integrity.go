// Package integrity derives identifiers and keyed signatures over canonical bytes.
//
// Identifiers are double SHA-256, the same construction used for block and transaction
// hashes on chain. Signatures are HMAC-SHA256 under a 32 byte shared key. Neither is a
// hardened design; the package exists to show that a signature binds to exact bytes.
package integrity

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
	"github.com/lbryio/lbcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160"
)

// KeySize is the length of an authentication key in bytes.
const KeySize = 32

// Identifier hashes data twice with SHA-256 and returns the lowercase hex digest.
// The digest is rendered in natural byte order, unlike chainhash.Hash.String which
// reverses it.
func Identifier(data []byte) string {
	return hex.EncodeToString(chainhash.DoubleHashB(data))
}

// GenerateKey reads KeySize random bytes from r, or from crypto/rand when r is nil.
func GenerateKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return key, nil
}

// Sign returns the HMAC-SHA256 of message under key.
func Sign(key, message []byte) ([]byte, error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(message)
	return mac.Sum(nil), nil
}

// Verify recomputes the signature of message and compares it to expected in constant time.
func Verify(key, message, expected []byte) (bool, error) {
	actual, err := Sign(key, message)
	if err != nil {
		return false, err
	}
	return hmac.Equal(actual, expected), nil
}

// Fingerprint is hex(RIPEMD160(SHA256(key))). It identifies a key in logs and on
// screen without revealing it.
func Fingerprint(key []byte) string {
	s := sha256.Sum256(key)
	r := ripemd160.New()
	r.Write(s[:])
	return hex.EncodeToString(r.Sum(nil))
}

// CheckKey fails with model.ErrInvalidKey unless key is exactly KeySize bytes.
func CheckKey(key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(model.ErrInvalidKey, "no key")
	}
	if len(key) != KeySize {
		return errors.Wrapf(model.ErrInvalidKey, "key is %d bytes, want %d", len(key), KeySize)
	}
	return nil
}

// Package workflow runs the build, sign, tamper, verify lesson on top of the
// encoding and integrity packages. The functions here hold no state between calls;
// Session is the explicit state a host carries from one action to the next.
package workflow

import (
	"encoding/hex"
	"io"

	"github.com/OdyseeTeam/fast-tx/blockchain/encoding"
	"github.com/OdyseeTeam/fast-tx/blockchain/integrity"
	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
)

// Signed is what BuildAndSign hands back for display and for a later verify.
type Signed struct {
	Transaction model.Transaction
	Serialized  []byte
	Identifier  string
	Signature   string
}

// Verification is the outcome of re-checking an altered record against the original signature.
type Verification struct {
	Transaction model.Transaction
	Serialized  []byte
	Identifier  string
	Matches     bool
}

// GenerateKey returns a fresh authentication key from r, or from crypto/rand when r is nil.
func GenerateKey(r io.Reader) ([]byte, error) {
	return integrity.GenerateKey(r)
}

// BuildAndSign builds a transaction from fields, serializes it and signs the bytes.
func BuildAndSign(fields model.Fields, key []byte) (Signed, error) {
	tx, err := fields.Transaction()
	if err != nil {
		return Signed{}, err
	}
	serialized, err := encoding.Encode(tx)
	if err != nil {
		return Signed{}, err
	}
	sig, err := integrity.Sign(key, serialized)
	if err != nil {
		return Signed{}, err
	}
	return Signed{
		Transaction: tx,
		Serialized:  serialized,
		Identifier:  integrity.Identifier(serialized),
		Signature:   hex.EncodeToString(sig),
	}, nil
}

// VerifyAltered rebuilds the record stored in original with override substituted and
// checks it against the signature made over original. A nil override verifies the
// record unchanged.
func VerifyAltered(original []byte, override *encoding.Override, key []byte, expectedSignatureHex string) (Verification, error) {
	if err := integrity.CheckKey(key); err != nil {
		return Verification{}, err
	}
	if len(original) == 0 || expectedSignatureHex == "" {
		return Verification{}, errors.Wrap(model.ErrMalformedState, "nothing has been signed yet")
	}
	expected, err := hex.DecodeString(expectedSignatureHex)
	if err != nil {
		return Verification{}, errors.Wrap(model.ErrMalformedState, "stored signature is not hex")
	}

	tx, serialized, err := encoding.Apply(original, override)
	if err != nil {
		return Verification{}, err
	}
	ok, err := integrity.Verify(key, serialized, expected)
	if err != nil {
		return Verification{}, err
	}
	return Verification{
		Transaction: tx,
		Serialized:  serialized,
		Identifier:  integrity.Identifier(serialized),
		Matches:     ok,
	}, nil
}

package workflow

import (
	"io"

	"github.com/OdyseeTeam/fast-tx/blockchain/encoding"
	"github.com/OdyseeTeam/fast-tx/blockchain/integrity"
	"github.com/OdyseeTeam/fast-tx/blockchain/model"

	"github.com/cockroachdb/errors"
)

type State int

const (
	StateNoKey State = iota
	StateKeyReady
	StateSigned
)

func (s State) String() string {
	switch s {
	case StateNoKey:
		return "no-key"
	case StateKeyReady:
		return "key-ready"
	case StateSigned:
		return "signed"
	}
	return "unknown"
}

// Session is the state one actor carries between actions: the key and the last
// signed serialization. Transitions return a new Session, so a failed action leaves
// the caller's copy as it was.
type Session struct {
	Key        []byte `cbor:"key"`
	Serialized []byte `cbor:"serialized"`
	Signature  string `cbor:"signature"`
}

func (s Session) State() State {
	switch {
	case len(s.Key) == 0:
		return StateNoKey
	case len(s.Serialized) == 0:
		return StateKeyReady
	}
	return StateSigned
}

// Fingerprint of the session key, or "" when there is none.
func (s Session) Fingerprint() string {
	if len(s.Key) == 0 {
		return ""
	}
	return integrity.Fingerprint(s.Key)
}

// WithNewKey moves to KeyReady from any state. Whatever was signed under the old
// key is dropped.
func (s Session) WithNewKey(r io.Reader) (Session, error) {
	key, err := GenerateKey(r)
	if err != nil {
		return s, err
	}
	return Session{Key: key}, nil
}

// Sign builds and signs a record, replacing any earlier one.
func (s Session) Sign(fields model.Fields) (Session, Signed, error) {
	if s.State() == StateNoKey {
		return s, Signed{}, errors.Wrap(model.ErrInvalidKey, "generate a key first")
	}
	signed, err := BuildAndSign(fields, s.Key)
	if err != nil {
		return s, Signed{}, err
	}
	return Session{
		Key:        s.Key,
		Serialized: signed.Serialized,
		Signature:  signed.Signature,
	}, signed, nil
}

// Verify checks the stored record, with override applied, against the stored signature.
// The session doesn't change.
func (s Session) Verify(override *encoding.Override) (Verification, error) {
	switch s.State() {
	case StateNoKey:
		return Verification{}, errors.Wrap(model.ErrInvalidKey, "generate a key first")
	case StateKeyReady:
		return Verification{}, errors.Wrap(model.ErrMalformedState, "build and sign a transaction first")
	}
	return VerifyAltered(s.Serialized, override, s.Key, s.Signature)
}

// Original decodes the stored record, for display.
func (s Session) Original() (model.Transaction, error) {
	if s.State() != StateSigned {
		return model.Transaction{}, errors.Wrap(model.ErrMalformedState, "nothing has been signed yet")
	}
	return encoding.Decode(s.Serialized)
}

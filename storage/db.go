// Package storage keeps each browser session's workflow state apart from every other
// session's. All stores are in memory; nothing outlives the process.
package storage

import (
	"strings"

	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
)

// Store loads and saves sessions by id. Loading an unknown id returns a zero Session.
type Store interface {
	Load(id string) (workflow.Session, error)
	Save(id string, s workflow.Session) error
	Delete(id string) error
	Close() error
}

const (
	KindGenji   = "genji"
	KindLevelDB = "leveldb"
)

// Open starts a store of the given kind.
func Open(kind string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(kind) {
	case KindGenji, "":
		s, err = openGenji()
	case KindLevelDB:
		s, err = openLevelDB()
	default:
		return nil, errors.Newf("unknown session store %q", kind)
	}
	if err != nil {
		return nil, err
	}
	logrus.Infof("session store: %s (in memory)", kind)
	return s, nil
}

func encodeSession(s workflow.Session) ([]byte, error) {
	b, err := cbor.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode session")
	}
	return b, nil
}

func decodeSession(b []byte) (workflow.Session, error) {
	var s workflow.Session
	if err := cbor.Unmarshal(b, &s); err != nil {
		return workflow.Session{}, errors.Wrap(err, "decode session")
	}
	return s, nil
}

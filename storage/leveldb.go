package storage

import (
	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"

	"github.com/cockroachdb/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

var sessionPrefix = []byte("s")

type levelStore struct {
	db *leveldb.DB
}

func openLevelDB() (*levelStore, error) {
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &levelStore{db: db}, nil
}

func sessionKey(id string) []byte {
	return append(append([]byte(nil), sessionPrefix...), id...)
}

func (l *levelStore) Load(id string) (workflow.Session, error) {
	v, err := l.db.Get(sessionKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return workflow.Session{}, nil
	}
	if err != nil {
		return workflow.Session{}, errors.WithStack(err)
	}
	return decodeSession(v)
}

func (l *levelStore) Save(id string, s workflow.Session) error {
	state, err := encodeSession(s)
	if err != nil {
		return err
	}
	return errors.WithStack(l.db.Put(sessionKey(id), state, nil))
}

func (l *levelStore) Delete(id string) error {
	return errors.WithStack(l.db.Delete(sessionKey(id), nil))
}

func (l *levelStore) Close() error {
	return errors.WithStack(l.db.Close())
}

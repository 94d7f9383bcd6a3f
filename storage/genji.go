package storage

import (
	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"

	"github.com/cockroachdb/errors"
	"github.com/genjidb/genji"
	"github.com/genjidb/genji/document"
	"github.com/genjidb/genji/types"
)

type genjiStore struct {
	db *genji.DB
}

type sessionRow struct {
	ID    string `genji:"id"`
	State []byte `genji:"state"`
}

func openGenji() (*genjiStore, error) {
	db, err := genji.Open(":memory:")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = db.Exec("CREATE TABLE sessions (id TEXT PRIMARY KEY)")
	if err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	return &genjiStore{db: db}, nil
}

func (g *genjiStore) Load(id string) (workflow.Session, error) {
	res, err := g.db.Query("SELECT id, state FROM sessions WHERE id = ?", id)
	if err != nil {
		return workflow.Session{}, errors.WithStack(err)
	}
	defer res.Close()

	var row sessionRow
	found := false
	err = res.Iterate(func(d types.Document) error {
		found = true
		return document.StructScan(d, &row)
	})
	if err != nil {
		return workflow.Session{}, errors.WithStack(err)
	}
	if !found {
		return workflow.Session{}, nil
	}
	return decodeSession(row.State)
}

func (g *genjiStore) Save(id string, s workflow.Session) error {
	state, err := encodeSession(s)
	if err != nil {
		return err
	}

	tx, err := g.db.Begin(true)
	if err != nil {
		return errors.WithStack(err)
	}
	defer tx.Rollback()

	err = tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return errors.WithStack(err)
	}
	err = tx.Exec("INSERT INTO sessions (id, state) VALUES (?, ?)", id, state)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(tx.Commit())
}

func (g *genjiStore) Delete(id string) error {
	return errors.WithStack(g.db.Exec("DELETE FROM sessions WHERE id = ?", id))
}

func (g *genjiStore) Close() error {
	return errors.WithStack(g.db.Close())
}

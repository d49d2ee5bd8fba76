package inmem

import (
	"context"
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/soa-bridge/internal/session"
)

const tableSessions = "sessions"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableSessions: {
			Name: tableSessions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Endpoint"},
				},
				"username": {
					Name:         "username",
					Unique:       false,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Username"},
				},
			},
		},
	},
}

// Driver represents the in-memory session storage driver built using hashicorp/go-memdb
type Driver struct {
	db *memdb.MemDB
}

var _ session.Storage = (*Driver)(nil)

// New creates a new empty in-memory session storage driver
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Driver{db}, nil
}

// GetByEndpoint retrieves the current session of an endpoint
func (driver *Driver) GetByEndpoint(_ context.Context, endpoint string) (*session.Session, error) {
	txn := driver.db.Txn(false)
	obj, err := txn.First(tableSessions, "id", endpoint)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return copySession(obj.(*session.Session)), nil
}

// GetByUsername retrieves all current sessions established for a specific username
func (driver *Driver) GetByUsername(_ context.Context, username string) ([]*session.Session, error) {
	txn := driver.db.Txn(false)
	it, err := txn.Get(tableSessions, "username", username)
	if err != nil {
		return nil, err
	}

	sessions := []*session.Session{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		sessions = append(sessions, copySession(obj.(*session.Session)))
	}
	return sessions, nil
}

// Save stores a session, replacing the current session of its endpoint
func (driver *Driver) Save(_ context.Context, ses *session.Session) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableSessions, copySession(ses)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// TerminateByEndpoint removes the current session of an endpoint
func (driver *Driver) TerminateByEndpoint(_ context.Context, endpoint string) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(tableSessions, "id", endpoint); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Stored objects are never handed out directly as go-memdb indexes them by pointer
func copySession(ses *session.Session) *session.Session {
	copied := *ses
	return &copied
}

package inmem

import (
	"context"
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/soa-bridge/internal/exchange"
	"github.com/skybi/soa-bridge/internal/storage"
)

// Driver represents the in-memory storage driver built using hashicorp/go-memdb.
// It is used if no database is configured; its contents are lost on shutdown.
type Driver struct {
	exchanges *ExchangeRepository
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty in-memory storage driver
func New() *Driver {
	return &Driver{}
}

// Initialize creates the in-memory database
func (driver *Driver) Initialize(_ context.Context) error {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return err
	}
	driver.exchanges = &ExchangeRepository{db: db}
	return nil
}

// Exchanges provides the in-memory exchange repository implementation
func (driver *Driver) Exchanges() exchange.Repository {
	return driver.exchanges
}

// Close discards the repository implementations
func (driver *Driver) Close() {
	driver.exchanges = nil
}

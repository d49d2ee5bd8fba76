package storage

import (
	"context"
	"github.com/skybi/soa-bridge/internal/exchange"
)

// Driver represents a storage driver
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection)
	Initialize(ctx context.Context) error

	// Exchanges provides an exchange journal repository implementation
	Exchanges() exchange.Repository

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}

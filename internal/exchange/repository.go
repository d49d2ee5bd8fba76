package exchange

import (
	"context"
	"time"
)

// Repository defines the exchange journal API
type Repository interface {
	// GetByFilter retrieves multiple exchanges following a filter, ordered by their start time (descending).
	// If limit <= 0, a default limit value of 10 is used.
	GetByFilter(ctx context.Context, filter *Filter, limit uint64) ([]*Exchange, uint64, error)

	// Insert journals a single exchange
	Insert(ctx context.Context, exchange *Exchange) error

	// DeleteOlderThan deletes all exchanges started before the given time and returns their amount
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// Filter is used to query exchanges based on a filter
type Filter struct {
	Operation     *string
	FailedOnly    bool
	StartedAfter  *time.Time
	StartedBefore *time.Time
}

package inmem

import (
	"context"
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/soa-bridge/internal/exchange"
	"sort"
	"time"
)

const tableExchanges = "exchanges"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableExchanges: {
			Name: tableExchanges,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "ID"},
				},
				"operation": {
					Name:         "operation",
					Unique:       false,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Operation"},
				},
			},
		},
	},
}

// entry wraps a journaled exchange as go-memdb only indexes string fields of the stored object
type entry struct {
	ID        string
	Operation string
	Exchange  *exchange.Exchange
}

// ExchangeRepository implements the exchange.Repository interface using hashicorp/go-memdb
type ExchangeRepository struct {
	db *memdb.MemDB
}

var _ exchange.Repository = (*ExchangeRepository)(nil)

// GetByFilter retrieves multiple exchanges following a filter, ordered by their start time (descending).
// If limit <= 0, a default limit value of 10 is used.
func (repo *ExchangeRepository) GetByFilter(_ context.Context, filter *exchange.Filter, limit uint64) ([]*exchange.Exchange, uint64, error) {
	if filter == nil {
		filter = new(exchange.Filter)
	}

	txn := repo.db.Txn(false)
	var it memdb.ResultIterator
	var err error
	if filter.Operation != nil {
		it, err = txn.Get(tableExchanges, "operation", *filter.Operation)
	} else {
		it, err = txn.Get(tableExchanges, "id")
	}
	if err != nil {
		return nil, 0, err
	}

	matches := []*exchange.Exchange{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		record := obj.(*entry).Exchange
		if filter.FailedOnly && record.Succeeded() {
			continue
		}
		if filter.StartedBefore != nil && !record.StartedAt.Before(*filter.StartedBefore) {
			continue
		}
		if filter.StartedAfter != nil && !record.StartedAt.After(*filter.StartedAfter) {
			continue
		}
		copied := *record
		matches = append(matches, &copied)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].StartedAt.After(matches[j].StartedAt)
	})

	if limit <= 0 {
		limit = 10
	}
	n := uint64(len(matches))
	if n > limit {
		matches = matches[:limit]
	}
	return matches, n, nil
}

// Insert journals a single exchange
func (repo *ExchangeRepository) Insert(_ context.Context, record *exchange.Exchange) error {
	copied := *record
	txn := repo.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableExchanges, &entry{
		ID:        copied.ID.String(),
		Operation: copied.Operation,
		Exchange:  &copied,
	}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// DeleteOlderThan deletes all exchanges started before the given time and returns their amount
func (repo *ExchangeRepository) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	txn := repo.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tableExchanges, "id")
	if err != nil {
		return 0, err
	}
	var stale []*entry
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if candidate := obj.(*entry); candidate.Exchange.StartedAt.Before(before) {
			stale = append(stale, candidate)
		}
	}
	for _, obj := range stale {
		if err := txn.Delete(tableExchanges, obj); err != nil {
			return 0, err
		}
	}
	txn.Commit()
	return int64(len(stale)), nil
}

package postgres

import (
	"context"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/skybi/soa-bridge/internal/exchange"
	"time"
)

const exchangeColumns = "exchange_id, operation, endpoint, http_status, raw_body, error_message, started_at, duration_ns"

// ExchangeRepository implements the exchange.Repository interface using PostgreSQL
type ExchangeRepository struct {
	db *pgxpool.Pool
}

var _ exchange.Repository = (*ExchangeRepository)(nil)

// GetByFilter retrieves multiple exchanges following a filter, ordered by their start time (descending).
// If limit <= 0, a default limit value of 10 is used.
func (repo *ExchangeRepository) GetByFilter(ctx context.Context, filter *exchange.Filter, limit uint64) ([]*exchange.Exchange, uint64, error) {
	where := filterExchanges(filter)

	countSQL, countVals, err := squirrel.Select("COUNT(*)").From("exchanges").Where(where).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 10
	}
	limitedSQL, limitedVals, err := squirrel.Select(exchangeColumns).
		From("exchanges").
		Where(where).
		OrderBy("started_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	// Fetch the total amount of exchanges that matches the given filter
	var n uint64
	if err := repo.db.QueryRow(ctx, countSQL, countVals...).Scan(&n); err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return []*exchange.Exchange{}, 0, nil
	}

	// Fetch the exchanges themselves
	rows, err := repo.db.Query(ctx, limitedSQL, limitedVals...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	objs := []*exchange.Exchange{}
	for rows.Next() {
		obj, err := repo.rowToExchange(rows)
		if err != nil {
			return nil, 0, err
		}
		objs = append(objs, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return objs, n, nil
}

// Insert journals a single exchange
func (repo *ExchangeRepository) Insert(ctx context.Context, obj *exchange.Exchange) error {
	query, vals, err := squirrel.Insert("exchanges").
		Columns("exchange_id", "operation", "endpoint", "http_status", "raw_body", "error_message", "started_at", "duration_ns").
		Values(obj.ID, obj.Operation, obj.Endpoint, obj.HTTPStatus, obj.RawBody, obj.Error, obj.StartedAt, obj.Duration.Nanoseconds()).
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(ctx, query, vals...)
	return err
}

// DeleteOlderThan deletes all exchanges started before the given time and returns their amount
func (repo *ExchangeRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := repo.db.Exec(ctx, "DELETE FROM exchanges WHERE started_at < $1", before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// filterExchanges builds the condition shared by the count and the limited query
func filterExchanges(filter *exchange.Filter) squirrel.And {
	where := squirrel.And{}
	if filter == nil {
		return where
	}
	if filter.Operation != nil {
		where = append(where, squirrel.Eq{"operation": *filter.Operation})
	}
	if filter.FailedOnly {
		where = append(where, squirrel.Or{
			squirrel.NotEq{"error_message": ""},
			squirrel.Lt{"http_status": 200},
			squirrel.Gt{"http_status": 299},
		})
	}
	if filter.StartedBefore != nil {
		where = append(where, squirrel.Lt{"started_at": *filter.StartedBefore})
	}
	if filter.StartedAfter != nil {
		where = append(where, squirrel.Gt{"started_at": *filter.StartedAfter})
	}
	return where
}

func (repo *ExchangeRepository) rowToExchange(row pgx.Row) (*exchange.Exchange, error) {
	obj := new(exchange.Exchange)
	var durationNanos int64
	if err := row.Scan(&obj.ID, &obj.Operation, &obj.Endpoint, &obj.HTTPStatus, &obj.RawBody, &obj.Error, &obj.StartedAt, &durationNanos); err != nil {
		return nil, err
	}
	obj.Duration = time.Duration(durationNanos)
	return obj, nil
}

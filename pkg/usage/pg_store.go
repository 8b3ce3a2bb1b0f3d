package usage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/period"
	"github.com/dmitrymomot/quotaguard/pkg/pg"
)

// PGStore persists usage records in the usage_records table (see migrations).
// The composite unique key (owner_kind, owner_id, limit_key, window_start)
// plus the upsert in Increment make concurrent first increments race-safe: the
// loser's insert turns into an atomic add on the winner's row.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given connection pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const pgGetUsage = `
SELECT used, last_used_at
FROM usage_records
WHERE owner_kind = $1 AND owner_id = $2 AND limit_key = $3 AND window_start = $4`

func (s *PGStore) Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window) (Record, error) {
	rec := Record{Owner: owner, Key: key, Window: window}

	var lastUsedAt time.Time
	err := s.db.QueryRow(ctx, pgGetUsage, owner.Kind, owner.ID, string(key), window.Start).
		Scan(&rec.Used, &lastUsedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return rec, nil
		}
		return Record{}, errors.Join(ErrFailedToReadUsage, err)
	}
	rec.LastUsedAt = lastUsedAt.UTC()
	return rec, nil
}

const pgIncrementUsage = `
INSERT INTO usage_records (owner_kind, owner_id, limit_key, window_start, window_end, used, last_used_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (owner_kind, owner_id, limit_key, window_start)
DO UPDATE SET used = usage_records.used + EXCLUDED.used, last_used_at = now()
RETURNING used, last_used_at`

func (s *PGStore) Increment(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, window period.Window, n int64) (Record, error) {
	if n <= 0 {
		return Record{}, ErrInvalidIncrement
	}

	rec := Record{Owner: owner, Key: key, Window: window}

	var lastUsedAt time.Time
	err := s.db.QueryRow(ctx, pgIncrementUsage,
		owner.Kind, owner.ID, string(key), window.Start, window.End, n).
		Scan(&rec.Used, &lastUsedAt)
	if err != nil {
		return Record{}, errors.Join(ErrFailedToIncrementUsage, err)
	}
	rec.LastUsedAt = lastUsedAt.UTC()
	return rec, nil
}

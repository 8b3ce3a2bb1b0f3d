package grace

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
	"github.com/dmitrymomot/quotaguard/pkg/pg"
)

// PGStore persists enforcement state in the enforcement_states table (see
// migrations). Uniqueness is the table's composite unique key; transitions
// are conditional UPDATEs whose row count tells the caller whether it won,
// so no advisory locks or transactions are needed.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given connection pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const pgGetState = `
SELECT exceeded_at, blocked_at, last_warning_threshold, last_warning_at, grace_period_seconds, window_start
FROM enforcement_states
WHERE owner_kind = $1 AND owner_id = $2 AND limit_key = $3`

func (s *PGStore) Get(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) (*State, error) {
	st := State{Owner: owner, Key: key}

	var graceSeconds int64
	err := s.db.QueryRow(ctx, pgGetState, owner.Kind, owner.ID, string(key)).Scan(
		&st.ExceededAt,
		&st.BlockedAt,
		&st.LastWarningThreshold,
		&st.LastWarningAt,
		&graceSeconds,
		&st.WindowStart,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, errors.Join(ErrFailedToReadState, err)
	}
	st.GracePeriod = time.Duration(graceSeconds) * time.Second
	return &st, nil
}

const pgCreateState = `
INSERT INTO enforcement_states
	(owner_kind, owner_id, limit_key, exceeded_at, blocked_at, last_warning_threshold, last_warning_at, grace_period_seconds, window_start)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *PGStore) Create(ctx context.Context, state *State) error {
	_, err := s.db.Exec(ctx, pgCreateState,
		state.Owner.Kind,
		state.Owner.ID,
		string(state.Key),
		state.ExceededAt,
		state.BlockedAt,
		state.LastWarningThreshold,
		state.LastWarningAt,
		int64(state.GracePeriod/time.Second),
		state.WindowStart,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrStateExists
		}
		return errors.Join(ErrFailedToWriteState, err)
	}
	return nil
}

const pgSetExceeded = `
UPDATE enforcement_states
SET exceeded_at = $4, grace_period_seconds = $5
WHERE owner_kind = $1 AND owner_id = $2 AND limit_key = $3 AND exceeded_at IS NULL`

func (s *PGStore) SetExceeded(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, at time.Time, gracePeriod time.Duration) (bool, error) {
	tag, err := s.db.Exec(ctx, pgSetExceeded,
		owner.Kind, owner.ID, string(key), at.UTC(), int64(gracePeriod/time.Second))
	if err != nil {
		return false, errors.Join(ErrFailedToWriteState, err)
	}
	return tag.RowsAffected() == 1, nil
}

const pgSetBlocked = `
UPDATE enforcement_states
SET blocked_at = $4
WHERE owner_kind = $1 AND owner_id = $2 AND limit_key = $3
  AND exceeded_at IS NOT NULL AND blocked_at IS NULL`

func (s *PGStore) SetBlocked(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, pgSetBlocked, owner.Kind, owner.ID, string(key), at.UTC())
	if err != nil {
		return false, errors.Join(ErrFailedToWriteState, err)
	}
	return tag.RowsAffected() == 1, nil
}

const pgSetWarning = `
UPDATE enforcement_states
SET last_warning_threshold = $4, last_warning_at = $5
WHERE owner_kind = $1 AND owner_id = $2 AND limit_key = $3
  AND (last_warning_threshold IS NULL OR last_warning_threshold < $4)`

func (s *PGStore) SetWarning(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey, threshold float64, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, pgSetWarning, owner.Kind, owner.ID, string(key), threshold, at.UTC())
	if err != nil {
		return false, errors.Join(ErrFailedToWriteState, err)
	}
	return tag.RowsAffected() == 1, nil
}

const pgDeleteState = `
DELETE FROM enforcement_states
WHERE owner_kind = $1 AND owner_id = $2 AND limit_key = $3`

func (s *PGStore) Delete(ctx context.Context, owner entitlement.Owner, key entitlement.LimitKey) error {
	if _, err := s.db.Exec(ctx, pgDeleteState, owner.Kind, owner.ID, string(key)); err != nil {
		return errors.Join(ErrFailedToWriteState, err)
	}
	return nil
}

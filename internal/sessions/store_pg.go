package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGStore keeps sessions in the sessions table.
type PGStore struct {
	DB  *sql.DB
	TTL time.Duration
}

func (s *PGStore) Create(ctx context.Context, id string, data []byte) error {
	const query = `
INSERT INTO sessions (id, state, created_at, updated_at, expires_at)
VALUES ($1, $2, now(), now(), $3)`
	_, err := s.DB.ExecContext(ctx, query, id, data, s.expiry())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return err
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) ([]byte, error) {
	const query = `
SELECT state
FROM sessions
WHERE id = $1 AND expires_at > now()
LIMIT 1`
	var data []byte
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *PGStore) Save(ctx context.Context, id string, data []byte) error {
	const query = `
UPDATE sessions
SET state = $2, updated_at = now(), expires_at = $3
WHERE id = $1 AND expires_at > now()`
	res, err := s.DB.ExecContext(ctx, query, id, data, s.expiry())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// PurgeExpired deletes rows past their expiry.
func (s *PGStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PGStore) expiry() time.Time {
	return time.Now().UTC().Add(normalizeTTL(s.TTL))
}

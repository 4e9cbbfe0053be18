// Package sessions persists per-visit workflow state. Stores hold opaque
// JSON payloads with an idle expiry; the workflow package owns the schema.
package sessions

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// ErrExists is returned when creating a session whose id is taken.
var ErrExists = errors.New("session already exists")

// Store keeps session payloads keyed by id. Every Create and Save pushes
// the expiry out by the store's TTL.
type Store interface {
	Create(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that need expired records removed explicitly.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

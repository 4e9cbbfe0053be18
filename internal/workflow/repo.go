package workflow

import (
	"context"
	"errors"
	"time"

	"career-booster/internal/sessions"
)

// Repo stores Session values as JSON in a sessions.Store.
type Repo struct {
	store sessions.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewRepo(store sessions.Store, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = sessions.DefaultTTL
	}
	return &Repo{store: store, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (r *Repo) Create(ctx context.Context, s *Session) error {
	s.ExpiresAt = r.now().Add(r.ttl)
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	return r.store.Create(ctx, s.ID, data)
}

func (r *Repo) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = id
	}
	return s, nil
}

func (r *Repo) Save(ctx context.Context, s *Session) error {
	s.ExpiresAt = r.now().Add(r.ttl)
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, s.ID, data)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sessions.ErrNotFound)
}

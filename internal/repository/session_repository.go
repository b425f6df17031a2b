package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cicli-volante/internal/domain"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "admin_session"

// SessionRepository stores live admin sessions
type SessionRepository interface {
	Create(ctx context.Context, session *domain.AdminSession, ttl time.Duration) error
	Find(ctx context.Context, id string) (*domain.AdminSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	client redis.UniversalClient
}

// NewSessionRepository creates a Redis backed SessionRepository. Sessions
// expire on their own once the ttl given to Create elapses.
func NewSessionRepository(client redis.UniversalClient) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", sessionKeyPrefix, id)
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.AdminSession, ttl time.Duration) error {
	session.ExpiresAt = time.Now().Add(ttl).UTC()

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

func (r *sessionRepository) Find(ctx context.Context, id string) (*domain.AdminSession, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session := &domain.AdminSession{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return session, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

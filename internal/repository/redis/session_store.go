package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a token does not resolve to a live session,
// whether it never existed, expired, or was destroyed on logout.
var ErrNoSession = errors.New("no such session")

// SessionStore keeps server-side sessions in Redis keyed by an opaque token.
// The browser only ever sees the token; the authenticated user id stays on
// the server.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(token string) string { return "session:" + token }
func flashKey(token string) string   { return "flash:" + token }

func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNoSession
		}
		return uuid.Nil, fmt.Errorf("get session: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrNoSession
	}
	return userID, nil
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token), flashKey(token)).Err()
}

// SetFlash stores a one-shot notice shown on the next page render.
func (s *SessionStore) SetFlash(ctx context.Context, token, msg string) error {
	return s.client.Set(ctx, flashKey(token), msg, s.ttl).Err()
}

// PopFlash returns the pending notice, if any, and clears it.
func (s *SessionStore) PopFlash(ctx context.Context, token string) string {
	val, err := s.client.GetDel(ctx, flashKey(token)).Result()
	if err != nil {
		return ""
	}
	return val
}

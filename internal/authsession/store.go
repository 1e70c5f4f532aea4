package authsession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const changeChannel = "authsession:changed"

// Change is published whenever a session is written or cleared. Subscribers
// re-read the session for the given id; the payload is deliberately just the
// id, writes are last-write-wins.
type Change struct {
	SessionID string `json:"sessionId"`
}

// Store persists sessions in redis, keyed by an opaque per-client session
// id. Readers tolerate stale values; a missing key is an empty session, not
// an error.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore returns a redis-backed session store.
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

func (s *Store) key(sessionID string) string {
	return fmt.Sprintf("authsession:%s", sessionID)
}

// Read returns the stored session, or a zero session when none exists.
func (s *Store) Read(ctx context.Context, sessionID string) (Session, error) {
	result, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}
	var session Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Write stores the session and notifies subscribers.
func (s *Store) Write(ctx context.Context, sessionID string, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return err
	}
	s.publishChange(ctx, sessionID)
	return nil
}

// Clear removes the session and notifies subscribers.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil && err != redis.Nil {
		return err
	}
	s.publishChange(ctx, sessionID)
	return nil
}

func (s *Store) publishChange(ctx context.Context, sessionID string) {
	payload, _ := json.Marshal(Change{SessionID: sessionID})
	if err := s.client.Publish(ctx, changeChannel, payload).Err(); err != nil {
		s.logger.Warn("failed to publish session change", zap.Error(err))
	}
}

// Subscribe streams change notifications until ctx is done. Each client
// instance refreshes reactively instead of polling shared storage.
func (s *Store) Subscribe(ctx context.Context) <-chan Change {
	sub := s.client.Subscribe(ctx, changeChannel)
	out := make(chan Change)

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					s.logger.Warn("malformed session change payload", zap.Error(err))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

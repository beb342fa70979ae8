package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/pkg/logger"
)

const keyPrefix = "chat:session:"

// Store persists conversation sessions in Redis as JSON blobs. The blob is
// opaque to the store; its shape belongs to the state machine.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Load returns the session for an id, or a fresh default session when none
// exists. A blob that no longer unmarshals is treated as absent rather than
// poisoning the conversation forever.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSession(), nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		logger.WarnContext(ctx, "Discarding undecodable session blob", "session_id", sessionID, "error", err)
		return domain.NewSession(), nil
	}
	if _, ok := domain.ParseConversationState(string(sess.State)); !ok {
		logger.WarnContext(ctx, "Discarding session with unknown state", "session_id", sessionID, "state", sess.State)
		return domain.NewSession(), nil
	}
	return sess, nil
}

// Save upserts the session, refreshing its TTL.
func (s *Store) Save(ctx context.Context, sessionID string, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

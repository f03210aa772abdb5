package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/propstay/property-api/internal/core/domain"
)

const resetKeyPrefix = "pwreset:"

// ResetTokenStore keeps password-reset tokens in Redis.
// Key format: pwreset:<token> → email, expiring after the configured TTL.
// Consumption is a single GETDEL, which is what makes the token single-use
// even under concurrent reset attempts.
type ResetTokenStore struct {
	client *redis.Client
}

// NewResetTokenStore creates a ResetTokenStore wrapping the given client.
func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// Store records a token for the given email, expiring after ttl.
func (s *ResetTokenStore) Store(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKeyPrefix+token, email, ttl).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

// Consume returns the email bound to the token and deletes it atomically.
// Unknown, expired, and already-consumed tokens are indistinguishable.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return email, nil
}

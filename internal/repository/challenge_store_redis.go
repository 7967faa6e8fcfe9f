package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"attendance_tracker/internal/model"

	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "challenge:"

type redisChallengeStore struct {
	client *redis.Client
}

// NewRedisChallengeStore creates a Redis-backed challenge store. Keys carry a
// TTL of the challenge lifetime plus the retention window, so redis eviction
// acts as the expiry sweep. The caller owns the client's lifecycle.
func NewRedisChallengeStore(client *redis.Client) ChallengeStore {
	return &redisChallengeStore{client: client}
}

func (s *redisChallengeStore) Get(ctx context.Context, mobile string) (*model.PhoneChallenge, error) {
	val, err := s.client.Get(ctx, challengeKeyPrefix+mobile).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get challenge from redis: %w", err)
	}

	var ch model.PhoneChallenge
	if err := json.Unmarshal([]byte(val), &ch); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}
	return &ch, nil
}

func (s *redisChallengeStore) Set(ctx context.Context, challenge *model.PhoneChallenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	ttl := time.Until(challenge.ExpiresAt) + ExpiredRetention
	if ttl <= 0 {
		ttl = ExpiredRetention
	}

	// Plain SET replaces any previous value and TTL in one command, which
	// gives the last-writer-wins overwrite the challenge lifecycle needs.
	if err := s.client.Set(ctx, challengeKeyPrefix+challenge.Mobile, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set challenge in redis: %w", err)
	}
	return nil
}

func (s *redisChallengeStore) Delete(ctx context.Context, mobile string) error {
	if err := s.client.Del(ctx, challengeKeyPrefix+mobile).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge from redis: %w", err)
	}
	return nil
}

func (s *redisChallengeStore) Close() error {
	// The redis client is shared and closed by the caller.
	return nil
}

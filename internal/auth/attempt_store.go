package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"newsportal/internal/cache"
)

const loginAttemptKeyPrefix = "login_attempts:"

// AttemptStoreInterface defines failed-login bookkeeping.
type AttemptStoreInterface interface {
	Locked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AttemptStore counts failed logins per email in Redis. When Redis is
// unavailable the counter reads zero and nobody is locked out.
type AttemptStore struct {
	cache       *cache.Client
	maxAttempts int
	window      time.Duration
}

// Ensure AttemptStore implements AttemptStoreInterface
var _ AttemptStoreInterface = (*AttemptStore)(nil)

// NewAttemptStore creates a new attempt store. maxAttempts <= 0 disables locking.
func NewAttemptStore(cache *cache.Client, maxAttempts int, window time.Duration) *AttemptStore {
	return &AttemptStore{cache: cache, maxAttempts: maxAttempts, window: window}
}

func attemptKey(email string) string {
	return loginAttemptKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Locked reports whether the email has reached the failure limit.
func (s *AttemptStore) Locked(ctx context.Context, email string) (bool, error) {
	if s.maxAttempts <= 0 {
		return false, nil
	}
	data, err := s.cache.Get(ctx, attemptKey(email))
	if err != nil || data == nil {
		return false, nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return false, nil
	}
	return n >= s.maxAttempts, nil
}

// RecordFailure increments the failure counter for the email.
func (s *AttemptStore) RecordFailure(ctx context.Context, email string) error {
	_, err := s.cache.Incr(ctx, attemptKey(email), s.window)
	return err
}

// Reset clears the failure counter after a successful login.
func (s *AttemptStore) Reset(ctx context.Context, email string) error {
	return s.cache.Delete(ctx, attemptKey(email))
}

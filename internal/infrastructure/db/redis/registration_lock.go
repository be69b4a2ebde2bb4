package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const registrationLockTTL = 10 * time.Second

// RegistrationLock serialises registrations of the same (email, role) pair
// across instances. Key format: register:<role>:<email>
type RegistrationLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRegistrationLock creates a RegistrationLock wrapping the given Redis client.
func NewRegistrationLock(client *redis.Client) *RegistrationLock {
	return &RegistrationLock{client: client, ttl: registrationLockTTL}
}

// Acquire reports whether the caller now holds the lock. The lock expires on
// its own after the TTL so a crashed holder cannot block the pair forever.
func (l *RegistrationLock) Acquire(ctx context.Context, email, role string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(email, role), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("registration lock acquire: %w", err)
	}
	return ok, nil
}

// Release drops the lock.
func (l *RegistrationLock) Release(ctx context.Context, email, role string) error {
	if err := l.client.Del(ctx, l.key(email, role)).Err(); err != nil {
		return fmt.Errorf("registration lock release: %w", err)
	}
	return nil
}

func (l *RegistrationLock) key(email, role string) string {
	return fmt.Sprintf("register:%s:%s", role, email)
}

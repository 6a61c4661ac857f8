package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyRevokedToken = "auth:revoked:%s"

// MemoryDenylist implements Denylist in process memory
type MemoryDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// creates an in-memory denylist that sweeps expired entries every interval
func NewMemoryDenylist(interval time.Duration) *MemoryDenylist {
	d := &MemoryDenylist{
		revoked: make(map[string]time.Time),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go d.cleanupLoop(interval)

	return d
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	if jti == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if until.After(d.now()) {
		d.revoked[jti] = until
	}

	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	until, exists := d.revoked[jti]
	if !exists {
		return false, nil
	}

	return d.now().Before(until), nil
}

// number of entries currently held, expired ones included until the next sweep
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.revoked)
}

// stops the cleanup goroutine
func (d *MemoryDenylist) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true
	close(d.done)

	return nil
}

func (d *MemoryDenylist) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.cleanup()
		}
	}
}

func (d *MemoryDenylist) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for jti, until := range d.revoked {
		if !now.Before(until) {
			delete(d.revoked, jti)
		}
	}
}

// RedisDenylist implements Denylist with expiring redis keys, shared across instances
type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if jti == "" || ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, fmt.Sprintf(keyRevokedToken, jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token in redis: %w", err)
	}

	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, fmt.Sprintf(keyRevokedToken, jti)).Err()

	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return true, nil
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/b2bportal/backend/internal/domain/shared"
)

// holder represents a claimed key with expiration
type holder struct {
	expiresAt time.Time
}

// InMemoryRunGuard implements RunGuard using an in-memory map. Suitable for
// single-instance deployments and tests; multi-instance deployments need
// the Redis guard so suppliers are single-flighted across processes.
type InMemoryRunGuard struct {
	mu        sync.Mutex
	holders   map[string]holder
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRunGuard creates a new in-memory run guard and starts a
// background goroutine that sweeps expired claims.
func NewInMemoryRunGuard() *InMemoryRunGuard {
	g := &InMemoryRunGuard{
		holders:  make(map[string]holder),
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop()

	return g
}

// Acquire claims the key for ttl. Returns false if another unexpired
// holder is active.
func (g *InMemoryRunGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if h, exists := g.holders[key]; exists && time.Now().Before(h.expiresAt) {
		return false, nil
	}

	g.holders[key] = holder{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees the key.
func (g *InMemoryRunGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.holders, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (g *InMemoryRunGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired claims
func (g *InMemoryRunGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

// cleanup removes expired claims from the map
func (g *InMemoryRunGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, h := range g.holders {
		if now.After(h.expiresAt) {
			delete(g.holders, key)
		}
	}
}

// Size returns the number of active claims (for testing/monitoring)
func (g *InMemoryRunGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.holders)
}

// Ensure InMemoryRunGuard implements RunGuard
var _ shared.RunGuard = (*InMemoryRunGuard)(nil)

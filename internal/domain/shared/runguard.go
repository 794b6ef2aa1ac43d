package shared

import (
	"context"
	"time"
)

// RunGuard provides best-effort mutual exclusion for named units of work:
// one reconciliation run per supplier, one in-flight placement per client
// request id. It narrows duplicate-execution windows but is not a
// correctness primitive; components must stay safe without it.
type RunGuard interface {
	// Acquire claims the key for ttl. Returns true if this caller now holds
	// it, false if another holder is active.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees the key before its ttl expires.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the guard
	Close() error
}

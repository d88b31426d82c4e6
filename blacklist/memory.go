package blacklist

import (
	"context"
	"sync"
	"time"
)

const defaultPurgeInterval = time.Minute

// Memory is a process-local [Blacklist]. A background janitor purges entries
// whose shadowed token has expired, keeping the set bounded by the number of
// tokens revoked within one access-token lifetime.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewMemory returns a [Memory] blacklist with its janitor started at the
// default purge interval. Call Close to stop the janitor.
func NewMemory() *Memory {
	return NewMemoryWithInterval(defaultPurgeInterval)
}

// NewMemoryWithInterval is [NewMemory] with an explicit janitor interval.
// Non-positive intervals select the default.
func NewMemoryWithInterval(interval time.Duration) *Memory {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	b := &Memory{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go b.janitor(interval)
	return b
}

func (b *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.purge(time.Now())
		}
	}
}

func (b *Memory) purge(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for token, expiresAt := range b.entries {
		if !expiresAt.After(now) {
			delete(b.entries, token)
		}
	}
}

// Add marks token revoked until expiresAt. Already-expired tokens are not
// stored.
func (b *Memory) Add(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[token] = expiresAt
	return nil
}

// Contains reports whether token is revoked and its entry unexpired. Expired
// entries are dropped on read.
func (b *Memory) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[token]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(time.Now()) {
		delete(b.entries, token)
		return false, nil
	}
	return true, nil
}

// Close stops the janitor.
func (b *Memory) Close() error {
	b.stopOnce.Do(func() { close(b.done) })
	return nil
}

// Len reports the number of entries currently held, expired ones included.
// Intended for tests and introspection.
func (b *Memory) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

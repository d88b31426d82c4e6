package refresh

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// MemoryLedger is a process-local [Ledger]. A background janitor sweeps
// expired records so the map does not grow without bound under long uptimes.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]Record

	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryLedger returns a [MemoryLedger] with its janitor started.
// Call Close to stop the janitor.
func NewMemoryLedger() *MemoryLedger {
	l := &MemoryLedger{
		records: make(map[string]Record),
		done:    make(chan struct{}),
	}
	go l.janitor(defaultSweepInterval)
	return l
}

func (l *MemoryLedger) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

func (l *MemoryLedger) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for jti, rec := range l.records {
		if rec.Expired(now) {
			delete(l.records, jti)
		}
	}
}

// Add inserts rec as active, overwriting any record with the same jti.
func (l *MemoryLedger) Add(_ context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[rec.JTI] = rec
	return nil
}

// Revoke removes jti. Absent entries are ignored.
func (l *MemoryLedger) Revoke(_ context.Context, jti string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, jti)
	return nil
}

// IsActive reports whether jti is present and unexpired. Expired records are
// dropped on read.
func (l *MemoryLedger) IsActive(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[jti]
	if !ok {
		return false, nil
	}
	if rec.Expired(time.Now()) {
		delete(l.records, jti)
		return false, nil
	}
	return true, nil
}

// Rotate retires oldJTI and installs next under one lock hold, so concurrent
// rotations of the same jti produce exactly one winner.
func (l *MemoryLedger) Rotate(_ context.Context, oldJTI string, next Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[oldJTI]
	if !ok || rec.Expired(time.Now()) {
		delete(l.records, oldJTI)
		return ErrNotActive
	}

	delete(l.records, oldJTI)
	l.records[next.JTI] = next
	return nil
}

// Close stops the janitor. Records become unreachable with the ledger itself.
func (l *MemoryLedger) Close() error {
	l.stopOnce.Do(func() { close(l.done) })
	return nil
}

// Len reports the number of records currently held, expired ones included.
// Intended for tests and introspection.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

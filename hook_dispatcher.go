package goauth

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

type hookDispatcher struct {
	cfg       HookConfig
	ch        chan func()
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newHookDispatcher(cfg HookConfig, hooks Hooks) *hookDispatcher {
	if hooks.empty() {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &hookDispatcher{
		cfg:  cfg,
		ch:   make(chan func(), cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *hookDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case fn := <-d.ch:
			d.invoke(fn)
		case <-d.done:
			for {
				select {
				case fn := <-d.ch:
					d.invoke(fn)
				default:
					return
				}
			}
		}
	}
}

func (d *hookDispatcher) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("goauth: hook panic: %v", r)
		}
	}()
	fn()
}

// Emit describes the emit operation and its observable behavior.
//
// Emit may return an error when input validation, dependency calls, or security checks fail.
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *hookDispatcher) Emit(ctx context.Context, fn func()) {
	if d == nil || fn == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- fn:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- fn:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.done:
	}
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *hookDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped describes the dropped operation and its observable behavior.
//
// Dropped may return an error when input validation, dependency calls, or security checks fail.
// Dropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *hookDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

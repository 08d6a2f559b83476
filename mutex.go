//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: original_source/include/ilias/sync/mutex.hpp
//

package rtcore

import (
	"context"
	"sync"
)

// MutexGuard releases a [Mutex] acquired by [Mutex.Lock]. Unlock is
// idempotent: calling it twice, or after [MutexGuard.Release], is a
// no-op rather than a double-unlock panic, since cancellation can race
// an explicit Unlock call.
type MutexGuard struct {
	mu *Mutex
}

// Unlock releases the mutex, waking the oldest waiter if one is queued.
func (g *MutexGuard) Unlock() {
	if g == nil || g.mu == nil {
		return
	}
	m := g.mu
	g.mu = nil
	m.unlock()
}

// Release detaches the guard from its mutex without unlocking it, so
// ownership can be handed off manually (mirroring the C++ original's
// release(), used when a guard's lifetime does not match its scope).
func (g *MutexGuard) Release() {
	g.mu = nil
}

// Mutex is a goroutine-safe, cancellation-aware mutual-exclusion lock
// whose waiters are woken in FIFO arrival order. Unlike [sync.Mutex],
// [Mutex.Lock] takes a context and returns promptly with
// [ErrCanceled] if that context is done before the lock is acquired,
// instead of blocking forever.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// TryLock attempts to acquire the mutex without blocking. ok is false
// if the mutex was already held.
func (m *Mutex) TryLock() (guard *MutexGuard, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return nil, false
	}
	m.locked = true
	return &MutexGuard{mu: m}, true
}

// Lock acquires the mutex, blocking until it is available or ctx is
// done. Waiters are served in the order Lock was called, matching the
// original's single-waiter WaitQueue semantics.
func (m *Mutex) Lock(ctx context.Context) (*MutexGuard, error) {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return &MutexGuard{mu: m}, nil
	}
	wake := make(chan struct{}, 1)
	m.waiters = append(m.waiters, wake)
	m.mu.Unlock()

	select {
	case <-wake:
		return &MutexGuard{mu: m}, nil
	case <-ctx.Done():
		m.abandon(wake)
		return nil, NewIoError(ErrCanceled, ctx.Err())
	}
}

// unlock releases the mutex and wakes the oldest queued waiter, if any,
// transferring ownership directly to it so a raced TryLock from a
// newcomer cannot steal the lock out from under the queue (the same
// "hand the lock to the waiter, don't just unlock" guarantee the
// original's unlockRaw + wakeupOne pair provides).
func (m *Mutex) unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.waiters) == 0 {
		m.locked = false
		return
	}
	next := m.waiters[0]
	m.waiters = m.waiters[1:]
	next <- struct{}{} // stays locked; ownership transfers to next
}

// abandon removes a canceled waiter from the queue. If it had already
// been woken (a racing unlock delivered ownership just as ctx became
// done), the lock is immediately handed to the next waiter instead of
// being leaked in the held-but-unowned state.
func (m *Mutex) abandon(wake chan struct{}) {
	m.mu.Lock()
	for i, w := range m.waiters {
		if w == wake {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			m.mu.Unlock()
			return
		}
	}
	m.mu.Unlock()

	select {
	case <-wake:
		m.unlock()
	default:
	}
}

// Locked pairs a value with the [Mutex] that protects it, mirroring the
// original's Locked<T> template: callers must hold a [*LockedGuard]
// before touching Value.
type Locked[T any] struct {
	mu    Mutex
	Value T
}

// NewLocked wraps value in a [*Locked].
func NewLocked[T any](value T) *Locked[T] {
	return &Locked[T]{Value: value}
}

// LockedGuard grants access to a [Locked]'s value while held.
type LockedGuard[T any] struct {
	guard *MutexGuard
	value *T
}

// Get returns a pointer to the protected value. Valid only while the
// guard has not been unlocked or released.
func (g *LockedGuard[T]) Get() *T { return g.value }

// Unlock releases the underlying mutex.
func (g *LockedGuard[T]) Unlock() { g.guard.Unlock() }

// Release detaches the guard without unlocking, mirroring [MutexGuard.Release].
func (g *LockedGuard[T]) Release() { g.guard.Release() }

// Lock acquires l's mutex and returns a guard granting access to its value.
func (l *Locked[T]) Lock(ctx context.Context) (*LockedGuard[T], error) {
	guard, err := l.mu.Lock(ctx)
	if err != nil {
		return nil, err
	}
	return &LockedGuard[T]{guard: guard, value: &l.Value}, nil
}

// TryLock attempts to acquire l's mutex without blocking.
func (l *Locked[T]) TryLock() (*LockedGuard[T], bool) {
	guard, ok := l.mu.TryLock()
	if !ok {
		return nil, false
	}
	return &LockedGuard[T]{guard: guard, value: &l.Value}, true
}

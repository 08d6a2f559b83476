//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: include/ilias/coro/cancel_handle.hpp (stop source/token/callback)
//

package rtcore

import "sync"

// StopSource owns cooperative-cancellation state shared by every
// [StopToken] and [StopCallback] derived from it, per spec.md §3.
//
// The zero value is not usable; construct with [NewStopSource].
type StopSource struct {
	mu        sync.Mutex
	requested bool
	callbacks []*StopCallback
}

// NewStopSource returns a ready-to-use [*StopSource].
func NewStopSource() *StopSource {
	return &StopSource{}
}

// Token returns a read-only [StopToken] view of this source.
func (s *StopSource) Token() StopToken {
	return StopToken{source: s}
}

// RequestStop sets the source's requested bit and invokes every registered
// callback exactly once, in registration order. Calling RequestStop more
// than once is a no-op after the first call.
//
// Per spec.md §5: "Sets the source's requested bit (atomic release).
// Invokes registered callbacks synchronously, in registration order."
func (s *StopSource) RequestStop() {
	s.mu.Lock()
	if s.requested {
		s.mu.Unlock()
		return
	}
	s.requested = true
	pending := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	for _, cb := range pending {
		cb.invoke()
	}
}

// Requested reports whether stop has been requested.
func (s *StopSource) Requested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

// register adds cb to the callback list, or invokes it immediately if
// stop has already been requested (spec.md §3: "Registering a callback
// while requested invokes it synchronously").
func (s *StopSource) register(cb *StopCallback) {
	s.mu.Lock()
	if s.requested {
		s.mu.Unlock()
		cb.invoke()
		return
	}
	s.callbacks = append(s.callbacks, cb)
	s.mu.Unlock()
}

// unregister removes cb from the pending callback list, if still pending.
// Used by [StopCallback.Cancel] and by a [Mutex] waiter splicing itself
// out on cancellation (sync primitives, spec.md §5).
func (s *StopSource) unregister(cb *StopCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.callbacks {
		if c == cb {
			s.callbacks = append(s.callbacks[:i], s.callbacks[i+1:]...)
			return
		}
	}
}

// StopToken is a cheap, read-only view of a [StopSource].
//
// The zero StopToken reports Requested()==false forever and accepts
// callback registration as a no-op, matching a task with no cancellation
// source (e.g. the root task of an [Executor]).
type StopToken struct {
	source *StopSource
}

// Requested reports whether the originating source has had stop requested.
func (t StopToken) Requested() bool {
	if t.source == nil {
		return false
	}
	return t.source.Requested()
}

// OnStop registers fn to run when stop is requested, returning a
// [*StopCallback] handle that can be used to unregister fn early.
func (t StopToken) OnStop(fn func()) *StopCallback {
	cb := &StopCallback{source: t.source, fn: fn}
	if t.source != nil {
		t.source.register(cb)
	}
	return cb
}

// StopCallback is a registered cancellation callback, returned by
// [StopToken.OnStop].
type StopCallback struct {
	source *StopSource
	fn     func()
	once   sync.Once
}

// invoke runs the callback exactly once.
func (cb *StopCallback) invoke() {
	cb.once.Do(cb.fn)
}

// Cancel unregisters the callback if it has not fired yet. Safe to call
// even after the callback has already fired.
func (cb *StopCallback) Cancel() {
	if cb.source != nil {
		cb.source.unregister(cb)
	}
}

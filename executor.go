//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: include/ilias/coro/loop.hpp, include/ilias/runtime/coro.hpp
//

package rtcore

import (
	"context"
	"sync"
	"time"
)

// Executor schedules coroutine-like work, per spec.md §4.2.
//
// Every method is safe to call from any goroutine EXCEPT [Executor.Run]
// itself, which must be called exactly once and blocks its caller:
// spec.md models this as "each executor owns one OS thread"; in Go we
// model it as "each executor owns exactly one long-lived call to Run",
// which may be the goroutine that created the executor or a dedicated one.
type Executor interface {
	// Schedule enqueues handle for execution on this executor. Thread-safe.
	Schedule(handle func())

	// Post enqueues a one-shot callback for execution on this executor's
	// Run goroutine, the mechanism for cross-thread wake-up (spec.md §4.2).
	// Thread-safe.
	Post(fn func())

	// Run drains scheduled work and fires expired timers until ctx is
	// done. Returns ctx.Err() once it stops.
	Run(ctx context.Context) error

	// Sleep blocks the calling task until d has elapsed on this
	// executor's timer service, or ctx is done (in which case it returns
	// an error wrapping [ErrCanceled]).
	Sleep(ctx context.Context, d time.Duration) error
}

// executorContextKey is the context.Context key under which the owning
// Executor is stored, the mechanism by which await_transform's context
// injection (spec.md §4.3) is modeled in Go: every reactor op and every
// composition operator recovers its Executor via [ExecutorFromContext]
// rather than a thread-local.
type executorContextKey struct{}

// WithExecutor returns a context carrying ex, retrievable via
// [ExecutorFromContext]. [Spawn] calls this automatically for the context
// it hands to each task body.
func WithExecutor(ctx context.Context, ex Executor) context.Context {
	return context.WithValue(ctx, executorContextKey{}, ex)
}

// ExecutorFromContext retrieves the [Executor] bound to ctx, if any.
func ExecutorFromContext(ctx context.Context) (Executor, bool) {
	ex, ok := ctx.Value(executorContextKey{}).(Executor)
	return ex, ok
}

// LoopExecutor is the default [Executor]: a single-threaded, cooperative
// run loop over a work queue plus a [timerService], matching spec.md §5's
// "single-threaded cooperative" scheduling discipline literally rather
// than delegating to the Go runtime's own (work-stealing) scheduler.
//
// Construct with [NewLoopExecutor]; call [LoopExecutor.Run] from the
// single goroutine that is to act as this executor's "thread".
type LoopExecutor struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	timers  *timerService
	running bool
	logger  SLogger
	tracing bool
}

var _ Executor = (*LoopExecutor)(nil)

// NewLoopExecutor returns a ready-to-run [*LoopExecutor], logging lifecycle
// events through [DefaultSLogger] until [LoopExecutor.SetLogger] is called.
func NewLoopExecutor() *LoopExecutor {
	return &LoopExecutor{
		wake:   make(chan struct{}, 1),
		timers: newTimerService(),
		logger: DefaultSLogger(),
	}
}

// SetLogger replaces the [SLogger] this executor (and any [Reactor] built
// on top of it) uses for lifecycle logging. Not safe to call concurrently
// with [LoopExecutor.Run].
func (ex *LoopExecutor) SetLogger(logger SLogger) {
	ex.logger = logger
}

// SetTracingEnabled toggles span-tagged Info logging for [Spawn]'s
// taskSpawn/taskStop events on this executor, mirroring
// [Config.EnableTracing]. Each spawned [Task] gets its own span ID from
// [NewSpanID] when enabled. Default false; not safe to call concurrently
// with [LoopExecutor.Run].
func (ex *LoopExecutor) SetTracingEnabled(enabled bool) {
	ex.tracing = enabled
}

// tracingInfo lets [Spawn] recover this executor's logger and tracing
// flag through the [Executor] interface without widening it; any type
// embedding [*LoopExecutor] (every [Reactor] backend) gets it for free
// via method promotion.
func (ex *LoopExecutor) tracingInfo() (SLogger, bool) {
	return ex.logger, ex.tracing
}

// Schedule implements [Executor].
func (ex *LoopExecutor) Schedule(handle func()) {
	ex.mu.Lock()
	ex.queue = append(ex.queue, handle)
	ex.mu.Unlock()
	ex.notify()
}

// Post implements [Executor]. Identical to Schedule: both ultimately
// enqueue a callback for the Run goroutine, matching spec.md's framing of
// `post` as "the mechanism for cross-thread wake-ups" while `schedule`
// resumes a specific coroutine handle — in Go both are just `func()`.
func (ex *LoopExecutor) Post(fn func()) {
	ex.Schedule(fn)
}

func (ex *LoopExecutor) notify() {
	select {
	case ex.wake <- struct{}{}:
	default:
	}
}

// insertTimer schedules callback after d elapses, returning a cancel func.
func (ex *LoopExecutor) insertTimer(d time.Duration, callback func()) func() {
	ex.mu.Lock()
	id := ex.timers.insert(time.Now().Add(d), callback)
	ex.mu.Unlock()
	ex.notify()
	return func() {
		ex.mu.Lock()
		ex.timers.cancel(id)
		ex.mu.Unlock()
	}
}

// Run implements [Executor]: drains the work queue and fires expired
// timers until ctx is done.
func (ex *LoopExecutor) Run(ctx context.Context) (err error) {
	ex.mu.Lock()
	ex.running = true
	ex.mu.Unlock()
	ex.logger.Info("executorRunStart")
	defer func() {
		ex.mu.Lock()
		ex.running = false
		ex.mu.Unlock()
		ex.logger.Info("executorRunStop", "err", err)
	}()

	done := ctx.Done()
	for {
		ex.mu.Lock()
		ex.timers.fireExpired(time.Now())
		work := ex.queue
		ex.queue = nil
		deadline, hasDeadline := ex.timers.nextDeadline()
		ex.mu.Unlock()

		for _, fn := range work {
			fn()
		}

		select {
		case <-done:
			return ctx.Err()
		default:
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		if hasDeadline {
			d := time.Until(deadline)
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-ex.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
		}
	}
}

// Sleep implements [Executor] using this executor's own timer service, so
// sleeps fired while Run is blocked are delivered on the very next
// iteration without a dedicated goroutine per sleeper.
func (ex *LoopExecutor) Sleep(ctx context.Context, d time.Duration) error {
	woken := make(chan struct{}, 1)
	cancelTimer := ex.insertTimer(d, func() {
		select {
		case woken <- struct{}{}:
		default:
		}
	})
	select {
	case <-ctx.Done():
		cancelTimer()
		return NewIoError(ErrCanceled, ctx.Err())
	case <-woken:
		return nil
	}
}

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: include/ilias/coro/task.hpp, include/ilias/coro/promise.hpp
//

package rtcore

import (
	"context"
	"fmt"
	"sync"
)

// taskContext is the per-task state a stackful coroutine's promise would
// hold in the original design (spec.md §3): the owning executor, this
// task's own [StopSource] (derived from its parent's, if any), and the
// parent task's taskContext. The "stopped" latch of spec.md §4.7 is not
// stored here: [Spawn] applies it when the task body returns.
type taskContext struct {
	executor Executor
	stop     *StopSource
	parent   *taskContext
}

// taskContextKey is the context.Context key a running [Task] body can use
// to recover its own taskContext, e.g. to Spawn a child task that inherits
// this task's executor and cancellation scope.
type taskContextKey struct{}

func withTaskContext(ctx context.Context, tc *taskContext) context.Context {
	return context.WithValue(ctx, taskContextKey{}, tc)
}

func taskContextFromContext(ctx context.Context) (*taskContext, bool) {
	tc, ok := ctx.Value(taskContextKey{}).(*taskContext)
	return tc, ok
}

// Task is a handle to an in-flight asynchronous computation producing a
// T, the Go translation of spec.md §3's stackless-coroutine Task<T>: Go
// has no compiler-level coroutine transform, so a Task here is backed by
// a goroutine that stores its result and then closes a one-shot done
// channel.
//
// A Task must be waited on exactly once via [Task.Wait]; waiting twice
// panics, matching the single-consumer discipline of the original
// coroutine handle (spec.md §3: "A Task may be awaited at most once").
type Task[T any] struct {
	done     chan struct{}
	result   Result[T]
	stop     *StopSource
	once     sync.Once
	waited   bool
	waitedMu sync.Mutex
}

// Spawn starts fn as a new [Task] running on the [Executor] recovered
// from ctx (via [ExecutorFromContext], or the task bound to ctx if one is
// present). fn receives a context carrying its own task's executor and
// stop token, so it can itself call Spawn for child tasks.
//
// Per spec.md §4.7, a panic inside fn is recovered and converted into an
// error result rather than crashing the executor goroutine.
func Spawn[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ex, ok := ExecutorFromContext(ctx)
	if !ok {
		panic("rtcore: Spawn called with a context carrying no Executor")
	}

	parent, _ := taskContextFromContext(ctx)
	stop := NewStopSource()
	if parent != nil {
		// A child's stop source is independent but the parent stopping
		// propagates to the child, mirroring spec.md §3's stop-token
		// inheritance down a task tree.
		parent.stop.Token().OnStop(stop.RequestStop)
	}

	tc := &taskContext{executor: ex, stop: stop, parent: parent}
	t := &Task[T]{done: make(chan struct{}), stop: stop}

	// cancelCtx's Done channel is wired to this task's own StopSource, so
	// [Task.Stop] (and a propagating parent stop) are observable by fn
	// via ctx.Done(), not just via Task.Wait's own select — matching
	// spec.md §3's stop_token being threaded through every await point.
	cancelCtx, cancel := context.WithCancel(withTaskContext(WithExecutor(ctx, ex), tc))
	stop.Token().OnStop(cancel)

	logger, spanID := taskLoggerAndSpanID(ex)
	logger.Info("taskSpawn", "span", spanID)

	ex.Schedule(func() {
		go func() {
			defer t.finish()
			defer cancel()
			defer func() { logger.Info("taskStop", "span", spanID) }()
			value, err := runTaskBody(cancelCtx, fn)
			if stop.Requested() && err == nil {
				// Completed concurrently with a stop request: per
				// spec.md §4.7 the task latches stopped rather than
				// reporting the value it happened to race to.
				err = NewIoError(ErrCanceled, context.Canceled)
			}
			if err != nil {
				t.result = Err[T](err)
			} else {
				t.result = Ok(value)
			}
		}()
	})

	return t
}

// tracingSource is implemented by [*LoopExecutor] (and, via embedding,
// every [Reactor] backend); it is unexported since it exists purely so
// [Spawn] can recover span-logging state through the [Executor]
// interface without widening the public contract every [Executor]
// implementation must satisfy.
type tracingSource interface {
	tracingInfo() (SLogger, bool)
}

// taskLoggerAndSpanID resolves the logger and, when ex has tracing
// enabled, a fresh span ID for a newly spawned task's taskSpawn/taskStop
// log pair. An executor with no tracing support (or tracing disabled)
// gets [DefaultSLogger] and an empty span, so the calls are always safe.
func taskLoggerAndSpanID(ex Executor) (SLogger, string) {
	ts, ok := ex.(tracingSource)
	if !ok {
		return DefaultSLogger(), ""
	}
	logger, enabled := ts.tracingInfo()
	if !enabled {
		return DefaultSLogger(), ""
	}
	return logger, NewSpanID()
}

// runTaskBody invokes fn, converting a panic into an error per spec.md
// §4.7's panic-to-error boundary at every task's outermost frame.
func runTaskBody[T any](ctx context.Context, fn func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rtcore: task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (t *Task[T]) finish() {
	t.once.Do(func() { close(t.done) })
}

// Wait blocks until the task completes or ctx is done, whichever comes
// first. If ctx is done first, the task's own stop is requested (so the
// goroutine backing it unwinds promptly) but Wait itself returns
// immediately with ctx's error; the task continues running in the
// background and its eventual result is discarded. Calling Wait a second
// time on the same Task panics.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	t.waitedMu.Lock()
	if t.waited {
		t.waitedMu.Unlock()
		panic("rtcore: Task.Wait called more than once")
	}
	t.waited = true
	t.waitedMu.Unlock()

	select {
	case <-t.done:
		return t.result.Unwrap()
	case <-ctx.Done():
		t.stop.RequestStop()
		var zero T
		return zero, NewIoError(ErrCanceled, ctx.Err())
	}
}

// Stop requests cancellation of the task without waiting for it to unwind.
func (t *Task[T]) Stop() {
	t.stop.RequestStop()
}

// Done returns a channel closed once the task has completed, for use in
// select statements (e.g. by [SelectAny]) alongside Wait.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// peek returns the finished Result; only valid after Done() is closed.
func (t *Task[T]) peek() Result[T] {
	return t.result
}

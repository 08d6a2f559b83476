// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.0/internal/x/dslx/fxcore.go
//

package rtcore

import "context"

// Func is a generic operation that accepts an input and returns a result.
//
// Func instances can be composed using [Compose2], [Compose3], etc. to create
// type-safe pipelines where the output of one operation flows to the input of the next.
//
// Resource cleanup contract: when a Func receives a closeable resource as input
// and returns an error, it is responsible for closing that resource before returning.
// This ensures that composed pipelines do not leak resources on partial failure.
// See [TLSHandshakeFunc] for an example of this pattern.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
//
// Use this to create ad-hoc [Func] instances from closures when you need
// custom behavior that doesn't fit the existing primitives.
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}

// Unit is a type not containing any value (analogous to an
// explicit `void` type in C and C++).
//
// Use this type to construct [Func] that take no argument
// or return no value to the caller.
type Unit struct{}

// SpawnFunc adapts fn into a [Func] that runs fn as a [Task] on the
// ambient [Executor] recovered from the call's context (see
// [ExecutorFromContext]), joining it before returning. With no Executor
// in context it falls back to calling fn directly on the caller's
// goroutine, the same fallback rule [Compose2] uses, so a pipeline built
// from ordinary synchronous [Func]s and one built against a running
// [Reactor] compose without the caller having to know which is which.
func SpawnFunc[A, B any](fn FuncAdapter[A, B]) Func[A, B] {
	return &spawnFunc[A, B]{fn}
}

type spawnFunc[A, B any] struct {
	fn FuncAdapter[A, B]
}

func (s *spawnFunc[A, B]) Call(ctx context.Context, input A) (B, error) {
	if _, ok := ExecutorFromContext(ctx); ok {
		task := Spawn(ctx, func(ctx context.Context) (B, error) {
			return s.fn(ctx, input)
		})
		return task.Wait(ctx)
	}
	return s.fn(ctx, input)
}

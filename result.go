// SPDX-License-Identifier: GPL-3.0-or-later

package rtcore

import "github.com/bassosimone/rtcore/ioerr"

// Result holds the outcome of an operation that may fail, mirroring the
// two-return-value convention already used throughout this package's
// [Func] pipeline (see func.go) but packaged as a single value so it can
// be stored in slices and channels, e.g. by [JoinAll].
//
// The zero Result is neither Ok nor Err; use [Ok] or [Err] to construct one.
type Result[T any] struct {
	value T
	err   error
	valid bool
}

// Ok builds a successful [Result].
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, valid: true}
}

// Err builds a failed [Result]. Panics if err is nil, since a Result must
// represent exactly one of success or failure (spec.md §3: "Sum type").
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("rtcore: Err called with a nil error")
	}
	return Result[T]{err: err}
}

// IsOk reports whether r holds a success value.
func (r Result[T]) IsOk() bool {
	return r.valid && r.err == nil
}

// Unwrap returns the value and error, i.e. converts back to the idiomatic
// Go two-value return convention used by [Func.Call] and reactor ops.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Must returns the value, panicking if r holds an error. Intended for
// tests and examples, not for production control flow.
func (r Result[T]) Must() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}

// Map transforms the success value, leaving an error untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(f(r.value))
}

// MapErr transforms the error, leaving a success value untouched.
func MapErr[T any](r Result[T], f func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Err[T](f(r.err))
}

// AndThen chains a fallible continuation: if r is an error it is returned
// unchanged, otherwise f is invoked with the success value.
func AndThen[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.value)
}

// OrElse recovers from an error by invoking f; a success value passes through.
func OrElse[T any](r Result[T], f func(error) Result[T]) Result[T] {
	if r.err == nil {
		return r
	}
	return f(r.err)
}

// IoError is the canonical error kind enum from spec.md §4.1, re-exported
// from [ioerr.Kind] so callers of this package never need to import the
// ioerr package directly for simple comparisons.
type IoError = ioerr.Kind

// Canonical IoError kinds, spec.md §4.1.
const (
	ErrCanceled               = ioerr.KindCanceled
	ErrWouldBlock             = ioerr.KindWouldBlock
	ErrConnectionAborted      = ioerr.KindConnectionAborted
	ErrConnectionReset        = ioerr.KindConnectionReset
	ErrHostUnreachable        = ioerr.KindHostUnreachable
	ErrTimedOut               = ioerr.KindTimedOut
	ErrInvalidArgument        = ioerr.KindInvalidArgument
	ErrOperationNotSupported  = ioerr.KindOperationNotSupported
	ErrUnexpectedEOF          = ioerr.KindUnexpectedEOF
	ErrWriteZero              = ioerr.KindWriteZero
	ErrNoBufferSpaceAvailable = ioerr.KindNoBufferSpaceAvailable
	ErrChannelBroken          = ioerr.KindChannelBroken
	ErrChannelEmpty           = ioerr.KindChannelEmpty
	ErrChannelFull            = ioerr.KindChannelFull
)

// NewIoError builds an error that compares equal (via errors.Is) to its
// canonical kind while preserving the original platform error for
// diagnostic rendering, per spec.md §7.
func NewIoError(kind IoError, raw error) error {
	return ioerr.New(kind, raw)
}

// ClassifyIoError returns the canonical [IoError] kind for err, or
// [ioerr.KindNone] if err is nil. This function itself satisfies this
// package's [ErrClassifier] interface via [IoErrClassifier].
func ClassifyIoError(err error) IoError {
	return ioerr.Classify(err)
}

// IoErrClassifier adapts [ClassifyIoError] to the [ErrClassifier] interface
// used throughout the teacher's structured-logging pipeline (connect.go,
// dnsexchange.go, httpconn.go, ...), so reactor-produced errors render with
// the same errClass field as the rest of this package's log events.
var IoErrClassifier = ErrClassifierFunc(func(err error) string {
	return ClassifyIoError(err).String()
})

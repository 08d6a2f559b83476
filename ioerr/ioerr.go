// SPDX-License-Identifier: GPL-3.0-or-later

package ioerr

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
)

// Kind is a canonical, portable I/O error kind.
//
// Reactor backends translate platform errno values (see unix.go and
// windows.go) to a Kind; callers compare against a Kind rather than a
// platform-specific errno so that code behaves identically on Linux and
// Windows, exactly as spec.md §4.1 requires.
type Kind int

const (
	KindNone Kind = iota
	KindCanceled
	KindWouldBlock
	KindConnectionAborted
	KindConnectionReset
	KindHostUnreachable
	KindTimedOut
	KindInvalidArgument
	KindOperationNotSupported
	KindUnexpectedEOF
	KindWriteZero
	KindNoBufferSpaceAvailable
	KindChannelBroken
	KindChannelEmpty
	KindChannelFull
)

// String renders the Kind for diagnostics and structured logging.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCanceled:
		return "canceled"
	case KindWouldBlock:
		return "would_block"
	case KindConnectionAborted:
		return "connection_aborted"
	case KindConnectionReset:
		return "connection_reset"
	case KindHostUnreachable:
		return "host_unreachable"
	case KindTimedOut:
		return "timed_out"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindOperationNotSupported:
		return "operation_not_supported"
	case KindUnexpectedEOF:
		return "unexpected_eof"
	case KindWriteZero:
		return "write_zero"
	case KindNoBufferSpaceAvailable:
		return "no_buffer_space_available"
	case KindChannelBroken:
		return "channel_broken"
	case KindChannelEmpty:
		return "channel_empty"
	case KindChannelFull:
		return "channel_full"
	default:
		return "unknown"
	}
}

// Error wraps a canonical [Kind] together with the original error for
// diagnostics. Two Errors (or an Error and a raw platform error) compare
// equal under [errors.Is] when their Kind matches, regardless of the
// underlying platform representation — this is the "translated to
// canonical kinds only when compared" contract from spec.md §7.
type Error struct {
	Kind Kind
	Raw  error
}

// New builds an [*Error] with the given kind, optionally wrapping raw.
func New(kind Kind, raw error) *Error {
	return &Error{Kind: kind, Raw: raw}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Raw != nil {
		return e.Kind.String() + ": " + e.Raw.Error()
	}
	return e.Kind.String()
}

// Unwrap exposes the raw platform error for [errors.As]/[errors.Unwrap] chains.
func (e *Error) Unwrap() error {
	return e.Raw
}

// Is implements kind-based equivalence for [errors.Is]: an [*Error] matches
// another [*Error] with the same Kind, and a bare Kind value used as a
// sentinel (e.g. `errors.Is(err, ioerr.KindTimedOut)`) will NOT compile
// since Kind does not implement error; use [Error.Kind] or [Classify] instead.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Classify inspects err and returns its canonical [Kind].
//
// This performs the "translated to canonical kinds only when compared"
// step from spec.md §7: context errors, net package sentinels, io sentinels,
// and platform errno values (via the build-tag-selected kindTable) are all
// recognized. Returns [KindNone] for a nil error and an unrecognized-but-present
// error falls through to [KindInvalidArgument] wrapping, never panics.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimedOut
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnexpectedEOF
	}
	if errors.Is(err, io.ErrShortWrite) {
		return KindWriteZero
	}
	if errors.Is(err, net.ErrClosed) {
		return KindConnectionAborted
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimedOut
	}
	var ioErr *Error
	if errors.As(err, &ioErr) {
		return ioErr.Kind
	}
	var errnoLike error
	if errors.As(err, &errnoLike) {
		if kind, ok := kindTable[errnoLike]; ok {
			return kind
		}
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if kind, ok := kindTable[pathErr.Err]; ok {
			return kind
		}
	}
	return KindInvalidArgument
}

// Wrap classifies err and, if non-nil and not already an [*Error], wraps it.
// A nil error returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return New(Classify(err), err)
}

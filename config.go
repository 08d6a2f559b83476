// SPDX-License-Identifier: GPL-3.0-or-later

package rtcore

import (
	"net"
	"time"
)

// Config holds common configuration for rtcore operations.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used by [*ConnectFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// Reactor is the [Reactor] async operations are scheduled on.
	//
	// Set by [NewConfig] to nil: callers that want [connect.go]'s dial
	// path to run asynchronously through a [Reactor] rather than through
	// [Dialer] must set this explicitly, since not every platform has a
	// reactor backend (see reactor_other.go).
	Reactor Reactor

	// EnableTracing turns on per-task span logging. Callers that own a
	// [*LoopExecutor] apply this by calling
	// executor.SetTracingEnabled(cfg.EnableTracing); [Spawn] then tags
	// each task's taskSpawn/taskStop log pair with a fresh [NewSpanID].
	//
	// Set by [NewConfig] to false.
	EnableTracing bool

	// BlockingPoolSize bounds the [BlockingPool] used to dispatch
	// syscalls that cannot be driven through Reactor (e.g. platforms
	// without a reactor backend, or blocking name resolution).
	//
	// Set by [NewConfig] to 8.
	BlockingPoolSize int
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:           &net.Dialer{},
		ErrClassifier:    DefaultErrClassifier,
		TimeNow:          time.Now,
		BlockingPoolSize: 8,
	}
}

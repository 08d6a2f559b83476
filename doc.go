// SPDX-License-Identifier: GPL-3.0-or-later

// Package rtcore provides composable primitives for network measurement
// pipelines, plus the asynchronous runtime, I/O reactor, and HPACK codec
// that let those primitives run without blocking a goroutine per
// in-flight operation.
//
// # Runtime
//
// [Task] is the unit of concurrent work: [Spawn] starts a function on an
// [Executor] and returns a [*Task] that can be awaited with Wait or
// canceled with Stop. [LoopExecutor] is the default single-threaded
// Executor, built around a work queue and a [container/heap]-ordered
// timer set; [WithExecutor] attaches one to a context so Spawn can find
// it. Structured concurrency is layered on top in
// structuredconcurrency.go: [JoinAll] waits for every task in a group,
// [SelectAny] races a group and stops the losers, [Timeout] bounds a
// single call, and [BlockingPool] offloads genuinely blocking calls
// (e.g. platforms with no reactor backend) onto a bounded goroutine pool
// without blocking the Executor's own loop.
//
// # Reactor
//
// [Reactor] extends [Executor] with asynchronous socket I/O: Read,
// Write, Accept, Connect, SendTo, and RecvFrom each return a [*Task]
// instead of blocking. [NewEpollReactor] backs this with epoll on Linux
// and [NewIocpReactor] backs it with I/O completion ports on Windows;
// [NewPortableReactor] is the fallback for every other platform, whose
// I/O methods report [ErrOperationNotSupported] since there is no
// portable nonblocking-I/O primitive to build on. [ReactorDialer] bolts
// a Reactor onto the [Dialer] abstraction below: it dials normally via
// an ordinary [net.Dialer] and then migrates the resulting connection's
// file descriptor onto the Reactor, so the connect stays synchronous but
// steady-state reads and writes do not.
//
// # HPACK
//
// Package [hpack] implements RFC 7541 header compression: a static
// table, a size-bounded dynamic table with FIFO eviction, the canonical
// Huffman code, and an [hpack.Encoder]/[hpack.Decoder] pair covering all
// five field representation types (indexed, literal with incremental
// indexing, literal without indexing, literal never indexed, and dynamic
// table size update). It has no dependency on [Task] or [Reactor]: it
// operates on already-buffered header blocks, leaving transport framing
// to its caller.
//
// # Core Abstraction
//
// The package is built around a single interface:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// Each Func represents an atomic network operation with exactly one success
// mode and one failure mode. This design enables type-safe composition via
// [Compose2], [Compose3], etc., where the compiler verifies that outputs
// match inputs across pipeline stages.
//
// # Available Primitives
//
// Connection establishment:
//   - [ConnectFunc]: dials TCP or UDP endpoints
//   - [TLSHandshakeFunc]: performs TLS handshake over an existing connection
//   - [ObserveConnFunc]: observes connections for logging I/O operations
//   - [CancelWatchFunc]: closes connection on context cancellation (for responsive ^C handling)
//
// HTTP:
//   - [HTTPConn]: wraps a connection with an HTTP transport, performs round trips
//     with structured logging and transparent body observation (created via [NewHTTPConnFunc])
//
// DNS resolution:
//   - [DNSOverUDPConn]: wraps a UDP connection for DNS-over-UDP (owns the connection)
//   - [DNSOverTCPConn]: wraps a TCP connection for DNS-over-TCP (owns the connection)
//   - [DNSOverTLSConn]: wraps a TLS connection for DNS-over-TLS (owns the connection)
//   - [DNSOverHTTPSConn]: wraps an HTTPConn for DNS-over-HTTPS (owns the connection)
//   - [DNSExchangeLogContext]: structured logging for DNS exchanges, used internally
//     by the above types and available for callers implementing custom exchange
//     loops (e.g., collecting duplicate DNS-over-UDP responses)
//
// Composition utilities:
//   - [Compose2] through [Compose8]: chain Funcs into pipelines
//   - [FuncAdapter]: wrap a function as a Func for ad-hoc custom behavior
//   - [Apply]: bind a fixed input to a Func
//   - [ConstFunc]: lift a pure value into a Func
//   - [NewEndpointFunc]: convenience wrapper for ConstFunc with endpoints
//
// # Connection Lifecycle
//
// This package uses two ownership patterns for connection management:
//
// Dial operations ([ConnectFunc], [TLSHandshakeFunc]) create connections and
// transfer ownership to the next stage on success. On error, they close the connection.
//
// Wrapper types ([HTTPConn], [DNSOverTLSConn], etc.) OWN their underlying connection.
// The caller must call Close() when done, which closes the underlying connection.
// These can be composed into pipelines via their corresponding Func types.
//
// See the testable examples for complete code demonstrating these patterns.
//
// # Observability
//
// All primitives support structured logging via [SLogger] (compatible with [log/slog]).
//
// By default, logging is disabled. Set the Logger field to a custom [*slog.Logger]
// to enable logging. Error classification is configurable via [ErrClassifier]; by
// default, [DefaultErrClassifier] classifies errors using the errclass package.
//
// Primitives emit two kinds of structured log events:
//
//   - Span events (*Start/*Done pairs): Record operation lifecycle including
//     timing and success/failure. Used for latency analysis and error tracking.
//
//   - Wire observations (e.g., dnsQuery/dnsResponse): Capture protocol-level
//     messages for dig-like UI output and protocol debugging.
//
// The [SLogger] interface accepts any slog-compatible handler, enabling flexible
// post-processing. Handlers can filter, transform, or route events as needed.
//
// All events share a common set of fields: localAddr, remoteAddr, protocol,
// and t (timestamp). Completion events (*Done) additionally include t0 (start
// time), err, and errClass. I/O-level events (read, write, deadline changes)
// are emitted at [slog.LevelDebug]; all other events use [slog.LevelInfo].
// The structured log format is compatible with the RBMK data format specification
// (see https://github.com/rbmk-project/rbmk) and may evolve in minor ways as
// these packages mature.
//
// Use [NewSpanID] to generate a unique, time-ordered identifier (UUIDv7) for each
// operation, then attach it to the logger with [*slog.Logger.With]. All log entries
// from that operation will share the same spanID, enabling correlation across
// pipeline stages and simplifying log analysis.
//
// # Timeout and Context Philosophy
//
// This package is context-transparent: operations never modify the context they receive.
// The caller controls timeouts externally via [context.WithTimeout], [context.WithDeadline],
// or [signal.NotifyContext]. When the context is done (timeout, cancel, or signal),
// operations fail and the pipeline is interrupted.
//
// Connection lifecycle requires [CancelWatchFunc] to bind the context lifecycle to
// the connection: when the context is done, the connection is closed immediately,
// causing any in-progress I/O to fail. This enables responsive ^C handling via
// [signal.NotifyContext] and ensures that blocking I/O respects the context deadline.
//
// IMPORTANT: Without [CancelWatchFunc] in your pipeline, I/O operations may block
// indefinitely even after the context is done. Always include [CancelWatchFunc]
// when composing connection pipelines to ensure proper timeout behavior.
//
// # Design Boundaries
//
// The Func-level primitives above intentionally stay single-input,
// single-output: composing them via [Compose2]..[Compose8] must never
// introduce more than one success mode and one failure mode. Parallel
// execution, racing, and cancellation propagation live one layer down,
// in the Task/Executor/Reactor runtime, precisely so the Func pipelines
// above can stay simple: a [Func] that needs to race two dials still
// presents a single Call method to its composer, even though its body
// uses [SelectAny] internally.
//
// The following remain out of scope for both layers and should be
// implemented by higher-level packages:
//
//   - Retry and backoff logic
//   - Multi-step orchestration across unrelated pipelines
//   - Convenience helpers that combine multiple primitives into a
//     higher-level policy (e.g. "happy eyeballs")
package rtcore

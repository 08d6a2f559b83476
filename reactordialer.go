//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/ooni/probe-cli/blob/v3.20.1/internal/netxlite/dialer.go
// (dialer composition shape), re-targeted at this package's own [Reactor].
//

package rtcore

import (
	"context"
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"
)

// ReactorDialer is a [Dialer] that hands off the connected socket's file
// descriptor to a [Reactor] so subsequent reads and writes are driven by
// the reactor's I/O multiplexer instead of by a per-connection goroutine
// pair, per SPEC_FULL.md §11's "Reactor-aware dial path".
//
// The initial connect still goes through the standard library's
// [net.Dialer] (name resolution and the TCP three-way handshake are not
// reimplemented here); only the steady-state read/write path is handed
// to the Reactor.
type ReactorDialer struct {
	Reactor Reactor
	Dialer  Dialer
}

// NewReactorDialer returns a [*ReactorDialer] using cfg.Dialer for the
// initial connect and cfg.Reactor for the resulting connection's I/O.
// Panics if cfg.Reactor is nil, since a [ReactorDialer] with no reactor
// has no way to honor its contract.
func NewReactorDialer(cfg *Config) *ReactorDialer {
	if cfg.Reactor == nil {
		panic("rtcore: NewReactorDialer requires a non-nil Config.Reactor")
	}
	return &ReactorDialer{Reactor: cfg.Reactor, Dialer: cfg.Dialer}
}

var _ Dialer = (*ReactorDialer)(nil)

// DialContext implements [Dialer]: dials address normally, then migrates
// the resulting connection's file descriptor onto d.Reactor.
func (d *ReactorDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	sc, ok := conn.(syscall.Conn)
	if !ok {
		conn.Close()
		return nil, NewIoError(ErrOperationNotSupported,
			fmt.Errorf("rtcore: connection of type %T has no syscall.Conn", conn))
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, NewIoError(ClassifyIoError(err), err)
	}

	var fd uintptr
	if err := raw.Control(func(f uintptr) { fd = f }); err != nil {
		conn.Close()
		return nil, NewIoError(ClassifyIoError(err), err)
	}

	dupFd, err := dupDescriptor(fd)
	if err != nil {
		conn.Close()
		return nil, NewIoError(ClassifyIoError(err), err)
	}

	descriptor, err := d.Reactor.AddDescriptor(dupFd, DescriptorSocket)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &reactorConn{
		reactor:    d.Reactor,
		descriptor: descriptor,
		localAddr:  conn.LocalAddr(),
		remoteAddr: conn.RemoteAddr(),
		underlying: conn,
	}, nil
}

// reactorConn adapts a [Reactor]-driven descriptor to [net.Conn], so
// code written against the standard library's connection interface can
// transparently run its I/O through this package's cooperative reactor.
type reactorConn struct {
	reactor    Reactor
	descriptor IoDescriptor
	localAddr  net.Addr
	remoteAddr net.Addr
	underlying net.Conn

	mu            sync.Mutex
	readDeadline  time.Time
	writeDeadline time.Time
}

var _ net.Conn = (*reactorConn)(nil)

func (c *reactorConn) deadlineCtx(base context.Context, d time.Time) (context.Context, context.CancelFunc) {
	if d.IsZero() {
		return base, func() {}
	}
	return context.WithDeadline(base, d)
}

func (c *reactorConn) Read(b []byte) (int, error) {
	c.mu.Lock()
	d := c.readDeadline
	c.mu.Unlock()

	ctx, cancel := c.deadlineCtx(context.Background(), d)
	defer cancel()
	return c.reactor.Read(ctx, c.descriptor, b).Wait(ctx)
}

func (c *reactorConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	d := c.writeDeadline
	c.mu.Unlock()

	ctx, cancel := c.deadlineCtx(context.Background(), d)
	defer cancel()
	return c.reactor.Write(ctx, c.descriptor, b).Wait(ctx)
}

func (c *reactorConn) Close() error {
	c.reactor.RemoveDescriptor(c.descriptor)
	return c.underlying.Close()
}

func (c *reactorConn) LocalAddr() net.Addr  { return c.localAddr }
func (c *reactorConn) RemoteAddr() net.Addr { return c.remoteAddr }

func (c *reactorConn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}

func (c *reactorConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	c.readDeadline = t
	c.mu.Unlock()
	return nil
}

func (c *reactorConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	c.writeDeadline = t
	c.mu.Unlock()
	return nil
}

//go:build !linux && !windows

//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package rtcore

import (
	"context"
	"fmt"
	"net"
)

// PortableReactor is the fallback [Reactor] for platforms without a
// dedicated epoll or IOCP backend (e.g. darwin, which would want a kqueue
// backend of its own — not implemented here since neither the spec nor
// this codebase's corpus targets it). Its I/O methods report
// [ErrOperationNotSupported]; callers on such platforms should drive
// blocking I/O through a [BlockingPool] instead of this reactor.
type PortableReactor struct {
	*LoopExecutor
}

var _ Reactor = (*PortableReactor)(nil)

// NewPortableReactor returns a reactor whose Executor half (work queue
// and timers) is fully functional but whose I/O methods are stubs.
func NewPortableReactor() *PortableReactor {
	return &PortableReactor{LoopExecutor: NewLoopExecutor()}
}

type portableDescriptor struct {
	fd   uintptr
	kind DescriptorKind
}

func (d *portableDescriptor) Kind() DescriptorKind { return d.kind }
func (d *portableDescriptor) Close() error         { return nil }

func (r *PortableReactor) AddDescriptor(fd uintptr, kind DescriptorKind) (IoDescriptor, error) {
	r.logger.Info("descriptorAdd", "fd", fd, "kind", kind.String())
	return &portableDescriptor{fd: fd, kind: kind}, nil
}

func (r *PortableReactor) RemoveDescriptor(d IoDescriptor) error {
	r.logger.Info("descriptorRemove")
	return d.Close()
}

func (r *PortableReactor) Read(ctx context.Context, d IoDescriptor, buf []byte) *Task[int] {
	return reactorOpError[int](NewIoError(ErrOperationNotSupported,
		fmt.Errorf("rtcore: no reactor backend for this platform")))
}

func (r *PortableReactor) Write(ctx context.Context, d IoDescriptor, buf []byte) *Task[int] {
	return reactorOpError[int](NewIoError(ErrOperationNotSupported,
		fmt.Errorf("rtcore: no reactor backend for this platform")))
}

func (r *PortableReactor) Accept(ctx context.Context, d IoDescriptor) *Task[uintptr] {
	return reactorOpError[uintptr](NewIoError(ErrOperationNotSupported,
		fmt.Errorf("rtcore: no reactor backend for this platform")))
}

func (r *PortableReactor) Connect(ctx context.Context, d IoDescriptor, addr net.Addr) *Task[struct{}] {
	return reactorOpError[struct{}](NewIoError(ErrOperationNotSupported,
		fmt.Errorf("rtcore: no reactor backend for this platform")))
}

func (r *PortableReactor) SendTo(ctx context.Context, d IoDescriptor, buf []byte, addr net.Addr) *Task[int] {
	return reactorOpError[int](NewIoError(ErrOperationNotSupported,
		fmt.Errorf("rtcore: no reactor backend for this platform")))
}

func (r *PortableReactor) RecvFrom(ctx context.Context, d IoDescriptor, buf []byte) *Task[RecvFromResult] {
	return reactorOpError[RecvFromResult](NewIoError(ErrOperationNotSupported,
		fmt.Errorf("rtcore: no reactor backend for this platform")))
}

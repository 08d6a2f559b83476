//go:build unix

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/unix.go
//

// Package ioerr translates platform-specific system errors into the
// canonical [IoError] kinds defined by the reactor and task runtime.
//
// This package mirrors the teacher's errclass/unix.go and errclass/windows.go
// split: one errno table per platform, selected at compile time via build
// tags, so that the reactor backends (epoll on Linux, IOCP on Windows) share
// a single translation surface with the rest of the module.
package ioerr

import "golang.org/x/sys/unix"

const (
	errEADDRNOTAVAIL   = unix.EADDRNOTAVAIL
	errEADDRINUSE      = unix.EADDRINUSE
	errECONNABORTED    = unix.ECONNABORTED
	errECONNREFUSED    = unix.ECONNREFUSED
	errECONNRESET      = unix.ECONNRESET
	errEHOSTUNREACH    = unix.EHOSTUNREACH
	errEINVAL          = unix.EINVAL
	errEINTR           = unix.EINTR
	errENETDOWN        = unix.ENETDOWN
	errENETUNREACH     = unix.ENETUNREACH
	errENOBUFS         = unix.ENOBUFS
	errENOTCONN        = unix.ENOTCONN
	errEPROTONOSUPPORT = unix.EPROTONOSUPPORT
	errETIMEDOUT       = unix.ETIMEDOUT
	errEAGAIN          = unix.EAGAIN
	errEWOULDBLOCK     = unix.EWOULDBLOCK
	errECANCELED       = unix.ECANCELED
	errENOSPC          = unix.ENOSPC
	errEPIPE           = unix.EPIPE
)

// kindTable maps platform errno values to portable [Kind] values.
//
// This is the unix counterpart of windows.go's kindTable; both are
// consulted by [Classify] through the build-tag-selected constants above.
var kindTable = map[error]Kind{
	errEADDRNOTAVAIL:   KindInvalidArgument,
	errEADDRINUSE:      KindInvalidArgument,
	errECONNABORTED:    KindConnectionAborted,
	errECONNREFUSED:    KindConnectionAborted,
	errECONNRESET:      KindConnectionReset,
	errEHOSTUNREACH:    KindHostUnreachable,
	errEINVAL:          KindInvalidArgument,
	errEINTR:           KindWouldBlock,
	errENETDOWN:        KindHostUnreachable,
	errENETUNREACH:     KindHostUnreachable,
	errENOBUFS:         KindNoBufferSpaceAvailable,
	errENOTCONN:        KindInvalidArgument,
	errEPROTONOSUPPORT: KindOperationNotSupported,
	errETIMEDOUT:       KindTimedOut,
	errEAGAIN:          KindWouldBlock,
	errECANCELED:       KindCanceled,
	errENOSPC:          KindNoBufferSpaceAvailable,
	errEPIPE:           KindWriteZero,
}

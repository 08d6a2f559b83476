//go:build windows

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/windows.go
//

package ioerr

import "golang.org/x/sys/windows"

const (
	errEADDRNOTAVAIL     = windows.WSAEADDRNOTAVAIL
	errEADDRINUSE        = windows.WSAEADDRINUSE
	errECONNABORTED      = windows.WSAECONNABORTED
	errECONNREFUSED      = windows.WSAECONNREFUSED
	errECONNRESET        = windows.WSAECONNRESET
	errEHOSTUNREACH      = windows.WSAEHOSTUNREACH
	errEINVAL            = windows.WSAEINVAL
	errEINTR             = windows.WSAEINTR
	errENETDOWN          = windows.WSAENETDOWN
	errENETUNREACH       = windows.WSAENETUNREACH
	errENOBUFS           = windows.WSAENOBUFS
	errENOTCONN          = windows.WSAENOTCONN
	errEPROTONOSUPPORT   = windows.WSAEPROTONOSUPPORT
	errETIMEDOUT         = windows.WSAETIMEDOUT
	errEWOULDBLOCK       = windows.WSAEWOULDBLOCK
	errEOPERATIONABORTED = windows.ERROR_OPERATION_ABORTED
)

// kindTable maps platform errno values to portable [Kind] values.
//
// This is the windows counterpart of unix.go's kindTable; ERROR_OPERATION_ABORTED
// is the completion code the IOCP backend observes after [windows.CancelIoEx],
// translated to [KindCanceled] exactly as spec.md §4.7 requires.
var kindTable = map[error]Kind{
	errEADDRNOTAVAIL:     KindInvalidArgument,
	errEADDRINUSE:        KindInvalidArgument,
	errECONNABORTED:      KindConnectionAborted,
	errECONNREFUSED:      KindConnectionAborted,
	errECONNRESET:        KindConnectionReset,
	errEHOSTUNREACH:      KindHostUnreachable,
	errEINVAL:            KindInvalidArgument,
	errEINTR:             KindWouldBlock,
	errENETDOWN:          KindHostUnreachable,
	errENETUNREACH:       KindHostUnreachable,
	errENOBUFS:           KindNoBufferSpaceAvailable,
	errENOTCONN:          KindInvalidArgument,
	errEPROTONOSUPPORT:   KindOperationNotSupported,
	errETIMEDOUT:         KindTimedOut,
	errEWOULDBLOCK:       KindWouldBlock,
	errEOPERATIONABORTED: KindCanceled,
}

//
// SPDX-License-Identifier: GPL-3.0-or-later
//

//go:build unix

package rtcore

import "golang.org/x/sys/unix"

// dupDescriptor duplicates fd so the caller can hand the duplicate to a
// [Reactor] while the original remains owned by its net.Conn, which will
// close its own copy independently.
func dupDescriptor(fd uintptr) (uintptr, error) {
	newFd, err := unix.Dup(int(fd))
	if err != nil {
		return 0, err
	}
	if err := unix.SetNonblock(newFd, true); err != nil {
		unix.Close(newFd)
		return 0, err
	}
	return uintptr(newFd), nil
}

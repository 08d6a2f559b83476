//
// SPDX-License-Identifier: GPL-3.0-or-later
//

//go:build windows

package rtcore

import "golang.org/x/sys/windows"

// dupDescriptor duplicates the handle so the caller can hand the
// duplicate to a [Reactor] while the original remains owned by its
// net.Conn, which will close its own copy independently.
func dupDescriptor(fd uintptr) (uintptr, error) {
	proc := windows.CurrentProcess()
	var dup windows.Handle
	err := windows.DuplicateHandle(proc, windows.Handle(fd), proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return 0, err
	}
	return uintptr(dup), nil
}

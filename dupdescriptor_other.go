//
// SPDX-License-Identifier: GPL-3.0-or-later
//

//go:build !unix && !windows

package rtcore

import "fmt"

func dupDescriptor(fd uintptr) (uintptr, error) {
	return 0, fmt.Errorf("rtcore: dupDescriptor not supported on this platform")
}

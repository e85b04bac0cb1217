//go:build !linux

package tcpinfo

import (
	"fmt"
	"runtime"
)

// GetTCPInfo is unimplemented outside Linux; the bridge's target platform
// is an embedded Linux board, so other GOOS values only matter for
// compiling this package's unit tests on a developer's workstation.
func GetTCPInfo(fd uintptr) (*Info, error) {
	return nil, fmt.Errorf("tcpinfo: unsupported on %s", runtime.GOOS)
}

func Supported() bool {
	return false
}

//go:build !windows

package process

import (
	"os"
	"syscall"
)

var terminateSignal os.Signal = syscall.SIGTERM

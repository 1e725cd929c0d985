//go:build windows

package process

import "os"

// Windows has no graceful signal for arbitrary processes.
var terminateSignal = os.Kill

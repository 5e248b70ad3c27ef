//go:build !windows

package app

import (
	"os"
	"syscall"
)

// shutdownSignals stop the watch loop.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

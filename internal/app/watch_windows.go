//go:build windows

package app

import "os"

// shutdownSignals stop the watch loop. Windows has no SIGTERM to catch.
var shutdownSignals = []os.Signal{os.Interrupt}

//go:build windows

package util

import "os"

// ShutdownSignals returns the signals to listen for graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal attempts graceful process termination. Windows has
// no SIGINT delivery for child processes, so the capture process is
// reaped by the exec.Cmd WaitDelay kill instead.
func GracefulSignal(p *os.Process) error {
	return nil
}

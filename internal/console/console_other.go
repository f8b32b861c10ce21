//go:build !windows

// Package console detects how the process was started. Outside Windows there
// is always a console and os.Interrupt is delivered normally.
package console

// IsRunningFromConsole always reports true.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler is a no-op; signal.Notify covers Ctrl+C.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	return func() {}
}

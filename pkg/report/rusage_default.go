//go:build !linux && !darwin
// +build !linux,!darwin

package report

// CaptureUsage reads the process's resource usage. On platforms without
// getrusage(2) it returns zeroes.
func CaptureUsage() Usage {
	return Usage{}
}

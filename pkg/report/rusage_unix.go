//go:build linux || darwin
// +build linux darwin

package report

import "golang.org/x/sys/unix"

// CaptureUsage reads the process's resource usage via getrusage(2).
func CaptureUsage() Usage {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Usage{}
	}

	return Usage{
		UserTimeMS:   int64(ru.Utime.Sec)*1000 + int64(ru.Utime.Usec)/1000,
		SystemTimeMS: int64(ru.Stime.Sec)*1000 + int64(ru.Stime.Usec)/1000,
		MaxRSSKB:     maxRSSKB(int64(ru.Maxrss)),
	}
}

// Package pipeio connects two ReadWriteClosers and shovels data between
// them until one side goes away. It backs interactive console sessions.
package pipeio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"

	"github.com/muesli/cancelreader"
)

// Pipe copies data between rwc1 and rwc2 in both directions. It blocks until
// one copy fails or ctx is cancelled, then closes both ends and returns.
// Errors other than ordinary teardown noise are passed to logfunc.
func Pipe(ctx context.Context, rwc1 io.ReadWriteCloser, rwc2 io.ReadWriteCloser, logfunc func(error)) {
	var wg sync.WaitGroup
	var o sync.Once

	closeConns := func() {
		rwc1.Close()
		rwc2.Close()

		wg.Done()
	}
	wg.Add(1)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			o.Do(closeConns)
		case <-done:
		}
	}()

	go func() {
		if _, err := io.Copy(rwc1, rwc2); err != nil && !teardownError(err) {
			logfunc(fmt.Errorf("io.Copy(rwc1, rwc2): %s", err))
		}

		o.Do(closeConns)
	}()

	go func() {
		if _, err := io.Copy(rwc2, rwc1); err != nil && !teardownError(err) {
			logfunc(fmt.Errorf("io.Copy(rwc2, rwc1): %s", err))
		}

		o.Do(closeConns)
	}()

	wg.Wait()
}

// teardownError reports whether err is an expected consequence of one side
// closing the pipe rather than a real failure.
func teardownError(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, cancelreader.ErrCanceled) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// Package mocks provides mock implementations for testing.
package mocks

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// MockStdio stands in for the process's terminal in tests. The stdin
// side is a pipe the test writes commands into, the stdout side is a
// pipe whose contents are collected into a buffer the test can inspect
// and wait on.
type MockStdio struct {
	stdinReader  *io.PipeReader
	stdinWriter  *io.PipeWriter
	stdoutReader *io.PipeReader
	stdoutWriter *io.PipeWriter

	mu       sync.Mutex
	output   bytes.Buffer
	outputCh chan struct{} // closed and replaced on every stdout write
}

// NewMockStdio creates a mock terminal and starts draining its stdout
// pipe into the inspection buffer.
func NewMockStdio() *MockStdio {
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	m := &MockStdio{
		stdinReader:  stdinR,
		stdinWriter:  stdinW,
		stdoutReader: stdoutR,
		stdoutWriter: stdoutW,
		outputCh:     make(chan struct{}),
	}

	go m.collect()

	return m
}

func (m *MockStdio) collect() {
	buf := make([]byte, 4096)
	for {
		n, err := m.stdoutReader.Read(buf)
		if n > 0 {
			m.mu.Lock()
			m.output.Write(buf[:n])
			close(m.outputCh)
			m.outputCh = make(chan struct{})
			m.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// WriteToStdin types data into the mock stdin, as if the user entered it.
func (m *MockStdio) WriteToStdin(data []byte) (int, error) {
	return m.stdinWriter.Write(data)
}

// ReadFromStdout returns everything written to stdout so far.
func (m *MockStdio) ReadFromStdout() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output.String()
}

// GetStdin returns the reader to inject as the process's stdin.
func (m *MockStdio) GetStdin() io.Reader {
	return m.stdinReader
}

// GetStdout returns the writer to inject as the process's stdout.
func (m *MockStdio) GetStdout() io.Writer {
	return m.stdoutWriter
}

// WaitForOutput blocks until expected appears somewhere in the stdout
// collected so far, or the timeout in milliseconds elapses.
func (m *MockStdio) WaitForOutput(expected string, timeoutMs int) error {
	deadline := time.After(time.Duration(timeoutMs) * time.Millisecond)

	for {
		m.mu.Lock()
		if strings.Contains(m.output.String(), expected) {
			m.mu.Unlock()
			return nil
		}
		changed := m.outputCh
		m.mu.Unlock()

		select {
		case <-changed:
		case <-deadline:
			return fmt.Errorf("timeout waiting for output %q, got: %q", expected, m.ReadFromStdout())
		}
	}
}

// Close closes both pipes. Pending reads on stdin fail afterwards.
func (m *MockStdio) Close() error {
	m.stdinWriter.Close()
	m.stdoutWriter.Close()
	return nil
}

// Package helpers provides common utilities for integration and
// end-to-end tests.
package helpers

import (
	"io"

	"libcprobe/mocks"
	mocktcp "libcprobe/mocks/tcp"
	"libcprobe/pkg/config"
)

// SetupMockDependencies creates a complete set of mock dependencies
// for testing with both mocked network and stdio.
func SetupMockDependencies() (*mocktcp.MockTCPNetwork, *mocks.MockStdio, *config.Dependencies) {
	mockNet := mocktcp.NewMockTCPNetwork()
	mockStdio := mocks.NewMockStdio()

	deps := &config.Dependencies{
		TCPDialer:   mockNet.DialTCP,
		TCPListener: mockNet.ListenTCP,
		Stdin:       func() io.Reader { return mockStdio.GetStdin() },
		Stdout:      func() io.Writer { return mockStdio.GetStdout() },
	}

	return mockNet, mockStdio, deps
}

// SetupMockNetwork creates mock dependencies carrying only the
// in-memory TCP network, for tests that do not touch stdio.
func SetupMockNetwork() (*mocktcp.MockTCPNetwork, *config.Dependencies) {
	mockNet := mocktcp.NewMockTCPNetwork()

	deps := &config.Dependencies{
		TCPDialer:   mockNet.DialTCP,
		TCPListener: mockNet.ListenTCP,
	}

	return mockNet, deps
}

package remote_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"libcprobe/pkg/config"
	"libcprobe/pkg/entrypoint"
	"libcprobe/test/helpers"
)

const canonicalStrings = "str2 is less than str1" +
	"The substring is: Point\n" +
	"String after |.| is - |.tutorialspoint.com|\n"

// syncBuffer is a goroutine-safe output sink for the controller's stdout.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestRemoteRun_AgentListens runs the common deployment: the agent
// listens on the probed host, the controller dials in, requests a run
// and renders the stream.
func TestRemoteRun_AgentListens(t *testing.T) {
	t.Parallel()

	mockNet, _ := helpers.SetupMockNetwork()

	const addr = "127.0.0.1:11001"

	agentCtx, agentCancel := context.WithCancel(context.Background())
	defer agentCancel()

	agentCfg := &config.Shared{
		Protocol: config.ProtoTCP,
		Host:     "127.0.0.1",
		Port:     11001,
		Timeout:  2 * time.Second,
		ID:       "agent-it",
		Version:  "test",
		Deps: &config.Dependencies{
			TCPListener: mockNet.ListenTCP,
		},
	}

	agentErr := make(chan error, 1)
	go func() {
		agentErr <- entrypoint.AgentListen(agentCtx, agentCfg, &config.Agent{})
	}()

	if _, err := mockNet.WaitForListener(addr, 2000); err != nil {
		t.Fatalf("agent never listened: %v", err)
	}

	out := &syncBuffer{}
	ctlCfg := &config.Shared{
		Protocol: config.ProtoTCP,
		Host:     "127.0.0.1",
		Port:     11001,
		Timeout:  2 * time.Second,
		ID:       "ctl-it",
		Version:  "test",
		Deps: &config.Dependencies{
			TCPDialer: mockNet.DialTCP,
			Stdout:    func() io.Writer { return out },
		},
	}
	cCfg := &config.Ctl{Suites: []string{"strings"}}

	if err := entrypoint.CtlConnect(context.Background(), ctlCfg, cCfg); err != nil {
		t.Fatalf("CtlConnect() failed: %v", err)
	}

	if out.String() != canonicalStrings {
		t.Errorf("output = %q; want %q", out.String(), canonicalStrings)
	}

	agentCancel()
	select {
	case err := <-agentErr:
		if err != nil {
			t.Errorf("AgentListen() after cancel = %v; want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AgentListen() did not return after cancellation")
	}
}

// TestRemoteRun_CtlListens runs the reverse deployment for egress-only
// hosts: the controller listens, the agent dials out.
func TestRemoteRun_CtlListens(t *testing.T) {
	t.Parallel()

	mockNet, _ := helpers.SetupMockNetwork()

	const addr = "127.0.0.1:11002"

	out := &syncBuffer{}
	ctlCtx, ctlCancel := context.WithCancel(context.Background())
	defer ctlCancel()

	ctlCfg := &config.Shared{
		Protocol: config.ProtoTCP,
		Host:     "127.0.0.1",
		Port:     11002,
		Timeout:  2 * time.Second,
		ID:       "ctl-it",
		Version:  "test",
		Deps: &config.Dependencies{
			TCPListener: mockNet.ListenTCP,
			Stdout:      func() io.Writer { return out },
		},
	}
	cCfg := &config.Ctl{Checks: []string{"exp"}}

	ctlErr := make(chan error, 1)
	go func() {
		ctlErr <- entrypoint.CtlListen(ctlCtx, ctlCfg, cCfg)
	}()

	if _, err := mockNet.WaitForListener(addr, 2000); err != nil {
		t.Fatalf("ctl never listened: %v", err)
	}

	agentCfg := &config.Shared{
		Protocol: config.ProtoTCP,
		Host:     "127.0.0.1",
		Port:     11002,
		Timeout:  2 * time.Second,
		ID:       "agent-it",
		Version:  "test",
		Deps: &config.Dependencies{
			TCPDialer: mockNet.DialTCP,
		},
	}

	agentErr := make(chan error, 1)
	go func() {
		agentErr <- entrypoint.AgentConnect(context.Background(), agentCfg, &config.Agent{})
	}()

	want := "exp testing below:" +
		"The exponential value of 1.000000 is 2.718282\n" +
		"The exponential value of 2.000000 is 7.389056\n"

	deadline := time.After(2 * time.Second)
	for out.String() != want {
		select {
		case <-deadline:
			t.Fatalf("output = %q; want %q", out.String(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}

	ctlCancel()
	select {
	case err := <-ctlErr:
		if err != nil {
			t.Errorf("CtlListen() after cancel = %v; want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("CtlListen() did not return after cancellation")
	}

	select {
	case <-agentErr:
	case <-time.After(2 * time.Second):
		t.Fatal("AgentConnect() did not return after the controller left")
	}
}

package ctl

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"libcprobe/pkg/config"
	"libcprobe/pkg/handler/agent"
	"libcprobe/pkg/manifest"
)

// startAgent runs an agent handler on one end of a pipe and reports its
// final error on the returned channel.
func startAgent(ctx context.Context, t *testing.T, conn net.Conn) <-chan error {
	t.Helper()

	cfg := &config.Shared{
		Timeout: 2 * time.Second,
		ID:      "agent-under-test",
		Version: "test",
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- agent.Handle(ctx, cfg, &config.Agent{}, conn)
	}()
	return errCh
}

func ctlShared(out io.Writer) *config.Shared {
	return &config.Shared{
		Timeout: 2 * time.Second,
		ID:      "ctl-under-test",
		Version: "test",
		Deps: &config.Dependencies{
			Stdout: func() io.Writer { return out },
		},
	}
}

func TestRunSession_StringsSuite(t *testing.T) {
	t.Parallel()

	ctlConn, agentConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentErr := startAgent(ctx, t, agentConn)

	var out bytes.Buffer
	cCfg := &config.Ctl{Suites: []string{"strings"}}

	if err := Handle(ctx, ctlShared(&out), cCfg, ctlConn); err != nil {
		t.Fatalf("ctl.Handle() failed: %v", err)
	}

	want := "str2 is less than str1" +
		"The substring is: Point\n" +
		"String after |.| is - |.tutorialspoint.com|\n"
	if out.String() != want {
		t.Errorf("output = %q; want %q", out.String(), want)
	}

	select {
	case err := <-agentErr:
		if err != nil {
			t.Errorf("agent.Handle() = %v; want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("agent did not shut down after the session closed")
	}
}

func TestRunSession_FullRunWritesReport(t *testing.T) {
	t.Parallel()

	ctlConn, agentConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentErr := startAgent(ctx, t, agentConn)

	reportPath := filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	cCfg := &config.Ctl{Report: reportPath}

	if err := Handle(ctx, ctlShared(&out), cCfg, ctlConn); err != nil {
		t.Fatalf("ctl.Handle() failed: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	for _, want := range []string{`"passed": 7`, `"failed": 0`, `"suite": "math"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("report missing %s:\n%s", want, data)
		}
	}

	<-agentErr
}

func TestRunSession_StrictMismatchFails(t *testing.T) {
	t.Parallel()

	ctlConn, agentConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentErr := startAgent(ctx, t, agentConn)

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "override.yaml")
	override := strings.Join([]string{
		"checks:",
		"  - suite: strings",
		"    check: strcmp",
		`    expect: "something else entirely"`,
	}, "\n")
	if err := os.WriteFile(manifestPath, []byte(override), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}

	var out bytes.Buffer
	cCfg := &config.Ctl{
		Checks:   []string{"strcmp"},
		Manifest: m,
		Strict:   true,
	}

	if err := Handle(ctx, ctlShared(&out), cCfg, ctlConn); err == nil {
		t.Fatal("ctl.Handle() succeeded; want strict-mode error")
	}

	<-agentErr
}

func TestRunSession_SkippedCheckSuppressed(t *testing.T) {
	t.Parallel()

	ctlConn, agentConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentErr := startAgent(ctx, t, agentConn)

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "skip.yaml")
	override := strings.Join([]string{
		"checks:",
		"  - suite: strings",
		"    check: strcmp",
		"    skip: true",
	}, "\n")
	if err := os.WriteFile(manifestPath, []byte(override), 0644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}

	var out bytes.Buffer
	cCfg := &config.Ctl{
		Suites:   []string{"strings"},
		Manifest: m,
		Strict:   true,
	}

	if err := Handle(ctx, ctlShared(&out), cCfg, ctlConn); err != nil {
		t.Fatalf("ctl.Handle() failed: %v", err)
	}

	if strings.Contains(out.String(), "str2 is less than str1") {
		t.Errorf("skipped check's output was printed:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "The substring is: Point\n") {
		t.Errorf("remaining checks' output missing:\n%s", out.String())
	}

	<-agentErr
}

func TestRunSession_UnknownSuiteRejected(t *testing.T) {
	t.Parallel()

	ctlConn, agentConn := net.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agentErr := startAgent(ctx, t, agentConn)

	var out bytes.Buffer
	// Validation would catch this at the CLI; here the request reaches
	// the agent, which must reject it without wedging the session.
	cCfg := &config.Ctl{Suites: []string{"trigonometry"}}

	if err := Handle(ctx, ctlShared(&out), cCfg, ctlConn); err == nil {
		t.Fatal("ctl.Handle() succeeded; want rejection error")
	}

	<-agentErr
}

func TestNew_NoAgentTimesOut(t *testing.T) {
	t.Parallel()

	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	cfg := &config.Shared{Timeout: 50 * time.Millisecond}

	_, err := New(context.Background(), cfg, &config.Ctl{}, local)
	if err == nil {
		t.Fatal("New() succeeded without an agent; want error")
	}
}

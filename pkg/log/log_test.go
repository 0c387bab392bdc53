package log

import (
	"bytes"
	"os"
	"testing"
)

func captureStderr(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() err = %s", err)
	}
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestErrorMsg(t *testing.T) {
	out := captureStderr(t, func() {
		ErrorMsg("opening %s\n", "manifest.yaml")
	})

	if out == "" {
		t.Fatal("ErrorMsg() produced no output")
	}
	if !bytes.Contains([]byte(out), []byte("opening manifest.yaml")) {
		t.Errorf("ErrorMsg() output %q misses message", out)
	}
	if !bytes.Contains([]byte(out), []byte("[!] Error: ")) {
		t.Errorf("ErrorMsg() output %q misses prefix", out)
	}
}

func TestInfoMsg(t *testing.T) {
	out := captureStderr(t, func() {
		InfoMsg("7 checks passed\n")
	})

	if !bytes.Contains([]byte(out), []byte("[+] 7 checks passed")) {
		t.Errorf("InfoMsg() output %q misses message", out)
	}
}

func TestVerboseMsg(t *testing.T) {
	SetVerbose(false)
	out := captureStderr(t, func() {
		VerboseMsg("hidden\n")
	})
	if out != "" {
		t.Errorf("VerboseMsg() printed %q with verbose disabled", out)
	}

	SetVerbose(true)
	defer SetVerbose(false)

	out = captureStderr(t, func() {
		VerboseMsg("shown\n")
	})
	if !bytes.Contains([]byte(out), []byte("[*] shown")) {
		t.Errorf("VerboseMsg() output %q misses message", out)
	}
}

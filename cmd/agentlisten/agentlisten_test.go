package agentlisten

import (
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"libcprobe/cmd/shared"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}
	if cmd.Name != "listen" {
		t.Errorf("command name = %q; want %q", cmd.Name, "listen")
	}
	if cmd.Action == nil {
		t.Fatal("command action should not be nil")
	}

	names := make(map[string]bool)
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, want := range []string{shared.SSLFlag, shared.KeyFlag, shared.TimeoutFlag, shared.OnceFlag} {
		if !names[want] {
			t.Errorf("listen command missing flag %q", want)
		}
	}
}

func TestListen_ArgumentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no transport",
			args: []string{"libcprobe", "listen"},
			want: "exactly one argument",
		},
		{
			name: "bad transport",
			args: []string{"libcprobe", "listen", "xyz://*:1"},
			want: "parsing transport",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := &cli.Command{Commands: []*cli.Command{GetCommand()}}
			err := root.Run(context.Background(), tc.args)
			if err == nil {
				t.Fatal("Run() succeeded; want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q; want it to contain %q", err, tc.want)
			}
		})
	}
}

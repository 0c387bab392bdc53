package agent

import "testing"

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}

	if cmd.Name != "agent" {
		t.Errorf("command name = %q; want %q", cmd.Name, "agent")
	}

	if len(cmd.Commands) != 2 {
		t.Fatalf("subcommand count = %d; want 2", len(cmd.Commands))
	}

	names := map[string]bool{}
	for _, sub := range cmd.Commands {
		names[sub.Name] = true
	}
	if !names["connect"] || !names["listen"] {
		t.Errorf("subcommands = %v; want connect and listen", names)
	}
}

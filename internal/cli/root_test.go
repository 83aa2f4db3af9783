package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	// rootCmd is shared and parsed flag values persist across Execute calls;
	// reset --help so later tests' Execute is not short-circuited into help.
	t.Cleanup(func() { _ = rootCmd.Flags().Set("help", "false") })

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if output == "" {
		t.Fatal("expected help output, got empty string")
	}
	if !strings.Contains(output, "gitshelf") {
		t.Error("expected help to contain 'gitshelf'")
	}
	for _, title := range []string{"Snapshot Stack:", "Repository:", "CLI & Tooling:"} {
		if !strings.Contains(output, title) {
			t.Errorf("expected help to contain group title %q", title)
		}
	}
	for _, name := range []string{"save", "merge", "status"} {
		if !strings.Contains(output, name) {
			t.Errorf("expected help to list %q", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	// Cobra uses --version flag, not a version subcommand
	rootCmd.SetArgs([]string{"--version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(buf.String(), "1.2.3") {
		t.Errorf("expected version output to contain 1.2.3, got %q", buf.String())
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"normal version", "1.2.3"},
		{"empty version", ""}, // Should not change if empty
		{"dev version", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rootCmd.Version
			SetVersion(tt.version)
			if tt.version != "" && rootCmd.Version != tt.version {
				t.Errorf("SetVersion(%q) = %q, want %q", tt.version, rootCmd.Version, tt.version)
			}
			if tt.version == "" && rootCmd.Version != before {
				t.Errorf("SetVersion(\"\") changed version to %q", rootCmd.Version)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	subcommands := []string{
		"save", "list", "show", "apply", "pop", "drop", "merge",
		"status", "log", "branches", "version", "completion",
	}

	for _, cmd := range subcommands {
		t.Run(cmd, func(t *testing.T) {
			subCmd, _, err := rootCmd.Find([]string{cmd})
			if err != nil {
				t.Errorf("Find(%q) error = %v", cmd, err)
			}
			if subCmd == nil || subCmd == rootCmd {
				t.Errorf("Find(%q) did not resolve a subcommand", cmd)
			}
		})
	}
}

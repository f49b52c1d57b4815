package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"version"}, args...))

	if err := root.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	}()
	Version, GitCommit, BuildDate = "1.0.0", "abc123", "2026-01-27T12:00:00Z"

	output := runVersion(t)

	for _, expected := range []string{
		"Mission Conference Server",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-01-27T12:00:00Z",
		"Go version:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

// An unreadable env file fails every other command before it runs.
func TestVersionCommandSkipsEnvFile(t *testing.T) {
	unreadable := t.TempDir()
	if err := loadEnvFile(unreadable); err == nil {
		t.Fatal("expected loading a directory as an env file to fail")
	}

	output := runVersion(t, "--env-file", unreadable)
	if !strings.Contains(output, "Version:") {
		t.Errorf("expected version output, got:\n%s", output)
	}
}

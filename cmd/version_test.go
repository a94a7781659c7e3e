package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/streamdl/streamdl/internal/version"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs([]string{"version"})

	err := RootCmd.Execute()
	if err != nil {
		t.Errorf("version command failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "streamdl v"+version.Version()) {
		t.Errorf("expected version output to contain 'streamdl v%s', got: %s", version.Version(), output)
	}
}

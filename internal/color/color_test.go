package color

import (
	"testing"

	"github.com/streamdl/streamdl/internal/diag"
)

func TestNoColorDisables(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "1")

	c := New(true)
	if c.Enabled() {
		t.Fatal("Expected NO_COLOR to disable colors")
	}
	if got := c.Severity(diag.Error, "error"); got != "error" {
		t.Errorf("Expected plain text, got %q", got)
	}
}

func TestDumbTerminalDisables(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")

	if New(true).Enabled() {
		t.Error("Expected TERM=dumb to disable colors")
	}
}

func TestSeverityColors(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm")

	c := New(true)
	tests := []struct {
		sev  diag.Severity
		want string
	}{
		{diag.Info, Blue + "x" + Reset},
		{diag.Warning, Yellow + "x" + Reset},
		{diag.Error, Red + "x" + Reset},
		{diag.Fatal, Bold + Magenta + "x" + Reset},
	}
	for _, tt := range tests {
		if got := c.Severity(tt.sev, "x"); got != tt.want {
			t.Errorf("Severity(%s): expected %q, got %q", tt.sev, tt.want, got)
		}
	}

	if got := New(false).Bold("x"); got != "x" {
		t.Errorf("Expected disabled color to leave text alone, got %q", got)
	}
}

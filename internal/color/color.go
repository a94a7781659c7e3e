package color

import (
	"os"

	"github.com/streamdl/streamdl/internal/diag"
)

// ANSI color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Bold    = "\033[1m"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// Enabled reports whether output is colored.
func (c *Color) Enabled() bool {
	return c.enabled
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	if term == "dumb" || term == "" {
		return false
	}

	return true
}

func (c *Color) wrap(code, text string) string {
	if !c.enabled {
		return text
	}
	return code + text + Reset
}

// Bold makes text bold
func (c *Color) Bold(text string) string {
	return c.wrap(Bold, text)
}

// Cyan colors text cyan (for file locations)
func (c *Color) Cyan(text string) string {
	return c.wrap(Cyan, text)
}

// Green colors text green (for a clean result)
func (c *Color) Green(text string) string {
	return c.wrap(Green, text)
}

// Severity colors text by diagnostic severity: fatal and error red, warning
// yellow, info blue.
func (c *Color) Severity(sev diag.Severity, text string) string {
	switch sev {
	case diag.Fatal:
		return c.wrap(Bold+Magenta, text)
	case diag.Error:
		return c.wrap(Red, text)
	case diag.Warning:
		return c.wrap(Yellow, text)
	default:
		return c.wrap(Blue, text)
	}
}

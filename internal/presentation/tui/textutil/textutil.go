// Package textutil provides small formatting helpers for TUI text.
package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SingleLine collapses whitespace, newlines included, into single spaces.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts text to width display cells, ending in "...". ANSI sequences
// are not counted.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(text, width, "...")
}

// Excerpt is a one-line preview of free text such as publication content.
func Excerpt(text string, width int) string {
	return Truncate(SingleLine(text), width)
}

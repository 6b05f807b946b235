// Package modal provides modal dialog components.
package modal

import (
	"github.com/charmbracelet/lipgloss"
)

// Kind represents the type of modal.
type Kind int

const (
	// None indicates no modal.
	None Kind = iota
	// Form shows the publication editor.
	Form
	// Auth shows the login or signup form.
	Auth
	// Confirm asks before deleting or restoring.
	Confirm
	// Quit asks before leaving the application.
	Quit
	// Help shows the full key map.
	Help
)

// Props defines the properties for the modal component.
type Props struct {
	Visible bool
	Kind    Kind
	Title   string
	Body    string
	Width   int
	Height  int
	Accent  lipgloss.Color
	Danger  lipgloss.Color
}

// Render renders the modal component.
func Render(p Props) string {
	if !p.Visible {
		return ""
	}

	borderColor := p.Accent
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2)

	switch p.Kind {
	case Form:
		style = style.Width(clamp(p.Width-8, 40, 80))
	case Auth:
		style = style.Width(clamp(p.Width-8, 30, 50))
	case Confirm, Quit:
		borderColor = p.Danger
		style = style.Width(clamp(p.Width-8, 20, 50))
	}
	style = style.BorderForeground(borderColor)

	body := p.Body
	if p.Title != "" {
		title := lipgloss.NewStyle().Bold(true).Foreground(borderColor).Render(p.Title)
		body = title + "\n\n" + body
	}

	return lipgloss.Place(p.Width, p.Height, lipgloss.Center, lipgloss.Center, style.Render(body))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

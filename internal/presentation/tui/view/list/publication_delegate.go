// Package listview provides list item delegates for the view layer.
package listview

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PublicationItem interface for items that can be rendered by PublicationDelegate.
type PublicationItem interface {
	list.Item
	Title() string
	IsSelected() bool
	ShowCheckbox() bool
	IsPublished() bool
}

// PublicationDelegate renders one publication per row.
type PublicationDelegate struct {
	Styles list.DefaultItemStyles
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

// NewPublicationDelegate creates a new PublicationDelegate.
func NewPublicationDelegate(accent, muted lipgloss.Color) *PublicationDelegate {
	return &PublicationDelegate{Styles: rowStyles(accent), Accent: accent, Muted: muted}
}

// Height returns the height of the item.
func (d *PublicationDelegate) Height() int {
	return 1
}

// Spacing returns the spacing between items.
func (d *PublicationDelegate) Spacing() int {
	return 0
}

// Update handles messages for the delegate.
func (d *PublicationDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders the item.
func (d *PublicationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(PublicationItem)
	if !ok {
		return
	}

	current := index == m.Index()
	style := d.Styles.NormalTitle
	if current {
		style = d.Styles.SelectedTitle
	}

	text := fitRow(m, style, rowText(i))
	if !i.IsPublished() && !current {
		text = lipgloss.NewStyle().Foreground(d.Muted).Render(text)
	}
	_, _ = io.WriteString(w, style.Render(text))
}

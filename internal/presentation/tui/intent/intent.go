// Package intent parses user input into UI intents.
package intent

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

// Type represents a user intent.
type Type int

const (
	None Type = iota
	Quit
	ToggleHelp
	Open
	Back
	SwitchView
	Search
	StatusFilter
	Trash
	Select
	New
	Edit
	Delete
	ToggleStatus
	Retry
	Logout
)

// Intent represents a parsed user intent.
type Intent struct {
	Type Type
}

// FromKeyMsg maps a key message to an intent.
func FromKeyMsg(msg tea.KeyMsg, keys state.KeyMap) Intent {
	switch {
	case key.Matches(msg, keys.Quit):
		return Intent{Type: Quit}
	case key.Matches(msg, keys.Help):
		return Intent{Type: ToggleHelp}
	case key.Matches(msg, keys.Open):
		return Intent{Type: Open}
	case key.Matches(msg, keys.Back):
		return Intent{Type: Back}
	case key.Matches(msg, keys.SwitchView):
		return Intent{Type: SwitchView}
	case key.Matches(msg, keys.Search):
		return Intent{Type: Search}
	case key.Matches(msg, keys.StatusFilter):
		return Intent{Type: StatusFilter}
	case key.Matches(msg, keys.Trash):
		return Intent{Type: Trash}
	case key.Matches(msg, keys.Select):
		return Intent{Type: Select}
	case key.Matches(msg, keys.New):
		return Intent{Type: New}
	case key.Matches(msg, keys.Edit):
		return Intent{Type: Edit}
	case key.Matches(msg, keys.Delete):
		return Intent{Type: Delete}
	case key.Matches(msg, keys.ToggleStatus):
		return Intent{Type: ToggleStatus}
	case key.Matches(msg, keys.Retry):
		return Intent{Type: Retry}
	case key.Matches(msg, keys.Logout):
		return Intent{Type: Logout}
	default:
		return Intent{Type: None}
	}
}

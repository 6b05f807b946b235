// Package state holds UI state types for the TUI.
package state

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/tesso57/pubdesk/internal/application/settings"
)

// Session represents the current view state.
type Session int

const (
	PublicView Session = iota
	DashboardView
	DetailView
	LoginView
	FormView
	ConfirmView
	QuitView
)

// String returns the view name shown in the sidebar.
func (s Session) String() string {
	switch s {
	case PublicView:
		return "Public"
	case DashboardView:
		return "Dashboard"
	case DetailView:
		return "Detail"
	case LoginView:
		return "Login"
	case FormView:
		return "Editor"
	case ConfirmView:
		return "Confirm"
	case QuitView:
		return "Quit"
	default:
		return "Unknown"
	}
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	UpPage       key.Binding
	DownPage     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Open         key.Binding
	Back         key.Binding
	Quit         key.Binding
	SwitchView   key.Binding
	Search       key.Binding
	StatusFilter key.Binding
	Trash        key.Binding
	Select       key.Binding
	New          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	ToggleStatus key.Binding
	Retry        key.Binding
	Logout       key.Binding
	Help         key.Binding
}

// ShortHelp returns a subset of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit, k.SwitchView, k.Search, k.Open, k.Back}
}

// FullHelp returns all keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.UpPage, k.DownPage, k.Top, k.Bottom},
		{k.Open, k.Back, k.SwitchView, k.Search, k.Retry},
		{k.StatusFilter, k.Trash, k.Select, k.New, k.Edit},
		{k.Delete, k.ToggleStatus, k.Logout, k.Quit, k.Help},
	}
}

// NewKeyMap creates a new KeyMap from the configuration.
func NewKeyMap(cfg settings.KeyMapConfig) KeyMap {
	return KeyMap{
		Up:           binding(cfg.Up, "up"),
		Down:         binding(cfg.Down, "down"),
		UpPage:       binding(cfg.UpPage, "pgup"),
		DownPage:     binding(cfg.DownPage, "pgdn"),
		Top:          binding(cfg.Top, "top"),
		Bottom:       binding(cfg.Bottom, "bottom"),
		Open:         binding(cfg.Open, "open"),
		Back:         binding(cfg.Back, "back"),
		Quit:         binding(cfg.Quit, "quit"),
		SwitchView:   binding(cfg.SwitchView, "public/dashboard"),
		Search:       binding(cfg.Search, "search"),
		StatusFilter: binding(cfg.StatusFilter, "status filter"),
		Trash:        binding(cfg.Trash, "trash"),
		Select:       binding(cfg.Select, "select"),
		New:          binding(cfg.New, "new"),
		Edit:         binding(cfg.Edit, "edit"),
		Delete:       binding(cfg.Delete, "delete/restore"),
		ToggleStatus: binding(cfg.ToggleStatus, "publish/unpublish"),
		Retry:        binding(cfg.Retry, "retry"),
		Logout:       binding(cfg.Logout, "log out"),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

func binding(keys, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(splitKeys(keys)...),
		key.WithHelp(keys, desc),
	)
}

func splitKeys(keys string) []string {
	parts := strings.Split(keys, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		keyName := strings.TrimSpace(part)
		if keyName == "" {
			continue
		}
		switch keyName {
		case "space":
			out = append(out, " ")
			continue
		case "pgdn":
			out = append(out, "pgdown")
		case "pgdown":
			out = append(out, "pgdn")
		}
		out = append(out, keyName)
	}
	return out
}

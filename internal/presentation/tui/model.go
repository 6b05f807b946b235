package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/tesso57/pubdesk/internal/application/settings"
	"github.com/tesso57/pubdesk/internal/application/usecase"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/logging"
	"github.com/tesso57/pubdesk/internal/presentation/tui/paging"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
	"github.com/tesso57/pubdesk/internal/presentation/tui/update"
	"github.com/tesso57/pubdesk/internal/presentation/tui/view"
	listview "github.com/tesso57/pubdesk/internal/presentation/tui/view/list"
)

// Services are the application services driven by the TUI.
type Services struct {
	Publications usecase.PublicationService
	Auth         usecase.AuthService
	Watch        *usecase.SessionWatch
	// Describe turns an error into a message for the user.
	Describe func(err error, fallback string) string
}

// Model represents the main application state.
type Model struct {
	settings settings.Settings
	deps     update.Deps
	state    *state.ModelState
	log      zerolog.Logger
}

// NewModel creates a new application model.
func NewModel(cfg settings.Settings, svc Services) *Model {
	m := &Model{
		settings: cfg,
		deps: update.Deps{
			Publications:  svc.Publications,
			Auth:          svc.Auth,
			Watch:         svc.Watch,
			Debounce:      cfg.Search.Debounce(),
			MarkdownStyle: cfg.Theme.Markdown,
			Describe:      svc.Describe,
		},
		log: logging.NewLogger("tui"),
	}
	m.state = newModelState(cfg, m.deps)
	if svc.Auth.Sessions != nil {
		session, err := svc.Auth.Current()
		if err != nil {
			m.log.Warn().Err(err).Msg("failed to load stored session")
		}
		m.state.User = session
	}
	return m
}

// Init opens the first view and starts watching for session expiry.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, update.Start(m.state, m.deps))
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.state
	var cmds []tea.Cmd

	for _, v := range []*state.ListView{s.Public, s.Dashboard} {
		if cmd, ok := v.Pages.Update(msg); ok {
			cmds = append(cmds, cmd)
			break
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := update.HandleKeyMsg(s, msg, m.deps)
		if !handled {
			cmd = update.ForwardKey(s, msg)
		}
		cmds = append(cmds, cmd)
	case tea.WindowSizeMsg:
		update.HandleWindowSize(s, msg, m.deps)
	case spinner.TickMsg:
		cmds = append(cmds, update.HandleSpinnerTick(s, msg))
	case update.SearchTickMsg:
		cmds = append(cmds, update.HandleSearchTick(s, msg))
	case update.DetailLoadedMsg:
		update.HandleDetailLoaded(s, msg, m.deps)
	case update.SavedMsg:
		cmds = append(cmds, update.HandleSaved(s, msg, m.deps))
	case update.StatusChangedMsg:
		cmds = append(cmds, update.HandleStatusChanged(s, msg, m.deps))
	case update.RemovedMsg:
		cmds = append(cmds, update.HandleRemoved(s, msg, m.deps))
	case update.AuthDoneMsg:
		cmds = append(cmds, update.HandleAuthDone(s, msg, m.deps))
	case update.SessionExpiredMsg:
		m.log.Info().Msg("session expired, showing login")
		cmds = append(cmds, update.HandleSessionExpired(s, m.deps))
	case update.ClearStatusMsg:
		update.HandleClearStatus(s, msg)
	}

	cmds = append(cmds, update.SyncLists(s))
	update.UpdateListSizes(s)
	cmds = append(cmds, update.StartSpinner(s))
	return m, tea.Batch(cmds...)
}

// View renders the application view.
func (m *Model) View() string {
	return view.Render(m.buildProps())
}

func newModelState(cfg settings.Settings, deps update.Deps) *state.ModelState {
	theme := state.Theme{
		Accent: lipgloss.Color(cfg.Theme.Accent),
		Muted:  lipgloss.Color(cfg.Theme.Muted),
		Error:  lipgloss.Color(cfg.Theme.Error),
	}
	keys := state.NewKeyMap(cfg.KeyMap)

	st := &state.ModelState{
		Session:   state.PublicView,
		Selection: publication.NewSelection(),
		Form:      state.NewFormState(nil, state.DashboardView),
		Auth:      state.NewAuthForm(false, ""),
		Viewport:  newViewport(),
		Help:      help.New(),
		Spinner:   newSpinner(theme),
		Keys:      keys,
		Theme:     theme,
	}

	st.Public = newListView(cfg, theme, keys, func(v *state.ListView) paging.FetchFunc[publication.Publication] {
		return func(ctx context.Context, page, size int) ([]publication.Publication, error) {
			return deps.Publications.PublicPage(ctx, v.Filter().Search, page, size)
		}
	}, deps)
	st.Dashboard = newListView(cfg, theme, keys, func(v *state.ListView) paging.FetchFunc[publication.Publication] {
		return func(ctx context.Context, page, size int) ([]publication.Publication, error) {
			return deps.Publications.Page(ctx, v.Filter(), page, size)
		}
	}, deps)
	return st
}

func newListView(
	cfg settings.Settings,
	theme state.Theme,
	keys state.KeyMap,
	fetch func(*state.ListView) paging.FetchFunc[publication.Publication],
	deps update.Deps,
) *state.ListView {
	v := state.NewListView(nil, newList(theme, keys), newSearchInput())
	v.Pages = paging.New(paging.Options[publication.Publication]{
		Fetch:           fetch(v),
		PageSize:        cfg.List.PageSize,
		Margin:          cfg.List.Margin,
		PreserveOnReset: cfg.List.PreserveOnReset,
		Describe: func(err error) string {
			if deps.Describe != nil {
				return deps.Describe(err, "Failed to load publications")
			}
			return err.Error()
		},
	})
	return v
}

func newList(theme state.Theme, keys state.KeyMap) list.Model {
	l := list.New([]list.Item{}, listview.NewPublicationDelegate(theme.Accent, theme.Muted), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.KeyMap.CursorUp = keys.Up
	l.KeyMap.CursorDown = keys.Down
	l.KeyMap.PrevPage = keys.UpPage
	l.KeyMap.NextPage = keys.DownPage
	l.KeyMap.GoToStart = keys.Top
	l.KeyMap.GoToEnd = keys.Bottom
	return l
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "title or content"
	ti.CharLimit = 100
	return ti
}

func newSpinner(theme state.Theme) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Accent)
	return s
}

func newViewport() viewport.Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		PaddingRight(1)
	return vp
}

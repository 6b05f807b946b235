// Command pubdesk manages publications from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/tesso57/pubdesk/internal/application/settings"
	"github.com/tesso57/pubdesk/internal/application/usecase"
	"github.com/tesso57/pubdesk/internal/domain/auth"
	"github.com/tesso57/pubdesk/internal/infrastructure/api"
	"github.com/tesso57/pubdesk/internal/infrastructure/config"
	"github.com/tesso57/pubdesk/internal/infrastructure/devserver"
	"github.com/tesso57/pubdesk/internal/infrastructure/feedimport"
	"github.com/tesso57/pubdesk/internal/infrastructure/session"
	"github.com/tesso57/pubdesk/internal/logging"
	"github.com/tesso57/pubdesk/internal/presentation/tui"
)

type cli struct {
	Config   string `help:"Config file path" type:"path"`
	APIURL   string `name:"api-url" help:"API base URL" env:"PUBDESK_API_URL"`
	LogLevel string `name:"log-level" help:"Log level (debug/info/warn/error)" env:"PUBDESK_LOG_LEVEL"`

	TUI    tuiCmd    `cmd:"" default:"1" help:"Open the terminal UI"`
	Login  loginCmd  `cmd:"" help:"Log in (or sign up) and store the session"`
	Logout logoutCmd `cmd:"" help:"Forget the stored session"`
	Import importCmd `cmd:"" help:"Import a feed as draft publications"`
	Serve  serveCmd  `cmd:"" help:"Run the local development API server"`
}

// app holds the wired services shared by every command.
type app struct {
	cfg      settings.Settings
	sessions *session.Store
	watch    *usecase.SessionWatch
	client   *api.Client
	pubs     usecase.PublicationService
	auth     usecase.AuthService
	log      zerolog.Logger
}

func main() {
	_ = godotenv.Load()

	var c cli
	ctx := kong.Parse(&c,
		kong.Name("pubdesk"),
		kong.Description("Browse, write and publish publications."),
		kong.UsageOnError(),
	)

	store, err := config.Load(c.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := store.Settings
	if c.APIURL != "" {
		cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}

	closeLog, err := setupLogging(cfg, ctx.Command())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	ctx.FatalIfErrorf(ctx.Run(a))
}

// setupLogging sends logs to a file while the TUI owns the terminal, to stderr otherwise.
func setupLogging(cfg settings.Settings, command string) (func(), error) {
	if command != "" && command != "tui" {
		logging.Setup(logging.Config{Level: cfg.Log.Level, Pretty: true})
		return func() {}, nil
	}
	f, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, err
	}
	logging.Setup(logging.Config{Level: cfg.Log.Level, Output: f})
	return func() { _ = f.Close() }, nil
}

func newApp(cfg settings.Settings) (*app, error) {
	sessions := session.NewStore(cfg.SessionFile)
	watch := usecase.NewSessionWatch(sessions)
	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTokenSource(sessions),
		api.WithUnauthorizedHook(func() { watch.Expire() }),
		api.WithTimeout(cfg.API.Timeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	return &app{
		cfg:      cfg,
		sessions: sessions,
		watch:    watch,
		client:   client,
		pubs:     usecase.NewPublicationService(client),
		auth:     usecase.NewAuthService(client, sessions, watch),
		log:      logging.NewLogger("cli"),
	}, nil
}

type tuiCmd struct{}

func (tuiCmd) Run(a *app) error {
	model := tui.NewModel(a.cfg, tui.Services{
		Publications: a.pubs,
		Auth:         a.auth,
		Watch:        a.watch,
		Describe:     api.Message,
	})
	a.log.Info().Str("api", a.client.BaseURL()).Msg("starting tui")
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

type loginCmd struct {
	Email    string `required:"" help:"Account email"`
	Password string `required:"" help:"Account password" env:"PUBDESK_PASSWORD"`
	Signup   bool   `help:"Create the account first"`
	Name     string `help:"Display name for --signup"`
}

func (c loginCmd) Run(a *app) error {
	creds := auth.Credentials{Name: c.Name, Email: c.Email, Password: c.Password}
	ctx := context.Background()

	var err error
	if c.Signup {
		_, err = a.auth.Signup(ctx, creds)
	} else {
		_, err = a.auth.Login(ctx, creds)
	}
	if err != nil {
		return errors.New(api.Message(err, "login failed"))
	}
	fmt.Printf("Logged in as %s\n", strings.TrimSpace(c.Email))
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Run(a *app) error {
	if err := a.auth.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

type importCmd struct {
	URL         string `arg:"" help:"RSS or Atom feed URL"`
	Concurrency int    `help:"Parallel create requests" default:"4"`
}

func (c importCmd) Run(a *app) error {
	current, err := a.auth.Current()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !current.Valid() {
		return errors.New("not logged in: run `pubdesk login` first")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := feedimport.NewImporter(a.pubs, c.Concurrency).Import(ctx, c.URL)
	if err != nil {
		return errors.New(api.Message(err, "import failed"))
	}
	printReport(os.Stdout, report)
	return nil
}

func printReport(w io.Writer, report feedimport.Report) {
	fmt.Fprintf(w, "%s: %d draft(s) created, %d skipped\n", report.Feed, len(report.Created), len(report.Skipped))
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "  skipped %q: %s\n", s.Title, s.Reason)
	}
}

type serveCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (c serveCmd) Run(a *app) error {
	store, err := devserver.OpenStore(a.cfg.Server.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := devserver.Options{}
	if a.cfg.Server.RequestLog {
		opts.LogWriter = os.Stderr
	}

	addr := a.cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return devserver.New(store, opts).Run(ctx, addr)
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/kanwork/kanwork/internal/api"
	"github.com/kanwork/kanwork/internal/cache"
	"github.com/kanwork/kanwork/internal/config"
	"github.com/kanwork/kanwork/internal/mutate"
	"github.com/kanwork/kanwork/internal/session"
	"github.com/kanwork/kanwork/internal/store"
	"github.com/kanwork/kanwork/internal/ui"
	"github.com/kanwork/kanwork/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		configPath  string
		showVersion bool
	)
	pflag.StringVar(&configPath, "config", "", "path to the config file")
	pflag.BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("kanwork %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	path, err := config.Resolve(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating config: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, logFile, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	dbPath, err := store.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating settings database: %v\n", err)
		os.Exit(1)
	}
	settings, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening settings database: %v\n", err)
		os.Exit(1)
	}
	defer settings.Close()

	sess, err := session.New(settings, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring session: %v\n", err)
		os.Exit(1)
	}
	if sess.Token() == "" && cfg.Token != "" {
		sess.SetToken(cfg.Token)
	}
	if sess.Token() == "" {
		fmt.Fprintf(os.Stderr, "No API token. Set token in %s\n", path)
		os.Exit(1)
	}

	// the program is created after the collaborators that send to it,
	// so both hooks go through this indirection
	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	client, err := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   sess.Token,
		OnUnauthorized: func() {
			send(ui.SessionExpiredMsg{})
		},
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating API client: %v\n", err)
		os.Exit(1)
	}

	entities := cache.New(func(prefix cache.Prefix) {
		send(ui.CacheInvalidatedMsg{Prefix: prefix})
	}, logger)

	app := ui.NewApp(views.Deps{
		API:     client,
		Cache:   entities,
		Session: sess,
		Mutator: mutate.New(client, entities, logger),
		Logger:  logger,
	})

	program = tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}

	if app.Expired() {
		fmt.Fprintf(os.Stderr, "Session expired. Update token in %s and restart.\n", path)
		os.Exit(1)
	}
}

// newLogger opens a structured log file under the XDG state dir. The
// terminal belongs to the TUI, so nothing logs to stderr.
func newLogger(level string) (*slog.Logger, *os.File, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "kanwork")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, "kanwork.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), f, nil
}

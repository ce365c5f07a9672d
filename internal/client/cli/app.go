package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/client/client"
	"github.com/dmitrijs2005/secrimpo/internal/client/config"
	"github.com/dmitrijs2005/secrimpo/internal/client/connectivity"
	"github.com/dmitrijs2005/secrimpo/internal/client/identity"
	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/client/report"
	"github.com/dmitrijs2005/secrimpo/internal/client/repositories/records"
	"github.com/dmitrijs2005/secrimpo/internal/client/services"
	"github.com/dmitrijs2005/secrimpo/internal/client/state"
	"github.com/dmitrijs2005/secrimpo/internal/filex"
	"github.com/dmitrijs2005/secrimpo/internal/logging"
	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

type syncRunner interface {
	Sync(ctx context.Context) (*models.SyncResult, error)
	Status(ctx context.Context) (*syncapi.Status, error)
	History(ctx context.Context, limit int) ([]syncapi.HistoryEntry, error)
	LastSync(ctx context.Context) (time.Time, bool)
	Phase() services.Phase
}

type onlineMonitor interface {
	IsOnline() bool
	CheckNow(ctx context.Context) bool
}

type userStore interface {
	User(ctx context.Context) string
	SetUser(ctx context.Context, user string) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	records records.Store
	users   userStore
	syncer  syncRunner
	monitor onlineMonitor
	reader  *bufio.Reader
	out     io.Writer

	startMonitor func(ctx context.Context) (stop func())
	closers      []io.Closer
}

// NewApp opens the local database and wires the sync subsystem.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	for _, path := range []string{c.DatabasePath, c.LogFile} {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("error preparing data directory: %w", err)
		}
	}

	logger, logCloser := logging.NewFileLogger(logging.FileOptions{Path: c.LogFile, Level: slog.LevelDebug})

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(c.ServerURL, nil)
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}

	repos := client.NewRepositories(db)
	st := state.NewStore(repos.Metadata, logger)
	monitor := connectivity.NewMonitor(api, c.OnlineCheckInterval, c.ProbeTimeout, logger.With("component", "connectivity"))
	reporter := report.NewReporter()

	svc, err := services.NewSyncService(services.Deps{
		Collector: repos.Records,
		Client:    api,
		Monitor:   monitor,
		Identity:  identity.New(repos.Metadata, logger),
		State:     st,
		Publisher: reporter,
		Logger:    logger.With("component", "sync"),
		Timeout:   c.SyncTimeout,
	})
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}

	reporter.Subscribe(func(r models.SyncResult) {
		logger.Info(context.Background(), "sync result", "summary", r.Summary)
	})

	a := &App{
		config:  c,
		logger:  logger,
		records: repos.Records,
		users:   st,
		syncer:  svc,
		monitor: monitor,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []io.Closer{api, dbCloser{db}, logCloser},
	}
	a.startMonitor = func(ctx context.Context) func() {
		monitor.Start(ctx)
		cancel := monitor.Subscribe(func(online bool) {
			if online {
				a.println("Server is reachable")
			} else {
				a.println("Server is unreachable, working offline")
			}
		})
		return func() {
			cancel()
			monitor.Stop()
		}
	}
	return a, nil
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

// Run starts connectivity monitoring and the REPL. It returns when the user
// exits, stdin closes or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if a.startMonitor != nil {
		stop := a.startMonitor(ctx)
		defer stop()
	}

	a.println("Welcome to SECRIMPO (type 'help' for commands)")
	if a.users.User(ctx) == "" {
		a.println("No sync user set yet, use: user <name>")
	}

	interactive := stdinIsTerminal()
	runREPL(ctx, a, func() string {
		if !interactive {
			return ""
		}
		return a.prompt(ctx)
	}, a.reader)
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) prompt(ctx context.Context) string {
	mode := "offline"
	if a.monitor.IsOnline() {
		mode = "online"
	}
	user := a.users.User(ctx)
	if user == "" {
		return fmt.Sprintf("secrimpo (%s)>", mode)
	}
	return fmt.Sprintf("secrimpo (%s %s)>", user, mode)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

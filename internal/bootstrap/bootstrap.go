package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	journalinadapter "segdesk/internal/modules/journal/adapter/in"
	journaloutadapter "segdesk/internal/modules/journal/adapter/out"
	journalservice "segdesk/internal/modules/journal/service"
	journalusecase "segdesk/internal/modules/journal/usecase"
	workflowinadapter "segdesk/internal/modules/workflow/adapter/in"
	workflowoutadapter "segdesk/internal/modules/workflow/adapter/out"
	workflowout "segdesk/internal/modules/workflow/port/out"
	workflowservice "segdesk/internal/modules/workflow/service"
	workflowusecase "segdesk/internal/modules/workflow/usecase"
	"segdesk/internal/platform/clock"
	"segdesk/internal/platform/config"
	"segdesk/internal/platform/id"
	"segdesk/internal/platform/identity"
	"segdesk/internal/platform/lock"
	"segdesk/internal/platform/logging"
	uiapp "segdesk/internal/ui/app"
)

type Options struct {
	// LogOutput is "stderr", "stdout" or a file path. The TUI logs to a
	// file so records do not tear the alt screen.
	LogOutput string
	// RequireUser fails construction when no reviewer can be resolved.
	RequireUser bool
}

type App struct {
	Config      config.Config
	Logger      *slog.Logger
	UserID      string
	WorkflowCLI workflowinadapter.CLIHandler
	WorkflowTUI workflowinadapter.TUIHandler
	JournalCLI  journalinadapter.CLIHandler

	closers []io.Closer
}

func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: opts.LogOutput})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	app := &App{Config: cfg, Logger: logger, closers: []io.Closer{logCloser}}

	provider, err := identity.Resolve(cfg.UserID, cfg.Token)
	switch {
	case err == nil:
		app.UserID = provider.UserID()
	case opts.RequireUser:
		_ = app.Close()
		return nil, fmt.Errorf("resolve reviewer: %w", err)
	default:
		logger.Debug("no reviewer resolved", logging.Error(err))
	}

	clk := clock.SystemClock{}
	ids := id.UUID{}

	kv, err := app.anchorStore(clk)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	journalUC := journalusecase.NewInteractor(journalservice.NewJournalService(
		clk,
		ids,
		journaloutadapter.NewMarkdownBatchStore(cfg.JournalPath()),
	))

	backend := workflowoutadapter.NewHTTPBackend(workflowoutadapter.HTTPBackendOptions{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.RequestTimeout(),
		Client:  &http.Client{},
		IDs:     ids,
		Logger:  logger,
	})
	anchor := workflowservice.NewAnchor(kv, logger)
	engine := workflowservice.NewEngine(backend, anchor, workflowoutadapter.NewJournalAdapter(journalUC), workflowservice.EngineOptions{
		UserID:     app.UserID,
		WindowSize: cfg.WindowSize,
		Emotions:   cfg.Emotions,
		Clock:      clk,
		Logger:     logger,
	})
	workflowUC := workflowusecase.NewInteractor(engine, anchor)

	app.WorkflowCLI = workflowinadapter.NewCLIHandler(workflowUC)
	app.WorkflowTUI = workflowinadapter.NewTUIHandler(workflowUC)
	app.JournalCLI = journalinadapter.NewCLIHandler(journalUC)

	logger.Debug("app ready",
		slog.String(logging.FieldUserID, app.UserID),
		slog.String("anchor_store", cfg.AnchorStore),
		slog.String("state_dir", cfg.StateDir),
	)
	return app, nil
}

func (a *App) anchorStore(clk clock.Clock) (workflowout.KVStore, error) {
	switch a.Config.AnchorStore {
	case config.AnchorStoreFile:
		return workflowoutadapter.NewFileKVStore(a.Config.AnchorFilePath()), nil
	case config.AnchorStoreMemory:
		return workflowoutadapter.NewMemoryKVStore(), nil
	default:
		store, err := workflowoutadapter.NewSQLiteKVStore(a.Config.DBPath(), clk)
		if err != nil {
			return nil, fmt.Errorf("open anchor store: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	}
}

// Close releases stores and the log file in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RunTUI holds the state-dir lock for the lifetime of the program so a
// second editor cannot fight over the anchor.
func RunTUI(app *App) error {
	instance, err := lock.Acquire(app.Config.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := instance.Release(); err != nil {
			app.Logger.Warn("release lock", logging.Error(err))
		}
	}()

	app.Logger.Info("tui started", slog.String(logging.FieldUserID, app.UserID))
	model := uiapp.NewModel(app.WorkflowTUI, app.JournalCLI, app.UserID, app.Config.Emotions)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

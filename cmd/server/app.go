package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kanbanlab/taskboard/internal/config"
	"github.com/kanbanlab/taskboard/internal/events"
	"github.com/kanbanlab/taskboard/internal/platform/logger"
	"github.com/kanbanlab/taskboard/internal/platform/mail"
	"github.com/kanbanlab/taskboard/internal/platform/postgres"
	"github.com/kanbanlab/taskboard/internal/service"
	"github.com/kanbanlab/taskboard/internal/service/auth"
	"github.com/kanbanlab/taskboard/internal/store"
)

// application holds the assembled dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	hub    *events.Hub

	mailer *mail.AsyncMailer

	jwtService   auth.JWTService
	userService  service.UserService
	boardService service.BoardService
	taskService  service.TaskService
	noteService  service.NoteService
}

// newApplication loads configuration and wires every component, from the
// database connection up to the services the handlers call.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.SetDefault(appLogger)

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"mail_enabled", cfg.Mail.Enabled())

	db, err := openDatabase(cfg.Database.URL, appLogger)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app := &application{
		config:     cfg,
		logger:     appLogger,
		db:         db,
		hub:        events.NewHub(appLogger),
		jwtService: jwtService,
	}
	if err := app.setupServices(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

// setupServices builds the stores and services on top of the database
// connection.
func (app *application) setupServices() error {
	userStore := postgres.NewPostgresUserStore(app.db)
	boardStore := postgres.NewPostgresBoardStore(app.db, app.logger)
	columnStore := postgres.NewPostgresColumnStore(app.db)
	taskStore := postgres.NewPostgresTaskStore(app.db, app.logger)
	shareStore := postgres.NewPostgresShareStore(app.db)
	noteStore := postgres.NewPostgresNoteStore(app.db, app.logger)

	runner := store.NewSQLRunner(app.db)
	perms := service.NewPermissionEvaluator(shareStore)
	ordering := service.NewOrderingEngine()

	var relay mail.Mailer = mail.NoopMailer{}
	if app.config.Mail.Enabled() {
		relay = mail.NewSMTPMailer(
			app.config.Mail.Host,
			app.config.Mail.Port,
			app.config.Mail.From,
			app.config.Mail.Username,
			app.config.Mail.Password,
			app.logger,
		)
	}
	app.mailer = mail.NewAsyncMailer(relay, 2, app.logger)

	hasher := auth.NewBcryptHasher(app.config.Auth.BcryptCost)

	userService, err := service.NewUserService(userStore, hasher, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}

	boardService, err := service.NewBoardService(
		boardStore, columnStore, taskStore, shareStore, noteStore, userStore,
		runner, perms, ordering, app.hub, app.mailer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create board service: %w", err)
	}

	taskService, err := service.NewTaskService(
		taskStore, boardStore, columnStore, noteStore, userStore,
		runner, perms, ordering, app.hub, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	noteService, err := service.NewNoteService(
		noteStore, taskStore, boardStore, runner, perms, app.hub, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create note service: %w", err)
	}

	app.userService = userService
	app.boardService = boardService
	app.taskService = taskService
	app.noteService = noteService
	return nil
}

// run starts the HTTP server and blocks until shutdown completes.
func (app *application) run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.mailer != nil {
		app.mailer.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}

// openDatabase connects to Postgres and verifies the connection.
func openDatabase(url string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

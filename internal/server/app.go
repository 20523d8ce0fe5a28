// Package server wires the inventory backend together: configuration,
// database, repositories, services, and the HTTP API, with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/mailer"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/httpapi"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
	"github.com/fnpsdn/netinv/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ml, err := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser,
		cfg.SMTPPassword, cfg.SMTPFrom)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	otpService := services.NewOtpService(db, rm, ml, logger, cfg)
	authService := services.NewAuthService(db, rm, otpService, logger, cfg)
	accountService := services.NewAccountService(db, rm, otpService, logger, cfg)
	deviceService, err := services.NewDeviceService(db, rm, logger, cfg)
	if err != nil {
		return nil, err
	}
	tagService := services.NewTagService(db, rm)
	backupService := services.NewBackupService(db, rm, cfg)
	auditService := services.NewAuditService(db, rm)

	srv := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, []byte(cfg.SecretKey),
		authService, accountService, deviceService, tagService, backupService, auditService)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/services"
)

// Service interfaces consumed by the handlers. The concrete services in
// internal/server/services satisfy them; tests substitute fakes.

type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*services.LoginResult, error)
	SubmitSecondFactor(ctx context.Context, challengeID, code string) (*services.LoginResult, error)
	RequestOtp(ctx context.Context, challengeID string) error
}

type AccountService interface {
	Register(ctx context.Context, email, name, surname string, password []byte) (*models.Account, error)
	VerifyEmail(ctx context.Context, email, code string) error
	ResendVerification(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, accountID string, oldPassword, newPassword []byte) error
	EnableTotp(ctx context.Context, accountID string) (*services.TotpEnrollment, error)
	ConfirmTotp(ctx context.Context, accountID, code string) error
	DisableTotp(ctx context.Context, accountID string) error
	SetSecondFactor(ctx context.Context, accountID, method string) error
}

type DeviceService interface {
	Create(ctx context.Context, device *models.Device) (*models.Device, error)
	Get(ctx context.Context, id string) (*models.Device, error)
	List(ctx context.Context) ([]*models.Device, error)
	ListByTag(ctx context.Context, tagID string) ([]*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, id string) error
	SetCredential(ctx context.Context, deviceID, username string, secret []byte) error
	GetCredential(ctx context.Context, deviceID string) (string, []byte, error)
	DeleteCredential(ctx context.Context, deviceID string) error
}

type TagService interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	ListByDevice(ctx context.Context, deviceID string) ([]*models.Tag, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, deviceID, tagID string) error
	Unassign(ctx context.Context, deviceID, tagID string) error
}

type BackupService interface {
	RequestUpload(ctx context.Context, deviceID string) (*services.UploadTask, error)
	CompleteUpload(ctx context.Context, id string) error
	DownloadURL(ctx context.Context, id string) (string, error)
	ListByDevice(ctx context.Context, deviceID string) ([]*models.Backup, error)
}

type AuditService interface {
	List(ctx context.Context, limit int) ([]*models.AuditEvent, error)
}

// Server is the HTTP front of the inventory backend.
type Server struct {
	addr      string
	logger    logging.Logger
	jwtSecret []byte

	auth     AuthService
	accounts AccountService
	devices  DeviceService
	tags     TagService
	backups  BackupService
	audit    AuditService
}

func NewServer(addr string, logger logging.Logger, jwtSecret []byte,
	auth AuthService, accounts AccountService, devices DeviceService,
	tags TagService, backups BackupService, audit AuditService) *Server {
	return &Server{
		addr:      addr,
		logger:    logger.With("component", "httpapi"),
		jwtSecret: jwtSecret,
		auth:      auth,
		accounts:  accounts,
		devices:   devices,
		tags:      tags,
		backups:   backups,
		audit:     audit,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

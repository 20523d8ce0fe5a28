package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/logging"
	"github.com/fnpsdn/netinv/internal/server/config"
	"github.com/fnpsdn/netinv/internal/server/models"
	accountsrepo "github.com/fnpsdn/netinv/internal/server/repositories/accounts"
	auditrepo "github.com/fnpsdn/netinv/internal/server/repositories/audit"
	backupsrepo "github.com/fnpsdn/netinv/internal/server/repositories/backups"
	challengesrepo "github.com/fnpsdn/netinv/internal/server/repositories/challenges"
	credentialsrepo "github.com/fnpsdn/netinv/internal/server/repositories/credentials"
	devicesrepo "github.com/fnpsdn/netinv/internal/server/repositories/devices"
	otpcodesrepo "github.com/fnpsdn/netinv/internal/server/repositories/otpcodes"
	tagsrepo "github.com/fnpsdn/netinv/internal/server/repositories/tags"
)

// --- shared test plumbing ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

func newSQLMockDB(t interface {
	Helper()
	Fatalf(string, ...any)
}) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	return cfg
}

type fakeMailer struct {
	to      []string
	codes   []string
	purpose []string
	err     error
}

func (m *fakeMailer) SendCode(ctx context.Context, to, code, purpose string) error {
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	m.purpose = append(m.purpose, purpose)
	return m.err
}

// --- fake repositories ---

type fakeAccountsRepo struct {
	account *models.Account
	getErr  error

	createOut *models.Account
	createErr error

	markedVerified []string
	passwords      map[string][]byte
	totpSecret     string
	totpEnabled    bool
	secondFactor   string
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	a.ID = "a-new"
	return a, nil
}

func (f *fakeAccountsRepo) find() (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.account == nil {
		return nil, common.ErrorNotFound
	}
	return f.account, nil
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return f.find()
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f.find()
}

func (f *fakeAccountsRepo) MarkEmailVerified(ctx context.Context, id string) error {
	f.markedVerified = append(f.markedVerified, id)
	return nil
}

func (f *fakeAccountsRepo) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	if f.passwords == nil {
		f.passwords = map[string][]byte{}
	}
	f.passwords[id] = hash
	return nil
}

func (f *fakeAccountsRepo) SetTotpSecret(ctx context.Context, id, secret string, enabled bool) error {
	f.totpSecret, f.totpEnabled = secret, enabled
	return nil
}

func (f *fakeAccountsRepo) SetSecondFactor(ctx context.Context, id, method string) error {
	f.secondFactor = method
	return nil
}

type fakeOtpRepo struct {
	live      *models.OneTimeCode
	getErr    error
	inserted  []*models.OneTimeCode
	insertErr error

	invalidations int
	consumeWon    bool
	consumeErr    error
}

func (f *fakeOtpRepo) Insert(ctx context.Context, c *models.OneTimeCode) (*models.OneTimeCode, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	c.ID = "c-new"
	f.inserted = append(f.inserted, c)
	return c, nil
}

func (f *fakeOtpRepo) GetLatestLive(ctx context.Context, accountID, purpose string) (*models.OneTimeCode, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.live == nil {
		return nil, common.ErrorNotFound
	}
	return f.live, nil
}

func (f *fakeOtpRepo) Consume(ctx context.Context, id string) (bool, error) {
	return f.consumeWon, f.consumeErr
}

func (f *fakeOtpRepo) InvalidateLive(ctx context.Context, accountID, purpose string) error {
	f.invalidations++
	return nil
}

func (f *fakeOtpRepo) DeleteExpired(ctx context.Context) error { return nil }

type fakeChallengesRepo struct {
	challenge *models.LoginChallenge
	getErr    error
	createErr error
	completed int
}

func (f *fakeChallengesRepo) Create(ctx context.Context, c *models.LoginChallenge) (*models.LoginChallenge, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.ID = "ch-new"
	f.challenge = c
	return c, nil
}

func (f *fakeChallengesRepo) GetByID(ctx context.Context, id string) (*models.LoginChallenge, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.challenge == nil {
		return nil, common.ErrorNotFound
	}
	return f.challenge, nil
}

func (f *fakeChallengesRepo) IncrementAttempts(ctx context.Context, id string) (int, error) {
	f.challenge.Attempts++
	return f.challenge.Attempts, nil
}

func (f *fakeChallengesRepo) Complete(ctx context.Context, id string) (bool, error) {
	f.completed++
	return f.completed == 1, nil
}

type fakeDevicesRepo struct {
	device *models.Device
	getErr error
}

func (f *fakeDevicesRepo) Create(ctx context.Context, d *models.Device) (*models.Device, error) {
	d.ID = "d-new"
	return d, nil
}

func (f *fakeDevicesRepo) GetByID(ctx context.Context, id string) (*models.Device, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.device == nil {
		return nil, common.ErrorNotFound
	}
	return f.device, nil
}

func (f *fakeDevicesRepo) List(ctx context.Context) ([]*models.Device, error) { return nil, nil }
func (f *fakeDevicesRepo) ListByTag(ctx context.Context, tagID string) ([]*models.Device, error) {
	return nil, nil
}
func (f *fakeDevicesRepo) Update(ctx context.Context, d *models.Device) error { return nil }
func (f *fakeDevicesRepo) Delete(ctx context.Context, id string) error        { return nil }

type fakeCredentialsRepo struct {
	stored *models.DeviceCredential
}

func (f *fakeCredentialsRepo) Upsert(ctx context.Context, c *models.DeviceCredential) (*models.DeviceCredential, error) {
	c.ID = "cr-new"
	f.stored = c
	return c, nil
}

func (f *fakeCredentialsRepo) GetByDevice(ctx context.Context, deviceID string) (*models.DeviceCredential, error) {
	if f.stored == nil {
		return nil, common.ErrorNotFound
	}
	return f.stored, nil
}

func (f *fakeCredentialsRepo) DeleteByDevice(ctx context.Context, deviceID string) error {
	f.stored = nil
	return nil
}

type fakeBackupsRepo struct {
	created   []*models.Backup
	stored    []string
	createErr error
}

func (f *fakeBackupsRepo) Create(ctx context.Context, b *models.Backup) (*models.Backup, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	b.ID = "b-new"
	f.created = append(f.created, b)
	return b, nil
}

func (f *fakeBackupsRepo) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	for _, b := range f.created {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBackupsRepo) ListByDevice(ctx context.Context, deviceID string) ([]*models.Backup, error) {
	return f.created, nil
}

func (f *fakeBackupsRepo) MarkStored(ctx context.Context, id string) (bool, error) {
	f.stored = append(f.stored, id)
	return true, nil
}

type fakeAuditRepo struct {
	events []*models.AuditEvent
}

func (f *fakeAuditRepo) Append(ctx context.Context, e *models.AuditEvent) error {
	e.CreatedAt = time.Now()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAuditRepo) ListRecent(ctx context.Context, limit int) ([]*models.AuditEvent, error) {
	return f.events, nil
}

// --- fake repo manager ---

type fakeRepoManager struct {
	accounts    *fakeAccountsRepo
	otpCodes    *fakeOtpRepo
	challenges  *fakeChallengesRepo
	devices     *fakeDevicesRepo
	credentials *fakeCredentialsRepo
	backups     *fakeBackupsRepo
	audit       *fakeAuditRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts:    &fakeAccountsRepo{},
		otpCodes:    &fakeOtpRepo{consumeWon: true},
		challenges:  &fakeChallengesRepo{},
		devices:     &fakeDevicesRepo{},
		credentials: &fakeCredentialsRepo{},
		backups:     &fakeBackupsRepo{},
		audit:       &fakeAuditRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository {
	return m.accounts
}
func (m *fakeRepoManager) OtpCodes(db dbx.DBTX) otpcodesrepo.Repository {
	return m.otpCodes
}
func (m *fakeRepoManager) Challenges(db dbx.DBTX) challengesrepo.Repository {
	return m.challenges
}
func (m *fakeRepoManager) Devices(db dbx.DBTX) devicesrepo.Repository {
	return m.devices
}
func (m *fakeRepoManager) Tags(db dbx.DBTX) tagsrepo.Repository             { return nil }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentialsrepo.Repository {
	return m.credentials
}
func (m *fakeRepoManager) Backups(db dbx.DBTX) backupsrepo.Repository { return m.backups }
func (m *fakeRepoManager) Audit(db dbx.DBTX) auditrepo.Repository     { return m.audit }

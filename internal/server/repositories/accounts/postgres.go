package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, email, name, surname, password_hash, email_verified,
	totp_secret, totp_enabled, second_factor, role, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (email, name, surname, password_hash, email_verified, second_factor, role)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Email, account.Name, account.Surname, account.PasswordHash,
		account.EmailVerified, account.SecondFactor, account.Role).
		Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE accounts SET email_verified = true, updated_at = now()
		 WHERE id = $1
		 `
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	query :=
		`UPDATE accounts SET password_hash = $2, updated_at = now()
		 WHERE id = $1
		 `
	return r.exec(ctx, query, id, passwordHash)
}

func (r *PostgresRepository) SetTotpSecret(ctx context.Context, id string, secret string, enabled bool) error {
	query :=
		`UPDATE accounts SET totp_secret = $2, totp_enabled = $3, updated_at = now()
		 WHERE id = $1
		 `
	return r.exec(ctx, query, id, secret, enabled)
}

func (r *PostgresRepository) SetSecondFactor(ctx context.Context, id string, method string) error {
	query :=
		`UPDATE accounts SET second_factor = $2, updated_at = now()
		 WHERE id = $1
		 `
	return r.exec(ctx, query, id, method)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.Email, &account.Name, &account.Surname,
		&account.PasswordHash, &account.EmailVerified, &account.TotpSecret,
		&account.TotpEnabled, &account.SecondFactor, &account.Role,
		&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

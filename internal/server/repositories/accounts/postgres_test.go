package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "name", "surname", "password_hash",
		"email_verified", "totp_secret", "totp_enabled", "second_factor", "role",
		"created_at", "updated_at"})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(email,\s*name,\s*surname,\s*password_hash,\s*email_verified,\s*second_factor,\s*role\)`

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", time.Now())
	mock.ExpectQuery(q).
		WithArgs("alice@example.com", "Alice", "Smith", []byte("digest"), false, "none", "viewer").
		WillReturnRows(rows)

	a := &models.Account{
		Email: "alice@example.com", Name: "Alice", Surname: "Smith",
		PasswordHash: []byte("digest"), SecondFactor: "none", Role: "viewer",
	}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "a-1" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "accounts_email_key"`))

	_, err := repo.Create(context.Background(), &models.Account{Email: "dup@example.com"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1`

	rows := accountRows().
		AddRow("a-1", "alice@example.com", "Alice", "Smith", []byte("digest"),
			true, "", false, "none", "viewer", time.Now(), time.Now())
	mock.ExpectQuery(q).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "a-1" || got.Email != "alice@example.com" || !got.EmailVerified {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdatePassword_NoSuchAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+password_hash`).
		WithArgs("missing", []byte("digest")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "missing", []byte("digest"))
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetTotpSecret_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+totp_secret`).
		WithArgs("a-1", "SECRET32", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetTotpSecret(context.Background(), "a-1", "SECRET32", true); err != nil {
		t.Fatalf("SetTotpSecret error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

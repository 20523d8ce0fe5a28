package admincli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("admin@netinv.local\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Admin email", &out)
	if err != nil || got != "admin@netinv.local" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Admin email", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out, "Enter password: ")
	if err == nil {
		t.Fatal("expected error")
	}
}

func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	i := 0
	readPassword = func(int) ([]byte, error) {
		pw := passwords[i]
		i++
		return []byte(pw), nil
	}
}

func TestBootstrap_CreatesVerifiedAdmin(t *testing.T) {
	stubPasswords(t, "hunter2-hunter2", "hunter2-hunter2")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+accounts`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a-1", time.Now()))

	in := bufio.NewReader(strings.NewReader("admin@netinv.local\n"))
	var out bytes.Buffer

	rm := repomanager.NewPostgresRepositoryManager()
	if err := Bootstrap(context.Background(), db, rm, in, &out); err != nil {
		t.Fatalf("Bootstrap error: %v", err)
	}

	if !strings.Contains(out.String(), "Created admin account a-1") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBootstrap_PasswordMismatch(t *testing.T) {
	stubPasswords(t, "one", "two")

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	in := bufio.NewReader(strings.NewReader("admin@netinv.local\n"))
	var out bytes.Buffer

	rm := repomanager.NewPostgresRepositoryManager()
	err = Bootstrap(context.Background(), db, rm, in, &out)
	if err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

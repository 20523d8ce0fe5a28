package admincli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/cryptox"
	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

// Bootstrap prompts for an email and password and creates a verified admin
// account. It refuses to overwrite an existing account with the same email.
func Bootstrap(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager,
	reader *bufio.Reader, w io.Writer) error {

	email, err := GetSimpleText(reader, "Admin email", w)
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}

	password, err := GetPassword(w, "Enter password: ")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(w, "Repeat password: ")
	if err != nil {
		return err
	}
	if !bytes.Equal(password, confirm) {
		return fmt.Errorf("passwords do not match")
	}
	common.WipeByteArray(confirm)

	if len(password) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	common.WipeByteArray(password)

	account, err := rm.Accounts(db).Create(ctx, &models.Account{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true,
		SecondFactor:  models.SecondFactorNone,
		Role:          models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("an account with email %q already exists", email)
		}
		return err
	}

	fmt.Fprintf(w, "Created admin account %s (%s)\n", account.ID, account.Email)
	return nil
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/server/repositories/accounts"
	"github.com/fnpsdn/netinv/internal/server/repositories/audit"
	"github.com/fnpsdn/netinv/internal/server/repositories/backups"
	"github.com/fnpsdn/netinv/internal/server/repositories/challenges"
	"github.com/fnpsdn/netinv/internal/server/repositories/credentials"
	"github.com/fnpsdn/netinv/internal/server/repositories/devices"
	"github.com/fnpsdn/netinv/internal/server/repositories/otpcodes"
	"github.com/fnpsdn/netinv/internal/server/repositories/tags"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// build its repositories on either the pool or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	OtpCodes(db dbx.DBTX) otpcodes.Repository
	Challenges(db dbx.DBTX) challenges.Repository
	Devices(db dbx.DBTX) devices.Repository
	Tags(db dbx.DBTX) tags.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Backups(db dbx.DBTX) backups.Repository
	Audit(db dbx.DBTX) audit.Repository
}

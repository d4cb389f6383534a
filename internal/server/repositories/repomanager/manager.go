package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/tracking"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Tracking(db dbx.DBTX) tracking.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}

package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
)

const testSecret = "secret"

type fakeUsers struct {
	tokens   *services.TokenPair
	user     *models.User
	profile  *models.Profile
	profiles []*models.Profile
	err      error
	caller   models.Caller
}

func (f *fakeUsers) SignUp(ctx context.Context, email, password, username string) (*models.User, error) {
	return f.user, f.err
}
func (f *fakeUsers) SignIn(ctx context.Context, email, password string) (*services.TokenPair, error) {
	return f.tokens, f.err
}
func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.tokens, f.err
}
func (f *fakeUsers) SignOut(ctx context.Context, refreshToken string) error { return f.err }
func (f *fakeUsers) GetUser(ctx context.Context, caller models.Caller) (*models.User, *models.Profile, error) {
	f.caller = caller
	return f.user, f.profile, f.err
}
func (f *fakeUsers) UpdatePassword(ctx context.Context, caller models.Caller, password string) error {
	f.caller = caller
	return f.err
}
func (f *fakeUsers) GetProfile(ctx context.Context, caller models.Caller, id string) (*models.Profile, error) {
	f.caller = caller
	return f.profile, f.err
}
func (f *fakeUsers) UpdateProfile(ctx context.Context, caller models.Caller, id, username string) error {
	f.caller = caller
	return f.err
}
func (f *fakeUsers) ListProfiles(ctx context.Context, caller models.Caller) ([]*models.Profile, error) {
	f.caller = caller
	return f.profiles, f.err
}
func (f *fakeUsers) DeleteProfile(ctx context.Context, caller models.Caller, id string) error {
	f.caller = caller
	return f.err
}

type fakeTasks struct {
	tasks  []*models.Task
	filter models.TaskFilter
	patch  models.TaskPatch
	err    error
	caller models.Caller
}

func (f *fakeTasks) Create(ctx context.Context, caller models.Caller, t *models.Task) (*models.Task, error) {
	f.caller = caller
	if f.err != nil {
		return nil, f.err
	}
	cp := *t
	cp.ID = "t1"
	cp.UserID = caller.UserID
	cp.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &cp, nil
}
func (f *fakeTasks) List(ctx context.Context, caller models.Caller, filter models.TaskFilter) ([]*models.Task, error) {
	f.caller, f.filter = caller, filter
	return f.tasks, f.err
}
func (f *fakeTasks) Update(ctx context.Context, caller models.Caller, id string, patch models.TaskPatch) (*models.Task, error) {
	f.caller, f.patch = caller, patch
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: id, UserID: caller.UserID}, nil
}

type fakeNotifications struct {
	items    []*models.Notification
	updated  int64
	found    bool
	tracking models.Tracking
	err      error
	caller   models.Caller
}

func (f *fakeNotifications) Create(ctx context.Context, caller models.Caller, n *models.Notification) (*models.Notification, error) {
	f.caller = caller
	if f.err != nil {
		return nil, f.err
	}
	cp := *n
	cp.ID = "n1"
	cp.UserID = caller.UserID
	return &cp, nil
}
func (f *fakeNotifications) List(ctx context.Context, caller models.Caller, filter models.NotificationFilter) ([]*models.Notification, error) {
	f.caller = caller
	return f.items, f.err
}
func (f *fakeNotifications) MarkRead(ctx context.Context, caller models.Caller, id string) error {
	f.caller = caller
	return f.err
}
func (f *fakeNotifications) MarkAllRead(ctx context.Context, caller models.Caller) (int64, error) {
	f.caller = caller
	return f.updated, f.err
}
func (f *fakeNotifications) Delete(ctx context.Context, caller models.Caller, id string) error {
	f.caller = caller
	return f.err
}
func (f *fakeNotifications) FindTracking(ctx context.Context, caller models.Caller, t models.Tracking) (bool, error) {
	f.caller, f.tracking = caller, t
	return f.found, f.err
}
func (f *fakeNotifications) InsertTracking(ctx context.Context, caller models.Caller, t models.Tracking) error {
	f.caller, f.tracking = caller, t
	return f.err
}

type fakeAudit struct {
	inserted *models.AuditLogEntry
	entries  []*models.AuditLogEntry
	export   *services.ExportResult
	err      error
	caller   models.Caller
}

func (f *fakeAudit) Insert(ctx context.Context, caller models.Caller, e *models.AuditLogEntry) (*models.AuditLogEntry, error) {
	f.caller, f.inserted = caller, e
	return e, f.err
}
func (f *fakeAudit) List(ctx context.Context, caller models.Caller, filter models.AuditFilter) ([]*models.AuditLogEntry, error) {
	f.caller = caller
	return f.entries, f.err
}
func (f *fakeAudit) Export(ctx context.Context, caller models.Caller, action string) (*services.ExportResult, error) {
	f.caller = caller
	return f.export, f.err
}

type testDeps struct {
	users         *fakeUsers
	tasks         *fakeTasks
	notifications *fakeNotifications
	audit         *fakeAudit
}

func newTestServer(addr string) (*GRPCServer, *testDeps) {
	d := &testDeps{
		users:         &fakeUsers{},
		tasks:         &fakeTasks{},
		notifications: &fakeNotifications{},
		audit:         &fakeAudit{},
	}
	s := NewGRPCServer(addr, logging.Nop(), d.users, d.tasks, d.notifications, d.audit, testSecret)
	return s, d
}

func withCaller(userID, role string) context.Context {
	return context.WithValue(context.Background(), callerKey, models.Caller{UserID: userID, Role: role})
}

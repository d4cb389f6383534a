package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/config"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/tracking"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/users"
)

// fakeStore is an in-memory stand-in for every repository. Transactions are
// not modelled: sqlmock only sees BEGIN/COMMIT/ROLLBACK.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*models.User
	profiles map[string]*models.Profile
	tokens   map[string]*models.RefreshToken
	tasks    map[string]*models.Task
	notes    map[string]*models.Notification
	tracking []models.Tracking
	audit    []*models.AuditLogEntry

	failProfileCreate error
	failProfileGet    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]*models.User{},
		profiles: map[string]*models.Profile{},
		tokens:   map[string]*models.RefreshToken{},
		tasks:    map[string]*models.Task{},
		notes:    map[string]*models.Notification{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeStore) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (f *fakeStore) Users(dbx.DBTX) users.Repository                 { return fakeUsers{f} }
func (f *fakeStore) Profiles(dbx.DBTX) profiles.Repository           { return fakeProfiles{f} }
func (f *fakeStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeTokens{f} }
func (f *fakeStore) Tasks(dbx.DBTX) tasks.Repository                 { return fakeTasks{f} }
func (f *fakeStore) Notifications(dbx.DBTX) notifications.Repository { return fakeNotes{f} }
func (f *fakeStore) Tracking(dbx.DBTX) tracking.Repository           { return fakeTracking{f} }
func (f *fakeStore) AuditLogs(dbx.DBTX) auditlogs.Repository         { return fakeAudit{f} }

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = r.f.nextID("u")
	u.CreatedAt = time.Now()
	cp := *u
	r.f.users[u.ID] = &cp
	return u, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUsers) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeProfiles struct{ f *fakeStore }

func (r fakeProfiles) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failProfileCreate != nil {
		return nil, r.f.failProfileCreate
	}
	p.CreatedAt = time.Now().Add(time.Duration(r.f.seq) * time.Millisecond)
	cp := *p
	r.f.profiles[p.ID] = &cp
	return p, nil
}

func (r fakeProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failProfileGet != nil {
		return nil, r.f.failProfileGet
	}
	p, ok := r.f.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakeProfiles) ListNonAdmin(context.Context) ([]*models.Profile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.Profile{}
	for _, p := range r.f.profiles {
		if p.Role != common.RoleAdmin {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeProfiles) UpdateUsername(_ context.Context, id, username string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.profiles[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Username = username
	return nil
}

func (r fakeProfiles) Delete(_ context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.profiles[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.f.profiles, id)
	return nil
}

type fakeTokens struct{ f *fakeStore }

func (r fakeTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: time.Now().Add(validity)}
	return nil
}

func (r fakeTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTokens) Delete(_ context.Context, token string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.tokens, token)
	return nil
}

func (r fakeTokens) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for k, t := range r.f.tokens {
		if t.UserID == userID {
			delete(r.f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeTasks struct{ f *fakeStore }

func (r fakeTasks) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *t
	cp.ID = r.f.nextID("t")
	cp.CreatedAt = time.Now()
	r.f.tasks[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r fakeTasks) List(_ context.Context, userID string, filter models.TaskFilter) ([]*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.Task{}
	for _, t := range r.f.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Pending && (t.DueDate == nil || t.IsCompleted || t.IsArchived) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeTasks) Get(_ context.Context, userID, id string) (*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTasks) Update(_ context.Context, userID, id string, p models.TaskPatch) (*models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			v := *p.DueDate
			t.DueDate = &v
		}
	}
	if p.DueTime != nil {
		if *p.DueTime == "" {
			t.DueTime = nil
		} else {
			v := *p.DueTime
			t.DueTime = &v
		}
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.IsArchived != nil {
		t.IsArchived = *p.IsArchived
	}
	cp := *t
	return &cp, nil
}

type fakeNotes struct{ f *fakeStore }

func (r fakeNotes) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *n
	cp.ID = r.f.nextID("n")
	cp.CreatedAt = time.Now()
	r.f.notes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r fakeNotes) List(_ context.Context, userID string, filter models.NotificationFilter) ([]*models.Notification, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range r.f.notes {
		if n.UserID == userID && (!filter.UnreadOnly || !n.Read) {
			cp := *n
			out = append(out, &cp)
		}
	}
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r fakeNotes) MarkRead(_ context.Context, userID, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	n, ok := r.f.notes[id]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	n.Read = true
	return nil
}

func (r fakeNotes) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var c int64
	for _, n := range r.f.notes {
		if n.UserID == userID && !n.Read {
			n.Read = true
			c++
		}
	}
	return c, nil
}

func (r fakeNotes) Delete(_ context.Context, userID, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	n, ok := r.f.notes[id]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.f.notes, id)
	return nil
}

type fakeTracking struct{ f *fakeStore }

func (r fakeTracking) Exists(_ context.Context, t models.Tracking) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, x := range r.f.tracking {
		if x == t {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTracking) Create(_ context.Context, t models.Tracking) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.tracking = append(r.f.tracking, t)
	return nil
}

type fakeAudit struct{ f *fakeStore }

func (r fakeAudit) Create(_ context.Context, e *models.AuditLogEntry) (*models.AuditLogEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *e
	cp.ID = int64(len(r.f.audit) + 1)
	r.f.audit = append(r.f.audit, &cp)
	out := cp
	return &out, nil
}

func (r fakeAudit) List(_ context.Context, filter models.AuditFilter) ([]*models.AuditLogEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := []*models.AuditLogEntry{}
	for i := len(r.f.audit) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		e := r.f.audit[i]
		if filter.Action == "" || e.Action == filter.Action {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AdminEmails = []string{"root@example.com"}
	return cfg
}

var (
	alice = models.Caller{UserID: "alice", Role: common.RoleUser}
	bob   = models.Caller{UserID: "bob", Role: common.RoleUser}
	admin = models.Caller{UserID: "root", Role: common.RoleAdmin}
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

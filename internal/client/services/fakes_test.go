package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/effect"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/notify"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory backend holding a single user's rows.
type fakeClient struct {
	mu sync.Mutex

	signedIn bool
	user     *models.User
	password string
	refresh  string
	observer func(string)

	tasks         map[string]*models.Task
	notifications []*models.Notification
	tracking      []models.Tracking
	audit         []*models.AuditEntry
	profiles      []*models.Profile
	deleted       []string
	seq           int

	calls map[string]int

	listTasksErr    error
	createNotifErr  error
	insertAuditErr  error
	listNotifErr    error
	signOutErr      error
	insertTrackErr  error
	getUserErr      error
	resumeErr       error
	updatePasswdErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		user:     &models.User{ID: "u1", Email: "ann@example.com", Username: "ann", Role: "user"},
		password: "secret1",
		tasks:    map[string]*models.Task{},
		calls:    map[string]int{},
	}
}

func (f *fakeClient) hit(name string) {
	f.calls[name]++
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) auditRows() []*models.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.AuditEntry(nil), f.audit...)
}

func (f *fakeClient) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeClient) setSession(refresh string) {
	f.refresh = refresh
	f.signedIn = refresh != ""
	if f.observer != nil {
		f.observer(refresh)
	}
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) SetTokenObserver(fn func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observer = fn
}

func (f *fakeClient) SignUp(ctx context.Context, email, password, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("SignUp")
	return nil
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("SignIn")
	if email != f.user.Email || password != f.password {
		return client.ErrUnauthorized
	}
	f.setSession(f.nextID("r"))
	return nil
}

func (f *fakeClient) Resume(ctx context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("Resume")
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.setSession(f.nextID("r"))
	return nil
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("SignOut")
	f.setSession("")
	return f.signOutErr
}

func (f *fakeClient) HasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signedIn
}

func (f *fakeClient) GetUser(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("GetUser")
	if !f.signedIn {
		return nil, client.ErrUnauthorized
	}
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u := *f.user
	return &u, nil
}

func (f *fakeClient) UpdatePassword(ctx context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdatePassword")
	if f.updatePasswdErr != nil {
		return f.updatePasswdErr
	}
	f.password = password
	f.setSession("")
	return nil
}

func (f *fakeClient) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeClient) UpdateProfile(ctx context.Context, id, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdateProfile")
	if id == f.user.ID {
		f.user.Username = username
	}
	for _, p := range f.profiles {
		if p.ID == id {
			p.Username = username
		}
	}
	return nil
}

func (f *fakeClient) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Profile(nil), f.profiles...), nil
}

func (f *fakeClient) DeleteProfile(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("DeleteProfile")
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateTask")
	cp := *t
	cp.DueTime = storedClock(cp.DueTime)
	cp.ID = f.nextID("t")
	cp.UserID = f.user.ID
	cp.CreatedAt = time.Date(2024, 5, 1, 0, 0, f.seq, 0, time.UTC)
	f.tasks[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeClient) ListTasks(ctx context.Context, pending bool) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListTasks")
	if f.listTasksErr != nil {
		return nil, f.listTasksErr
	}
	out := make([]*models.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if pending && (t.DueDate == nil || t.IsCompleted || t.IsArchived) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// storedClock mimics the server, which returns due times as HH:MM:SS.
func storedClock(s *string) *string {
	if s == nil {
		return nil
	}
	c, err := parseClock(*s)
	if err != nil {
		return s
	}
	v := c.Format(time.TimeOnly)
	return &v
}

func (f *fakeClient) UpdateTask(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("UpdateTask")
	t, ok := f.tasks[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = optional(*p.DueDate)
	}
	if p.DueTime != nil {
		t.DueTime = storedClock(optional(*p.DueTime))
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

func (f *fakeClient) CreateNotification(ctx context.Context, n models.NewNotification) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("CreateNotification")
	if f.createNotifErr != nil {
		return nil, f.createNotifErr
	}
	row := &models.Notification{
		ID:        f.nextID("n"),
		TaskID:    n.TaskID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: time.Date(2024, 5, 1, 0, 0, f.seq, 0, time.UTC),
	}
	f.notifications = append([]*models.Notification{row}, f.notifications...)
	cp := *row
	return &cp, nil
}

func (f *fakeClient) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListNotifications")
	if f.listNotifErr != nil {
		return nil, f.listNotifErr
	}
	out := make([]*models.Notification, 0)
	for _, n := range f.notifications {
		if unreadOnly && n.Read {
			continue
		}
		if len(out) == limit {
			break
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeClient) MarkNotificationRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeClient) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.notifications {
		if !row.Read {
			row.Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeClient) DeleteNotification(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID == id {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeClient) FindTracking(ctx context.Context, t models.Tracking) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("FindTracking")
	for _, row := range f.tracking {
		if row == t {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClient) InsertTracking(ctx context.Context, t models.Tracking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("InsertTracking")
	if f.insertTrackErr != nil {
		return f.insertTrackErr
	}
	f.tracking = append(f.tracking, t)
	return nil
}

func (f *fakeClient) InsertAuditLog(ctx context.Context, e *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("InsertAuditLog")
	if f.insertAuditErr != nil {
		return f.insertAuditErr
	}
	f.audit = append(f.audit, e)
	return nil
}

func (f *fakeClient) ListAuditLogs(ctx context.Context, action string, limit int) ([]*models.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("ListAuditLogs")
	f.calls["limit:"+fmt.Sprint(limit)]++
	f.calls["action:"+action]++
	return []*models.AuditLogEntry{}, nil
}

func (f *fakeClient) ExportAuditLogs(ctx context.Context, action string) (*models.ExportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.ExportResult{Key: "audit/x.json", URL: "https://example.com/x", Count: 0}, nil
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) RefreshToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) SaveRefreshToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Clear() error { return m.SaveRefreshToken("") }

// memPrefs is an in-memory Preferences and notify.Store.
type memPrefs struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemPrefs() *memPrefs { return &memPrefs{m: map[string]string{}} }

func (p *memPrefs) Get(ctx context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.m[key]
	return v, ok, nil
}

func (p *memPrefs) Set(ctx context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[key] = value
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	shown []notify.Notification
}

func (r *recordingNotifier) Supported() bool { return true }

func (r *recordingNotifier) Notify(ctx context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shown)
}

type testEnv struct {
	client   *fakeClient
	runner   *effect.Runner
	audit    *AuditLogger
	prefs    *memPrefs
	tokens   *memTokens
	notifier *recordingNotifier
	prompts  int
	perms    *notify.Permissions
	notifs   *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		client:   newFakeClient(),
		prefs:    newMemPrefs(),
		tokens:   &memTokens{},
		notifier: &recordingNotifier{},
	}
	e.runner = effect.NewRunner(logging.Nop(), time.Second)
	e.audit = NewAuditLogger(e.client, e.runner, logging.Nop())
	e.perms = notify.NewPermissions(e.prefs, notify.PrompterFunc(func(context.Context) (bool, error) {
		e.prompts++
		return true, nil
	}), e.notifier)
	e.notifs = NewNotificationService(e.client, e.perms, logging.Nop())
	return e
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, e.client.SignIn(context.Background(), "ann@example.com", "secret1"))
}

func (e *testEnv) grant(t *testing.T) {
	t.Helper()
	require.NoError(t, e.prefs.Set(context.Background(), "notification_permission", string(notify.PermissionGranted)))
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, e.runner.Wait(context.Background()))
}

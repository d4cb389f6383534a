package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/config"
	"github.com/dmitrijs2005/taskboard/internal/client/credential"
	"github.com/dmitrijs2005/taskboard/internal/client/effect"
	"github.com/dmitrijs2005/taskboard/internal/client/localdb"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/notify"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
	"github.com/dmitrijs2005/taskboard/internal/client/view"
	"github.com/dmitrijs2005/taskboard/internal/filex"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	client client.Client
	closer io.Closer
	runner *effect.Runner

	session   *services.SessionService
	tasks     *services.TaskService
	notifs    *services.NotificationService
	perms     *notify.Permissions
	reminders *services.ReminderChecker
	admin     *services.AdminService

	model  *view.Model
	user   *models.User
	reader *bufio.Reader
	out    io.Writer

	rootCtx    context.Context
	stopTimers context.CancelFunc
	timers     sync.WaitGroup
	unread     atomic.Int64

	shownTasks  []*models.Task
	shownNotifs []*models.Notification
	shownUsers  []*models.Profile
	auditAction string
}

// NewApp opens the local database and keyring, connects to the server and
// wires the services.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := localdb.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	tokens, err := credential.Open(cfg.KeyringService, cfg.KeyringDir, cfg.KeyringPassword)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(cfg, logger, c, tokens, metadata.NewSQLiteRepository(db), notify.NewTerminalNotifier(os.Stdout), loc, os.Stdin, os.Stdout)
	a.closer = db
	return a, nil
}

func newApp(
	cfg *config.Config,
	logger logging.Logger,
	c client.Client,
	tokens services.TokenStore,
	prefs services.Preferences,
	notifier notify.Notifier,
	loc *time.Location,
	in io.Reader,
	out io.Writer,
) *App {
	a := &App{
		config: cfg,
		logger: logger,
		client: c,
		reader: bufio.NewReader(in),
		out:    out,
	}

	a.runner = effect.NewRunner(logger, cfg.EffectTimeout)
	audit := services.NewAuditLogger(c, a.runner, logger)
	a.perms = notify.NewPermissions(prefs, notify.PrompterFunc(a.askPermission), notifier)

	a.session = services.NewSessionService(c, tokens, prefs, audit, a.runner, logger)
	a.tasks = services.NewTaskService(c, audit)
	a.notifs = services.NewNotificationService(c, a.perms, logger)
	a.reminders = services.NewReminderChecker(c, a.notifs, logger, loc)
	a.admin = services.NewAdminService(c)
	a.model = view.New(view.Hooks{Mount: a.mount, Unmount: a.unmount})
	return a
}

func (a *App) askPermission(context.Context) (bool, error) {
	return Confirm(a.reader, "Allow Taskboard to show desktop notifications?", a.out)
}

// mount starts the dashboard timers: the reminder check and the unread
// badge refresh, both firing immediately.
func (a *App) mount() {
	parent := a.rootCtx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	a.stopTimers = cancel

	a.timers.Add(2)
	go func() {
		defer a.timers.Done()
		a.reminders.Run(ctx, a.config.ReminderInterval)
	}()
	go func() {
		defer a.timers.Done()
		effect.Every(ctx, a.config.UnreadRefreshInterval, true, func(ctx context.Context) {
			a.unread.Store(int64(a.notifs.UnreadCount(ctx)))
		})
	}()
}

func (a *App) unmount() {
	if a.stopTimers == nil {
		return
	}
	a.stopTimers()
	a.stopTimers = nil
	a.timers.Wait()
}

func (a *App) isLoggedIn() bool { return a.user != nil }

func (a *App) status() string {
	if a.user == nil {
		return ""
	}
	name := a.user.Username
	if name == "" {
		name = a.user.Email
	}
	badge := ""
	if n := a.unread.Load(); n > 0 && a.model.Mounted() {
		badge = fmt.Sprintf(" 🔔%d", n)
	}
	return fmt.Sprintf("[%s %s%s] ", name, a.model.State(), badge)
}

func (a *App) helpText() string {
	if !a.isLoggedIn() {
		return "Available commands: signup, signin, exit"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Screens: %s (go <screen>)\n", strings.Join(a.model.Sections(), ", "))
	b.WriteString("Always: list, notify, signout, exit")

	switch a.model.State() {
	case view.DashboardActive:
		b.WriteString("\nTasks: add, edit <n>, finish <n>, archive <n>")
	case view.DashboardFinished:
		b.WriteString("\nTasks: add, edit <n>, archive <n>")
	case view.DashboardNotifications:
		b.WriteString("\nNotifications: read <n>, readall, rm <n>")
	case view.DashboardUsers, view.AdminUsers:
		b.WriteString("\nUsers: rename <n>, deluser <n>")
	case view.DashboardAudit, view.AdminAudit:
		b.WriteString("\nAudit: filter [action], export [action]")
	case view.DashboardSettings, view.AdminSettings:
		b.WriteString("\nAccount: username, password")
	}
	if a.model.IsAdmin() {
		b.WriteString("\nAreas: dashboard, admin")
	}
	return b.String()
}

// enter switches to the signed-in screens for user.
func (a *App) enter(ctx context.Context, user *models.User) {
	a.user = user
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Email, user.Role)

	// the first reminder check runs on mount, so ask before that
	if !user.IsAdmin() {
		a.notifs.RequestPermission(ctx)
	}
	a.model.SignIn(user.Role)
	if err := a.Show(ctx); err != nil {
		fmt.Fprintln(a.out, "error:", err)
	}
}

func (a *App) leave() {
	a.model.SignOut()
	a.user = nil
	a.unread.Store(0)
	a.shownTasks, a.shownNotifs, a.shownUsers = nil, nil, nil
	a.auditAction = ""
}

// Run resumes a saved session if there is one and runs the REPL until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.rootCtx = ctx
	defer a.close()

	printlnFn("Welcome to Taskboard (type 'help' for commands)")

	if err := a.client.Ping(ctx); err != nil {
		a.logger.Warn(ctx, "server unavailable", "error", err)
		printlnFn("Server unavailable, commands will fail until it is back.")
	}

	user, err := a.session.Resume(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot resume session", "error", err)
	}
	if user != nil {
		a.enter(ctx, user)
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) close() {
	a.unmount()

	ctx := context.WithoutCancel(a.rootCtx)
	if err := a.runner.Flush(ctx, 5*time.Second); err != nil {
		a.logger.Warn(ctx, "pending effects dropped", "error", err)
	}
	if err := a.client.Close(); err != nil {
		a.logger.Warn(ctx, "close client", "error", err)
	}
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

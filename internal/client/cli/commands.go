package cli

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
	"github.com/dmitrijs2005/taskboard/internal/client/view"
	"github.com/dmitrijs2005/taskboard/internal/filex"
	"github.com/dmitrijs2005/taskboard/internal/netx"
)

var errWrongScreen = errors.New("not available on this screen (type 'help')")

// pick resolves ref as a 1-based position in items or as an item id.
func pick[T any](items []T, ref string, id func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, errors.New("which one? give a number from the list")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return zero, fmt.Errorf("no item %d, run 'list' first", n)
		}
		return items[n-1], nil
	}
	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}
	return zero, fmt.Errorf("no item %q", ref)
}

func (a *App) on(states ...view.State) error {
	for _, s := range states {
		if a.model.State() == s {
			return nil
		}
	}
	return errWrongScreen
}

func (a *App) SignUp(ctx context.Context) error {
	if a.isLoggedIn() {
		return errors.New("sign out first")
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}

	err = a.session.SignUp(ctx, services.SignUpInput{
		Email:           email,
		Username:        username,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created. Use 'signin' to continue.")
	return nil
}

func (a *App) SignIn(ctx context.Context) error {
	if a.isLoggedIn() {
		return errors.New("already signed in")
	}

	email, err := GetTextDefault(a.reader, "Email", a.session.LastEmail(ctx), a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}

	user, err := a.session.SignIn(ctx, email, password)
	if errors.Is(err, client.ErrUnauthorized) {
		return errors.New("invalid email or password")
	}
	if err != nil {
		return err
	}

	a.enter(ctx, user)
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	user := a.user
	a.leave()
	if err := a.session.SignOut(ctx, user); err != nil {
		a.logger.Warn(ctx, "sign out", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) Navigate(ctx context.Context, target string) error {
	if strings.TrimSpace(target) == "" {
		fmt.Fprintf(a.out, "Screens: %s\n", strings.Join(a.model.Sections(), ", "))
		return nil
	}
	if _, err := a.model.Navigate(strings.TrimSpace(target)); err != nil {
		return err
	}
	return a.Show(ctx)
}

// Show prints the current screen.
func (a *App) Show(ctx context.Context) error {
	switch st := a.model.State(); st {
	case view.DashboardActive, view.DashboardFinished, view.DashboardArchived:
		return a.showTasks(ctx, models.Section(st.Section()))
	case view.DashboardNotifications:
		return a.showNotifications(ctx)
	case view.DashboardUsers, view.AdminUsers:
		return a.showUsers(ctx)
	case view.DashboardAudit, view.AdminAudit:
		return a.showAudit(ctx)
	case view.DashboardSettings, view.AdminSettings:
		return a.showSettings(ctx)
	case view.AdminHome:
		return a.showAdminHome(ctx)
	}
	fmt.Fprintln(a.out, "Welcome! Use 'signin' or 'signup'.")
	return nil
}

func formatDue(t *models.Task) string {
	if t.DueDate == nil {
		return ""
	}
	due := *t.DueDate
	if t.DueTime != nil && *t.DueTime != "" {
		due += " " + *t.DueTime
	}
	return "  (due " + due + ")"
}

func (a *App) showTasks(ctx context.Context, section models.Section) error {
	list, err := a.tasks.List(ctx)
	if err != nil {
		return err
	}
	a.shownTasks = services.Split(list).Section(section)

	fmt.Fprintf(a.out, "%s tasks:\n", strings.ToUpper(string(section[:1]))+string(section[1:]))
	if len(a.shownTasks) == 0 {
		fmt.Fprintf(a.out, "  No %s tasks.\n", section)
		return nil
	}
	for i, t := range a.shownTasks {
		mark := " "
		if t.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(a.out, "%3d. [%s] %s%s\n", i+1, mark, t.Title, formatDue(t))
		if t.Description != "" {
			fmt.Fprintf(a.out, "       %s\n", strings.ReplaceAll(t.Description, "\n", "\n       "))
		}
	}
	return nil
}

func (a *App) showNotifications(ctx context.Context) error {
	a.shownNotifs = a.notifs.Fetch(ctx, services.FetchOptions{})

	unread := 0
	for _, n := range a.shownNotifs {
		if !n.Read {
			unread++
		}
	}
	a.unread.Store(int64(unread))

	fmt.Fprintf(a.out, "Notifications (%d unread):\n", unread)
	if len(a.shownNotifs) == 0 {
		fmt.Fprintln(a.out, "  No notifications yet.")
		return nil
	}
	for i, n := range a.shownNotifs {
		mark := "•"
		if n.Read {
			mark = " "
		}
		fmt.Fprintf(a.out, "%3d. %s %s  %s\n       %s\n", i+1, mark, n.Title, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Message)
	}
	return nil
}

func (a *App) showUsers(ctx context.Context) error {
	users, err := a.admin.Users(ctx)
	if err != nil {
		return err
	}
	a.shownUsers = users

	fmt.Fprintln(a.out, "Users:")
	if len(users) == 0 {
		fmt.Fprintln(a.out, "  No users.")
		return nil
	}
	for i, u := range users {
		fmt.Fprintf(a.out, "%3d. %-20s %-30s %s\n", i+1, u.Username, u.Email, u.CreatedAt.Local().Format("2006-01-02"))
	}
	return nil
}

func (a *App) showAudit(ctx context.Context) error {
	entries, err := a.admin.AuditLogs(ctx, a.auditAction)
	if err != nil {
		return err
	}

	filter := "all actions"
	if a.auditAction != "" {
		filter = a.auditAction
	}
	fmt.Fprintf(a.out, "Audit log (%s, %d entries):\n", filter, len(entries))
	for _, e := range entries {
		entity := ""
		if e.EntityType != nil {
			entity = " " + *e.EntityType + ":" + models.Value(e.EntityID)
		}
		fmt.Fprintf(a.out, "  %s  %-12s %-14s%s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Username, e.Action, entity, string(e.Details))
	}
	return nil
}

func (a *App) showSettings(ctx context.Context) error {
	state, err := a.perms.State(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Email:         %s\nUsername:      %s\nRole:          %s\nNotifications: %s\n", a.user.Email, a.user.Username, a.user.Role, state)
	return nil
}

func (a *App) showAdminHome(ctx context.Context) error {
	users, err := a.admin.Users(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Administration\n  %d users\n  screens: %s\n", len(users), strings.Join(a.model.Sections(), ", "))
	return nil
}

// readDescription keeps current when nothing is typed; "-" clears it.
func (a *App) readDescription(current string) (string, error) {
	prompt := "Description"
	if current != "" {
		fmt.Fprintf(a.out, "Current description:\n%s\n", current)
		prompt = "Description (empty keeps current, '-' clears)"
	}
	d, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if d == "" {
		return current, nil
	}
	return d, nil
}

func (a *App) readTaskInput(current *models.Task) (services.TaskInput, error) {
	var in services.TaskInput
	var def models.Task
	if current != nil {
		def = *current
	}

	var err error
	if in.Title, err = GetTextDefault(a.reader, "Title", def.Title, a.out); err != nil {
		return in, err
	}
	if in.Description, err = a.readDescription(def.Description); err != nil {
		return in, err
	}
	if in.DueDate, err = GetTextDefault(a.reader, "Due date (YYYY-MM-DD, '-' for none)", models.Value(def.DueDate), a.out); err != nil {
		return in, err
	}
	if in.DueTime, err = GetTextDefault(a.reader, "Due time (HH:MM, '-' for none)", models.Value(def.DueTime), a.out); err != nil {
		return in, err
	}
	for _, f := range []*string{&in.Description, &in.DueDate, &in.DueTime} {
		if *f == "-" {
			*f = ""
		}
	}
	return in, nil
}

func (a *App) AddTask(ctx context.Context) error {
	if !a.model.Mounted() {
		return errWrongScreen
	}
	in, err := a.readTaskInput(nil)
	if err != nil {
		return err
	}
	t, err := a.tasks.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %q.\n", t.Title)
	if a.model.State() == view.DashboardActive {
		return a.Show(ctx)
	}
	return nil
}

func taskID(t *models.Task) string { return t.ID }

func (a *App) EditTask(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardActive, view.DashboardFinished); err != nil {
		return err
	}
	t, err := pick(a.shownTasks, ref, taskID)
	if err != nil {
		return err
	}
	in, err := a.readTaskInput(t)
	if err != nil {
		return err
	}
	_, changes, err := a.tasks.Edit(ctx, t, in)
	if err != nil {
		return err
	}

	if len(changes) == 0 {
		fmt.Fprintln(a.out, "Nothing changed.")
	} else {
		fields := make([]string, 0, len(changes))
		for f := range changes {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		fmt.Fprintf(a.out, "Updated %s.\n", strings.Join(fields, ", "))
	}
	return a.Show(ctx)
}

func (a *App) FinishTask(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardActive); err != nil {
		return err
	}
	t, err := pick(a.shownTasks, ref, taskID)
	if err != nil {
		return err
	}
	if _, err := a.tasks.Finish(ctx, t); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Finished %q.\n", t.Title)
	return a.Show(ctx)
}

func (a *App) ArchiveTask(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardActive, view.DashboardFinished); err != nil {
		return err
	}
	t, err := pick(a.shownTasks, ref, taskID)
	if err != nil {
		return err
	}
	if _, err := a.tasks.Archive(ctx, t); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Archived %q.\n", t.Title)
	return a.Show(ctx)
}

func notificationID(n *models.Notification) string { return n.ID }

func (a *App) MarkRead(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardNotifications); err != nil {
		return err
	}
	n, err := pick(a.shownNotifs, ref, notificationID)
	if err != nil {
		return err
	}
	a.notifs.MarkRead(ctx, n.ID)
	return a.Show(ctx)
}

func (a *App) MarkAllRead(ctx context.Context) error {
	if err := a.on(view.DashboardNotifications); err != nil {
		return err
	}
	n := a.notifs.MarkAllRead(ctx)
	fmt.Fprintf(a.out, "Marked %d as read.\n", n)
	return a.Show(ctx)
}

func (a *App) DeleteNotification(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardNotifications); err != nil {
		return err
	}
	n, err := pick(a.shownNotifs, ref, notificationID)
	if err != nil {
		return err
	}
	a.notifs.Delete(ctx, n.ID)
	return a.Show(ctx)
}

func (a *App) EnableNotifications(ctx context.Context) error {
	if a.notifs.RequestPermission(ctx) {
		fmt.Fprintln(a.out, "Desktop notifications are on.")
	} else {
		fmt.Fprintln(a.out, "Desktop notifications are off.")
	}
	return nil
}

func profileID(p *models.Profile) string { return p.ID }

func (a *App) RenameUser(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardUsers, view.AdminUsers); err != nil {
		return err
	}
	u, err := pick(a.shownUsers, ref, profileID)
	if err != nil {
		return err
	}
	name, err := GetTextDefault(a.reader, "New username", u.Username, a.out)
	if err != nil {
		return err
	}
	if err := a.admin.RenameUser(ctx, u.ID, name); err != nil {
		return err
	}
	return a.Show(ctx)
}

func (a *App) DeleteUser(ctx context.Context, ref string) error {
	if err := a.on(view.DashboardUsers, view.AdminUsers); err != nil {
		return err
	}
	u, err := pick(a.shownUsers, ref, profileID)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %s?", u.Username), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.admin.DeleteUser(ctx, a.user, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s.\n", u.Username)
	return a.Show(ctx)
}

func (a *App) FilterAudit(ctx context.Context, action string) error {
	if err := a.on(view.DashboardAudit, view.AdminAudit); err != nil {
		return err
	}
	a.auditAction = strings.TrimSpace(action)
	return a.Show(ctx)
}

func (a *App) ExportAudit(ctx context.Context, action string) error {
	if err := a.on(view.DashboardAudit, view.AdminAudit); err != nil {
		return err
	}
	if strings.TrimSpace(action) == "" {
		action = a.auditAction
	}
	res, err := a.admin.ExportAuditLogs(ctx, action)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d entries to %s\nDownload: %s\n", res.Count, res.Key, res.URL)

	if a.config.ExportDir == "" {
		return nil
	}
	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		return err
	}
	dst := filepath.Join(dir, path.Base(res.Key))
	if _, err := netx.DownloadToFile(ctx, res.URL, dst); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	fmt.Fprintf(a.out, "Saved %s\n", dst)
	return nil
}

func (a *App) ChangeUsername(ctx context.Context) error {
	if err := a.on(view.DashboardSettings, view.AdminSettings); err != nil {
		return err
	}
	name, err := GetTextDefault(a.reader, "New username", a.user.Username, a.out)
	if err != nil {
		return err
	}
	if err := a.session.UpdateUsername(ctx, a.user, name); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Username updated.")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	if err := a.on(view.DashboardSettings, view.AdminSettings); err != nil {
		return err
	}
	password, err := GetPassword(a.out, "New password")
	if err != nil {
		return err
	}
	confirm, err := GetPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	if err := a.session.UpdatePassword(ctx, a.user, password, confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated.")
	return nil
}

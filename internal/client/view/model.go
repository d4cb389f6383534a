// Package view is the client's screen state machine. It decides which
// screen is shown, who may reach it and when the dashboard's background
// timers run.
package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
)

type State string

const (
	Landing State = "landing"

	DashboardActive        State = "dashboard/active"
	DashboardFinished      State = "dashboard/finished"
	DashboardArchived      State = "dashboard/archived"
	DashboardNotifications State = "dashboard/notifications"
	DashboardUsers         State = "dashboard/users"
	DashboardAudit         State = "dashboard/audit"
	DashboardSettings      State = "dashboard/settings"

	AdminHome     State = "admin/home"
	AdminUsers    State = "admin/users"
	AdminAudit    State = "admin/audit"
	AdminSettings State = "admin/settings"
)

// Area is the part of the state before the slash.
func (s State) Area() string {
	area, _, _ := strings.Cut(string(s), "/")
	return area
}

// Section is the part of the state after the slash.
func (s State) Section() string {
	_, section, _ := strings.Cut(string(s), "/")
	return section
}

var (
	ErrNotSignedIn = errors.New("sign in first")
	ErrForbidden   = errors.New("admin only")
	ErrUnknown     = errors.New("unknown section")
)

var dashboardSections = []string{"active", "finished", "archived", "notifications", "users", "audit", "settings"}

var adminSections = []string{"home", "users", "audit", "settings"}

func adminOnly(s State) bool {
	return s.Area() == "admin" || s == DashboardUsers || s == DashboardAudit
}

// Hooks run when the dashboard area is entered or left.
type Hooks struct {
	Mount   func()
	Unmount func()
}

type Model struct {
	state State
	role  string
	hooks Hooks
}

func New(h Hooks) *Model {
	return &Model{state: Landing, hooks: h}
}

func (m *Model) State() State { return m.state }

func (m *Model) IsAdmin() bool { return m.role == common.RoleAdmin }

// Mounted reports whether the dashboard area is shown.
func (m *Model) Mounted() bool { return m.state.Area() == "dashboard" }

func (m *Model) move(to State) {
	was := m.Mounted()
	m.state = to
	now := m.Mounted()

	switch {
	case !was && now && m.hooks.Mount != nil:
		m.hooks.Mount()
	case was && !now && m.hooks.Unmount != nil:
		m.hooks.Unmount()
	}
}

// SignIn routes admins to the admin home and everyone else to the active
// task list.
func (m *Model) SignIn(role string) State {
	m.role = role
	if m.IsAdmin() {
		m.move(AdminHome)
	} else {
		m.move(DashboardActive)
	}
	return m.state
}

func (m *Model) SignOut() {
	m.role = ""
	m.move(Landing)
}

// Navigate moves to target, which is either an area ("dashboard", "admin"),
// a section of the current area ("finished") or a full state
// ("admin/audit").
func (m *Model) Navigate(target string) (State, error) {
	if m.state == Landing {
		return m.state, ErrNotSignedIn
	}

	var to State
	switch {
	case target == "dashboard":
		to = DashboardActive
	case target == "admin":
		to = AdminHome
	case strings.Contains(target, "/"):
		to = State(target)
	default:
		to = State(m.state.Area() + "/" + target)
	}

	if !known(to) {
		return m.state, fmt.Errorf("%w: %s", ErrUnknown, target)
	}
	if adminOnly(to) && !m.IsAdmin() {
		return m.state, ErrForbidden
	}

	m.move(to)
	return m.state, nil
}

func known(s State) bool {
	var list []string
	switch s.Area() {
	case "dashboard":
		list = dashboardSections
	case "admin":
		list = adminSections
	}
	for _, sec := range list {
		if sec == s.Section() {
			return true
		}
	}
	return false
}

// Sections lists the sections of the current area the user may open.
func (m *Model) Sections() []string {
	var list []string
	switch m.state.Area() {
	case "dashboard":
		list = dashboardSections
	case "admin":
		list = adminSections
	default:
		return nil
	}

	out := make([]string, 0, len(list))
	for _, sec := range list {
		if adminOnly(State(m.state.Area()+"/"+sec)) && !m.IsAdmin() {
			continue
		}
		out = append(out, sec)
	}
	return out
}

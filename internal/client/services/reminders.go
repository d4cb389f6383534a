package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/effect"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

const (
	ReminderType     = "1hr_reminder"
	NotificationType = "task_reminder"

	endOfDay = "23:59:59"

	dueSoonMin = 0.92
	dueSoonMax = 1.08
)

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse(time.TimeOnly, s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}

// DueDateTime combines the task's due date and time in loc. A missing time
// means the end of that day. ok is false without a parsable due date.
func DueDateTime(t *models.Task, loc *time.Location) (time.Time, bool) {
	if t.DueDate == nil || *t.DueDate == "" {
		return time.Time{}, false
	}
	day, err := time.Parse(time.DateOnly, *t.DueDate)
	if err != nil {
		return time.Time{}, false
	}

	clockStr := endOfDay
	if t.DueTime != nil && *t.DueTime != "" {
		clockStr = *t.DueTime
	}
	clock, err := parseClock(clockStr)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc), true
}

// HoursUntilDue is the signed number of hours from now to the task's due
// moment in now's location.
func HoursUntilDue(t *models.Task, now time.Time) (float64, bool) {
	due, ok := DueDateTime(t, now.Location())
	if !ok {
		return 0, false
	}
	return due.Sub(now).Hours(), true
}

// IsDueSoon reports whether hours falls in the one-hour reminder window.
func IsDueSoon(hours float64) bool {
	return hours >= dueSoonMin && hours <= dueSoonMax
}

// ReminderChecker creates "due in 1 hour" notifications, at most one per
// task per local day.
//
// The tracking lookup and insert are not atomic: two checkers running at the
// same moment can both send a reminder.
type ReminderChecker struct {
	client        client.Client
	notifications *NotificationService
	logger        logging.Logger
	loc           *time.Location
	now           func() time.Time
}

func NewReminderChecker(c client.Client, n *NotificationService, l logging.Logger, loc *time.Location) *ReminderChecker {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderChecker{client: c, notifications: n, logger: l.With("module", "reminders"), loc: loc, now: time.Now}
}

// Check runs one pass and returns how many reminders were sent.
func (r *ReminderChecker) Check(ctx context.Context) (int, error) {
	if !r.client.HasSession() {
		return 0, nil
	}

	tasks, err := r.client.ListTasks(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("fetch tasks for reminders: %w", err)
	}

	now := r.now().In(r.loc)
	today := now.Format(time.DateOnly)

	sent := 0
	for _, t := range tasks {
		hours, ok := HoursUntilDue(t, now)
		if !ok || !IsDueSoon(hours) {
			continue
		}

		reminded, err := r.remind(ctx, t, today)
		if reminded {
			sent++
		}
		if err != nil {
			r.logger.Error(ctx, "task reminder failed", "task_id", t.ID, "error", err)
		}
	}
	return sent, nil
}

func (r *ReminderChecker) remind(ctx context.Context, t *models.Task, today string) (bool, error) {
	track := models.Tracking{TaskID: t.ID, NotificationType: ReminderType, SentDate: today}

	found, err := r.client.FindTracking(ctx, track)
	if err != nil {
		return false, fmt.Errorf("find tracking: %w", err)
	}
	if found {
		return false, nil
	}

	taskID := t.ID
	_, err = r.notifications.Create(ctx, models.NewNotification{
		TaskID:  &taskID,
		Type:    NotificationType,
		Title:   "⏰ Task Due Soon",
		Message: fmt.Sprintf("\"%s\" is due in 1 hour!", t.Title),
	})
	if err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}

	if err := r.client.InsertTracking(ctx, track); err != nil {
		return true, fmt.Errorf("insert tracking: %w", err)
	}
	return true, nil
}

// Run checks immediately and then every interval until ctx is done.
func (r *ReminderChecker) Run(ctx context.Context, interval time.Duration) {
	effect.Every(ctx, interval, true, func(ctx context.Context) {
		n, err := r.Check(ctx)
		if err != nil {
			r.logger.Error(ctx, "reminder check", "error", err)
			return
		}
		if n > 0 {
			r.logger.Info(ctx, "reminders sent", "count", n)
		}
	})
}

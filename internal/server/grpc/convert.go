package grpc

import (
	"github.com/dmitrijs2005/taskboard/internal/rpc"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

func toRPCProfile(p *models.Profile) rpc.Profile {
	return rpc.Profile{ID: p.ID, Username: p.Username, Role: p.Role, Email: p.Email, CreatedAt: p.CreatedAt}
}

func toRPCTask(t *models.Task) rpc.Task {
	return rpc.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		IsCompleted: t.IsCompleted,
		IsArchived:  t.IsArchived,
		CreatedAt:   t.CreatedAt,
	}
}

func toRPCNotification(n *models.Notification) rpc.Notification {
	return rpc.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		TaskID:    n.TaskID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func toRPCAuditEntry(e *models.AuditLogEntry) rpc.AuditLogEntry {
	return rpc.AuditLogEntry{
		ID:         e.ID,
		UserID:     e.UserID,
		Username:   e.Username,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

func fromRPCAuditEntry(e rpc.AuditLogEntry) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		UserID:     e.UserID,
		Username:   e.Username,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

func mapSlice[T, R any](in []*T, f func(*T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

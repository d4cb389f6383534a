package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

const auditListLimit = 500

type AdminService struct {
	client client.Client
}

func NewAdminService(c client.Client) *AdminService {
	return &AdminService{client: c}
}

// Users lists non-admin profiles, newest first.
func (s *AdminService) Users(ctx context.Context) ([]*models.Profile, error) {
	return s.client.ListProfiles(ctx)
}

func (s *AdminService) RenameUser(ctx context.Context, id, username string) error {
	username = strings.TrimSpace(username)
	if len([]rune(username)) < minUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters", client.ErrValidation, minUsernameLen)
	}
	return s.client.UpdateProfile(ctx, id, username)
}

// DeleteUser removes the profile of id. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, self *models.User, id string) error {
	if self != nil && self.ID == id {
		return fmt.Errorf("%w: you cannot delete your own account", client.ErrValidation)
	}
	return s.client.DeleteProfile(ctx, id)
}

// AuditLogs returns up to 500 entries, newest first. An empty action means
// all actions.
func (s *AdminService) AuditLogs(ctx context.Context, action string) ([]*models.AuditLogEntry, error) {
	return s.client.ListAuditLogs(ctx, strings.TrimSpace(action), auditListLimit)
}

func (s *AdminService) ExportAuditLogs(ctx context.Context, action string) (*models.ExportResult, error) {
	return s.client.ExportAuditLogs(ctx, strings.TrimSpace(action))
}

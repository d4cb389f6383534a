package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

// canAccessProfile: owners see their own profile, admins see everyone's.
func canAccessProfile(caller models.Caller, id string) bool {
	return id == caller.UserID || caller.IsAdmin()
}

// GetProfile returns the profile with id, or the caller's when id is empty.
func (s *UserService) GetProfile(ctx context.Context, caller models.Caller, id string) (*models.Profile, error) {
	if id == "" {
		id = caller.UserID
	}
	if !canAccessProfile(caller, id) {
		return nil, common.ErrorForbidden
	}
	return s.repomanager.Profiles(s.db).GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, caller models.Caller, id, username string) error {
	if id == "" {
		id = caller.UserID
	}
	if !canAccessProfile(caller, id) {
		return common.ErrorForbidden
	}
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return err
	}
	return s.repomanager.Profiles(s.db).UpdateUsername(ctx, id, username)
}

// ListProfiles returns non-admin profiles, newest first.
func (s *UserService) ListProfiles(ctx context.Context, caller models.Caller) ([]*models.Profile, error) {
	if !caller.IsAdmin() {
		return nil, common.ErrorForbidden
	}
	return s.repomanager.Profiles(s.db).ListNonAdmin(ctx)
}

// DeleteProfile removes another user's profile and revokes their sessions.
// The auth identity is kept. Admins cannot delete themselves.
func (s *UserService) DeleteProfile(ctx context.Context, caller models.Caller, id string) error {
	if !caller.IsAdmin() {
		return common.ErrorForbidden
	}
	if id == "" || id == caller.UserID {
		return validationError("cannot delete your own account")
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Profiles(tx).Delete(ctx, id); err != nil {
			return err
		}
		_, err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, id)
		return err
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/effect"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6

	// how long sign-out waits for queued audit writes
	signOutFlush = 2 * time.Second

	keyLastEmail = "last_email"
)

// TokenStore keeps the refresh token between runs.
type TokenStore interface {
	RefreshToken() (string, error)
	SaveRefreshToken(token string) error
	Clear() error
}

// Preferences is a small persistent key/value store.
type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type SignUpInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

func (in SignUpInput) validate() error {
	switch {
	case in.Password != in.ConfirmPassword:
		return fmt.Errorf("%w: passwords do not match", client.ErrValidation)
	case len([]rune(in.Username)) < minUsernameLen:
		return fmt.Errorf("%w: username must be at least %d characters", client.ErrValidation, minUsernameLen)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", client.ErrValidation)
	case len(in.Password) < minPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", client.ErrValidation, minPasswordLen)
	}
	return nil
}

// SessionService signs users up, in and out and keeps the session alive
// across restarts through the TokenStore.
type SessionService struct {
	client client.Client
	tokens TokenStore
	prefs  Preferences
	audit  *AuditLogger
	runner *effect.Runner
	logger logging.Logger
}

func NewSessionService(c client.Client, tokens TokenStore, prefs Preferences, a *AuditLogger, r *effect.Runner, l logging.Logger) *SessionService {
	s := &SessionService{client: c, tokens: tokens, prefs: prefs, audit: a, runner: r, logger: l.With("module", "session")}
	c.SetTokenObserver(s.persist)
	return s
}

func (s *SessionService) persist(refreshToken string) {
	if err := s.tokens.SaveRefreshToken(refreshToken); err != nil {
		s.logger.Warn(context.Background(), "cannot store session", "error", err)
	}
}

func (s *SessionService) SignUp(ctx context.Context, in SignUpInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := in.validate(); err != nil {
		return err
	}
	return s.client.SignUp(ctx, in.Email, in.Password, in.Username)
}

// SignIn authenticates and returns the signed-in user.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", client.ErrValidation)
	}
	if err := s.client.SignIn(ctx, email, password); err != nil {
		return nil, err
	}

	user, err := s.client.GetUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.prefs.Set(ctx, keyLastEmail, email); err != nil {
		s.logger.Warn(ctx, "cannot remember email", "error", err)
	}
	s.audit.Login(ctx, user.Username)
	return user, nil
}

// Resume restores the session saved by a previous run. It returns nil, nil
// when there is nothing to restore or the saved session has expired.
func (s *SessionService) Resume(ctx context.Context) (*models.User, error) {
	token, err := s.tokens.RefreshToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	if err := s.client.Resume(ctx, token); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = s.tokens.Clear()
			return nil, nil
		}
		return nil, err
	}
	return s.client.GetUser(ctx)
}

// CurrentUser returns the signed-in user or nil.
func (s *SessionService) CurrentUser(ctx context.Context) (*models.User, error) {
	if !s.client.HasSession() {
		return nil, nil
	}
	user, err := s.client.GetUser(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		return nil, nil
	}
	return user, err
}

// SignOut records the logout, revokes the session and forgets the stored
// token. The local session ends even when the server is unreachable.
func (s *SessionService) SignOut(ctx context.Context, user *models.User) error {
	if user != nil {
		s.audit.Logout(ctx, user.Username)
	}
	if err := s.runner.Flush(ctx, signOutFlush); err != nil {
		s.logger.Warn(ctx, "pending audit writes not flushed", "error", err)
	}

	err := s.client.SignOut(ctx)
	if cerr := s.tokens.Clear(); cerr != nil {
		s.logger.Warn(ctx, "cannot clear stored session", "error", cerr)
	}
	return err
}

func (s *SessionService) LastEmail(ctx context.Context) string {
	v, _, err := s.prefs.Get(ctx, keyLastEmail)
	if err != nil {
		s.logger.Warn(ctx, "cannot read last email", "error", err)
	}
	return v
}

func (s *SessionService) UpdateUsername(ctx context.Context, user *models.User, username string) error {
	username = strings.TrimSpace(username)
	if len([]rune(username)) < minUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters", client.ErrValidation, minUsernameLen)
	}
	if err := s.client.UpdateProfile(ctx, user.ID, username); err != nil {
		return err
	}
	user.Username = username
	return nil
}

// UpdatePassword changes the password. The server revokes every session of
// the user, so the client signs in again with the new password.
func (s *SessionService) UpdatePassword(ctx context.Context, user *models.User, password, confirm string) error {
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", client.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", client.ErrValidation, minPasswordLen)
	}
	if err := s.client.UpdatePassword(ctx, password); err != nil {
		return err
	}
	return s.client.SignIn(ctx, user.Email, password)
}

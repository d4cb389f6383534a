package notify

import (
	"context"
	"fmt"
	"sync"
)

type Permission string

const (
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

// Store persists the user's answer.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Prompter asks the user whether notifications may be shown.
type Prompter interface {
	Ask(ctx context.Context) (bool, error)
}

type PrompterFunc func(ctx context.Context) (bool, error)

func (f PrompterFunc) Ask(ctx context.Context) (bool, error) { return f(ctx) }

const permissionKey = "notification_permission"

type Permissions struct {
	mu       sync.Mutex
	store    Store
	prompter Prompter
	notifier Notifier
}

func NewPermissions(store Store, prompter Prompter, notifier Notifier) *Permissions {
	return &Permissions{store: store, prompter: prompter, notifier: notifier}
}

func (p *Permissions) State(ctx context.Context) (Permission, error) {
	if p.notifier == nil || !p.notifier.Supported() {
		return PermissionUnsupported, nil
	}
	v, _, err := p.store.Get(ctx, permissionKey)
	if err != nil {
		return PermissionDefault, fmt.Errorf("read permission: %w", err)
	}
	switch Permission(v) {
	case PermissionGranted, PermissionDenied:
		return Permission(v), nil
	}
	return PermissionDefault, nil
}

// Request returns true when notifications may be shown. The user is asked
// at most once; a denied or unsupported device is never prompted.
func (p *Permissions) Request(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, err := p.State(ctx)
	if err != nil {
		return false, err
	}

	switch state {
	case PermissionGranted:
		return true, nil
	case PermissionDenied, PermissionUnsupported:
		return false, nil
	}

	allowed, err := p.prompter.Ask(ctx)
	if err != nil {
		return false, err
	}

	answer := PermissionDenied
	if allowed {
		answer = PermissionGranted
	}
	if err := p.store.Set(ctx, permissionKey, string(answer)); err != nil {
		return allowed, fmt.Errorf("save permission: %w", err)
	}
	return allowed, nil
}

// Granted reports whether notifications are currently allowed, without
// prompting.
func (p *Permissions) Granted(ctx context.Context) bool {
	state, err := p.State(ctx)
	return err == nil && state == PermissionGranted
}

// Show delivers n when permission is granted and reports whether it did.
func (p *Permissions) Show(ctx context.Context, n Notification) (bool, error) {
	if !p.Granted(ctx) {
		return false, nil
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// Package credential keeps the session refresh token in the operating
// system keyring, falling back to an encrypted file when no native backend
// is available.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const refreshTokenKey = "refresh_token"

type Store struct {
	ring keyring.Keyring
}

// terminalPrompt is a test seam for keyring.TerminalPrompt.
var terminalPrompt keyring.PromptFunc = keyring.TerminalPrompt

// filePassword returns the password source for the file backend: the
// configured password, or an interactive prompt when none is set.
func filePassword(password string) keyring.PromptFunc {
	if password != "" {
		return keyring.FixedStringPrompt(password)
	}
	return func(prompt string) (string, error) {
		return terminalPrompt(prompt)
	}
}

// Open opens the keyring for service. dir and password are used by the
// file backend only.
func Open(service, dir, password string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         filePassword(password),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// RefreshToken returns the stored token or "" when none is saved.
func (s *Store) RefreshToken() (string, error) {
	item, err := s.ring.Get(refreshTokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", refreshTokenKey, err)
	}
	return string(item.Data), nil
}

// SaveRefreshToken stores token; an empty token clears the entry.
func (s *Store) SaveRefreshToken(token string) error {
	if token == "" {
		return s.Clear()
	}
	err := s.ring.Set(keyring.Item{
		Key:   refreshTokenKey,
		Data:  []byte(token),
		Label: "Taskboard session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", refreshTokenKey, err)
	}
	return nil
}

func (s *Store) Clear() error {
	err := s.ring.Remove(refreshTokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", refreshTokenKey, err)
	}
	return nil
}

// Package secret reads and stores cluster passwords in the OS credential
// store. Passwords are keyed by username within a service namespace.
package secret

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

// DefaultService is the keyring namespace used when none is configured.
const DefaultService = "cqltask"

var (
	// ErrSecretNotFound is returned when no password is stored for a user.
	ErrSecretNotFound = errors.New("secret: no password stored for user")

	// ErrEmptyUsername is returned when a lookup has no username.
	ErrEmptyUsername = errors.New("secret: username is required")
)

// Store is a thread-safe password store backed by a keyring.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the OS keyring for service. Platforms without a native
// credential store fall back to an encrypted file under ~/.cqltask.
//
// Parameters:
//   - service: Keyring namespace; empty uses DefaultService
//
// Returns:
//   - *Store: The opened store
//   - error: Error if no backend is available
func Open(service string) (*Store, error) {
	if service == "" {
		service = DefaultService
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:      service,
		PassPrefix:       service,
		WinCredPrefix:    service,
		FileDir:          "~/.cqltask/keyring",
		FilePasswordFunc: keyring.TerminalPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("secret: failed to open keyring %q: %w", service, err)
	}

	return NewStore(ring), nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Lookup returns the password stored for username.
func (s *Store) Lookup(username string) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := s.ring.Get(username)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w %q", ErrSecretNotFound, username)
	}
	if err != nil {
		return "", fmt.Errorf("secret: failed to read %q: %w", username, err)
	}
	if len(item.Data) == 0 {
		return "", fmt.Errorf("%w %q", ErrSecretNotFound, username)
	}

	return string(item.Data), nil
}

// Set stores password for username, replacing any previous value.
func (s *Store) Set(username, password string) error {
	if username == "" {
		return ErrEmptyUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ring.Set(keyring.Item{
		Key:         username,
		Data:        []byte(password),
		Label:       "cqltask password for " + username,
		Description: "Cassandra password",
	})
}

// Remove deletes the password stored for username. Removing a missing
// entry is not an error.
func (s *Store) Remove(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ring.Remove(username); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}

	return nil
}

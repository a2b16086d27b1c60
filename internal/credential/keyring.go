// Package credential keeps API keys in the operating system keyring.
package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "mailagent"

// BackendService is the key under which the backend bearer token is
// stored.
const BackendService = "backend"

// ErrNotFound is returned when no key is stored for a service.
var ErrNotFound = errors.New("credential not found")

// Open returns the system keyring, falling back to an encrypted file
// under configDir when no native backend is available.
func Open(configDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(configDir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("mailagent-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Store saves, loads and removes API keys by service name.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps ring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func itemKey(service string) string {
	return "apikey." + service
}

// SaveAPIKey stores key for service, replacing any previous value.
func (s *Store) SaveAPIKey(service, key string) error {
	if service == "" {
		return errors.New("service name is required")
	}
	err := s.ring.Set(keyring.Item{
		Key:         itemKey(service),
		Data:        []byte(key),
		Label:       "mailagent " + service + " API key",
		Description: "API key",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", service, err)
	}
	return nil
}

// LoadAPIKey returns the key stored for service, or ErrNotFound.
func (s *Store) LoadAPIKey(service string) (string, error) {
	item, err := s.ring.Get(itemKey(service))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", service, err)
	}
	return string(item.Data), nil
}

// RemoveAPIKey deletes the key for service. Removing a missing key is
// not an error.
func (s *Store) RemoveAPIKey(service string) error {
	err := s.ring.Remove(itemKey(service))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", service, err)
	}
	return nil
}

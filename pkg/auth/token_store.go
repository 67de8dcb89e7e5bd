package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "sgyexport"
	keyringPrefix  = "schoology_"
)

// TokenPair is an authorized OAuth1 user token and its secret.
type TokenPair struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// TokenStore persists the user token pair obtained by the authorization
// flow so later runs skip the interactive step.
type TokenStore interface {
	Store(consumerKey string, pair TokenPair) error
	Retrieve(consumerKey string) (TokenPair, error)
	Delete(consumerKey string) error
}

// ErrTokenNotFound is returned when no token pair is stored for a consumer key.
var ErrTokenNotFound = fmt.Errorf("token pair not found")

// KeyringStore implements TokenStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based token store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a token pair to the system keychain
func (k *KeyringStore) Store(consumerKey string, pair TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal token pair: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+consumerKey, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets a token pair from the system keychain
func (k *KeyringStore) Retrieve(consumerKey string) (TokenPair, error) {
	data, err := keyring.Get(keyringService, keyringPrefix+consumerKey)
	if err != nil {
		if err == keyring.ErrNotFound {
			return TokenPair{}, ErrTokenNotFound
		}
		return TokenPair{}, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal([]byte(data), &pair); err != nil {
		return TokenPair{}, fmt.Errorf("failed to unmarshal token pair: %w", err)
	}

	return pair, nil
}

// Delete removes a token pair from the system keychain
func (k *KeyringStore) Delete(consumerKey string) error {
	err := keyring.Delete(keyringService, keyringPrefix+consumerKey)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// Manager handles token storage with fallback mechanisms
type Manager struct {
	stores []TokenStore
}

// NewManager creates a token manager: the system keyring when available,
// with an encrypted file under the user config dir as fallback.
func NewManager(passphrase string) (*Manager, error) {
	var stores []TokenStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "tokens.enc"), passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// Store saves a token pair using the first store that accepts it
func (m *Manager) Store(consumerKey string, pair TokenPair) error {
	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(consumerKey, pair); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("failed to store token pair: %w", lastErr)
}

// Retrieve gets a token pair from the first store that has it
func (m *Manager) Retrieve(consumerKey string) (TokenPair, error) {
	for _, store := range m.stores {
		if pair, err := store.Retrieve(consumerKey); err == nil {
			return pair, nil
		}
	}
	return TokenPair{}, ErrTokenNotFound
}

// Delete removes a token pair from every store
func (m *Manager) Delete(consumerKey string) error {
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(consumerKey); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// getConfigDir returns the sgyexport config directory, creating it if needed
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "sgyexport")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

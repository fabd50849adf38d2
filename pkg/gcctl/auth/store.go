package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	StorageFile     = "file"
	StorageKeychain = "keychain"

	keychainService = "gcctl"
)

// ErrNotFound is returned by Store.Load when no credential has been saved.
var ErrNotFound = errors.New("no stored credential")

// Store persists the single current credential.
type Store interface {
	Load() (Credential, error)
	Save(Credential) error
	Delete() error
}

// NewStore returns the store for the given storage mode. An empty mode means
// file storage.
func NewStore(mode, path, account string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", StorageFile:
		if path == "" {
			return nil, errors.New("credential file path is required")
		}
		return &FileStore{Path: path}, nil
	case StorageKeychain:
		if account == "" {
			return nil, errors.New("keychain storage requires a client id")
		}
		return &KeyringStore{Service: keychainService, Account: account}, nil
	default:
		return nil, fmt.Errorf("unknown token storage: %s", mode)
	}
}

// FileStore keeps the credential as a JSON document on disk.
type FileStore struct {
	Path string
}

func (s *FileStore) Load() (Credential, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, fmt.Errorf("failed to read credential file: %w", err)
	}
	return decodeCredential(content)
}

func (s *FileStore) Save(cred Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential dir: %w", err)
	}
	content, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	return os.WriteFile(s.Path, content, 0o600)
}

func (s *FileStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

// KeyringStore keeps the credential in the OS keychain, one entry per client id.
type KeyringStore struct {
	Service string
	Account string
}

func (s *KeyringStore) Load() (Credential, error) {
	secret, err := keyring.Get(s.Service, s.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, fmt.Errorf("failed to read keychain: %w", err)
	}
	return decodeCredential([]byte(secret))
}

func (s *KeyringStore) Save(cred Credential) error {
	content, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := keyring.Set(s.Service, s.Account, string(content)); err != nil {
		return fmt.Errorf("failed to write keychain: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete() error {
	if err := keyring.Delete(s.Service, s.Account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keychain entry: %w", err)
	}
	return nil
}

func decodeCredential(content []byte) (Credential, error) {
	var cred Credential
	if err := json.Unmarshal(content, &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to parse credential: %w", err)
	}
	if cred.AccessToken == "" {
		return Credential{}, errors.New("failed to parse credential: access_token is empty")
	}
	return cred, nil
}

/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func sampleCredential() Credential {
	return Credential{
		AccessToken: "abc",
		TokenType:   "bearer",
		ExpiresIn:   86400,
		AcquiredAt:  time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "nested", "auth.json")}
	cred := sampleCredential()

	require.NoError(t, store.Save(cred))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cred, loaded)

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreOverwrites(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "auth.json")}
	require.NoError(t, store.Save(sampleCredential()))

	next := sampleCredential()
	next.AccessToken = "def"
	require.NoError(t, store.Save(next))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "def", loaded.AccessToken)
}

func TestFileStoreLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := (&FileStore{Path: filepath.Join(dir, "missing.json")}).Load()
	require.ErrorIs(t, err, ErrNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{bad json"), 0o600))
	_, err = (&FileStore{Path: bad}).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "failed to parse credential")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"token_type":"bearer"}`), 0o600))
	_, err = (&FileStore{Path: empty}).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token is empty")
}

func TestFileStoreDelete(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "auth.json")}
	require.NoError(t, store.Delete())

	require.NoError(t, store.Save(sampleCredential()))
	require.NoError(t, store.Delete())
	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := &KeyringStore{Service: keychainService, Account: "client-id"}

	_, err := store.Load()
	require.ErrorIs(t, err, ErrNotFound)

	cred := sampleCredential()
	require.NoError(t, store.Save(cred))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cred, loaded)

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete())
	_, err = store.Load()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("", "/tmp/auth.json", "")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = NewStore("Keychain", "", "client")
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, store)

	_, err = NewStore("file", "", "")
	require.Error(t, err)

	_, err = NewStore("keychain", "", "")
	require.Error(t, err)

	_, err = NewStore("vault", "/tmp/auth.json", "client")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown token storage")
}

package session

import (
	"errors"

	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/keyring"
	"github.com/julianstephens/famtrack/internal/storage"
)

// ErrNoSession is returned by Vault.Load when nothing is persisted.
var ErrNoSession = errors.New("no persisted session")

// Vault is durable storage for the serialized session record.
type Vault interface {
	Load() (string, error)
	Save(data string) error
	Clear() error
}

// StorageVault keeps the session under the "user" key of a storage.Provider.
type StorageVault struct {
	Store storage.Provider
}

func (v StorageVault) Load() (string, error) {
	data, err := v.Store.Get(constants.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNoSession
	}
	return data, err
}

func (v StorageVault) Save(data string) error {
	return v.Store.Set(constants.KeyUser, data)
}

func (v StorageVault) Clear() error {
	return v.Store.Delete(constants.KeyUser)
}

// KeyringVault keeps the session in the OS keyring.
type KeyringVault struct{}

func (KeyringVault) Load() (string, error) {
	data, err := keyring.GetSession()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSession
	}
	return data, err
}

func (KeyringVault) Save(data string) error { return keyring.SetSession(data) }

func (KeyringVault) Clear() error { return keyring.DeleteSession() }

// NewVault picks the vault for a session backend name.
func NewVault(backend string, store storage.Provider) (Vault, error) {
	switch backend {
	case constants.SessionBackendKeyring:
		if !keyring.IsAvailable() {
			return nil, keyring.ErrKeyringUnavailable
		}
		return KeyringVault{}, nil
	case constants.SessionBackendFile, "":
		return StorageVault{Store: store}, nil
	default:
		return nil, errors.New("unknown session backend: " + backend)
	}
}

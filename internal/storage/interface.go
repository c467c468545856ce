package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key has no value
var ErrNotFound = errors.New("key not found")

// Provider is durable key/value storage for client state. Values are plain
// strings; callers serialize structured values as JSON.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error

	GetConfigPath() string
}

// GetOr returns the stored value for key, or def when absent or unreadable.
func GetOr(p Provider, key, def string) string {
	v, err := p.Get(key)
	if err != nil || v == "" {
		return def
	}
	return v
}

// GetJSON decodes the value stored under key into out.
func GetJSON(p Provider, key string, out any) error {
	raw, err := p.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores v under key as JSON.
func SetJSON(p Provider, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return p.Set(key, string(raw))
}

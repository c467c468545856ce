package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"API_URL", "WS_URL", "CONFIG_DIR", "DEBUG", "POLL_INTERVAL", "RECONNECT_DELAY", "HTTP_TIMEOUT", "SESSION_BACKEND"} {
		t.Setenv(Prefix+"_"+k, "")
		_ = os.Unsetenv(Prefix + "_" + k)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.ReconnectDelay)
	}
	if filepath.Base(cfg.ConfigDir) != "famtrack" || cfg.ConfigDir[0] == '~' {
		t.Errorf("ConfigDir = %q, want expanded path", cfg.ConfigDir)
	}
}

func TestNewFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FAMTRACK_API_URL", "https://habits.example.com/api/")
	t.Setenv("FAMTRACK_CONFIG_DIR", dir)
	t.Setenv("FAMTRACK_POLL_INTERVAL", "5s")
	t.Setenv("FAMTRACK_SESSION_BACKEND", "keyring")
	t.Setenv("FAMTRACK_DEBUG", "true")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.APIURL != "https://habits.example.com/api" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, dir)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.SessionBackend != "keyring" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "famtrack.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath())
	}
}

func TestInvalidSessionBackend(t *testing.T) {
	t.Setenv("FAMTRACK_SESSION_BACKEND", "cookie")
	if _, err := New(); err == nil {
		t.Error("New() should reject unknown session backend")
	}
}

func TestOverride(t *testing.T) {
	cfg := Default()
	dir := t.TempDir()
	err := cfg.Override(Flags{APIURL: "http://api:9000/api", ConfigDir: dir, Debug: true})
	if err != nil {
		t.Fatalf("Override() error = %v", err)
	}
	if cfg.APIURL != "http://api:9000/api" || cfg.ConfigDir != dir || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.WSURL != "ws://localhost:8080/ws" {
		t.Errorf("WSURL changed by empty flag: %q", cfg.WSURL)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/x/y", filepath.Join(home, "x/y")},
		{"/abs/path", "/abs/path"},
		{"rel/~", "rel/~"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

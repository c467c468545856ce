package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/famtrack/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, exe string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if exe == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func writeLockfile(t *testing.T, configDir, content string) {
	t.Helper()
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, constants.NotifierLockfileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetTrayAppConfigDir(t *testing.T) {
	tempDir := withConfigDir(t)

	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(tempDir, constants.TrayAppIdentifier); dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}

	trayDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	settings := `{"settings": {"lockfile_dir": "/custom/famtrack/dir"}}`
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/custom/famtrack/dir" {
		t.Errorf("expected custom dir, got %s", dir)
	}
}

func TestTrayNotify(t *testing.T) {
	var got WebhookPayload
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Famtrack-Secret")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	port := srv.URL[strings.LastIndex(srv.URL, ":")+1:]

	configDir := withConfigDir(t)
	withProcess(t, constants.TrayExecutablePrefix+"-linux")
	writeLockfile(t, configDir, fmt.Sprintf("%s|1234|s3cret", port))

	if err := NewTray().Notify("Bob completed a habit"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got.Text != "Bob completed a habit" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}
	if gotSecret != "s3cret" {
		t.Errorf("secret = %q", gotSecret)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name    string
		content string
		exe     string
		wantErr bool
	}{
		{"valid", "8080|42|secret", constants.TrayExecutablePrefix, false},
		{"malformed", "8080|42", constants.TrayExecutablePrefix, true},
		{"bad port", "abc|42|secret", constants.TrayExecutablePrefix, true},
		{"port out of range", "70000|42|secret", constants.TrayExecutablePrefix, true},
		{"bad pid", "8080|x|secret", constants.TrayExecutablePrefix, true},
		{"empty secret", "8080|42| ", constants.TrayExecutablePrefix, true},
		{"no process", "8080|42|secret", "", true},
		{"wrong process", "8080|42|secret", "bash", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withProcess(t, tt.exe)
			path := filepath.Join(t.TempDir(), "lock")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, _, err := findAndValidateTrayProcess(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, _, err := findAndValidateTrayProcess(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("missing lockfile err = %v, want ErrTrayNotRunning", err)
	}
}

func TestFallbackAndMulti(t *testing.T) {
	var primary, secondary []string
	failing := Func(func(s string) error { primary = append(primary, s); return errors.New("down") })
	ok := Func(func(s string) error { secondary = append(secondary, s); return nil })

	if err := (Fallback{Primary: failing, Secondary: ok}).Notify("hi"); err != nil {
		t.Fatalf("Fallback: %v", err)
	}
	if len(primary) != 1 || len(secondary) != 1 {
		t.Errorf("primary=%v secondary=%v", primary, secondary)
	}

	err := Multi{ok, failing, Log{}}.Notify("x")
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Errorf("Multi error = %v", err)
	}
	if len(secondary) != 2 {
		t.Errorf("Multi did not reach every notifier: %v", secondary)
	}
}

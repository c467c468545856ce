package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/famtrack/internal/api"
	"github.com/julianstephens/famtrack/internal/config"
	"github.com/julianstephens/famtrack/internal/dashboard"
	apperrors "github.com/julianstephens/famtrack/internal/errors"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/realtime"
	"github.com/julianstephens/famtrack/internal/session"
	"github.com/julianstephens/famtrack/internal/storage"
	"github.com/julianstephens/famtrack/internal/storage/sqlite"
	"github.com/julianstephens/famtrack/internal/utils"
)

var (
	// ErrNotLoggedIn is returned by commands that need a session.
	ErrNotLoggedIn = errors.New("not logged in, run 'famtrack login'")
	// ErrNoFamily is returned by commands that need group membership.
	ErrNoFamily = errors.New("you are not in a family yet, run 'famtrack family create' or 'famtrack family join'")
	// ErrAborted is returned when a confirmation prompt is declined.
	ErrAborted = errors.New("aborted")
)

// Globals are the flags accepted by every command.
type Globals struct {
	ConfigDir      string `help:"Config directory (default ~/.config/famtrack)." type:"path"`
	APIURL         string `name:"api-url" help:"Backend REST base URL."`
	WSURL          string `name:"ws-url" help:"Backend broker URL."`
	Debug          bool   `help:"Enable debug logging."`
	SessionBackend string `help:"Where the session is kept (file or keyring)."`
	Ephemeral      bool   `help:"Keep client state in memory only."`
}

// Flags converts the global flags into config overrides.
func (g Globals) Flags() config.Flags {
	return config.Flags{
		APIURL:         g.APIURL,
		WSURL:          g.WSURL,
		ConfigDir:      g.ConfigDir,
		Debug:          g.Debug,
		SessionBackend: g.SessionBackend,
	}
}

// Context is passed to every command's Run method.
type Context struct {
	Ctx     context.Context
	Config  *config.Config
	Store   storage.Provider
	Session *session.Store
	API     *api.Client
	Out     io.Writer
	Now     func() time.Time
}

// NewContext opens local state, restores the session and builds the API
// client. With ephemeral set nothing is written to disk.
func NewContext(ctx context.Context, cfg *config.Config, ephemeral bool) (*Context, error) {
	var store storage.Provider
	if ephemeral {
		store = storage.NewMemoryStore()
	} else {
		store = sqlite.NewStore(cfg.DatabasePath())
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load local state: %w", err)
	}

	vault, err := session.NewVault(cfg.SessionBackend, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	sess := session.New(vault, nil)
	if err := sess.Restore(); err != nil {
		store.Close()
		return nil, err
	}

	client := api.New(cfg.APIURL, sess,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithDebugLogging(cfg.Debug),
	)
	sess.SetAuthenticator(client)

	return &Context{
		Ctx:     ctx,
		Config:  cfg,
		Store:   store,
		Session: sess,
		API:     client,
		Out:     os.Stdout,
		Now:     time.Now,
	}, nil
}

// ErrorMessage renders a command error as one line for the terminal.
func ErrorMessage(err error) string {
	var loginErr *session.LoginError
	if errors.As(err, &loginErr) {
		return loginErr.Message
	}
	return apperrors.Message(err)
}

// Close releases local state.
func (c *Context) Close() error {
	return c.Store.Close()
}

// RequireSession is the route guard for commands that need a signed-in user.
func (c *Context) RequireSession() (*models.User, error) {
	user := c.Session.User()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}

// RequireFamily additionally requires group membership.
func (c *Context) RequireFamily() (*models.User, error) {
	user, err := c.RequireSession()
	if err != nil {
		return nil, err
	}
	if !user.HasFamily() {
		return nil, ErrNoFamily
	}
	return user, nil
}

// Engine builds a dashboard engine for one-shot commands and loads it for
// date ("" for today).
func (c *Context) Engine(date string) (*dashboard.Engine, error) {
	e := dashboard.New(c.API, c.Session,
		dashboard.WithPrefs(c.Store),
		dashboard.WithClock(c.Now),
	)
	if date != "" && date != e.SelectedDate() {
		return e, e.SetSelectedDate(c.Ctx, date)
	}
	return e, e.LoadData(c.Ctx, false)
}

// Realtime builds a broker channel authenticated with the session token.
func (c *Context) Realtime() *realtime.Channel {
	return realtime.New(c.Config.WSURL,
		realtime.WithTokenSource(c.Session),
		realtime.WithReconnectDelay(c.Config.ReconnectDelay),
		realtime.WithDialTimeout(c.Config.HTTPTimeout),
	)
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) print(args ...any) {
	fmt.Fprint(c.Out, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

func (c *Context) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.println(string(out))
	return nil
}

// resolveDate accepts "", "today", "yesterday", "tomorrow" or YYYY-MM-DD.
func resolveDate(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return utils.FormatDate(now), nil
	case "yesterday":
		return utils.FormatDate(now.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return utils.FormatDate(now.AddDate(0, 0, 1)), nil
	}
	if _, err := utils.ParseDate(s); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", s)
	}
	return s, nil
}

// resolveMonth accepts "" for the current month or YYYY-MM.
func resolveMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %s (expected YYYY-MM)", s)
	}
	return t, nil
}

var weekdayNames = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// parseWeekdays accepts names or numbers 1=Mon .. 7=Sun, comma-separated.
func parseWeekdays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if d, ok := weekdayNames[part]; ok {
			days = append(days, d)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 7 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, n)
	}
	return models.NormalizeDays(days), nil
}

func formatWeekdays(days []int) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = time.Weekday(d % 7).String()[:3]
	}
	return strings.Join(names, ",")
}

// confirm asks a yes/no question unless yes is already set.
func confirm(yes bool, title string) error {
	if yes {
		return nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

func displayName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func mark(done bool) string {
	if done {
		return "✓"
	}
	return "○"
}

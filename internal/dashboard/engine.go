// Package dashboard keeps the signed-in user's view of habits, the
// selected day's logs, the week's logs and the group roster in step with
// the backend. Reads are cached between full reloads; writes always go to
// the server and are followed by a full reload. Only drag-reorder is
// applied optimistically.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/famtrack/internal/constants"
	apperrors "github.com/julianstephens/famtrack/internal/errors"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/metrics"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/notifier"
	"github.com/julianstephens/famtrack/internal/storage"
	"github.com/julianstephens/famtrack/internal/utils"
)

var (
	// ErrNotLoggedIn is returned when no session user is available.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrUnknownHabit is returned for habit ids not in the current snapshot.
	ErrUnknownHabit = errors.New("habit not found")
)

// API is the subset of the backend client the engine uses.
type API interface {
	Habits(ctx context.Context) ([]models.Habit, error)
	FamilyLogs(ctx context.Context, date string) ([]models.HabitLog, error)
	FamilyLogsRange(ctx context.Context, start, end string) ([]models.HabitLog, error)
	MyFamily(ctx context.Context) (*models.Family, error)
	Log(ctx context.Context, req models.LogRequest) (*models.HabitLog, error)
	ReorderHabits(ctx context.Context, orders []models.HabitOrder) error
	CreateHabit(ctx context.Context, req models.HabitRequest) (*models.Habit, error)
	UpdateHabit(ctx context.Context, id int64, req models.HabitRequest) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id int64) error
}

// Session supplies the signed-in user.
type Session interface {
	User() *models.User
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	Habits       []models.Habit
	Logs         []models.HabitLog // selected date
	WeekLogs     []models.HabitLog // Monday-Sunday around selected date
	Family       *models.Family
	SelectedDate string
	Loading      bool
	LastError    string
	UserID       int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithNotifier sets where completion notifications go.
func WithNotifier(n notifier.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithPrefs sets the store used to remember the last habit color.
func WithPrefs(p storage.Provider) Option {
	return func(e *Engine) { e.prefs = p }
}

// WithClock overrides time.Now, used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// OnError receives one short user-facing line per failed operation.
func OnError(fn func(msg string)) Option {
	return func(e *Engine) { e.onError = fn }
}

// OnChange receives a snapshot after every state commit.
func OnChange(fn func(Snapshot)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine is the dashboard sync engine.
type Engine struct {
	api      API
	session  Session
	notifier notifier.Notifier
	prefs    storage.Provider
	interval time.Duration
	now      func() time.Time
	onError  func(string)
	onChange func(Snapshot)

	mu           sync.Mutex
	habits       []models.Habit
	logs         []models.HabitLog
	logsDate     string // date logs belong to
	weekLogs     []models.HabitLog
	family       *models.Family
	selectedDate string
	loading      bool
	lastError    string
	mounted      bool

	pollCancel context.CancelFunc
	pollDone   chan struct{}
	inFlight   atomic.Bool
}

// New creates a mounted engine with selectedDate set to today.
func New(api API, session Session, opts ...Option) *Engine {
	e := &Engine{
		api:      api,
		session:  session,
		notifier: notifier.Log{},
		interval: constants.DefaultPollInterval,
		now:      time.Now,
		onError:  func(string) {},
		onChange: func(Snapshot) {},
		mounted:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.selectedDate = e.today()
	return e
}

func (e *Engine) today() string {
	return utils.FormatDate(e.now())
}

func (e *Engine) user() (*models.User, error) {
	u := e.session.User()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// LoadData is the full reload: habits, logs for the selected date, the
// roster and the selected week's logs are fetched together and committed
// only if all four succeed. With checkNotifications set, the selected
// date being today and the previous logs being for that same date, newly
// completed logs by other members are announced.
func (e *Engine) LoadData(ctx context.Context, checkNotifications bool) error {
	user, err := e.user()
	if err != nil {
		return err
	}

	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return nil
	}
	date := e.selectedDate
	prior, priorDate := slices.Clone(e.logs), e.logsDate
	e.loading = true
	e.mu.Unlock()

	var (
		habits   []models.Habit
		logs     []models.HabitLog
		weekLogs []models.HabitLog
		family   *models.Family
	)
	if user.HasFamily() {
		monday, sunday := utils.WeekRange(parseDay(date))
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { habits, err = e.api.Habits(gctx); return })
		g.Go(func() (err error) { logs, err = e.api.FamilyLogs(gctx, date); return })
		g.Go(func() (err error) { family, err = e.api.MyFamily(gctx); return })
		g.Go(func() (err error) {
			weekLogs, err = e.api.FamilyLogsRange(gctx, utils.FormatDate(monday), utils.FormatDate(sunday))
			return
		})
		err = g.Wait()
	}

	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		logger.Debug("discarding reload after stop", "date", date)
		return nil
	}
	e.loading = false
	if errors.Is(err, context.Canceled) {
		e.mu.Unlock()
		return err
	}
	if err != nil {
		msg := apperrors.UserMessage("load dashboard", err)
		e.lastError = msg
		snap := e.snapshotLocked()
		e.mu.Unlock()
		metrics.Reloads.WithLabelValues("error").Inc()
		e.onError(msg)
		e.onChange(snap)
		return err
	}
	if e.selectedDate != date {
		// A newer reload for the new date is already under way.
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.onChange(snap)
		return nil
	}

	SortByDisplayOrder(habits)
	e.habits, e.logs, e.weekLogs, e.family = habits, logs, weekLogs, family
	e.logsDate = date
	e.lastError = ""
	var notices []string
	if checkNotifications && date == e.today() && priorDate == date {
		notices = CompletionNotices(prior, logs, user.ID)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	metrics.Reloads.WithLabelValues("ok").Inc()
	for _, text := range notices {
		metrics.Notifications.Inc()
		if nErr := e.notifier.Notify(text); nErr != nil {
			logger.Warn("notification delivery failed", "error", nErr)
		}
	}
	e.onChange(snap)
	return nil
}

// SetSelectedDate changes the day being viewed and reloads.
func (e *Engine) SetSelectedDate(ctx context.Context, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		e.onError(apperrors.Message(apperrors.Invalid("date", err.Error())))
		return err
	}
	e.mu.Lock()
	e.selectedDate = date
	e.mu.Unlock()
	return e.LoadData(ctx, false)
}

// ShiftDate moves the selected date by days and reloads.
func (e *Engine) ShiftDate(ctx context.Context, days int) error {
	next, err := utils.AddDays(e.SelectedDate(), days)
	if err != nil {
		return err
	}
	return e.SetSelectedDate(ctx, next)
}

// SelectedDate returns the day being viewed.
func (e *Engine) SelectedDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedDate
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	var uid int64
	if u := e.session.User(); u != nil {
		uid = u.ID
	}
	var fam *models.Family
	if e.family != nil {
		f := *e.family
		f.Members = slices.Clone(e.family.Members)
		fam = &f
	}
	return Snapshot{
		Habits:       slices.Clone(e.habits),
		Logs:         slices.Clone(e.logs),
		WeekLogs:     slices.Clone(e.weekLogs),
		Family:       fam,
		SelectedDate: e.selectedDate,
		Loading:      e.loading,
		LastError:    e.lastError,
		UserID:       uid,
	}
}

// VisibleHabits returns the habits due on the selected date.
func (e *Engine) VisibleHabits() []models.Habit {
	return e.Snapshot().Visible()
}

// MyHabits returns the signed-in user's habits in display order.
func (e *Engine) MyHabits() []models.Habit {
	return e.Snapshot().Mine()
}

// Visible returns the habits due on the selected date, the signed-in
// user's first, each owner's habits in display order.
func (s Snapshot) Visible() []models.Habit {
	day := parseDay(s.SelectedDate)
	var mine, others []models.Habit
	for _, h := range s.Habits {
		if !IsHabitForDate(h, day) {
			continue
		}
		if h.UserID == s.UserID {
			mine = append(mine, h)
		} else {
			others = append(others, h)
		}
	}
	SortByDisplayOrder(mine)
	slices.SortStableFunc(others, func(a, b models.Habit) int {
		if a.UserID != b.UserID {
			if a.UserID < b.UserID {
				return -1
			}
			return 1
		}
		return a.DisplayOrder - b.DisplayOrder
	})
	return append(mine, others...)
}

// Mine returns the signed-in user's habits in display order.
func (s Snapshot) Mine() []models.Habit {
	var mine []models.Habit
	for _, h := range s.Habits {
		if h.UserID == s.UserID {
			mine = append(mine, h)
		}
	}
	SortByDisplayOrder(mine)
	return mine
}

// LogFor returns the selected date's log for (habit, user).
func (e *Engine) LogFor(habitID, userID int64) (models.HabitLog, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return findLog(e.logs, habitID, userID)
}

// WeeklyProgress is the WEEKLY_COUNT progress of h for the selected week.
func (e *Engine) WeeklyProgress(h models.Habit) Progress {
	e.mu.Lock()
	weekLogs, date := slices.Clone(e.weekLogs), e.selectedDate
	e.mu.Unlock()
	return WeeklyProgress(h, weekLogs, parseDay(date))
}

func (e *Engine) habit(id int64) (models.Habit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (e *Engine) fail(action string, err error) error {
	msg := apperrors.UserMessage(action, err)
	e.mu.Lock()
	e.lastError = msg
	e.mu.Unlock()
	e.onError(msg)
	return err
}

func findLog(logs []models.HabitLog, habitID, userID int64) (models.HabitLog, bool) {
	for _, l := range logs {
		if l.Habit.ID == habitID && l.User.ID == userID {
			return l, true
		}
	}
	return models.HabitLog{}, false
}

// CompletionNotices diffs the selected day's logs before and after a
// reload. A log produces a notice when it is now completed, belongs to
// someone other than selfID, and was not completed in prior.
func CompletionNotices(prior, current []models.HabitLog, selfID int64) []string {
	var out []string
	for _, l := range current {
		if !l.Completed || l.User.ID == selfID {
			continue
		}
		if before, ok := findLog(prior, l.Habit.ID, l.User.ID); ok && before.Completed {
			continue
		}
		name := l.User.DisplayName
		if name == "" {
			name = l.User.Username
		}
		out = append(out, fmt.Sprintf("%s completed %s", name, l.Habit.Name))
	}
	return out
}

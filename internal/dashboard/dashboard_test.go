package dashboard

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/notifier"
	"github.com/julianstephens/famtrack/internal/storage"
)

// 2025-06-11 is a Wednesday.
var wednesday = time.Date(2025, 6, 11, 12, 0, 0, 0, time.Local)

type fakeSession struct{ user *models.User }

func (f fakeSession) User() *models.User { return f.user }

func member(id int64) *models.User {
	fam := int64(1)
	return &models.User{Token: "t", ID: id, Username: "user", FamilyID: &fam}
}

type fakeAPI struct {
	mu         sync.Mutex
	habits     []models.Habit
	logs       []models.HabitLog
	logWrites  []models.LogRequest
	reorders   [][]models.HabitOrder
	reorderErr error
	habitsErr  error
	created    []models.HabitRequest
	block      chan struct{}
	habitCalls int
}

func (f *fakeAPI) Habits(ctx context.Context) ([]models.Habit, error) {
	f.mu.Lock()
	f.habitCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.habitsErr != nil {
		return nil, f.habitsErr
	}
	out := make([]models.Habit, len(f.habits))
	copy(out, f.habits)
	return out, nil
}

func (f *fakeAPI) FamilyLogs(ctx context.Context, date string) ([]models.HabitLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HabitLog
	for _, l := range f.logs {
		if l.LogDate == date {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeAPI) FamilyLogsRange(ctx context.Context, start, end string) ([]models.HabitLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HabitLog
	for _, l := range f.logs {
		if l.LogDate >= start && l.LogDate <= end {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeAPI) MyFamily(ctx context.Context) (*models.Family, error) {
	return &models.Family{ID: 1, Name: "Home"}, nil
}

func (f *fakeAPI) Log(ctx context.Context, req models.LogRequest) (*models.HabitLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logWrites = append(f.logWrites, req)
	return &models.HabitLog{Habit: models.HabitSummary{ID: req.HabitID}, LogDate: req.LogDate, Completed: req.Completed, Note: req.Note}, nil
}

func (f *fakeAPI) ReorderHabits(ctx context.Context, orders []models.HabitOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorders = append(f.reorders, orders)
	if f.reorderErr != nil {
		return f.reorderErr
	}
	for _, o := range orders {
		for i := range f.habits {
			if f.habits[i].ID == o.ID {
				f.habits[i].DisplayOrder = o.DisplayOrder
			}
		}
	}
	return nil
}

func (f *fakeAPI) CreateHabit(ctx context.Context, req models.HabitRequest) (*models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &models.Habit{ID: 99, Name: req.Name, Color: req.Color}, nil
}

func (f *fakeAPI) UpdateHabit(ctx context.Context, id int64, req models.HabitRequest) (*models.Habit, error) {
	return &models.Habit{ID: id, Name: req.Name}, nil
}

func (f *fakeAPI) DeleteHabit(ctx context.Context, id int64) error { return nil }

func (f *fakeAPI) setLogs(logs []models.HabitLog) {
	f.mu.Lock()
	f.logs = logs
	f.mu.Unlock()
}

func completed(habitID, userID int64, habitName, userName, date string, done bool) models.HabitLog {
	return models.HabitLog{
		Habit:     models.HabitSummary{ID: habitID, Name: habitName},
		User:      models.UserSummary{ID: userID, Username: userName},
		LogDate:   date,
		Completed: done,
	}
}

func newEngine(api *fakeAPI, user *models.User, opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return wednesday })}, opts...)
	return New(api, fakeSession{user: user}, opts...)
}

func TestMoveAssignsDenseOrder(t *testing.T) {
	habits := []models.Habit{
		{ID: 10, DisplayOrder: 0},
		{ID: 20, DisplayOrder: 3},
		{ID: 30, DisplayOrder: 7},
		{ID: 40, DisplayOrder: 9},
	}
	tests := []struct {
		name     string
		from, to int
		want     []int64
	}{
		{"down", 0, 2, []int64{20, 30, 10, 40}},
		{"up", 3, 1, []int64{10, 40, 20, 30}},
		{"same", 1, 1, []int64{10, 20, 30, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, orders, err := Move(habits, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Move: %v", err)
			}
			for i, h := range out {
				if h.ID != tt.want[i] {
					t.Errorf("position %d: got habit %d, want %d", i, h.ID, tt.want[i])
				}
				if h.DisplayOrder != i || orders[i].DisplayOrder != i || orders[i].ID != h.ID {
					t.Errorf("position %d: order not dense: %+v / %+v", i, h, orders[i])
				}
			}
		})
	}
	if habits[1].DisplayOrder != 3 {
		t.Error("Move modified its input")
	}
	if _, _, err := Move(habits, 0, 4); err == nil {
		t.Error("expected out of range error")
	}
}

func TestIsHabitForDate(t *testing.T) {
	weekly := models.Habit{HabitType: models.HabitWeekly, SelectedDays: "1,3,5"}
	for offset, want := range map[int]bool{-2: true, -1: false, 0: true, 1: false, 2: true, 3: false, 4: false} {
		day := wednesday.AddDate(0, 0, offset)
		if got := IsHabitForDate(weekly, day); got != want {
			t.Errorf("%s: got %v, want %v", day.Weekday(), got, want)
		}
	}
	if !IsHabitForDate(models.Habit{HabitType: models.HabitDaily}, wednesday) {
		t.Error("daily habit should always be due")
	}
	if !IsHabitForDate(models.Habit{HabitType: models.HabitWeeklyCount}, wednesday.AddDate(0, 0, 1)) {
		t.Error("weekly-count habit should always be due")
	}
}

func TestWeeklyProgress(t *testing.T) {
	target := 3
	h := models.Habit{ID: 1, UserID: 7, HabitType: models.HabitWeeklyCount, WeeklyTarget: &target}
	logs := []models.HabitLog{
		completed(1, 7, "Run", "a", "2025-06-09", true),
		completed(1, 7, "Run", "a", "2025-06-10", false),
		completed(1, 7, "Run", "a", "2025-06-15", true),
		completed(1, 7, "Run", "a", "2025-06-16", true), // next week
		completed(1, 8, "Run", "b", "2025-06-11", true), // other user
		completed(2, 7, "Read", "a", "2025-06-11", true),
	}
	got := WeeklyProgress(h, logs, wednesday)
	if want := (Progress{Done: 2, Target: 3, Percent: 66}); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	logs = append(logs, completed(1, 7, "Run", "a", "2025-06-11", true), completed(1, 7, "Run", "a", "2025-06-12", true))
	if got := WeeklyProgress(h, logs, wednesday); got.Percent != 100 || got.Done != 4 {
		t.Errorf("expected clamped progress, got %+v", got)
	}
	if got := WeeklyProgress(models.Habit{ID: 1}, logs, wednesday); got != (Progress{}) {
		t.Errorf("daily habit should have no progress, got %+v", got)
	}
}

func TestLoadDataCommitsSnapshot(t *testing.T) {
	api := &fakeAPI{
		habits: []models.Habit{
			{ID: 2, UserID: 1, DisplayOrder: 1},
			{ID: 1, UserID: 1, DisplayOrder: 0},
			{ID: 3, UserID: 2, DisplayOrder: 0, HabitType: models.HabitWeekly, SelectedDays: "1"},
		},
		logs: []models.HabitLog{
			completed(1, 1, "A", "me", "2025-06-11", true),
			completed(1, 1, "A", "me", "2025-06-10", true),
		},
	}
	var changes int
	e := newEngine(api, member(1), OnChange(func(Snapshot) { changes++ }))
	if err := e.LoadData(context.Background(), false); err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	snap := e.Snapshot()
	if snap.SelectedDate != "2025-06-11" || snap.Loading || snap.Family == nil {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(snap.Logs) != 1 || len(snap.WeekLogs) != 2 {
		t.Errorf("got %d logs / %d week logs", len(snap.Logs), len(snap.WeekLogs))
	}
	if snap.Habits[0].ID != 1 {
		t.Errorf("habits not sorted: %+v", snap.Habits)
	}
	visible := e.VisibleHabits()
	if len(visible) != 2 || visible[0].ID != 1 || visible[1].ID != 2 {
		t.Errorf("unexpected visible habits: %+v", visible)
	}
	if changes != 1 {
		t.Errorf("expected one change, got %d", changes)
	}
}

func TestLoadDataAllOrNothing(t *testing.T) {
	api := &fakeAPI{habits: []models.Habit{{ID: 1, UserID: 1}}}
	var msgs []string
	e := newEngine(api, member(1), OnError(func(m string) { msgs = append(msgs, m) }))
	if err := e.LoadData(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	api.mu.Lock()
	api.habitsErr = errors.New("boom")
	api.habits = nil
	api.mu.Unlock()
	if err := e.LoadData(context.Background(), false); err == nil {
		t.Fatal("expected error")
	}
	snap := e.Snapshot()
	if len(snap.Habits) != 1 {
		t.Errorf("previous state should be kept, got %+v", snap.Habits)
	}
	if len(msgs) != 1 || msgs[0] != "Failed to load dashboard: boom" {
		t.Errorf("unexpected error messages: %v", msgs)
	}
	if snap.Loading {
		t.Error("loading flag left set")
	}
}

func TestCompletionNotices(t *testing.T) {
	prior := []models.HabitLog{
		completed(1, 2, "Run", "bob", "2025-06-11", false),
		completed(2, 2, "Read", "bob", "2025-06-11", true),
	}
	current := []models.HabitLog{
		completed(1, 2, "Run", "bob", "2025-06-11", true),
		completed(2, 2, "Read", "bob", "2025-06-11", true),
		completed(3, 1, "Swim", "me", "2025-06-11", true),
		completed(4, 3, "Walk", "carol", "2025-06-11", true),
	}
	current[3].User.DisplayName = "Carol"
	got := CompletionNotices(prior, current, 1)
	want := []string{"bob completed Run", "Carol completed Walk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPollNotifiesOnceForOtherMembersCompletion(t *testing.T) {
	api := &fakeAPI{logs: []models.HabitLog{completed(1, 2, "H", "B", "2025-06-11", false)}}
	var got []string
	n := notifier.Func(func(text string) error { got = append(got, text); return nil })
	e := newEngine(api, member(1), WithNotifier(n))
	ctx := context.Background()

	if err := e.LoadData(ctx, false); err != nil {
		t.Fatal(err)
	}
	api.setLogs([]models.HabitLog{completed(1, 2, "H", "B", "2025-06-11", true)})
	e.Tick(ctx)
	e.Tick(ctx)
	if len(got) != 1 || got[0] != "B completed H" {
		t.Errorf("expected a single notice, got %v", got)
	}
}

func TestNoNotificationsForPastDates(t *testing.T) {
	api := &fakeAPI{logs: []models.HabitLog{completed(1, 2, "H", "B", "2025-06-10", false)}}
	var got []string
	n := notifier.Func(func(text string) error { got = append(got, text); return nil })
	e := newEngine(api, member(1), WithNotifier(n))
	ctx := context.Background()

	if err := e.SetSelectedDate(ctx, "2025-06-10"); err != nil {
		t.Fatal(err)
	}
	api.setLogs([]models.HabitLog{completed(1, 2, "H", "B", "2025-06-10", true)})
	e.Tick(ctx)
	if len(got) != 0 {
		t.Errorf("expected no notices, got %v", got)
	}
}

func TestTwoPhaseToggle(t *testing.T) {
	api := &fakeAPI{habits: []models.Habit{{ID: 1, UserID: 1, Name: "Run"}}}
	e := newEngine(api, member(1))
	ctx := context.Background()
	if err := e.LoadData(ctx, false); err != nil {
		t.Fatal(err)
	}

	pending, err := e.BeginToggle(ctx, 1)
	if err != nil || pending == nil {
		t.Fatalf("BeginToggle: %v, %v", pending, err)
	}
	if len(api.logWrites) != 0 {
		t.Fatal("nothing should be written before Confirm")
	}
	pending.Cancel()
	if err := pending.Confirm(ctx, "x"); !errors.Is(err, ErrCompletionSettled) {
		t.Errorf("expected ErrCompletionSettled, got %v", err)
	}
	if len(api.logWrites) != 0 {
		t.Fatal("cancelled completion was written")
	}

	pending, _ = e.BeginToggle(ctx, 1)
	if err := pending.Confirm(ctx, "  felt good "); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	want := models.LogRequest{HabitID: 1, LogDate: "2025-06-11", Completed: true, Note: "felt good"}
	if len(api.logWrites) != 1 || api.logWrites[0] != want {
		t.Fatalf("unexpected writes: %+v", api.logWrites)
	}
	if err := pending.Confirm(ctx, "again"); !errors.Is(err, ErrCompletionSettled) {
		t.Errorf("double confirm: %v", err)
	}
}

func TestUncheckPreservesNote(t *testing.T) {
	log := completed(1, 1, "Run", "me", "2025-06-11", true)
	log.Note = "5k"
	api := &fakeAPI{habits: []models.Habit{{ID: 1, UserID: 1}}, logs: []models.HabitLog{log}}
	e := newEngine(api, member(1))
	ctx := context.Background()
	if err := e.LoadData(ctx, false); err != nil {
		t.Fatal(err)
	}
	pending, err := e.BeginToggle(ctx, 1)
	if err != nil || pending != nil {
		t.Fatalf("expected immediate uncheck, got %v, %v", pending, err)
	}
	want := models.LogRequest{HabitID: 1, LogDate: "2025-06-11", Completed: false, Note: "5k"}
	if len(api.logWrites) != 1 || api.logWrites[0] != want {
		t.Errorf("unexpected writes: %+v", api.logWrites)
	}
}

func TestToggleRejectsOtherMembersHabit(t *testing.T) {
	api := &fakeAPI{habits: []models.Habit{{ID: 1, UserID: 2}}}
	e := newEngine(api, member(1))
	if err := e.LoadData(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if _, err := e.BeginToggle(context.Background(), 1); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if _, err := e.BeginToggle(context.Background(), 42); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("expected ErrUnknownHabit, got %v", err)
	}
}

func TestReorder(t *testing.T) {
	api := &fakeAPI{habits: []models.Habit{
		{ID: 1, UserID: 1, DisplayOrder: 0},
		{ID: 2, UserID: 1, DisplayOrder: 1},
		{ID: 3, UserID: 1, DisplayOrder: 2},
		{ID: 9, UserID: 2, DisplayOrder: 0},
	}}
	e := newEngine(api, member(1))
	ctx := context.Background()
	if err := e.LoadData(ctx, false); err != nil {
		t.Fatal(err)
	}
	if err := e.Reorder(ctx, 2, 0); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	want := []models.HabitOrder{{ID: 3, DisplayOrder: 0}, {ID: 1, DisplayOrder: 1}, {ID: 2, DisplayOrder: 2}}
	if len(api.reorders) != 1 || !reflect.DeepEqual(api.reorders[0], want) {
		t.Errorf("unexpected batch: %+v", api.reorders)
	}
	mine := e.MyHabits()
	if mine[0].ID != 3 || mine[1].ID != 1 || mine[2].ID != 2 {
		t.Errorf("local order not applied: %+v", mine)
	}
}

func TestReorderRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{
		habits: []models.Habit{
			{ID: 1, UserID: 1, DisplayOrder: 0},
			{ID: 2, UserID: 1, DisplayOrder: 1},
		},
		reorderErr: errors.New("nope"),
	}
	var msgs []string
	var optimistic []int64
	e := newEngine(api, member(1), OnError(func(m string) { msgs = append(msgs, m) }))
	ctx := context.Background()
	if err := e.LoadData(ctx, false); err != nil {
		t.Fatal(err)
	}
	e.onChange = func(s Snapshot) {
		if optimistic == nil {
			for _, h := range s.Habits {
				optimistic = append(optimistic, h.ID)
			}
		}
	}
	if err := e.Reorder(ctx, 0, 1); err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(optimistic, []int64{2, 1}) {
		t.Errorf("optimistic order not published: %v", optimistic)
	}
	mine := e.MyHabits()
	if mine[0].ID != 1 || mine[1].ID != 2 {
		t.Errorf("order not rolled back: %+v", mine)
	}
	if len(msgs) != 1 || msgs[0] != "Failed to reorder habits: nope" {
		t.Errorf("unexpected messages: %v", msgs)
	}
}

func TestTickSkipsWhileInFlight(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	e := newEngine(api, member(1))
	ctx := context.Background()

	first := make(chan bool)
	go func() { first <- e.Tick(ctx) }()
	deadline := time.Now().Add(2 * time.Second)
	for !e.inFlight.Load() {
		if time.Now().After(deadline) {
			t.Fatal("first tick never started")
		}
		time.Sleep(time.Millisecond)
	}
	if e.Tick(ctx) {
		t.Error("second tick should be skipped")
	}
	close(api.block)
	if !<-first {
		t.Error("first tick should have run")
	}
	if !e.Tick(ctx) {
		t.Error("tick after completion should run")
	}
}

func TestStopDiscardsInFlightResults(t *testing.T) {
	api := &fakeAPI{habits: []models.Habit{{ID: 1, UserID: 1}}, block: make(chan struct{})}
	var changes int
	e := newEngine(api, member(1), OnChange(func(Snapshot) { changes++ }))

	done := make(chan error)
	go func() { done <- e.LoadData(context.Background(), false) }()
	deadline := time.Now().Add(2 * time.Second)
	for {
		api.mu.Lock()
		calls := api.habitCalls
		api.mu.Unlock()
		if calls > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("reload never started")
		}
		time.Sleep(time.Millisecond)
	}
	e.Stop()
	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	if changes != 0 || len(e.Snapshot().Habits) != 0 {
		t.Error("results committed after Stop")
	}
}

func TestStartStopPolling(t *testing.T) {
	api := &fakeAPI{}
	e := newEngine(api, member(1), WithInterval(5*time.Millisecond))
	e.Start(context.Background())
	e.Start(context.Background())
	if !e.Polling() {
		t.Fatal("expected polling")
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		api.mu.Lock()
		calls := api.habitCalls
		api.mu.Unlock()
		if calls > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("poller never ticked")
		}
		time.Sleep(time.Millisecond)
	}
	e.StopPolling()
	if e.Polling() {
		t.Error("polling should have stopped")
	}

	solo := newEngine(&fakeAPI{}, &models.User{Token: "t", ID: 1, Username: "u"})
	solo.Start(context.Background())
	if solo.Polling() {
		t.Error("polling should not start without a group")
	}
}

// switchSession lets a test change the signed-in user mid-run.
type switchSession struct {
	mu   sync.Mutex
	user *models.User
}

func (s *switchSession) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *switchSession) set(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func TestPollingStopsAfterLeavingGroup(t *testing.T) {
	sess := &switchSession{user: member(1)}
	e := New(&fakeAPI{}, sess, WithClock(func() time.Time { return wednesday }), WithInterval(5*time.Millisecond))
	t.Cleanup(e.Stop)

	e.Start(context.Background())
	if !e.Polling() {
		t.Fatal("expected polling")
	}
	sess.set(&models.User{Token: "t", ID: 1, Username: "user"})

	deadline := time.Now().Add(2 * time.Second)
	for e.Polling() {
		if time.Now().After(deadline) {
			t.Fatal("polling did not stop after leaving the group")
		}
		time.Sleep(time.Millisecond)
	}

	// Rejoining starts a fresh loop.
	sess.set(member(1))
	e.Start(context.Background())
	if !e.Polling() {
		t.Error("expected polling to restart after rejoining")
	}
	e.StopPolling()
	if e.Polling() {
		t.Error("polling should have stopped")
	}
}

func TestNoNotificationsAcrossDateChange(t *testing.T) {
	api := &fakeAPI{logs: []models.HabitLog{completed(1, 2, "H", "B", "2025-06-10", false)}}
	var got []string
	n := notifier.Func(func(text string) error { got = append(got, text); return nil })
	e := newEngine(api, member(1), WithNotifier(n))
	ctx := context.Background()

	if err := e.SetSelectedDate(ctx, "2025-06-10"); err != nil {
		t.Fatal(err)
	}
	// Jump to today; a poll tick commits before the date-change reload.
	e.mu.Lock()
	e.selectedDate = "2025-06-11"
	e.mu.Unlock()
	api.setLogs([]models.HabitLog{completed(1, 2, "H", "B", "2025-06-11", true)})
	e.Tick(ctx)
	if len(got) != 0 {
		t.Errorf("expected no notices when the prior logs are for another day, got %v", got)
	}

	// Same-day diffs resume once today's logs are the baseline.
	api.setLogs([]models.HabitLog{
		completed(1, 2, "H", "B", "2025-06-11", true),
		completed(2, 2, "G", "B", "2025-06-11", true),
	})
	e.Tick(ctx)
	if len(got) != 1 || got[0] != "B completed G" {
		t.Errorf("expected one notice for G, got %v", got)
	}
}

func TestCreateHabitRemembersColor(t *testing.T) {
	api := &fakeAPI{}
	prefs := storage.NewMemoryStore()
	e := newEngine(api, member(1), WithPrefs(prefs))
	if got := e.LastHabitColor(); got != constants.DefaultHabitColor {
		t.Errorf("expected default color, got %s", got)
	}
	form := models.HabitForm{Name: "Run", Color: "#ff0000", Spec: models.WeeklySpec{Days: []int{5, 1, 3, 3}}}
	if _, err := e.CreateHabit(context.Background(), form); err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if got := e.LastHabitColor(); got != "#ff0000" {
		t.Errorf("expected remembered color, got %s", got)
	}
	if len(api.created) != 1 || api.created[0].SelectedDays != "1,3,5" {
		t.Errorf("unexpected request: %+v", api.created)
	}

	if _, err := e.CreateHabit(context.Background(), models.HabitForm{Color: "#000"}); !errors.Is(err, models.ErrInvalidHabit) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(api.created) != 1 {
		t.Error("invalid form reached the server")
	}
}

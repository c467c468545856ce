package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/famtrack/internal/comments"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/dashboard"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/tui/components/habits"
)

type stubAPI struct{}

func (stubAPI) Habits(context.Context) ([]models.Habit, error) { return nil, nil }
func (stubAPI) FamilyLogs(context.Context, string) ([]models.HabitLog, error) {
	return nil, nil
}
func (stubAPI) FamilyLogsRange(context.Context, string, string) ([]models.HabitLog, error) {
	return nil, nil
}
func (stubAPI) MyFamily(context.Context) (*models.Family, error) { return &models.Family{}, nil }
func (stubAPI) Log(context.Context, models.LogRequest) (*models.HabitLog, error) {
	return &models.HabitLog{}, nil
}
func (stubAPI) ReorderHabits(context.Context, []models.HabitOrder) error { return nil }
func (stubAPI) CreateHabit(context.Context, models.HabitRequest) (*models.Habit, error) {
	return &models.Habit{}, nil
}
func (stubAPI) UpdateHabit(context.Context, int64, models.HabitRequest) (*models.Habit, error) {
	return &models.Habit{}, nil
}
func (stubAPI) DeleteHabit(context.Context, int64) error { return nil }

type stubSession struct{}

func (stubSession) User() *models.User { return &models.User{Token: "t", ID: 1, Username: "me"} }

func newTestModel(t *testing.T) Model {
	t.Helper()
	bridge := NewBridge()
	engine := dashboard.New(stubAPI{}, stubSession{}, bridge.Options()...)
	t.Cleanup(engine.Stop)
	return NewModel(context.Background(), Deps{Engine: engine, Thread: &comments.Thread{}, Bridge: bridge})
}

func TestItems(t *testing.T) {
	target := 2
	snap := dashboard.Snapshot{
		SelectedDate: "2025-06-11",
		UserID:       1,
		Logs: []models.HabitLog{
			{Habit: models.HabitSummary{ID: 1}, User: models.UserSummary{ID: 1}, LogDate: "2025-06-11", Completed: true, Note: "easy"},
		},
		WeekLogs: []models.HabitLog{
			{Habit: models.HabitSummary{ID: 1}, User: models.UserSummary{ID: 1}, LogDate: "2025-06-10", Completed: true},
			{Habit: models.HabitSummary{ID: 1}, User: models.UserSummary{ID: 1}, LogDate: "2025-06-11", Completed: true},
		},
	}
	visible := []models.Habit{
		{ID: 1, UserID: 1, Name: "Run", HabitType: models.HabitWeeklyCount, WeeklyTarget: &target, Streak: 4},
		{ID: 2, UserID: 2, Name: "Read", UserDisplayName: "Bob", HabitType: models.HabitWeekly, SelectedDays: "3,5"},
	}
	items := habits.Items(visible, snap)
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if !items[0].Done() || !items[0].Mine || items[0].Title() != "✓ Run" {
		t.Errorf("unexpected first item %+v / %q", items[0], items[0].Title())
	}
	if desc := items[0].Description(); !strings.Contains(desc, "2/2 this week (100%)") || !strings.Contains(desc, "easy") {
		t.Errorf("unexpected description %q", desc)
	}
	if items[1].Done() || items[1].Title() != "○ Read · Bob" {
		t.Errorf("unexpected second item %q", items[1].Title())
	}
	if desc := items[1].Description(); desc != "Wed, Fri" {
		t.Errorf("unexpected description %q", desc)
	}
}

func TestToastLifecycle(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(errorMsg("Failed to load dashboard: boom"))
	m = next.(Model)
	if cmd == nil || len(m.toasts) != 1 || m.toasts[0].kind != toastError {
		t.Fatalf("expected an error toast, got %+v", m.toasts)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("toast not rendered")
	}
	next, _ = m.Update(toastExpiredMsg{id: m.toasts[0].id})
	m = next.(Model)
	if len(m.toasts) != 0 {
		t.Errorf("toast not dropped: %+v", m.toasts)
	}
}

func TestLocalErrorLeavesBridgeAlone(t *testing.T) {
	prev := toastDuration
	toastDuration = time.Millisecond
	t.Cleanup(func() { toastDuration = prev })

	m := newTestModel(t)
	msg := m.toggleCmd(99, "ghost")()
	local, ok := msg.(localErrorMsg)
	if !ok {
		t.Fatalf("toggle of unknown habit = %T, want localErrorMsg", msg)
	}

	m.bridge.send(noticeMsg("queued"))
	next, cmd := m.Update(local)
	m = next.(Model)
	if len(m.toasts) != 1 || m.toasts[0].kind != toastError {
		t.Fatalf("expected an error toast, got %+v", m.toasts)
	}
	if cmd == nil {
		t.Fatal("expected a toast expiry command")
	}
	if _, ok := cmd().(toastExpiredMsg); !ok {
		t.Error("local error returned more than the toast expiry")
	}
	if n := len(m.bridge.ch); n != 1 {
		t.Errorf("bridge queue length = %d, want 1 (no extra waiter)", n)
	}
}

func TestMentionCompletion(t *testing.T) {
	m := newTestModel(t)
	m.snapshot.UserID = 1
	m.snapshot.Family = &models.Family{Members: []models.Member{
		{ID: 1, Username: "me"},
		{ID: 2, Username: "alice", DisplayName: "Alice"},
	}}
	m.state = constants.StateComments
	m.input.Focus()
	m.input.SetValue("great @al")
	m.input.CursorEnd()
	m.updateSuggestions()
	if len(m.suggestions) != 1 || m.suggestions[0].Username != "alice" {
		t.Fatalf("unexpected suggestions %+v", m.suggestions)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if got := m.input.Value(); got != "great @alice " {
		t.Errorf("got %q", got)
	}
	if m.input.Position() != len("great @alice ") {
		t.Errorf("cursor at %d", m.input.Position())
	}
	if m.suggestions != nil {
		t.Error("suggestions not cleared")
	}
}

func TestConfirmDeleteCancel(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(habits.DeleteHabitMsg{ID: 3})
	m = next.(Model)
	if m.state != constants.StateConfirmDelete || m.habitToDeleteID != 3 {
		t.Fatalf("expected confirm state, got %v", m.state)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(Model)
	if m.state != constants.StateDashboard || cmd != nil || m.habitToDeleteID != 0 {
		t.Errorf("cancel did not return to dashboard")
	}
}

func TestHabitFormModelConversion(t *testing.T) {
	fm := &HabitFormModel{Name: "Run", Color: "#fff", Type: models.HabitWeekly, Days: "5,1"}
	form, err := fm.HabitForm()
	if err != nil {
		t.Fatal(err)
	}
	req, err := form.Request()
	if err != nil || req.SelectedDays != "1,5" {
		t.Errorf("got %+v, %v", req, err)
	}

	fm = &HabitFormModel{Name: "Run", Color: "#fff", Type: models.HabitWeeklyCount, Target: "x"}
	if _, err := fm.HabitForm(); err == nil {
		t.Error("expected error for bad target")
	}

	target := 4
	back := NewHabitFormModel(&models.Habit{Name: "Swim", HabitType: models.HabitWeeklyCount, WeeklyTarget: &target}, "")
	if back.Type != models.HabitWeeklyCount || back.Target != "4" {
		t.Errorf("unexpected prefill %+v", back)
	}
}

func TestBridgeDoesNotBlock(t *testing.T) {
	b := NewBridge()
	for i := 0; i < cap(b.ch)+10; i++ {
		if err := b.Notify("x"); err != nil {
			t.Fatal(err)
		}
	}
	if len(b.ch) != cap(b.ch) {
		t.Errorf("expected full queue, got %d", len(b.ch))
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/famtrack/internal/api"
	"github.com/julianstephens/famtrack/internal/calendar"
	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/models"
	"github.com/julianstephens/famtrack/internal/session"
	"github.com/julianstephens/famtrack/internal/storage"
)

// 2026-10-16 is a Friday.
var friday = time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)

// newTestContext wires a Context against handler with user (may be nil)
// already signed in.
func newTestContext(t *testing.T, handler http.Handler, user *models.User) (*Context, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			t.Fatalf("marshal user: %v", err)
		}
		if err := store.Set(constants.KeyUser, string(data)); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	sess := session.New(session.StorageVault{Store: store}, nil)
	if err := sess.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	client := api.New(srv.URL, sess)
	sess.SetAuthenticator(client)

	out := &bytes.Buffer{}
	return &Context{
		Ctx:     context.Background(),
		Store:   store,
		Session: sess,
		API:     client,
		Out:     out,
		Now:     func() time.Time { return friday },
	}, out
}

func signedIn(family bool) *models.User {
	u := &models.User{Token: "tok", ID: 1, Username: "alice", DisplayName: "Alice"}
	if family {
		id := int64(9)
		u.FamilyID = &id
		u.FamilyName = "Smiths"
	}
	return u
}

func jsonHandler(t *testing.T, routes map[string]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func TestRouteGuards(t *testing.T) {
	noCalls := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	ctx, _ := newTestContext(t, noCalls, nil)
	if _, err := ctx.RequireSession(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("RequireSession() error = %v, want ErrNotLoggedIn", err)
	}
	if err := (&HabitListCmd{Date: "today"}).Run(ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("habit list error = %v, want ErrNotLoggedIn", err)
	}

	ctx, _ = newTestContext(t, noCalls, signedIn(false))
	if _, err := ctx.RequireSession(); err != nil {
		t.Errorf("RequireSession() error = %v", err)
	}
	if err := (&MonthlyCmd{}).Run(ctx); !errors.Is(err, ErrNoFamily) {
		t.Errorf("monthly error = %v, want ErrNoFamily", err)
	}
}

func TestFamilyCreateUpdatesSession(t *testing.T) {
	ctx, out := newTestContext(t, jsonHandler(t, map[string]string{
		"POST /family/create": `{"id":42,"name":"Smiths","inviteCode":"AB12CD"}`,
	}), signedIn(false))

	if err := (&FamilyCreateCmd{Name: "Smiths"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	user := ctx.Session.User()
	if !user.HasFamily() || *user.FamilyID != 42 || user.FamilyName != "Smiths" {
		t.Errorf("session user = %+v, want family 42 Smiths", user)
	}
	if _, err := ctx.RequireFamily(); err != nil {
		t.Errorf("RequireFamily() error = %v", err)
	}
	var persisted models.User
	if err := storage.GetJSON(ctx.Store, constants.KeyUser, &persisted); err != nil {
		t.Fatalf("read persisted session: %v", err)
	}
	if persisted.FamilyID == nil || *persisted.FamilyID != 42 {
		t.Errorf("persisted FamilyID = %v, want 42", persisted.FamilyID)
	}
	if !strings.Contains(out.String(), "AB12CD") {
		t.Errorf("output missing invite code: %q", out.String())
	}
}

func TestHabitListOutput(t *testing.T) {
	ctx, out := newTestContext(t, jsonHandler(t, map[string]string{
		"GET /habits": `[
			{"id":1,"name":"Read","userId":1,"displayOrder":0,"habitType":"DAILY","streak":3},
			{"id":2,"name":"Walk","userId":2,"userDisplayName":"Bob","displayOrder":0,"habitType":"DAILY"},
			{"id":3,"name":"Gym","userId":1,"displayOrder":1,"habitType":"WEEKLY","selectedDays":"2,4"}
		]`,
		"GET /logs/family/2026-10-16": `[
			{"id":7,"habit":{"id":1,"name":"Read"},"user":{"id":1,"username":"alice"},"logDate":"2026-10-16","completed":true,"note":"ch. 4"}
		]`,
		"GET /logs/family/range": `[]`,
		"GET /family/my":         `{"id":9,"name":"Smiths","members":[{"id":1,"username":"alice"},{"id":2,"username":"bob","displayName":"Bob"}]}`,
	}), signedIn(true))

	if err := (&HabitListCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Habits for 2026-10-16",
		"✓ [1] Read",
		"3 day streak",
		`"ch. 4"`,
		"○ [2] Walk · Bob",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	// Tue/Thu habit is not due on a Friday.
	if strings.Contains(got, "Gym") {
		t.Errorf("output lists a habit not due today:\n%s", got)
	}
}

func TestErrorMessage(t *testing.T) {
	loginErr := &session.LoginError{Reason: session.ReasonAuth, Message: "Wrong username or password"}
	if got := ErrorMessage(loginErr); got != "Wrong username or password" {
		t.Errorf("ErrorMessage(login) = %q", got)
	}
	if got := ErrorMessage(ErrNoFamily); !strings.Contains(got, "family") {
		t.Errorf("ErrorMessage(ErrNoFamily) = %q", got)
	}
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "2026-10-16", false},
		{"today", "2026-10-16", false},
		{"Yesterday", "2026-10-15", false},
		{"tomorrow", "2026-10-17", false},
		{"2026-02-28", "2026-02-28", false},
		{"2026-02-30", "", true},
		{"16/10/2026", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := resolveDate(tt.in, friday)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveMonth(t *testing.T) {
	got, err := resolveMonth("", friday)
	if err != nil || got.Year() != 2026 || got.Month() != time.October || got.Day() != 1 {
		t.Errorf("resolveMonth(\"\") = %v, %v", got, err)
	}
	got, err = resolveMonth("2025-02", friday)
	if err != nil || got.Year() != 2025 || got.Month() != time.February {
		t.Errorf("resolveMonth(2025-02) = %v, %v", got, err)
	}
	if _, err := resolveMonth("2025-13", friday); err == nil {
		t.Error("resolveMonth(2025-13) should fail")
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"mon,wed,fri", []int{1, 3, 5}, false},
		{"Sunday, 1", []int{1, 7}, false},
		{"5,5,2", []int{2, 5}, false},
		{"8", nil, true},
		{"funday", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWeekdays(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseWeekdays(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseWeekdays(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if got := formatWeekdays([]int{1, 7}); got != "Mon,Sun" {
		t.Errorf("formatWeekdays = %q, want Mon,Sun", got)
	}
}

func TestHabitFieldsSpec(t *testing.T) {
	tests := []struct {
		name    string
		fields  HabitFields
		current models.HabitSpec
		want    models.HabitSpec
		wantErr bool
	}{
		{name: "default daily", want: models.DailySpec{}},
		{name: "days imply weekly", fields: HabitFields{Days: "fri,mon"}, want: models.WeeklySpec{Days: []int{1, 5}}},
		{name: "target implies weekly count", fields: HabitFields{Target: 3}, want: models.WeeklyCountSpec{Target: 3}},
		{name: "keeps current", current: models.WeeklyCountSpec{Target: 4}, want: models.WeeklyCountSpec{Target: 4}},
		{name: "weekly keeps current days", fields: HabitFields{Type: "weekly"}, current: models.WeeklySpec{Days: []int{2}}, want: models.WeeklySpec{Days: []int{2}}},
		{name: "weekly without days", fields: HabitFields{Type: "weekly"}, wantErr: true},
		{name: "weekly count defaults target", fields: HabitFields{Type: "weekly-count"}, want: models.WeeklyCountSpec{Target: models.MinWeeklyTarget}},
		{name: "switch to daily", fields: HabitFields{Type: "daily"}, current: models.WeeklySpec{Days: []int{2}}, want: models.DailySpec{}},
		{name: "unknown type", fields: HabitFields{Type: "hourly"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fields.spec(tt.current)
			if (err != nil) != tt.wantErr {
				t.Fatalf("spec() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("spec() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEventFieldsApply(t *testing.T) {
	ctx := &Context{Now: func() time.Time { return friday }}
	reminder := 15

	t.Run("timed defaults end date", func(t *testing.T) {
		form := calendar.EventForm{Title: "Dentist"}
		f := EventFields{Date: "tomorrow", Start: "09:00", End: "09:30", Reminder: &reminder}
		if err := f.apply(ctx, &form); err != nil {
			t.Fatalf("apply() error = %v", err)
		}
		want := calendar.Timed{StartDate: "2026-10-17", StartTime: "09:00", EndDate: "2026-10-17", EndTime: "09:30"}
		if form.Timing != want {
			t.Errorf("Timing = %#v, want %#v", form.Timing, want)
		}
		if form.ReminderMinutes == nil || *form.ReminderMinutes != 15 {
			t.Errorf("ReminderMinutes = %v, want 15", form.ReminderMinutes)
		}
	})

	t.Run("all day span", func(t *testing.T) {
		form := calendar.EventForm{Title: "Trip"}
		f := EventFields{Date: "2026-10-20", EndDate: "2026-10-22", AllDay: true, Repeat: "yearly"}
		if err := f.apply(ctx, &form); err != nil {
			t.Fatalf("apply() error = %v", err)
		}
		want := calendar.AllDay{StartDate: "2026-10-20", EndDate: "2026-10-22"}
		if form.Timing != want {
			t.Errorf("Timing = %#v, want %#v", form.Timing, want)
		}
		if form.Repeat != models.RepeatType("YEARLY") {
			t.Errorf("Repeat = %q, want YEARLY", form.Repeat)
		}
	})

	t.Run("moving a one day event moves its end", func(t *testing.T) {
		form := calendar.EventForm{Title: "Lunch", Timing: calendar.Timed{StartDate: "2026-10-16", StartTime: "12:00", EndDate: "2026-10-16", EndTime: "13:00"}}
		if err := (EventFields{Date: "2026-10-19"}).apply(ctx, &form); err != nil {
			t.Fatalf("apply() error = %v", err)
		}
		want := calendar.Timed{StartDate: "2026-10-19", StartTime: "12:00", EndDate: "2026-10-19", EndTime: "13:00"}
		if form.Timing != want {
			t.Errorf("Timing = %#v, want %#v", form.Timing, want)
		}
	})

	t.Run("timed needs times", func(t *testing.T) {
		form := calendar.EventForm{Title: "X"}
		if err := (EventFields{Date: "today"}).apply(ctx, &form); err == nil {
			t.Error("apply() without times should fail")
		}
	})

	t.Run("needs a date", func(t *testing.T) {
		form := calendar.EventForm{Title: "X"}
		if err := (EventFields{AllDay: true}).apply(ctx, &form); err == nil {
			t.Error("apply() without a date should fail")
		}
	})
}

func TestParseRecordType(t *testing.T) {
	tests := map[string]models.RecordType{
		"bp":             models.RecordBloodPressure,
		"weight":         models.RecordWeight,
		"Glucose":        models.RecordBloodSugar,
		"hr":             models.RecordHeartRate,
		"blood_pressure": models.RecordBloodPressure,
	}
	for in, want := range tests {
		got, err := parseRecordType(in)
		if err != nil || got != want {
			t.Errorf("parseRecordType(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := parseRecordType("temperature"); err == nil {
		t.Error("parseRecordType(temperature) should fail")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{44, "████░░░░░░"},
		{45, "█████░░░░░"},
		{100, "██████████"},
		{130, "██████████"},
	}
	for _, tt := range tests {
		if got := bar(tt.rate); got != tt.want {
			t.Errorf("bar(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

package models

// HabitSummary is the habit reference embedded in a log
type HabitSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UserSummary is the user reference embedded in a log
type UserSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// HabitLog is one day's completion record for one habit for one user.
// It is uniquely addressed by (habit, user, date).
type HabitLog struct {
	ID          int64        `json:"id"`
	Habit       HabitSummary `json:"habit"`
	User        UserSummary  `json:"user"`
	LogDate     string       `json:"logDate"` // YYYY-MM-DD, local calendar day
	Completed   bool         `json:"completed"`
	Note        string       `json:"note,omitempty"`
	CompletedAt string       `json:"completedAt,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
}

// LogRequest creates or updates the log for (habit, current user, date)
type LogRequest struct {
	HabitID   int64  `json:"habitId"`
	LogDate   string `json:"logDate"`
	Completed bool   `json:"completed"`
	Note      string `json:"note"`
}

// Comment is a short text attached to a habit log
type Comment struct {
	ID              int64  `json:"id"`
	HabitLogID      int64  `json:"habitLogId"`
	UserID          int64  `json:"userId"`
	UserName        string `json:"userName"`
	UserDisplayName string `json:"userDisplayName"`
	Content         string `json:"content"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// CommentRequest posts a comment on a habit log
type CommentRequest struct {
	HabitLogID int64  `json:"habitLogId"`
	Content    string `json:"content"`
}

// MaxCommentLength mirrors the backend validation limit
const MaxCommentLength = 500

// MonthlyStats is the monthly summary for the signed-in user's group
type MonthlyStats struct {
	Year       int                 `json:"year"`
	Month      int                 `json:"month"`
	UserStats  []UserStats         `json:"userStats"`
	HabitStats []HabitStats        `json:"habitStats"`
	DailyStats map[string]DayStats `json:"dailyStats"` // key: YYYY-MM-DD
}

type UserStats struct {
	UserID         int64   `json:"userId"`
	Username       string  `json:"username"`
	DisplayName    string  `json:"displayName"`
	TotalHabits    int     `json:"totalHabits"`
	CompletedCount int     `json:"completedCount"`
	TotalPossible  int     `json:"totalPossible"`
	CompletionRate float64 `json:"completionRate"`
}

type HabitStats struct {
	HabitID        int64   `json:"habitId"`
	HabitName      string  `json:"habitName"`
	Color          string  `json:"color"`
	CompletedCount int     `json:"completedCount"`
	TotalPossible  int     `json:"totalPossible"`
	CompletionRate float64 `json:"completionRate"`
}

type DayStats struct {
	Date           string            `json:"date"`
	TotalHabits    int               `json:"totalHabits"`
	CompletedCount int               `json:"completedCount"`
	Logs           []HabitLogSummary `json:"logs"`
}

type HabitLogSummary struct {
	HabitID   int64  `json:"habitId"`
	HabitName string `json:"habitName"`
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	Completed bool   `json:"completed"`
}

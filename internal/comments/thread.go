package comments

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/famtrack/internal/constants"
	apperrors "github.com/julianstephens/famtrack/internal/errors"
	"github.com/julianstephens/famtrack/internal/models"
)

// API is the comment subset of the backend client.
type API interface {
	CreateComment(ctx context.Context, req models.CommentRequest) (*models.Comment, error)
	Comments(ctx context.Context, habitLogID int64) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Thread posts and deletes comments. Refresh runs after every successful
// write; comments are not cached independently of the parent reload.
type Thread struct {
	API     API
	Refresh func(ctx context.Context) error
}

// Post trims text and posts it on habit log logID.
func (t *Thread) Post(ctx context.Context, logID int64, text string) (*models.Comment, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, apperrors.Invalid("comment", "cannot be empty")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return nil, apperrors.Invalid("comment", fmt.Sprintf("must be at most %d characters", models.MaxCommentLength))
	}
	c, err := t.API.CreateComment(ctx, models.CommentRequest{HabitLogID: logID, Content: content})
	if err != nil {
		return nil, err
	}
	return c, t.refresh(ctx)
}

// Delete removes comment id.
func (t *Thread) Delete(ctx context.Context, id int64) error {
	if err := t.API.DeleteComment(ctx, id); err != nil {
		return err
	}
	return t.refresh(ctx)
}

// List fetches the comments on habit log logID.
func (t *Thread) List(ctx context.Context, logID int64) ([]models.Comment, error) {
	return t.API.Comments(ctx, logID)
}

func (t *Thread) refresh(ctx context.Context) error {
	if t.Refresh == nil {
		return nil
	}
	return t.Refresh(ctx)
}

// Ago renders a comment timestamp relative to now.
func Ago(createdAt string, now time.Time) string {
	ts, err := time.ParseInLocation(constants.DateTimeFormat, trimFraction(createdAt), time.Local)
	if err != nil {
		return createdAt
	}
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return ts.Format("Jan 2")
	}
}

func trimFraction(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

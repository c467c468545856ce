package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/julianstephens/famtrack/internal/models"
)

// CreateComment posts a comment on a habit log.
func (c *Client) CreateComment(ctx context.Context, req models.CommentRequest) (*models.Comment, error) {
	var cm models.Comment
	if err := c.call(ctx, "comments.create", http.MethodPost, "/comments", nil, req, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

// Comments lists the comments on a habit log.
func (c *Client) Comments(ctx context.Context, habitLogID int64) ([]models.Comment, error) {
	var out []models.Comment
	path := "/comments/habit-log/" + strconv.FormatInt(habitLogID, 10)
	if err := c.call(ctx, "comments.list", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteComment removes one of the caller's comments.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	path := "/comments/" + strconv.FormatInt(id, 10)
	return c.call(ctx, "comments.delete", http.MethodDelete, path, nil, nil, nil)
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/famtrack/internal/models"
)

// CreateFamily creates a group and makes the caller its first member.
func (c *Client) CreateFamily(ctx context.Context, name string) (*models.Family, error) {
	var f models.Family
	body := map[string]string{"name": name}
	if err := c.call(ctx, "family.create", http.MethodPost, "/family/create", nil, body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// JoinFamily joins the group identified by inviteCode.
func (c *Client) JoinFamily(ctx context.Context, inviteCode string) (*models.Family, error) {
	var f models.Family
	path := "/family/join/" + url.PathEscape(inviteCode)
	if err := c.call(ctx, "family.join", http.MethodPost, path, nil, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// MyFamily returns the caller's group roster. A 404 means no group.
func (c *Client) MyFamily(ctx context.Context) (*models.Family, error) {
	var f models.Family
	if err := c.call(ctx, "family.my", http.MethodGet, "/family/my", nil, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LeaveFamily removes the caller from their group.
func (c *Client) LeaveFamily(ctx context.Context) error {
	return c.call(ctx, "family.leave", http.MethodPost, "/family/leave", nil, nil, nil)
}

// RenameFamily changes the group name.
func (c *Client) RenameFamily(ctx context.Context, name string) (*models.Family, error) {
	var f models.Family
	body := map[string]string{"name": name}
	if err := c.call(ctx, "family.rename", http.MethodPut, "/family/name", nil, body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/famtrack/internal/models"
)

// VapidPublicKey returns the backend's web-push application server key.
func (c *Client) VapidPublicKey(ctx context.Context) (string, error) {
	var out struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.call(ctx, "push.vapid_key", http.MethodGet, "/push/vapid-public-key", nil, nil, &out); err != nil {
		return "", err
	}
	return out.PublicKey, nil
}

// Subscribe registers a push endpoint for the caller.
func (c *Client) Subscribe(ctx context.Context, sub models.PushSubscription) error {
	return c.call(ctx, "push.subscribe", http.MethodPost, "/push/subscribe", nil, sub, nil)
}

// Unsubscribe removes a push endpoint.
func (c *Client) Unsubscribe(ctx context.Context, endpoint string) error {
	body := map[string]string{"endpoint": endpoint}
	return c.call(ctx, "push.unsubscribe", http.MethodPost, "/push/unsubscribe", nil, body, nil)
}

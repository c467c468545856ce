package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/famtrack/internal/models"
)

// Login exchanges credentials for a session. No bearer token is sent.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var user models.User
	if err := c.call(withoutAuth(ctx), "auth.login", http.MethodPost, "/auth/login", nil, creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Signup registers a new account. It does not authenticate; the returned
// string is the backend's confirmation text.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (string, error) {
	var msg string
	if err := c.call(withoutAuth(ctx), "auth.signup", http.MethodPost, "/auth/signup", nil, req, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// ForgotPassword asks the backend to send a reset link to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.call(withoutAuth(ctx), "auth.forgot_password", http.MethodPost, "/auth/forgot-password", nil, body, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return c.call(withoutAuth(ctx), "auth.reset_password", http.MethodPost, "/auth/reset-password", nil, req, nil)
}

// GetReminderSettings returns the daily reminder preferences.
func (c *Client) GetReminderSettings(ctx context.Context) (*models.ReminderSettings, error) {
	var s models.ReminderSettings
	if err := c.call(ctx, "auth.get_reminders", http.MethodGet, "/auth/settings/reminders", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateReminderSettings replaces the daily reminder preferences.
func (c *Client) UpdateReminderSettings(ctx context.Context, s models.ReminderSettings) (*models.ReminderSettings, error) {
	var out models.ReminderSettings
	if err := c.call(ctx, "auth.update_reminders", http.MethodPut, "/auth/settings/reminders", nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDisplayName changes the signed-in user's display name.
func (c *Client) UpdateDisplayName(ctx context.Context, displayName string) error {
	body := map[string]string{"displayName": displayName}
	return c.call(ctx, "auth.update_display_name", http.MethodPut, "/auth/profile/display-name", nil, body, nil)
}

// DeleteAccount permanently removes the signed-in user's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.call(ctx, "auth.delete_account", http.MethodDelete, "/auth/account", nil, nil, nil)
}

package models

// User is the authenticated session user as returned by the login endpoint.
// A User is only ever persisted when Complete reports true.
type User struct {
	Token       string `json:"token"`
	Type        string `json:"type,omitempty"`
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	FamilyID    *int64 `json:"familyId,omitempty"`
	FamilyName  string `json:"familyName,omitempty"`
}

// Complete reports whether u carries everything a session needs.
func (u *User) Complete() bool {
	return u != nil && u.Token != "" && u.ID != 0 && u.Username != ""
}

// HasFamily reports whether the user belongs to a group.
func (u *User) HasFamily() bool {
	return u != nil && u.FamilyID != nil
}

// ProfileUpdate holds the profile fields that may be shallow-merged into a User.
// Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
	Username    *string
}

// Apply merges the non-nil fields of p into u.
func (p ProfileUpdate) Apply(u *User) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
}

// Credentials are the login form fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest are the signup form fields.
type SignupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// ReminderSettings are the per-user daily reminder preferences.
type ReminderSettings struct {
	EnableReminders bool   `json:"enableReminders"`
	ReminderTime    string `json:"reminderTime"` // HH:MM
}

// ResetPasswordRequest confirms a password reset with the emailed token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

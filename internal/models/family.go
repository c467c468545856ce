package models

// Member is a summary of one group member.
type Member struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Family is the sharing unit; all members see each other's habits and logs.
type Family struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	InviteCode string   `json:"inviteCode"`
	Members    []Member `json:"members"`
}

// Member returns the member with the given id.
func (f *Family) Member(id int64) (Member, bool) {
	if f == nil {
		return Member{}, false
	}
	for _, m := range f.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// MemberByUsername returns the member with the given username.
func (f *Family) MemberByUsername(username string) (Member, bool) {
	if f == nil {
		return Member{}, false
	}
	for _, m := range f.Members {
		if m.Username == username {
			return m, true
		}
	}
	return Member{}, false
}

package domain

import "time"

type Agent struct {
	ID          int64
	Email       string
	Password    string // opaque: plaintext or bcrypt hash, compared by roster.Directory
	DisplayName string
}

// Name returns the display name, falling back to the email.
func (a Agent) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}

// Entry is one logged action against a ticket or request number.
type Entry struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	AgentID     int64     `json:"-"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	LoggedAt    time.Time `json:"time"`
}

type NewEntry struct {
	Number      string
	AgentID     int64
	Action      string
	Description string
}

type EntryUpdate struct {
	Number      string
	Action      string
	Description string
	BumpTime    bool // reset LoggedAt to now; otherwise the timestamp is preserved
}

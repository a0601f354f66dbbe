package models

import "time"

// Session is an anonymous browsing session identified by a visitor cookie.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// IsIdle returns true if the session has not been seen within timeout.
func (s Session) IsIdle(timeout time.Duration, now time.Time) bool {
	return now.Sub(s.LastSeen) > timeout
}

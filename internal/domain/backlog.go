package domain

import "time"

// BacklogEntry is a user carried over to the next audit cycle
type BacklogEntry struct {
	ChatID  int64
	User    User
	Reason  string
	AddedAt time.Time
}

package model

import "time"

// Checkin is the pending session recorded by a check-in. It exists only
// while the user is checked in.
type Checkin struct {
	Owner string    `json:"owner" yaml:"owner"`
	Start time.Time `json:"start" yaml:"start"`
}

// Entry is one completed session as stored in a user's log file.
type Entry struct {
	Begin   time.Time `json:"begin" yaml:"begin"`
	End     time.Time `json:"end" yaml:"end"`
	Message string    `json:"message" yaml:"message"`
}

// Interval returns End - Begin.
func (e Entry) Interval() time.Duration {
	return e.End.Sub(e.Begin)
}

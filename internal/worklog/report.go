package worklog

import (
	"context"
	"time"

	"github.com/Tiliavir/git-worklog/internal/model"
)

// Window restricts a report to a time range. Zero bounds are open.
//
// Without Strict an entry is kept when its begin lies within the window.
// With Strict the lower bound is compared against the entry end instead,
// while the upper bound still applies to the entry begin.
type Window struct {
	Begin  time.Time
	End    time.Time
	Strict bool
}

// Contains reports whether e passes the window.
func (w Window) Contains(e model.Entry) bool {
	if !w.Begin.IsZero() {
		if w.Strict {
			if e.End.Before(w.Begin) {
				return false
			}
		} else if e.Begin.Before(w.Begin) {
			return false
		}
	}
	if !w.End.IsZero() && e.Begin.After(w.End) {
		return false
	}
	return true
}

// Filter returns the entries that pass the window, in order.
func (w Window) Filter(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if w.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}

// Report is a user's log restricted to a window.
type Report struct {
	User    string
	Window  Window
	Entries []model.Entry
	Total   time.Duration
}

// Report loads the log of user (or the configured user) and filters it.
func (e *Engine) Report(ctx context.Context, user string, w Window) (Report, error) {
	if user == "" {
		var err error
		if user, err = e.userName(ctx); err != nil {
			return Report{}, err
		}
	}
	data, err := e.Show(ctx, user)
	if err != nil {
		return Report{}, err
	}
	entries, err := ParseSheet(data)
	if err != nil {
		return Report{}, err
	}

	r := Report{User: user, Window: w, Entries: w.Filter(entries)}
	for _, entry := range r.Entries {
		r.Total += entry.Interval()
	}
	return r, nil
}

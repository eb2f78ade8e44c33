package worklog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tiliavir/git-worklog/internal/model"
	"github.com/Tiliavir/git-worklog/internal/timecalc"
)

var (
	ErrAlreadyCheckedIn      = errors.New("already checked in")
	ErrNotCheckedIn          = errors.New("not checked-in")
	ErrCheckoutBeforeCheckin = errors.New("check-out time can not be at a point in time before check-in")
	ErrNoUserName            = errors.New("user.name not configured")
	ErrNoLog                 = errors.New("no log available")
)

// AlreadyCheckedInError reports the session that blocks a check-in.
type AlreadyCheckedInError struct {
	Checkin model.Checkin
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("already checked in: %s at %s", e.Checkin.Owner, timecalc.FormatStamp(e.Checkin.Start))
}

func (e *AlreadyCheckedInError) Is(target error) bool {
	return target == ErrAlreadyCheckedIn
}

// FatalError marks an environment or configuration problem. The command
// line exits with status 128 for these.
type FatalError struct {
	Err  error
	Hint []string
}

func (e *FatalError) Error() string {
	if len(e.Hint) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n" + strings.Join(e.Hint, "\n")
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(err error, hint ...string) error {
	return &FatalError{Err: err, Hint: hint}
}

// IsFatal reports whether err is or wraps a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// IsAlreadyCheckedIn reports whether err is an AlreadyCheckedInError.
func IsAlreadyCheckedIn(err error) bool {
	return errors.Is(err, ErrAlreadyCheckedIn)
}

package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors that can be used with errors.Is() for error type checking.
var (
	// ErrNotRepository indicates no git directory was found above the working directory.
	ErrNotRepository = errors.New("not a git repository (or any of the parent directories): .git")

	// ErrNotFound matches a ToolError of kind KindNotFound, e.g. a missing branch or path.
	ErrNotFound = errors.New("object does not exist")

	// ErrToolFailure matches any other failed git invocation.
	ErrToolFailure = errors.New("git operation failed")
)

// Kind tags a ToolError so callers can tell an absent object from a broken tool.
type Kind int

const (
	KindToolFailure Kind = iota
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	default:
		return "tool failure"
	}
}

// ToolError describes a failed git invocation.
type ToolError struct {
	Kind      Kind
	Operation string
	Args      []string
	ExitCode  int
	Output    string
	Err       error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is makes the kind sentinels match.
func (e *ToolError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrToolFailure:
		return e.Kind == KindToolFailure
	}
	return false
}

// KindOf reports the kind of a ToolError anywhere in err's chain.
// Errors that are not ToolErrors are reported as tool failures.
func KindOf(err error) Kind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindToolFailure
}

// ExitCode returns the exit status recorded in err, or -1.
func ExitCode(err error) int {
	var te *ToolError
	if errors.As(err, &te) {
		return te.ExitCode
	}
	return -1
}

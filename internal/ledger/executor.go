package ledger

import (
	"bytes"
	"errors"
	"os/exec"
)

// Executor runs a prepared git command and returns its standard output.
// A failed command is reported as a *ToolError carrying the exit status and
// standard error.
type Executor interface {
	Execute(cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default Executor that delegates to os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute implements Executor.
func (e *ExecExecutor) Execute(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return stdout.String(), newToolError(cmd.Args, code, stderr.String(), err)
	}
	return stdout.String(), nil
}

// newToolError builds a ToolError of kind KindToolFailure from a command line
// such as ["git", "show", "worklog:alice.tsv"].
func newToolError(argv []string, code int, output string, err error) *ToolError {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	operation := ""
	if len(args) > 0 {
		operation = args[0]
	}
	return &ToolError{
		Kind:      KindToolFailure,
		Operation: operation,
		Args:      args,
		ExitCode:  code,
		Output:    output,
		Err:       err,
	}
}

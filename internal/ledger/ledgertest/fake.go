// Package ledgertest provides an in-memory ledger for tests. It understands
// the fast-import subset the worklog emits and keeps per-branch history so
// that sequences of check-outs can be verified without git.
package ledgertest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Tiliavir/git-worklog/internal/ledger"
)

// Commit is one commit stored by the fake.
type Commit struct {
	ID        string
	Parent    string
	Committer string
	Message   string
	Files     map[string]string
}

// Fake implements the worklog ledger in memory. Repositories are keyed by
// directory, "" being the local repository.
type Fake struct {
	GitDir    string
	Values    map[string]string
	Submitted [][]byte
	// SubmitErr, when set, fails every SubmitCommit.
	SubmitErr error
	// BeforeSubmit runs before a stream is applied, e.g. to move a branch.
	BeforeSubmit func(f *Fake)

	branches map[string]map[string][]Commit
	commits  map[string]Commit
	nextID   int
}

// New creates a Fake whose git directory is gitDir.
func New(gitDir string) *Fake {
	return &Fake{
		GitDir:   gitDir,
		Values:   make(map[string]string),
		branches: make(map[string]map[string][]Commit),
		commits:  make(map[string]Commit),
	}
}

// MetadataDir implements the ledger.
func (f *Fake) MetadataDir(required bool) (string, error) {
	if f.GitDir == "" && required {
		return "", ledger.ErrNotRepository
	}
	return f.GitDir, nil
}

// Config implements the ledger.
func (f *Fake) Config(_ context.Context, key string) (string, error) {
	return f.Values[key], nil
}

// ReadBlob implements the ledger for refs of the form "<branch or id>:<path>".
func (f *Fake) ReadBlob(_ context.Context, repoDir, ref string) (string, error) {
	rev, path, ok := strings.Cut(ref, ":")
	if !ok {
		return "", notFound(ref)
	}
	c, ok := f.commits[rev]
	if !ok {
		history := f.branches[repoDir][rev]
		if len(history) == 0 {
			return "", notFound(ref)
		}
		c = history[len(history)-1]
	}
	content, ok := c.Files[path]
	if !ok {
		return "", notFound(ref)
	}
	return content, nil
}

func notFound(ref string) error {
	return &ledger.ToolError{
		Kind:      ledger.KindNotFound,
		Operation: "show",
		Args:      []string{"show", ref},
		ExitCode:  128,
		Output:    fmt.Sprintf("fatal: invalid object name '%s'.", ref),
	}
}

// BranchTip implements the ledger.
func (f *Fake) BranchTip(_ context.Context, repoDir, branch string) (string, error) {
	history := f.branches[repoDir][branch]
	if len(history) == 0 {
		return "", nil
	}
	return history[len(history)-1].ID, nil
}

// SubmitCommit implements the ledger. Like git fast-import it refuses to
// move a branch to a commit whose parent is not the current tip.
func (f *Fake) SubmitCommit(ctx context.Context, repoDir string, stream []byte) error {
	f.Submitted = append(f.Submitted, append([]byte(nil), stream...))
	if f.BeforeSubmit != nil {
		f.BeforeSubmit(f)
	}
	if f.SubmitErr != nil {
		return f.SubmitErr
	}

	sc, err := ParseStream(stream)
	if err != nil {
		return &ledger.ToolError{Operation: "fast-import", ExitCode: 1, Output: err.Error(), Err: err}
	}
	branch, ok := strings.CutPrefix(sc.Ref, "refs/heads/")
	if !ok {
		return fmt.Errorf("unsupported ref %q", sc.Ref)
	}
	tip, _ := f.BranchTip(ctx, repoDir, branch)
	if sc.From != tip {
		return &ledger.ToolError{
			Operation: "fast-import",
			ExitCode:  1,
			Output:    fmt.Sprintf("warning: Not updating %s (new tip %s does not contain %s)", sc.Ref, sc.From, tip),
		}
	}

	files := make(map[string]string)
	if !sc.DeleteAll && tip != "" {
		for k, v := range f.commits[tip].Files {
			files[k] = v
		}
	}
	for k, v := range sc.Files {
		files[k] = v
	}
	f.AddCommit(repoDir, branch, sc.Committer, sc.Message, files)
	return nil
}

// AddCommit appends a commit to branch directly and returns its id.
func (f *Fake) AddCommit(repoDir, branch, committer, message string, files map[string]string) string {
	f.nextID++
	if f.branches[repoDir] == nil {
		f.branches[repoDir] = make(map[string][]Commit)
	}
	parent, _ := f.BranchTip(context.Background(), repoDir, branch)
	c := Commit{
		ID:        fmt.Sprintf("%040x", f.nextID),
		Parent:    parent,
		Committer: committer,
		Message:   message,
		Files:     files,
	}
	f.commits[c.ID] = c
	f.branches[repoDir][branch] = append(f.branches[repoDir][branch], c)
	return c.ID
}

// History returns the commits of branch, oldest first.
func (f *Fake) History(repoDir, branch string) []Commit {
	return f.branches[repoDir][branch]
}

// File returns path at the tip of branch.
func (f *Fake) File(repoDir, branch, path string) (string, bool) {
	history := f.branches[repoDir][branch]
	if len(history) == 0 {
		return "", false
	}
	content, ok := history[len(history)-1].Files[path]
	return content, ok
}

// StreamCommit is a parsed fast-import commit.
type StreamCommit struct {
	Ref       string
	Committer string
	Message   string
	From      string
	DeleteAll bool
	Files     map[string]string
	Modes     map[string]string
}

// ParseStream parses a single-commit fast-import stream using inline file data.
func ParseStream(stream []byte) (StreamCommit, error) {
	sc := StreamCommit{Files: make(map[string]string), Modes: make(map[string]string)}
	r := bufio.NewReader(bytes.NewReader(stream))

	for {
		line, err := r.ReadString('\n')
		if err == io.EOF && line == "" {
			break
		}
		if err != nil && err != io.EOF {
			return sc, err
		}
		line = strings.TrimSuffix(line, "\n")

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "commit "):
			sc.Ref = strings.TrimPrefix(line, "commit ")
		case strings.HasPrefix(line, "committer "):
			sc.Committer = strings.TrimPrefix(line, "committer ")
		case strings.HasPrefix(line, "data "):
			data, err := readData(r, line)
			if err != nil {
				return sc, err
			}
			sc.Message = data
		case strings.HasPrefix(line, "from "):
			sc.From = strings.TrimPrefix(line, "from ")
		case line == "deleteall":
			sc.DeleteAll = true
		case strings.HasPrefix(line, "M "):
			parts := strings.SplitN(line, " ", 4)
			if len(parts) != 4 || parts[2] != "inline" {
				return sc, fmt.Errorf("unsupported file command %q", line)
			}
			header, err := r.ReadString('\n')
			if err != nil {
				return sc, fmt.Errorf("missing data for %s: %w", parts[3], err)
			}
			data, err := readData(r, strings.TrimSuffix(header, "\n"))
			if err != nil {
				return sc, err
			}
			sc.Files[parts[3]] = data
			sc.Modes[parts[3]] = parts[1]
		default:
			return sc, fmt.Errorf("unexpected command %q", line)
		}
	}

	if sc.Ref == "" {
		return sc, errors.New("stream has no commit command")
	}
	return sc, nil
}

// readData reads the payload announced by a "data <n>" line.
func readData(r *bufio.Reader, header string) (string, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(header, "data "))
	if err != nil || !strings.HasPrefix(header, "data ") {
		return "", fmt.Errorf("bad data header %q", header)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("short data: %w", err)
	}
	return string(buf), nil
}

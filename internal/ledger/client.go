// Package ledger wraps the git command line for the handful of operations the
// worklog needs: locating the git directory, reading and writing config,
// reading a blob at a branch tip and importing a hand-built commit.
package ledger

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Client runs git on behalf of the worklog engine.
//
// The resolved git directory is cached per working directory for the
// lifetime of the client.
type Client struct {
	executor Executor
	log      zerolog.Logger
	dir      string
	getwd    func() (string, error)
	getenv   func(string) string
	homeDir  func() (string, error)
	gitDirs  map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor replaces the os/exec based executor.
func WithExecutor(e Executor) Option {
	return func(c *Client) { c.executor = e }
}

// WithLogger sets the logger used for git invocations.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithDir runs git in dir instead of the process working directory.
func WithDir(dir string) Option {
	return func(c *Client) { c.dir = dir }
}

// WithEnv replaces os.Getenv, e.g. to control GIT_DIR in tests.
func WithEnv(getenv func(string) string) Option {
	return func(c *Client) { c.getenv = getenv }
}

// WithHomeDir replaces os.UserHomeDir.
func WithHomeDir(home func() (string, error)) Option {
	return func(c *Client) { c.homeDir = home }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		executor: NewExecExecutor(),
		log:      zerolog.Nop(),
		getwd:    os.Getwd,
		getenv:   os.Getenv,
		homeDir:  os.UserHomeDir,
		gitDirs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) workingDir() (string, error) {
	if c.dir != "" {
		return filepath.Abs(c.dir)
	}
	return c.getwd()
}

// MetadataDir returns the git directory for the working directory. GIT_DIR
// wins when set; otherwise parent directories are searched for a .git
// directory or gitfile, stopping at the user's home directory. When nothing
// is found it returns "" or, if required, ErrNotRepository.
func (c *Client) MetadataDir(required bool) (string, error) {
	cwd, err := c.workingDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	if dir, ok := c.gitDirs[cwd]; ok {
		return dir, nil
	}
	if dir := c.getenv("GIT_DIR"); dir != "" {
		return dir, nil
	}

	home, _ := c.homeDir()
	for parent := cwd; parent != ""; {
		if home != "" && parent == home {
			break
		}
		candidate := filepath.Join(parent, ".git")
		info, err := os.Stat(candidate)
		if err == nil {
			dir := candidate
			if !info.IsDir() {
				dir, err = readGitFile(parent, candidate)
				if err != nil {
					return "", err
				}
			}
			c.gitDirs[cwd] = dir
			c.log.Debug().Str("cwd", cwd).Str("git_dir", dir).Msg("resolved git directory")
			return dir, nil
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}

	if required {
		return "", ErrNotRepository
	}
	return "", nil
}

// readGitFile follows a "gitdir: <path>" file as used by worktrees and submodules.
func readGitFile(parent, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", fmt.Errorf("invalid .git file encountered: %q", path)
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(parent, target)
	}
	return filepath.Clean(target), nil
}

// Config returns the value of a git config key. An unset key yields "".
func (c *Client) Config(ctx context.Context, key string) (string, error) {
	out, err := c.git(ctx, "", nil, "config", key)
	if err != nil {
		if ExitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetConfig writes a git config key, to the global file if global is set.
func (c *Client) SetConfig(ctx context.Context, key, value string, global bool) error {
	args := []string{"config"}
	if global {
		args = append(args, "--global")
	}
	args = append(args, key, value)
	_, err := c.git(ctx, "", nil, args...)
	return err
}

// ReadBlob returns the contents of ref, written as "<rev>:<path>", in the
// repository at repoDir ("" for the working directory). A missing revision
// or path is reported with kind KindNotFound.
func (c *Client) ReadBlob(ctx context.Context, repoDir, ref string) (string, error) {
	out, err := c.git(ctx, repoDir, nil, "show", ref)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) && te.ExitCode == 128 {
			te.Kind = KindNotFound
		}
		return "", err
	}
	return out, nil
}

// BranchTip returns the commit id at the tip of branch, or "" when the
// branch does not exist yet.
func (c *Client) BranchTip(ctx context.Context, repoDir, branch string) (string, error) {
	out, err := c.git(ctx, repoDir, nil, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch+"^{commit}")
	if err != nil {
		if ExitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SubmitCommit feeds a fast-import stream to git in repoDir. The stream must
// use raw dates. Ref updates that would drop the current tip are refused by
// git and surface as an error.
func (c *Client) SubmitCommit(ctx context.Context, repoDir string, stream []byte) error {
	_, err := c.git(ctx, repoDir, stream, "fast-import", "--date-format=raw", "--quiet")
	return err
}

func (c *Client) git(ctx context.Context, dir string, stdin []byte, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir == "" {
		dir = c.dir
	}
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	c.log.Debug().Strs("args", args).Str("dir", dir).Msg("running git")
	out, err := c.executor.Execute(cmd)
	if err != nil {
		c.log.Debug().Err(err).Strs("args", args).Msg("git failed")
	}
	return out, err
}

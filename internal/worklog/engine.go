// Package worklog implements the check-in/check-out session state machine and
// the append-only ledger of completed sessions kept on a git branch.
package worklog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/git-worklog/internal/ledger"
	"github.com/Tiliavir/git-worklog/internal/model"
	"github.com/Tiliavir/git-worklog/internal/storage"
)

// ConfigReader reads git config values; unset keys read as "".
type ConfigReader interface {
	Config(ctx context.Context, key string) (string, error)
}

// Ledger is the subset of git the engine needs. *ledger.Client implements it.
type Ledger interface {
	ConfigReader
	MetadataDir(required bool) (string, error)
	ReadBlob(ctx context.Context, repoDir, ref string) (string, error)
	BranchTip(ctx context.Context, repoDir, branch string) (string, error)
	SubmitCommit(ctx context.Context, repoDir string, stream []byte) error
}

// Engine runs the workflow of one variant against a ledger.
type Engine struct {
	ledger  Ledger
	variant Variant
	now     func() time.Time
	log     zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine.
func NewEngine(l Ledger, v Variant, opts ...EngineOption) *Engine {
	e := &Engine{
		ledger:  l,
		variant: v,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Variant returns the engine's variant.
func (e *Engine) Variant() Variant {
	return e.variant
}

// Now returns the current time of the engine clock, truncated to seconds.
func (e *Engine) Now() time.Time {
	return e.now().Truncate(time.Second)
}

// Checkout is the result of a successful check-out.
type Checkout struct {
	Checkin model.Checkin
	Entry   model.Entry
	Target  Target
}

// Status describes the current session state.
type Status struct {
	CheckedIn bool
	Checkin   model.Checkin
	Elapsed   time.Duration
}

func (e *Engine) checkinPath() (string, error) {
	dir, err := e.ledger.MetadataDir(true)
	if err != nil {
		if errors.Is(err, ledger.ErrNotRepository) {
			return "", fatal(err)
		}
		return "", err
	}
	return storage.CheckinPath(dir, e.variant.StateDir), nil
}

// loadCheckin returns the current check-in, or ErrNotCheckedIn.
func (e *Engine) loadCheckin() (model.Checkin, string, error) {
	path, err := e.checkinPath()
	if err != nil {
		return model.Checkin{}, "", err
	}
	c, err := storage.LoadCheckin(path)
	switch {
	case errors.Is(err, storage.ErrNoCheckin):
		return model.Checkin{}, path, ErrNotCheckedIn
	case errors.Is(err, storage.ErrInvalidCheckin):
		return model.Checkin{}, path, fatal(err)
	case err != nil:
		return model.Checkin{}, path, err
	}
	return c, path, nil
}

func (e *Engine) userName(ctx context.Context) (string, error) {
	name, err := e.ledger.Config(ctx, "user.name")
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fatal(ErrNoUserName)
	}
	return name, nil
}

// CheckIn starts a session at the given time, or now if at is zero.
func (e *Engine) CheckIn(ctx context.Context, at time.Time) (model.Checkin, error) {
	existing, path, err := e.loadCheckin()
	if err == nil {
		return model.Checkin{}, &AlreadyCheckedInError{Checkin: existing}
	}
	if !errors.Is(err, ErrNotCheckedIn) {
		return model.Checkin{}, err
	}

	name, err := e.userName(ctx)
	if err != nil {
		return model.Checkin{}, err
	}
	if at.IsZero() {
		at = e.Now()
	}

	c := model.Checkin{Owner: name, Start: at}
	if err := storage.SaveCheckin(path, c); err != nil {
		return model.Checkin{}, err
	}
	e.log.Debug().Str("owner", name).Time("start", at).Msg("checked in")
	return c, nil
}

// CheckOut ends the session at the given time (now if zero), commits the log
// entry to the ledger and removes the check-in. message defaults to the
// session interval.
func (e *Engine) CheckOut(ctx context.Context, message string, at time.Time) (Checkout, error) {
	c, path, err := e.loadCheckin()
	if err != nil {
		return Checkout{}, err
	}
	if at.IsZero() {
		at = e.Now()
	}
	if !at.After(c.Start) {
		return Checkout{}, ErrCheckoutBeforeCheckin
	}

	entry := model.Entry{Begin: c.Start, End: at, Message: message}
	if entry.Message == "" {
		entry.Message = "Checkout " + entry.Interval().String()
	}

	target, err := e.appendEntry(ctx, c.Owner, entry)
	if err != nil {
		return Checkout{}, err
	}
	if err := storage.RemoveCheckin(path); err != nil {
		return Checkout{}, err
	}
	return Checkout{Checkin: c, Entry: entry, Target: target}, nil
}

// appendEntry commits user's log file with entry appended. The file is read
// at the branch tip that becomes the parent of the new commit.
func (e *Engine) appendEntry(ctx context.Context, user string, entry model.Entry) (Target, error) {
	target, err := ResolveTarget(ctx, e.ledger, e.variant)
	if err != nil {
		return Target{}, err
	}
	file := SheetPath(user)

	tip, err := e.ledger.BranchTip(ctx, target.Repo, target.Branch)
	if err != nil {
		return Target{}, err
	}
	var content string
	if tip != "" {
		content, err = e.ledger.ReadBlob(ctx, target.Repo, tip+":"+file)
		if err != nil && !errors.Is(err, ledger.ErrNotFound) {
			return Target{}, err
		}
	}

	committer, err := e.committer(ctx, user)
	if err != nil {
		return Target{}, err
	}
	commit := Commit{
		Branch:    target.Branch,
		Committer: committer,
		When:      entry.End,
		Message:   entry.Message,
		Parent:    tip,
		Path:      file,
		Content:   AppendEntry(content, entry),
	}

	e.log.Debug().
		Str("repo", target.Repo).
		Str("branch", target.Branch).
		Str("parent", tip).
		Str("file", file).
		Msg("submitting log commit")
	if err := e.ledger.SubmitCommit(ctx, target.Repo, commit.Bytes()); err != nil {
		return Target{}, fmt.Errorf("committing %s to %s: %w", file, target.Branch, err)
	}
	return target, nil
}

func (e *Engine) committer(ctx context.Context, fallback string) (Identity, error) {
	name, err := e.ledger.Config(ctx, "user.name")
	if err != nil {
		return Identity{}, err
	}
	if name == "" {
		name = fallback
	}
	email, err := e.ledger.Config(ctx, "user.email")
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Email: email}, nil
}

// Abort discards the current session without logging it.
func (e *Engine) Abort(ctx context.Context) (model.Checkin, error) {
	c, path, err := e.loadCheckin()
	if err != nil {
		return model.Checkin{}, err
	}
	if err := storage.RemoveCheckin(path); err != nil {
		return model.Checkin{}, err
	}
	return c, nil
}

// Checkpoint checks out and immediately checks in again at the same time,
// splitting the session in two log entries. A failed check-out stops before
// the check-in.
func (e *Engine) Checkpoint(ctx context.Context, message string, at time.Time) (Checkout, model.Checkin, error) {
	if at.IsZero() {
		at = e.Now()
	}
	co, err := e.CheckOut(ctx, message, at)
	if err != nil {
		return Checkout{}, model.Checkin{}, err
	}
	c, err := e.CheckIn(ctx, at)
	if err != nil {
		return co, model.Checkin{}, err
	}
	return co, c, nil
}

// Status reports the current session.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	c, _, err := e.loadCheckin()
	if errors.Is(err, ErrNotCheckedIn) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	return Status{CheckedIn: true, Checkin: c, Elapsed: e.Now().Sub(c.Start)}, nil
}

// Target resolves the current ledger target.
func (e *Engine) Target(ctx context.Context) (Target, error) {
	return ResolveTarget(ctx, e.ledger, e.variant)
}

// Show returns the raw log file of user, or of the configured user when
// user is empty. A missing file yields an error wrapping ErrNoLog.
func (e *Engine) Show(ctx context.Context, user string) (string, error) {
	if user == "" {
		var err error
		if user, err = e.userName(ctx); err != nil {
			return "", err
		}
	}
	target, err := ResolveTarget(ctx, e.ledger, e.variant)
	if err != nil {
		return "", err
	}

	ref := target.Branch + ":" + SheetPath(user)
	content, err := e.ledger.ReadBlob(ctx, target.Repo, ref)
	if errors.Is(err, ledger.ErrNotFound) {
		return "", fmt.Errorf("%w: %s: %w", ErrNoLog, ref, err)
	}
	return content, err
}

package worklog_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/git-worklog/internal/ledger"
	"github.com/Tiliavir/git-worklog/internal/ledger/ledgertest"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

type fixture struct {
	engine *worklog.Engine
	ledger *ledgertest.Fake
	clock  *clock
	gitDir string
}

func newFixture(t *testing.T, v worklog.Variant) *fixture {
	t.Helper()
	gitDir := t.TempDir()
	fake := ledgertest.New(gitDir)
	fake.Values["user.name"] = "alice"
	fake.Values["user.email"] = "alice@example.com"
	clk := &clock{t: time.Date(2020, 1, 15, 9, 0, 0, 0, time.UTC)}
	return &fixture{
		engine: worklog.NewEngine(fake, v, worklog.WithClock(clk.now)),
		ledger: fake,
		clock:  clk,
		gitDir: gitDir,
	}
}

func (f *fixture) checkinFile(v worklog.Variant) string {
	return filepath.Join(f.gitDir, v.StateDir, "checkin")
}

func sameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestCheckInPersistsSession(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	c, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Owner)
	sameTime(t, f.clock.t, c.Start)

	data, err := os.ReadFile(f.checkinFile(worklog.Worklog))
	require.NoError(t, err)
	assert.Equal(t, "alice\n15/Jan/2020:09:00:00 +0000\n", string(data))

	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.CheckedIn)
	assert.Equal(t, "alice", st.Checkin.Owner)
}

func TestCheckInWithExplicitTime(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	at := time.Date(2020, 1, 15, 7, 30, 0, 0, time.FixedZone("", 3600))

	c, err := f.engine.CheckIn(context.Background(), at)
	require.NoError(t, err)
	sameTime(t, at, c.Start)

	st, err := f.engine.Status(context.Background())
	require.NoError(t, err)
	sameTime(t, at, st.Checkin.Start)
	assert.Equal(t, 2*time.Hour+30*time.Minute, st.Elapsed)
}

func TestCheckInTwiceKeepsExistingSession(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	first, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)

	f.clock.advance(time.Hour)
	f.ledger.Values["user.name"] = "bob"
	_, err = f.engine.CheckIn(ctx, time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, worklog.ErrAlreadyCheckedIn)
	assert.False(t, worklog.IsFatal(err))

	var already *worklog.AlreadyCheckedInError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "alice", already.Checkin.Owner)
	sameTime(t, first.Start, already.Checkin.Start)
	assert.Equal(t, "already checked in: alice at 15/Jan/2020:09:00:00 +0000", err.Error())

	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", st.Checkin.Owner)
	sameTime(t, first.Start, st.Checkin.Start)
}

func TestCheckInRequiresUserName(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	delete(f.ledger.Values, "user.name")

	_, err := f.engine.CheckIn(context.Background(), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, worklog.ErrNoUserName)
	assert.True(t, worklog.IsFatal(err))

	_, statErr := os.Stat(f.checkinFile(worklog.Worklog))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckInOutsideRepository(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	f.ledger.GitDir = ""

	_, err := f.engine.CheckIn(context.Background(), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrNotRepository)
	assert.True(t, worklog.IsFatal(err))
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t, worklog.Worklog)

	_, err := f.engine.CheckOut(context.Background(), "", time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, worklog.ErrNotCheckedIn)
	assert.False(t, worklog.IsFatal(err))
	assert.Empty(t, f.ledger.Submitted)
}

func TestCheckOutRejectsEndNotAfterBegin(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	c, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)

	for _, end := range []time.Time{c.Start, c.Start.Add(-time.Minute)} {
		_, err := f.engine.CheckOut(ctx, "", end)
		require.Error(t, err)
		assert.ErrorIs(t, err, worklog.ErrCheckoutBeforeCheckin)
	}

	assert.Empty(t, f.ledger.Submitted)
	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.CheckedIn)
}

func TestCheckOutCommitsEntry(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	end := f.clock.advance(90 * time.Minute)

	co, err := f.engine.CheckOut(ctx, "", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Checkout 1h30m0s", co.Entry.Message)
	assert.Equal(t, 90*time.Minute, co.Entry.Interval())
	assert.Equal(t, worklog.Target{Branch: "worklog"}, co.Target)

	content, ok := f.ledger.File("", "worklog", "alice.tsv")
	require.True(t, ok)
	assert.Equal(t, "15/Jan/2020:09:00:00 +0000\t15/Jan/2020:10:30:00 +0000\tCheckout 1h30m0s\n", content)

	require.Len(t, f.ledger.Submitted, 1)
	sc, err := ledgertest.ParseStream(f.ledger.Submitted[0])
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/worklog", sc.Ref)
	assert.Equal(t, "alice <alice@example.com> "+itoa(end.Unix())+" +0000", sc.Committer)
	assert.Equal(t, "Checkout 1h30m0s", sc.Message)
	assert.Empty(t, sc.From)
	assert.True(t, sc.DeleteAll)
	assert.Equal(t, "100644", sc.Modes["alice.tsv"])

	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.CheckedIn)
	_, statErr := os.Stat(f.checkinFile(worklog.Worklog))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSequentialCheckOutsAppend(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	var previous string
	for i := 0; i < 4; i++ {
		_, err := f.engine.CheckIn(ctx, time.Time{})
		require.NoError(t, err)
		f.clock.advance(time.Hour)
		_, err = f.engine.CheckOut(ctx, "session "+itoa(int64(i)), time.Time{})
		require.NoError(t, err)
		f.clock.advance(15 * time.Minute)

		content, ok := f.ledger.File("", "worklog", "alice.tsv")
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(content, previous), "previous content must be kept as prefix")
		previous = content
	}

	lines := strings.Split(strings.TrimSuffix(previous, "\n"), "\n")
	require.Len(t, lines, 4)
	for i, line := range lines {
		assert.True(t, strings.HasSuffix(line, "\tsession "+itoa(int64(i))), line)
	}

	history := f.ledger.History("", "worklog")
	require.Len(t, history, 4)
	for i := 1; i < len(history); i++ {
		sc, err := ledgertest.ParseStream(f.ledger.Submitted[i])
		require.NoError(t, err)
		assert.Equal(t, history[i-1].ID, sc.From)
	}
}

func TestCheckOutTerminatesExistingContent(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()
	f.ledger.AddCommit("", "worklog", "seed", "seed", map[string]string{
		"alice.tsv": "01/Jan/2020:09:00:00 +0000\t01/Jan/2020:10:00:00 +0000\tolder",
	})

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	f.clock.advance(time.Hour)
	_, err = f.engine.CheckOut(ctx, "newer", time.Time{})
	require.NoError(t, err)

	content, _ := f.ledger.File("", "worklog", "alice.tsv")
	assert.Equal(t,
		"01/Jan/2020:09:00:00 +0000\t01/Jan/2020:10:00:00 +0000\tolder\n"+
			"15/Jan/2020:09:00:00 +0000\t15/Jan/2020:10:00:00 +0000\tnewer\n",
		content)
}

func TestCheckOutFailureKeepsSession(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()
	f.ledger.SubmitErr = &ledger.ToolError{Operation: "fast-import", ExitCode: 1}

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	f.clock.advance(time.Hour)

	_, err = f.engine.CheckOut(ctx, "", time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrToolFailure)

	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.CheckedIn)
}

func TestCheckOutRejectedWhenBranchMoved(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()
	f.ledger.BeforeSubmit = func(l *ledgertest.Fake) {
		l.AddCommit("", "worklog", "other", "concurrent checkout", map[string]string{"alice.tsv": "x\n"})
	}

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	f.clock.advance(time.Hour)

	_, err = f.engine.CheckOut(ctx, "", time.Time{})
	require.Error(t, err)

	content, _ := f.ledger.File("", "worklog", "alice.tsv")
	assert.Equal(t, "x\n", content)
	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.CheckedIn)
}

func TestAbort(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	_, err := f.engine.Abort(ctx)
	assert.ErrorIs(t, err, worklog.ErrNotCheckedIn)

	_, err = f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	c, err := f.engine.Abort(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Owner)

	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.CheckedIn)
	assert.Empty(t, f.ledger.Submitted)
}

func TestCheckpointSplitsSession(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	at := f.clock.advance(2 * time.Hour)

	co, c, err := f.engine.Checkpoint(ctx, "first half", time.Time{})
	require.NoError(t, err)
	sameTime(t, at, co.Entry.End)
	sameTime(t, at, c.Start)

	content, _ := f.ledger.File("", "worklog", "alice.tsv")
	assert.Equal(t, "15/Jan/2020:09:00:00 +0000\t15/Jan/2020:11:00:00 +0000\tfirst half\n", content)

	st, err := f.engine.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.CheckedIn)
	sameTime(t, at, st.Checkin.Start)
}

func TestCheckpointStopsWhenCheckOutFails(t *testing.T) {
	f := newFixture(t, worklog.Worklog)

	_, _, err := f.engine.Checkpoint(context.Background(), "", time.Time{})
	require.ErrorIs(t, err, worklog.ErrNotCheckedIn)

	st, err := f.engine.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.CheckedIn)
}

func TestInvalidCheckinFileIsFatal(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	path := f.checkinFile(worklog.Worklog)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("alice\n15/Jan/2020:09:00:00 +0000\nextra\n"), 0o600))

	_, err := f.engine.Status(context.Background())
	require.Error(t, err)
	assert.True(t, worklog.IsFatal(err))
}

func TestTimetrackVariantUsesItsOwnState(t *testing.T) {
	f := newFixture(t, worklog.Timetrack)
	ctx := context.Background()

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	_, err = os.Stat(f.checkinFile(worklog.Timetrack))
	require.NoError(t, err)

	// The worklog variant does not see the timetrack session.
	other := worklog.NewEngine(f.ledger, worklog.Worklog, worklog.WithClock(f.clock.now))
	st, err := other.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.CheckedIn)

	f.clock.advance(time.Hour)
	_, err = f.engine.CheckOut(ctx, "", time.Time{})
	require.NoError(t, err)
	_, ok := f.ledger.File("", "timetracking", "alice.tsv")
	assert.True(t, ok)
}

func TestCheckOutToTargetRepository(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()
	repo := t.TempDir()
	f.ledger.Values["worklog.repository"] = repo
	f.ledger.Values["worklog.project"] = "acme"

	_, err := f.engine.CheckIn(ctx, time.Time{})
	require.NoError(t, err)
	f.clock.advance(time.Hour)
	co, err := f.engine.CheckOut(ctx, "", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, worklog.Target{Repo: repo, Branch: "acme"}, co.Target)

	_, ok := f.ledger.File(repo, "acme", "alice.tsv")
	assert.True(t, ok)
	_, ok = f.ledger.File("", "worklog", "alice.tsv")
	assert.False(t, ok)
}

func TestShow(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	ctx := context.Background()
	f.ledger.AddCommit("", "worklog", "seed", "seed", map[string]string{
		"alice.tsv": "a\n",
		"bob.tsv":   "b\n",
	})

	got, err := f.engine.Show(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "a\n", got)

	got, err = f.engine.Show(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "b\n", got)

	_, err = f.engine.Show(ctx, "carol")
	require.Error(t, err)
	assert.ErrorIs(t, err, worklog.ErrNoLog)
	assert.False(t, worklog.IsFatal(err))
}

func TestReport(t *testing.T) {
	f := newFixture(t, worklog.Worklog)
	f.ledger.AddCommit("", "worklog", "seed", "seed", map[string]string{
		"alice.tsv": "15/Jan/2020:10:00:00 +0000\t15/Jan/2020:12:00:00 +0000\tmorning\n" +
			"15/Jan/2020:13:00:00 +0000\t15/Jan/2020:14:30:00 +0000\tafternoon\n",
	})

	r, err := f.engine.Report(context.Background(), "", worklog.Window{})
	require.NoError(t, err)
	assert.Equal(t, "alice", r.User)
	require.Len(t, r.Entries, 2)
	assert.Equal(t, 3*time.Hour+30*time.Minute, r.Total)

	r, err = f.engine.Report(context.Background(), "", worklog.Window{
		Begin: time.Date(2020, 1, 15, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, r.Entries, 1)
	assert.Equal(t, "afternoon", r.Entries[0].Message)
	assert.Equal(t, 90*time.Minute, r.Total)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

package worklog_test

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/git-worklog/internal/ledger"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return string(out)
}

func TestCheckOutAgainstGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	ctx := context.Background()
	repo := t.TempDir()
	gitCmd(t, repo, "init", "--quiet")
	gitCmd(t, repo, "config", "user.name", "alice")
	gitCmd(t, repo, "config", "user.email", "alice@example.com")

	client := ledger.New(
		ledger.WithDir(repo),
		ledger.WithEnv(func(string) string { return "" }),
		ledger.WithHomeDir(func() (string, error) { return filepath.Dir(repo), nil }),
	)
	clk := &clock{t: time.Date(2020, 1, 15, 9, 0, 0, 0, time.UTC)}
	engine := worklog.NewEngine(client, worklog.Worklog, worklog.WithClock(clk.now))

	for _, msg := range []string{"first", "second"} {
		_, err := engine.CheckIn(ctx, time.Time{})
		require.NoError(t, err)
		clk.advance(time.Hour)
		_, err = engine.CheckOut(ctx, msg, time.Time{})
		require.NoError(t, err)
	}

	content, err := engine.Show(ctx, "")
	require.NoError(t, err)
	assert.Equal(t,
		"15/Jan/2020:09:00:00 +0000\t15/Jan/2020:10:00:00 +0000\tfirst\n"+
			"15/Jan/2020:10:00:00 +0000\t15/Jan/2020:11:00:00 +0000\tsecond\n",
		content)

	log := gitCmd(t, repo, "log", "--format=%s|%cn|%ct", "worklog")
	assert.Equal(t, "second|alice|1579086000\nfirst|alice|1579082400\n", log)

	st, err := engine.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.CheckedIn)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/git-worklog/internal/config"
	"github.com/Tiliavir/git-worklog/internal/ledger"
	"github.com/Tiliavir/git-worklog/internal/logging"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

// EngineFactory builds the engine once the logger is known.
type EngineFactory func(log zerolog.Logger) *worklog.Engine

// app carries the collaborators shared by all subcommands.
type app struct {
	variant   worklog.Variant
	cfg       config.Config
	newEngine EngineFactory
	engine    *worklog.Engine
	logLevel  string
}

// NewRootCommand builds the command tree for a variant. Only the variant's
// enabled subcommands are registered.
func NewRootCommand(v worklog.Variant, cfg config.Config, newEngine EngineFactory) *cobra.Command {
	a := &app{variant: v, cfg: cfg, newEngine: newEngine}

	root := &cobra.Command{
		Use:           v.Program,
		Short:         v.Description,
		Long:          v.Description + "\nCheck in to start a local session; checking out commits the session to your log file on the log branch.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.ResolveLevel(a.logLevel, os.Getenv(logging.EnvLevel), a.cfg.LogLevel)
			log := logging.New(cmd.ErrOrStderr(), level, colorEnabled(a.cfg.Color, cmd.ErrOrStderr()))
			a.engine = a.newEngine(log)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error)")

	constructors := []struct {
		cmd worklog.Command
		new func(*app) *cobra.Command
	}{
		{worklog.CommandAbort, newAbortCommand},
		{worklog.CommandCheckin, newCheckinCommand},
		{worklog.CommandCheckpoint, newCheckpointCommand},
		{worklog.CommandCheckout, newCheckoutCommand},
		{worklog.CommandReport, newReportCommand},
		{worklog.CommandShow, newShowCommand},
		{worklog.CommandStatus, newStatusCommand},
	}
	for _, c := range constructors {
		if v.Enabled(c.cmd) {
			root.AddCommand(c.new(a))
		}
	}
	return root
}

// Execute is the entry point called from the variant's main package.
func Execute(v worklog.Variant) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	newEngine := func(log zerolog.Logger) *worklog.Engine {
		client := ledger.New(ledger.WithLogger(log))
		return worklog.NewEngine(client, v, worklog.WithLogger(log))
	}

	root := NewRootCommand(v, cfg, newEngine)
	if err := root.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// printError writes err in git's "fatal: ..." style.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "fatal:", err)
	if worklog.IsAlreadyCheckedIn(err) {
		fmt.Fprintln(w, "       did you forget to check out, last time?")
		fmt.Fprintln(w, "       use the --time argument on checkout.")
	}
}

// exitCode maps errors to process exit codes: 128 for environment and
// configuration problems, 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case worklog.IsFatal(err):
		return 128
	default:
		return 1
	}
}

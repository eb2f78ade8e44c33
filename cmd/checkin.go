package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/git-worklog/internal/timecalc"
)

func newCheckinCommand(a *app) *cobra.Command {
	var timeFlag string

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Check in to start a local time-tracking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := a.parseTime(timeFlag)
			if err != nil {
				return err
			}

			c, err := a.engine.CheckIn(cmd.Context(), at)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "checked in: %s at %s\n", c.Owner, timecalc.FormatStamp(c.Start))
			return nil
		},
	}

	cmd.Flags().StringVar(&timeFlag, "time", "", "Override check-in time")
	return cmd
}

func newAbortCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Abort the current session without logging it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.engine.Abort(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Aborted session for", c.Owner)
			fmt.Fprintln(out, "Checked in at", timecalc.FormatStamp(c.Start))
			return nil
		},
	}
}

// parseTime parses a --time style flag against the engine clock. An empty
// value yields the zero time, meaning "now" to the engine.
func (a *app) parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return timecalc.ParseTime(value, a.engine.Now())
}

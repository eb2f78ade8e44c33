package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/git-worklog/internal/timecalc"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

func newCheckoutCommand(a *app) *cobra.Command {
	var (
		message  string
		timeFlag string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check out and add an entry to your log file on the log branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := a.parseTime(timeFlag)
			if err != nil {
				return err
			}

			co, err := a.engine.CheckOut(cmd.Context(), message, at)
			if err != nil {
				return err
			}

			printCheckout(cmd.OutOrStdout(), co)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "A message for the log")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Override check-out time")
	return cmd
}

func newCheckpointCommand(a *app) *cobra.Command {
	var (
		message  string
		timeFlag string
	)

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Commit a log of the current session and start a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := a.parseTime(timeFlag)
			if err != nil {
				return err
			}

			co, c, err := a.engine.Checkpoint(cmd.Context(), message, at)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCheckout(out, co)
			fmt.Fprintf(out, "checked in: %s at %s\n", c.Owner, timecalc.FormatStamp(c.Start))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "A message for the log")
	cmd.Flags().StringVar(&timeFlag, "time", "", "Override check-out and new check-in time")
	return cmd
}

func printCheckout(w io.Writer, co worklog.Checkout) {
	fmt.Fprintf(w, "checked out: %s, interval is %s\n", co.Checkin.Owner, co.Entry.Interval())
}

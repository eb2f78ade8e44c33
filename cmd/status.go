package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/git-worklog/internal/timecalc"
)

func newStatusCommand(a *app) *cobra.Command {
	var detail bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Long: `Displays your current session, that is the time passed since checkin or
otherwise that there is no active time-tracking session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := newStyles(colorEnabled(a.cfg.Color, out))

			if detail {
				target, err := a.engine.Target(cmd.Context())
				if err != nil {
					return err
				}
				if target.Repo != "" {
					fmt.Fprintf(out, "%s %s\n", st.render(st.label, "Log repository:"), target.Repo)
					fmt.Fprintf(out, "%s %s\n", st.render(st.label, "Log branch:    "), target.Branch)
				} else if target.Branch != a.variant.DefaultBranch {
					fmt.Fprintf(out, "%s %s\n", st.render(st.label, "Log branch:    "), target.Branch)
				}
			}

			status, err := a.engine.Status(cmd.Context())
			if err != nil {
				return err
			}
			if !status.CheckedIn {
				fmt.Fprintln(out, st.render(st.muted, "not checked-in."))
				return nil
			}

			fmt.Fprintf(out, "%s checked in at %s (since %s)\n",
				status.Checkin.Owner,
				st.render(st.stamp, timecalc.FormatStamp(status.Checkin.Start)),
				timecalc.FormatDuration(status.Elapsed, "HMS"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&detail, "detail", "d", false, "Also show the log repository and branch")
	return cmd
}

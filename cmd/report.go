package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/git-worklog/internal/timecalc"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

// reportStampLayout matches "Mon Mar 06 14:30:00 2017 +0000".
const reportStampLayout = "Mon Jan 02 15:04:05 2006 -0700"

func newReportCommand(a *app) *cobra.Command {
	var (
		user      string
		beginFlag string
		endFlag   string
		strict    bool
		raw       bool
		week      bool
		today     bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Create an easily readable log report",
		Long: `Creates an easily readable log report, optionally restricted to a time
window. Output formats: plain, raw, csv, json, yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var w worklog.Window
			var err error
			if w.Begin, err = a.parseTime(beginFlag); err != nil {
				return err
			}
			if w.End, err = a.parseTime(endFlag); err != nil {
				return err
			}
			w.Strict = strict

			now := a.engine.Now()
			var period string
			switch {
			case week:
				from, to := timecalc.WeekRange(now)
				w = fillWindow(w, from, to)
				period = timecalc.ISOWeekLabel(now)
			case today:
				w = fillWindow(w, timecalc.StartOfDay(now), timecalc.EndOfDay(now))
				period = now.Format("2006-01-02")
			}

			if raw {
				format = formatRaw
			}
			render, ok := reportRenderers[format]
			if !ok {
				return fmt.Errorf("unknown report format %q", format)
			}

			r, err := a.engine.Report(cmd.Context(), user, w)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return render(out, reportView{Report: r, Period: period}, newStyles(colorEnabled(a.cfg.Color, out)))
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User to create the report for")
	cmd.Flags().StringVar(&beginFlag, "begin", "", "Include only logs after this time")
	cmd.Flags().StringVar(&endFlag, "end", "", "Include only logs before this time")
	cmd.Flags().BoolVar(&strict, "strict", false,
		"Exclude logs that did not strictly start, or end respectively, at the time(s) specified with --begin and --end")
	cmd.Flags().BoolVar(&raw, "raw", false, "Raw output format (like show)")
	cmd.Flags().BoolVar(&week, "week", false, "Report this week unless --begin/--end are given")
	cmd.Flags().BoolVar(&today, "today", false, "Report today unless --begin/--end are given")
	cmd.Flags().StringVar(&format, "format", a.cfg.ReportFormat, "Output format: plain, raw, csv, json, yaml")
	cmd.MarkFlagsMutuallyExclusive("week", "today")
	return cmd
}

// fillWindow sets the bounds of w that were not given explicitly.
func fillWindow(w worklog.Window, from, to time.Time) worklog.Window {
	if w.Begin.IsZero() {
		w.Begin = from
	}
	if w.End.IsZero() {
		w.End = to
	}
	return w
}

func printPlainReport(out io.Writer, r reportView, st styles) error {
	title := "Worklog for " + r.User
	if r.Period != "" {
		title += " (" + r.Period + ")"
	}
	fmt.Fprintln(out, st.render(st.title, title))
	if !r.Window.Begin.IsZero() {
		fmt.Fprintln(out, st.render(st.label, "From:"), r.Window.Begin.Format(reportStampLayout))
	}
	if !r.Window.End.IsZero() {
		fmt.Fprintln(out, st.render(st.label, "To:  "), r.Window.End.Format(reportStampLayout))
	}
	fmt.Fprintln(out)

	for _, e := range r.Entries {
		fmt.Fprintf(out, "  * %s (%s)\n",
			st.render(st.stamp, e.Begin.Format(reportStampLayout)),
			timecalc.FormatDuration(e.Interval(), "DHMS"))
		fmt.Fprintf(out, "    %s\n", e.Message)
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, st.render(st.total, "Total:"), timecalc.FormatDuration(r.Total, "DHMS"))
	return nil
}

func printRawReport(out io.Writer, r reportView, _ styles) error {
	for _, e := range r.Entries {
		fmt.Fprintln(out, worklog.FormatLine(e))
	}
	return nil
}

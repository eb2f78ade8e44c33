package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/git-worklog/internal/timecalc"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

const (
	formatPlain = "plain"
	formatRaw   = "raw"
	formatCSV   = "csv"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// reportView is a report together with the name of the period it covers,
// e.g. "2020-W03" for --week.
type reportView struct {
	worklog.Report
	Period string
}

type reportRenderer func(io.Writer, reportView, styles) error

var reportRenderers = map[string]reportRenderer{
	formatPlain: printPlainReport,
	formatRaw:   printRawReport,
	formatCSV:   printCSVReport,
	formatJSON:  printJSONReport,
	formatYAML:  printYAMLReport,
}

// reportDoc is the structured (json/yaml) form of a report. Times use the
// log file's timestamp format.
type reportDoc struct {
	User         string     `json:"user" yaml:"user"`
	Period       string     `json:"period,omitempty" yaml:"period,omitempty"`
	Begin        string     `json:"begin,omitempty" yaml:"begin,omitempty"`
	End          string     `json:"end,omitempty" yaml:"end,omitempty"`
	Strict       bool       `json:"strict" yaml:"strict"`
	Entries      []entryDoc `json:"entries" yaml:"entries"`
	TotalSeconds int64      `json:"total_seconds" yaml:"total_seconds"`
}

type entryDoc struct {
	Begin           string `json:"begin" yaml:"begin"`
	End             string `json:"end" yaml:"end"`
	DurationSeconds int64  `json:"duration_seconds" yaml:"duration_seconds"`
	Message         string `json:"message" yaml:"message"`
}

func newReportDoc(r reportView) reportDoc {
	doc := reportDoc{
		User:         r.User,
		Period:       r.Period,
		Strict:       r.Window.Strict,
		Entries:      make([]entryDoc, 0, len(r.Entries)),
		TotalSeconds: int64(r.Total.Seconds()),
	}
	if !r.Window.Begin.IsZero() {
		doc.Begin = timecalc.FormatStamp(r.Window.Begin)
	}
	if !r.Window.End.IsZero() {
		doc.End = timecalc.FormatStamp(r.Window.End)
	}
	for _, e := range r.Entries {
		doc.Entries = append(doc.Entries, entryDoc{
			Begin:           timecalc.FormatStamp(e.Begin),
			End:             timecalc.FormatStamp(e.End),
			DurationSeconds: int64(e.Interval().Seconds()),
			Message:         e.Message,
		})
	}
	return doc
}

func printJSONReport(out io.Writer, r reportView, _ styles) error {
	data, err := json.MarshalIndent(newReportDoc(r), "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func printYAMLReport(out io.Writer, r reportView, _ styles) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(newReportDoc(r)); err != nil {
		return fmt.Errorf("error encoding YAML: %w", err)
	}
	return enc.Close()
}

func printCSVReport(out io.Writer, r reportView, _ styles) error {
	fmt.Fprintln(out, "begin,end,duration_minutes,message")
	for _, e := range r.Entries {
		fmt.Fprintf(out, "%s,%s,%d,%s\n",
			csvEscape(e.Begin.Format("2006-01-02T15:04:05-07:00")),
			csvEscape(e.End.Format("2006-01-02T15:04:05-07:00")),
			int64(e.Interval().Minutes()),
			csvEscape(e.Message),
		)
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

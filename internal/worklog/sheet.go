package worklog

import (
	"fmt"
	"strings"

	"github.com/Tiliavir/git-worklog/internal/model"
	"github.com/Tiliavir/git-worklog/internal/timecalc"
)

// SheetPath returns the log file name for user on the ledger branch.
func SheetPath(user string) string {
	return user + ".tsv"
}

// FormatLine renders e as a sheet line without the newline. Tabs and line
// breaks in the message are replaced by spaces to keep one entry per line.
func FormatLine(e model.Entry) string {
	msg := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, e.Message)
	return fmt.Sprintf("%s\t%s\t%s", timecalc.FormatStamp(e.Begin), timecalc.FormatStamp(e.End), msg)
}

// AppendEntry returns content with e added as a new last line. Non-empty
// content is first terminated with a newline if it lacks one.
func AppendEntry(content string, e model.Entry) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + FormatLine(e) + "\n"
}

// ParseSheet parses a log file. Blank lines are skipped.
func ParseSheet(data string) ([]model.Entry, error) {
	var entries []model.Entry
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.SplitN(line, "\t", 3)
		if len(cols) < 2 {
			return nil, fmt.Errorf("sheet line %d: expected begin, end and message", i+1)
		}
		begin, err := timecalc.ParseStamp(cols[0])
		if err != nil {
			return nil, fmt.Errorf("sheet line %d: begin: %w", i+1, err)
		}
		end, err := timecalc.ParseStamp(cols[1])
		if err != nil {
			return nil, fmt.Errorf("sheet line %d: end: %w", i+1, err)
		}
		e := model.Entry{Begin: begin, End: end}
		if len(cols) == 3 {
			e.Message = cols[2]
		}
		entries = append(entries, e)
	}
	return entries, nil
}

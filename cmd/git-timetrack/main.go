// Command git-timetrack tracks working times in a separate `timetracking` branch.
package main

import (
	"github.com/Tiliavir/git-worklog/cmd"
	"github.com/Tiliavir/git-worklog/internal/worklog"
)

func main() {
	cmd.Execute(worklog.Timetrack)
}

package worklog

// Command names a subcommand a variant may offer.
type Command string

const (
	CommandCheckin    Command = "checkin"
	CommandCheckout   Command = "checkout"
	CommandStatus     Command = "status"
	CommandShow       Command = "show"
	CommandAbort      Command = "abort"
	CommandCheckpoint Command = "checkpoint"
	CommandReport     Command = "report"
)

// Variant parameterizes the engine for one workflow. Variants keep separate
// check-in files and read separate git config sections, so both can be used
// in the same repository.
type Variant struct {
	// Program is the executable name, e.g. "git-worklog".
	Program string
	// Description is shown in the command help.
	Description string
	// Section is the git config section holding branch, repository and project.
	Section string
	// StateDir is the directory inside the git directory holding the check-in file.
	StateDir string
	// DefaultBranch is used when <Section>.branch is not configured.
	DefaultBranch string
	// Commands lists the enabled subcommands.
	Commands []Command
}

// Enabled reports whether the variant offers cmd.
func (v Variant) Enabled(cmd Command) bool {
	for _, c := range v.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// Key returns the git config key <Section>.<name>.
func (v Variant) Key(name string) string {
	return v.Section + "." + name
}

// Worklog is the full workflow, logging to the "worklog" branch.
var Worklog = Variant{
	Program:       "git-worklog",
	Description:   "Track working times in a separate `worklog` branch.",
	Section:       "worklog",
	StateDir:      "worklog",
	DefaultBranch: "worklog",
	Commands: []Command{
		CommandAbort, CommandCheckin, CommandCheckpoint, CommandCheckout,
		CommandReport, CommandShow, CommandStatus,
	},
}

// Timetrack is the smaller workflow, logging to the "timetracking" branch.
var Timetrack = Variant{
	Program:       "git-timetrack",
	Description:   "Track working times in a separate `timetracking` branch.",
	Section:       "timetracking",
	StateDir:      "timetable",
	DefaultBranch: "timetracking",
	Commands: []Command{
		CommandCheckin, CommandCheckout, CommandShow, CommandStatus,
	},
}

package worklog

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// DefaultFileMode is the git mode of log files.
const DefaultFileMode = "100644"

// Identity is a committer name and email.
type Identity struct {
	Name  string
	Email string
}

// Commit describes one fast-import commit that replaces the tree of Branch
// with a single file. Parent must be the current branch tip (or "" for a new
// branch), otherwise the branch history is lost.
type Commit struct {
	Branch    string
	Committer Identity
	When      time.Time
	Message   string
	Parent    string
	Path      string
	Mode      string
	Content   string
}

// WriteTo writes the commit as a git fast-import stream using raw dates.
func (c Commit) WriteTo(w io.Writer) (int64, error) {
	mode := c.Mode
	if mode == "" {
		mode = DefaultFileMode
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "commit refs/heads/%s\n", c.Branch)
	fmt.Fprintf(&b, "committer %s <%s> %d %s\n", c.Committer.Name, c.Committer.Email, c.When.Unix(), c.When.Format("-0700"))
	fmt.Fprintf(&b, "data %d\n%s\n", len(c.Message), c.Message)
	if c.Parent != "" {
		fmt.Fprintf(&b, "from %s\n", c.Parent)
	}
	b.WriteString("deleteall\n")
	fmt.Fprintf(&b, "M %s inline %s\n", mode, c.Path)
	fmt.Fprintf(&b, "data %d\n%s\n", len(c.Content), c.Content)

	return b.WriteTo(w)
}

// Bytes returns the fast-import stream.
func (c Commit) Bytes() []byte {
	var b bytes.Buffer
	_, _ = c.WriteTo(&b)
	return b.Bytes()
}

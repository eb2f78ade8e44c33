package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/git-worklog/internal/model"
	"github.com/Tiliavir/git-worklog/internal/timecalc"
)

var (
	// ErrNoCheckin is returned by LoadCheckin when no check-in file exists.
	ErrNoCheckin = errors.New("no check-in available")

	// ErrInvalidCheckin is returned by LoadCheckin for a malformed check-in file.
	ErrInvalidCheckin = errors.New("invalid check-in file")
)

// CheckinPath returns the check-in file for a workflow state directory
// inside a git directory, e.g. .git/worklog/checkin.
func CheckinPath(gitDir, stateDir string) string {
	return filepath.Join(gitDir, stateDir, "checkin")
}

// LoadCheckin reads the check-in file at path. The file holds the owner on
// the first line and the start time on the second; anything else but
// whitespace after that makes it invalid.
func LoadCheckin(path string) (model.Checkin, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return model.Checkin{}, ErrNoCheckin
	}
	if err != nil {
		return model.Checkin{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	name, err := readLine(r)
	if err != nil {
		return model.Checkin{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	stamp, err := readLine(r)
	if err != nil {
		return model.Checkin{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return model.Checkin{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	if name == "" || strings.TrimSpace(string(rest)) != "" {
		return model.Checkin{}, fmt.Errorf("%w at %q", ErrInvalidCheckin, path)
	}
	start, err := timecalc.ParseStamp(stamp)
	if err != nil {
		return model.Checkin{}, fmt.Errorf("%w at %q: %v", ErrInvalidCheckin, path, err)
	}
	return model.Checkin{Owner: name, Start: start}, nil
}

// readLine returns the next line without its trailing whitespace. A missing
// line reads as "".
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, " \t\r\n"), nil
}

// SaveCheckin atomically writes the check-in file, creating its directory.
func SaveCheckin(path string, c model.Checkin) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data := fmt.Sprintf("%s\n%s\n", c.Owner, timecalc.FormatStamp(c.Start))

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(data), 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// RemoveCheckin deletes the check-in file. A missing file is not an error.
func RemoveCheckin(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error removing %s: %w", path, err)
	}
	return nil
}

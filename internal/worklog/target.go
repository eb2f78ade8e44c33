package worklog

import (
	"context"
	"fmt"
	"os"
)

// Target is where log files are committed. An empty Repo means the local
// repository.
type Target struct {
	Repo   string
	Branch string
}

// ResolveTarget reads the target repository and branch from git config.
// With <section>.repository set, the directory must exist and
// <section>.project names the branch. Otherwise <section>.branch or the
// variant default is used in the local repository.
func ResolveTarget(ctx context.Context, cfg ConfigReader, v Variant) (Target, error) {
	repo, err := cfg.Config(ctx, v.Key("repository"))
	if err != nil {
		return Target{}, err
	}
	if repo != "" {
		info, err := os.Stat(repo)
		if err != nil || !info.IsDir() {
			return Target{}, fatal(
				fmt.Errorf("%s=%s", v.Key("repository"), repo),
				"       the specified directory does not exist.")
		}
		project, err := cfg.Config(ctx, v.Key("project"))
		if err != nil {
			return Target{}, err
		}
		if project == "" {
			return Target{}, fatal(
				fmt.Errorf("%s is set but %s is not", v.Key("repository"), v.Key("project")),
				fmt.Sprintf("       please do `git config %s <projectname>` first", v.Key("project")))
		}
		return Target{Repo: repo, Branch: project}, nil
	}

	branch, err := cfg.Config(ctx, v.Key("branch"))
	if err != nil {
		return Target{}, err
	}
	if branch == "" {
		branch = v.DefaultBranch
	}
	return Target{Branch: branch}, nil
}

package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/ikejs/ike/internal/manifest"
)

var fullHash = regexp.MustCompile(`^[0-9a-f]{40}$`)

// GitResolver inspects git dependencies. Without Remote it only reports the
// ref that would be used; with Remote it asks the remote which commit the
// ref points at.
type GitResolver struct {
	Remote bool
}

func (g *GitResolver) Inspect(ctx context.Context, dep manifest.Dependency, manifestDir string) (*Inspection, error) {
	src, ok := dep.Source.(manifest.GitSource)
	if !ok {
		return nil, &SourceError{Source: dep.Name, Operation: "inspect", Err: fmt.Errorf("not a git source: %s", dep.Source)}
	}

	in := &Inspection{Name: dep.Name, Kind: manifest.KindGit, URL: src.URL, Ref: SelectRef(src)}
	if fullHash.MatchString(in.Ref) {
		in.Commit = in.Ref
		return in, nil
	}
	if !g.Remote || src.Rev != "" {
		return in, nil
	}

	commit, err := gitLsRemote(ctx, src.URL, in.Ref)
	if err != nil {
		return nil, &SourceError{Source: dep.Name, Operation: "ls-remote", Err: err, Hint: "check repo URL, ref, and authentication"}
	}
	in.Commit = commit
	return in, nil
}

// SelectRef picks the ref a git source refers to: rev, then branch, then HEAD.
func SelectRef(src manifest.GitSource) string {
	switch {
	case src.Rev != "":
		return src.Rev
	case src.Branch != "":
		return src.Branch
	}
	return "HEAD"
}

func gitLsRemote(ctx context.Context, repo, ref string) (string, error) {
	// The peeled "^{}" line of an annotated tag is only listed when asked for.
	cmd := exec.CommandContext(ctx, "git", "ls-remote", repo, ref, ref+"^{}")
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		return "", fmt.Errorf("git ls-remote failed: %s: %w", stderr, err)
	}

	wanted := []string{ref, "refs/heads/" + ref, "refs/tags/" + ref + "^{}", "refs/tags/" + ref}
	found := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(string(output)))
	for sc.Scan() {
		hash, name, ok := strings.Cut(sc.Text(), "\t")
		if ok {
			found[name] = hash
		}
	}
	for _, name := range wanted {
		if hash, ok := found[name]; ok {
			return hash, nil
		}
	}
	return "", fmt.Errorf("ref '%s' not found in %s", ref, repo)
}

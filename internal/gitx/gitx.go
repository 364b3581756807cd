// Package gitx provides helpers for executing git commands and interpreting
// their results. It shells out to the installed git binary.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// combined stdout/stderr output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// CurrentBranch returns the short symbolic name of HEAD. The returned error
// is non-nil for detached HEAD or an unborn branch.
func CurrentBranch(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --abbrev-ref HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HasRemote reports whether a remote with the given name is configured.
// A missing remote is not an error.
func HasRemote(ctx context.Context, r Runner, dir, name string) bool {
	_, err := r.Run(ctx, dir, "remote", "get-url", name)
	return err == nil
}

// LocalBranchExists reports whether refs/heads/<branch> exists.
func LocalBranchExists(ctx context.Context, r Runner, dir, branch string) bool {
	_, err := r.Run(ctx, dir, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<branch> exists.
func RemoteBranchExists(ctx context.Context, r Runner, dir, remote, branch string) bool {
	_, err := r.Run(ctx, dir, "show-ref", "--verify", "--quiet", "refs/remotes/"+remote+"/"+branch)
	return err == nil
}

// RevParse resolves a ref to a commit id.
func RevParse(ctx context.Context, r Runner, dir, ref string) (string, error) {
	out, err := r.Run(ctx, dir, "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("git rev-parse %s: %w", ref, err)
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the most recent common ancestor of two refs.
func MergeBase(ctx context.Context, r Runner, dir, a, b string) (string, error) {
	out, err := r.Run(ctx, dir, "merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("git merge-base %s %s: %w", a, b, err)
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches the working copy to an existing local branch.
func Checkout(ctx context.Context, r Runner, dir, branch string) error {
	out, err := r.Run(ctx, dir, "checkout", branch)
	if err != nil {
		return fmt.Errorf("git checkout %s: %s: %w", branch, out, err)
	}
	return nil
}

// CheckoutTracking creates a local branch from startPoint and switches to
// it. Git configures the new branch to track startPoint when it names a
// remote ref, which later fast-forward comparisons rely on.
func CheckoutTracking(ctx context.Context, r Runner, dir, branch, startPoint string) error {
	out, err := r.Run(ctx, dir, "checkout", "-b", branch, startPoint)
	if err != nil {
		return fmt.Errorf("git checkout -b %s %s: %s: %w", branch, startPoint, out, err)
	}
	return nil
}

// Fetch updates remote-tracking refs from the named remote.
func Fetch(ctx context.Context, r Runner, dir, remote string) error {
	out, err := r.Run(ctx, dir, "fetch", remote)
	if err != nil {
		return fmt.Errorf("git fetch %s: %s: %w", remote, out, err)
	}
	return nil
}

// Clone clones url into dest, running from parent so relative dests land in
// the cache root.
func Clone(ctx context.Context, r Runner, parent, url, dest string) error {
	out, err := r.Run(ctx, parent, "clone", url, dest)
	if err != nil {
		return fmt.Errorf("git clone: %s: %w", out, err)
	}
	return nil
}

// AddRemote registers a new remote.
func AddRemote(ctx context.Context, r Runner, dir, name, url string) error {
	out, err := r.Run(ctx, dir, "remote", "add", name, url)
	if err != nil {
		return fmt.Errorf("git remote add %s: %s: %w", name, out, err)
	}
	return nil
}

// MergeFFOnly fast-forwards the current branch to ref. It fails rather than
// create a merge commit.
func MergeFFOnly(ctx context.Context, r Runner, dir, ref string) error {
	out, err := r.Run(ctx, dir, "merge", "--ff-only", ref)
	if err != nil {
		return fmt.Errorf("git merge --ff-only %s: %s: %w", ref, out, err)
	}
	return nil
}

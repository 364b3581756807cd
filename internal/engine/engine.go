// Package engine implements the repository lifecycle driver: per-repository
// clone/fetch/branch-reconcile/fast-forward sequencing with a human-readable
// transcript. It coordinates between gitx, config, and the cache root.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmoxon/uni-hook/internal/gitx"
	"github.com/tmoxon/uni-hook/internal/model"
)

// PrimaryRepoName is the designated primary repository. It receives an
// "upstream" remote on first clone so forks can later re-point "origin"
// while comparisons still follow the canonical source.
const PrimaryRepoName = "core"

// Engine synchronizes skill repositories under a cache root.
type Engine struct {
	root   string
	runner gitx.Runner
}

// New creates an Engine rooted at the given cache directory.
// A nil runner defaults to the real git binary.
func New(root string, runner gitx.Runner) *Engine {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &Engine{root: root, runner: runner}
}

// Root returns the cache root the engine operates under.
func (e *Engine) Root() string { return e.root }

// SyncAll processes repositories strictly sequentially in declaration order
// and aggregates their outcomes: booleans OR, transcripts concatenate.
func (e *Engine) SyncAll(ctx context.Context, specs []model.RepoSpec) model.SyncOutcome {
	var total model.SyncOutcome
	for _, spec := range specs {
		total.Merge(e.SyncRepo(ctx, spec))
	}
	return total
}

// SyncRepo drives one repository to its terminal state. Every git failure
// degrades to a transcript message; SyncRepo itself never fails. The clone
// on disk afterwards is either on spec.Branch or the transcript carries a
// warning naming the branch that could not be found.
func (e *Engine) SyncRepo(ctx context.Context, spec model.RepoSpec) model.SyncOutcome {
	var out model.SyncOutcome
	dir := filepath.Join(e.root, spec.Name)

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		e.update(ctx, dir, spec, &out)
	} else {
		e.clone(ctx, dir, spec, &out)
	}
	return out
}

// update is the PRESENT path: fetch, reconcile branch, evaluate fast-forward.
func (e *Engine) update(ctx context.Context, dir string, spec model.RepoSpec, out *model.SyncOutcome) {
	out.Append(fmt.Sprintf("Fetching latest changes for %s...", spec.Name))

	remote := e.resolveRemote(ctx, dir)
	if err := gitx.Fetch(ctx, e.runner, dir, remote); err != nil {
		// Stale local refs are still usable for the rest of the run.
		out.Append(fmt.Sprintf("Warning: fetch from %s failed for %s (%s)", remote, spec.Name, gitx.ClassifyError(err)))
	}

	e.reconcileBranch(ctx, dir, spec, remote, out)
	e.evaluateFastForward(ctx, dir, spec, out)
}

// resolveRemote picks the remote used for fetch/compare operations:
// "upstream" when configured, else "origin". Never fails.
func (e *Engine) resolveRemote(ctx context.Context, dir string) string {
	if gitx.HasRemote(ctx, e.runner, dir, "upstream") {
		return "upstream"
	}
	return "origin"
}

// reconcileBranch moves the working copy onto the desired branch: no-op when
// already there, plain checkout when the branch exists locally, tracking
// checkout when it only exists on the remote, warning when it exists nowhere.
func (e *Engine) reconcileBranch(ctx context.Context, dir string, spec model.RepoSpec, remote string, out *model.SyncOutcome) {
	current, err := gitx.CurrentBranch(ctx, e.runner, dir)
	if err != nil {
		// Unreadable HEAD (detached, unborn): proceed with whatever is there.
		return
	}
	if current == spec.Branch {
		return
	}

	out.Append(fmt.Sprintf("Switching %s from '%s' to '%s'...", spec.Name, current, spec.Branch))

	if gitx.LocalBranchExists(ctx, e.runner, dir, spec.Branch) {
		if err := gitx.Checkout(ctx, e.runner, dir, spec.Branch); err != nil {
			out.Append(fmt.Sprintf("Warning: could not switch %s to '%s'", spec.Name, spec.Branch))
		}
		return
	}

	if gitx.RemoteBranchExists(ctx, e.runner, dir, remote, spec.Branch) {
		out.Append(fmt.Sprintf("Creating local branch '%s' tracking %s/%s...", spec.Branch, remote, spec.Branch))
		if err := gitx.CheckoutTracking(ctx, e.runner, dir, spec.Branch, remote+"/"+spec.Branch); err != nil {
			out.Append(fmt.Sprintf("Warning: could not create branch '%s' for %s", spec.Branch, spec.Name))
		}
		return
	}

	out.Append(fmt.Sprintf("Warning: Branch %s not found for %s", spec.Branch, spec.Name))
}

// evaluateFastForward classifies the local/upstream relationship once and
// acts on the tag: fast-forward when local is a strict ancestor of upstream,
// flag behind on divergence, do nothing otherwise.
//
// The classification and the merge are separate git invocations. A ref
// change in that window can fail the merge even though the check passed;
// the failure is recorded and nothing else is done.
func (e *Engine) evaluateFastForward(ctx context.Context, dir string, spec model.RepoSpec, out *model.SyncOutcome) {
	switch e.classify(ctx, dir) {
	case model.RelationFastForwardable:
		out.Append(fmt.Sprintf("Updating %s repository to latest version...", spec.Name))
		if err := gitx.MergeFFOnly(ctx, e.runner, dir, "@{u}"); err != nil {
			out.Append(fmt.Sprintf("Failed to update %s repository", spec.Name))
			return
		}
		out.Append(fmt.Sprintf("%s repository updated successfully", spec.Name))
		out.Updated = true
	case model.RelationDiverged:
		// Never merge or rebase on divergence; a separate, explicitly
		// invoked update action resolves it.
		out.Behind = true
	case model.RelationUpToDate, model.RelationUnresolvable:
	}
}

// classify computes the three-way relation between HEAD, its upstream, and
// their merge base as a single tagged value.
func (e *Engine) classify(ctx context.Context, dir string) model.Relation {
	local, err := gitx.RevParse(ctx, e.runner, dir, "HEAD")
	if err != nil {
		return model.RelationUnresolvable
	}
	upstream, err := gitx.RevParse(ctx, e.runner, dir, "@{u}")
	if err != nil {
		return model.RelationUnresolvable
	}
	if local == upstream {
		return model.RelationUpToDate
	}
	base, err := gitx.MergeBase(ctx, e.runner, dir, "HEAD", "@{u}")
	if err == nil && local == base {
		return model.RelationFastForwardable
	}
	return model.RelationDiverged
}

// clone is the ABSENT path: clone, optional branch checkout, and for the
// primary repository an extra "upstream" remote pointing at the same URL.
func (e *Engine) clone(ctx context.Context, dir string, spec model.RepoSpec, out *model.SyncOutcome) {
	out.Append(fmt.Sprintf("Initializing %s repository...", spec.Name))

	if err := os.MkdirAll(e.root, 0o755); err != nil {
		out.Append(fmt.Sprintf("Failed to clone %s: %v", spec.Name, err))
		return
	}
	if err := gitx.Clone(ctx, e.runner, e.root, spec.URL, dir); err != nil {
		out.Append(fmt.Sprintf("Failed to clone %s (%s): %v", spec.Name, gitx.ClassifyError(err), err))
		return
	}

	// The remote branch is assumed present right after a fresh clone, so no
	// remote-branch search is needed here.
	if current, err := gitx.CurrentBranch(ctx, e.runner, dir); err == nil && current != spec.Branch {
		if err := gitx.Checkout(ctx, e.runner, dir, spec.Branch); err != nil {
			out.Append(fmt.Sprintf("Warning: Branch %s not found for %s", spec.Branch, spec.Name))
		}
	}

	if spec.Name == PrimaryRepoName {
		if err := gitx.AddRemote(ctx, e.runner, dir, "upstream", spec.URL); err != nil {
			out.Append(fmt.Sprintf("Warning: could not add upstream remote for %s", spec.Name))
		}
	}

	out.Append(fmt.Sprintf("%s repository initialized at %s", spec.Name, dir))
}

// Package discovery walks skill repositories to find SKILL.md definitions
// and builds the inventory text and environment map published to the
// session.
package discovery

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tmoxon/uni-hook/internal/model"
)

// DefaultExclude filters non-skill directories out of the walk. Patterns
// match against paths relative to each repo's skills directory.
var DefaultExclude = []string{"**/node_modules/**", "**/.git/**", "**/dist/**"}

// Execer runs a repository-provided executable and returns its stdout.
// This interface allows mocking the find-skills delegation in tests.
type Execer interface {
	Exec(ctx context.Context, path string) (string, error)
}

// ScriptExecer is the default Execer that runs the executable directly.
type ScriptExecer struct{}

// Exec runs path with no arguments and returns trimmed stdout.
func (ScriptExecer) Exec(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Options configures a discovery run.
type Options struct {
	// Root is the cache root containing one checkout per repo.
	Root string
	// Repos is the declared repository set, in order.
	Repos []model.RepoSpec
	// Exclude is a set of glob patterns to skip. Defaults to DefaultExclude.
	Exclude []string
	// Exec runs find-skills scripts. Defaults to ScriptExecer.
	Exec Execer
}

// Result is the discovery output for all repositories.
type Result struct {
	// Inventory is the per-repo skill listing text, section per repo.
	Inventory string
	// RepoList is the "- name: path" listing of repos that have skills.
	RepoList string
	// EnvVars maps UNI_SKILL_* names to SKILL.md paths (forward slashes).
	EnvVars map[string]string
	// Skills is the flat list of discovered skills.
	Skills []model.Skill
	// Diags collects non-fatal per-repo problems for stderr.
	Diags []string
}

// Discover scans each repository's skills directory. Repositories without
// one are skipped; per-repo read errors degrade to diagnostics, never an
// error for the whole run.
func Discover(ctx context.Context, opts Options) Result {
	if opts.Exec == nil {
		opts.Exec = ScriptExecer{}
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExclude
	}

	res := Result{EnvVars: make(map[string]string)}
	var inventory []string
	var repoList []string

	for _, repo := range opts.Repos {
		skillsDir := filepath.Join(opts.Root, repo.Name, "skills")
		if info, err := os.Stat(skillsDir); err != nil || !info.IsDir() {
			continue
		}
		repoList = append(repoList, fmt.Sprintf("- %s: %s", repo.Name, skillsDir))

		text := inventoryText(ctx, opts, skillsDir)
		if text != "" {
			inventory = append(inventory, fmt.Sprintf("### Skills from repository: %s\n%s", repo.Name, text))
		}

		if err := collectSkills(skillsDir, repo.Name, opts.Exclude, &res); err != nil {
			res.Diags = append(res.Diags, fmt.Sprintf("Warning: Error discovering skills in %s: %v", repo.Name, err))
		}
	}

	res.Inventory = strings.Join(inventory, "\n\n")
	res.RepoList = strings.Join(repoList, "\n")
	return res
}

// inventoryText prefers the repository's own find-skills script; a missing
// script or non-zero exit falls back to listing top-level categories.
func inventoryText(ctx context.Context, opts Options, skillsDir string) string {
	script := filepath.Join(skillsDir, "using-skills", "find-skills")
	if info, err := os.Stat(script); err == nil && !info.IsDir() {
		if out, err := opts.Exec.Exec(ctx, script); err == nil && out != "" {
			return out
		}
	}

	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return ""
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return strings.Join(names, "\n")
}

// collectSkills walks exactly two directory levels (category/skill) and
// records every leaf holding a SKILL.md.
func collectSkills(skillsDir, repoName string, exclude []string, res *Result) error {
	categories, err := os.ReadDir(skillsDir)
	if err != nil {
		return err
	}
	for _, category := range categories {
		if !category.IsDir() || matchesExclude(category.Name(), exclude) {
			continue
		}
		categoryDir := filepath.Join(skillsDir, category.Name())
		skills, err := os.ReadDir(categoryDir)
		if err != nil {
			return err
		}
		for _, skillEntry := range skills {
			if !skillEntry.IsDir() || matchesExclude(category.Name()+"/"+skillEntry.Name(), exclude) {
				continue
			}
			skillFile := filepath.Join(categoryDir, skillEntry.Name(), "SKILL.md")
			if _, err := os.Stat(skillFile); err != nil {
				continue
			}
			skill := model.Skill{
				Name: skillEntry.Name(),
				Repo: repoName,
				Path: filepath.ToSlash(skillFile),
			}
			res.Skills = append(res.Skills, skill)
			res.EnvVars[skill.EnvVar()] = skill.Path
		}
	}
	return nil
}

// matchesExclude checks a path relative to the skills directory against the
// exclude globs. Directories are also tested with a synthetic child so a
// "**/dist/**" pattern excludes the dist directory itself, not just its
// contents.
func matchesExclude(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		for _, candidate := range []string{relPath, relPath + "/_"} {
			match, err := doublestar.Match(pattern, candidate)
			if err != nil {
				break
			}
			if match {
				return true
			}
		}
	}
	return false
}

package unihook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tmoxon/uni-hook/internal/config"
	"github.com/tmoxon/uni-hook/internal/discovery"
	"github.com/tmoxon/uni-hook/internal/engine"
	"github.com/tmoxon/uni-hook/internal/render"
	"github.com/tmoxon/uni-hook/internal/termstyle"
)

var sessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "Sync skill repositories and emit the SessionStart context",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSessionStart(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sessionStartCmd)
}

// runSessionStart is the whole hook: config, sync, discovery, render.
// Any failure that escapes the per-repository degradation policy ends up in
// an error envelope on stderr and a non-zero exit.
func runSessionStart(cmd *cobra.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session start failed: %v", r)
		}
		if err != nil {
			_ = render.WriteError(cmd.ErrOrStderr(), fmt.Sprintf("ERROR: Session start failed: %v", err))
		}
	}()

	ctx := cmd.Context()

	cwd, _ := os.Getwd()
	cfgPath := config.ResolveConfigPath(flagConfig, cwd)
	debugf(cmd, "using branch config %s", cfgPath)

	branch, diag := config.LoadBranch(cfgPath)
	if diag != nil {
		infof(cmd, "Warning: %v", diag)
	}

	root, err := config.CacheRoot()
	if err != nil {
		return fmt.Errorf("resolve cache root: %w", err)
	}

	repos, err := config.ResolveRepos(root, branch)
	if err != nil {
		return err
	}
	debugf(cmd, "syncing %d repositories under %s (branch %s)", len(repos), root, branch)

	eng := engine.New(root, nil)
	outcome := eng.SyncAll(ctx, repos)
	color := stderrColorEnabled(cmd)
	for _, line := range outcome.Messages {
		debugf(cmd, "%s", termstyle.Paint(color, line, termstyle.ForMessage(line)))
	}

	result := discovery.Discover(ctx, discovery.Options{Root: root, Repos: repos})
	for _, d := range result.Diags {
		infof(cmd, "%s", d)
	}

	envVars := result.EnvVars
	// UNI_SKILLS points at the primary checkout itself, not its skills
	// subdirectory.
	envVars["UNI_ROOT"] = filepath.ToSlash(root)
	envVars["UNI_SKILLS"] = filepath.ToSlash(filepath.Join(root, engine.PrimaryRepoName))

	// Publish the map into the process environment so spawned tools can
	// resolve skills without re-deriving paths.
	for key, value := range envVars {
		if err := os.Setenv(key, value); err != nil {
			infof(cmd, "Warning: could not set %s: %v", key, err)
		}
	}

	contextText := render.AdditionalContext(render.Params{
		Root:         root,
		SkillsDir:    filepath.Join(root, engine.PrimaryRepoName),
		InitMessages: outcome.Messages,
		UsingSkills:  render.ReadUsingSkills(root),
		RepoList:     result.RepoList,
		EnvVars:      envVars,
		Inventory:    result.Inventory,
		Behind:       outcome.Behind,
	})

	return render.WriteSuccess(cmd.OutOrStdout(), contextText)
}

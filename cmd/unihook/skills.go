package unihook

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tmoxon/uni-hook/internal/config"
	"github.com/tmoxon/uni-hook/internal/discovery"
	"github.com/tmoxon/uni-hook/internal/tableutil"
	"github.com/tmoxon/uni-hook/internal/termstyle"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List discovered skills without syncing repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cwd, _ := os.Getwd()
		branch, diag := config.LoadBranch(config.ResolveConfigPath(flagConfig, cwd))
		if diag != nil {
			infof(cmd, "Warning: %v", diag)
		}

		root, err := config.CacheRoot()
		if err != nil {
			return err
		}
		repos, err := config.ResolveRepos(root, branch)
		if err != nil {
			return err
		}

		result := discovery.Discover(cmd.Context(), discovery.Options{Root: root, Repos: repos})
		for _, d := range result.Diags {
			infof(cmd, "%s", d)
		}

		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		color := colorEnabled(cmd)
		rows := make([][]string, 0, len(result.Skills))
		for _, skill := range result.Skills {
			rows = append(rows, []string{
				termstyle.Colorize(color, skill.Name, termstyle.Updated),
				skill.Repo,
				skill.Path,
			})
		}
		return tableutil.WriteTable(cmd.OutOrStdout(), color, noHeaders, []string{"NAME", "REPO", "PATH"}, rows)
	},
}

func init() {
	skillsCmd.Flags().Bool("no-headers", false, "omit the header row")
	rootCmd.AddCommand(skillsCmd)
}

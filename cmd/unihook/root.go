// Package unihook contains the Cobra command tree for the uni-hook binary.
package unihook

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Global flags
	flagVerbose int
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "uni-hook",
	Short: "SessionStart hook for the uni skill system",
	Long:  "uni-hook synchronizes skill repositories into the uni cache, discovers SKILL.md definitions, and emits the SessionStart context envelope on stdout.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
	},
	// The runtime invokes the hook binary bare, so the root command runs
	// session-start itself.
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSessionStart(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "override branch config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly
// exit code: 0 success, 1 configuration or unhandled error.
func ExecuteWithExitCode() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func colorEnabled(cmd *cobra.Command) bool {
	return writerIsTerminal(cmd.OutOrStdout())
}

func stderrColorEnabled(cmd *cobra.Command) bool {
	return writerIsTerminal(cmd.ErrOrStderr())
}

func writerIsTerminal(w any) bool {
	if flagNoColor {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}

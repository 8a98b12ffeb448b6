package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taylordotfish/fix-ardour-lv2-index/internal"
)

// Exit codes. Scripts rely on these staying distinct: a patched session and
// a clean no-change run are different outcomes, and unresolved references
// always win over both.
const (
	ExitNoChange   = 0
	ExitFatal      = 1
	ExitPatched    = 2
	ExitUnresolved = 3
)

var (
	verbose      bool
	outputPath   string
	catalogPath  string
	dryRun       bool
	reportFormat string
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// exitCode is set by the run; Execute returns it to main.
var exitCode = ExitNoChange

// rootCmd represents the base command; the tool is single-purpose, so the
// repair runs directly on the root.
var rootCmd = &cobra.Command{
	Use:   "fix-ardour-lv2-index [flags] <session-file>",
	Short: "Repair LV2 parameter indices in Ardour session files",
	Long: `Repair LV2 parameter indices in Ardour session files.

When an LV2 plugin changes its port ordering between versions, the numeric
parameter indices saved in a session no longer point at the same controls
and automation silently lands on the wrong parameter. This tool re-anchors
every stored index to the plugin's current port table using the stored
identity label, rewrites only the affected digits, and saves the original
session byte-for-byte to <session-file>.orig first.

References whose identity cannot be established with certainty (plugin not
installed, label missing, or two ports sharing a label) are never guessed
at: they are left untouched and reported.

Pass "-" as <session-file> to read from stdin. The patched session then goes
to stdout, or to the file named with -o; in-place patching and backups never
apply to stdin input.

Exit codes:
  0  session already correct, nothing to do
  1  fatal error (bad session file, backup or write failure)
  2  session patched
  3  finished, but some references could not be resolved`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: runFix,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitFatal
	}
	return exitCode
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the patched session to this path (\"-\" for stdout) instead of patching in place")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "Read plugin parameter tables from a YAML catalog file instead of lv2info")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and report, but write nothing")
	rootCmd.Flags().StringVar(&reportFormat, "format", "text", "Report format: text or yaml")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

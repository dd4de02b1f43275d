package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quenby/xskel/cmd/xskel/commands"
	"github.com/quenby/xskel/config"
	"github.com/quenby/xskel/logger"
)

var rootCmd = &cobra.Command{
	Use:   "xskel",
	Short: "xskel - Group XML files by structural skeleton",
	Long: `xskel - XML structure analyzer.

Scans a directory tree of XML/TEI files, reduces each document to its
structural skeleton (element names, attribute keys, child order; no
text, no attribute values), and groups files that share a structure.

Available commands:
  scan    - Scan a directory and write the grouping report
  watch   - Rescan automatically when files change
  lint    - Check TEI conventions on individual files
  history - Inspect recorded scan runs
  config  - Manage xskel configuration
  version - Show version information

Examples:
  xskel scan ./corpus                   # Scan and write xskel-report.json
  xskel scan ./corpus -o out.json -t 8  # 8 workers, custom output
  xskel watch ./corpus                  # Keep the report current
  xskel lint doc.xml                    # TEI convention check
  xskel history --verify                # Did the last scan change anything?`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		// Logging settings come from the config cascade when no -v flags
		// are given. A broken config must not prevent logger setup:
		// `xskel config init` is how the user repairs it.
		logFile := ""
		if cfg, err := commands.LoadConfig(cmd); err == nil {
			if verbosity == 0 {
				if lv, ok := logger.LevelVerbosity(cfg.Logging.Level); ok {
					verbosity = lv
				}
			}
			logFile = cfg.Logging.File
		}

		if logFile != "" {
			if err := logger.InitializeWithFile(jsonOutput, verbosity, logFile); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		}
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Machine-readable output (progress events and results as JSON)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default: "+config.UserConfigPath()+")")

	// Add commands
	rootCmd.AddCommand(commands.ScanCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.LintCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

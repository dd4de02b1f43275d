package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quenby/xskel/history"
	"github.com/quenby/xskel/logger"
)

// HistoryCmd represents the history command - recorded scan runs
var HistoryCmd = &cobra.Command{
	Use:   "history [DIRECTORY]",
	Short: "List recorded scan runs",
	Long: `List scan runs recorded in the history database.

Every scan records one row: when it ran, how many files and unique
structures it found, and a SHA-256 digest of the report it wrote.
With a DIRECTORY argument only runs of that root are shown.

--verify compares the digests of the two most recent runs of
DIRECTORY and exits nonzero when they differ, which makes a
"rescan and compare" step scriptable.

Examples:
  xskel history                     # Recent runs, all roots
  xskel history ./corpus            # Runs of one root
  xskel history --limit 5           # Only the five newest
  xskel history ./corpus --verify   # Did the last two runs match?
  xskel history --json              # Machine-readable rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := ""
		if len(args) > 0 {
			root = args[0]
		}
		return runHistory(cmd, root)
	},
}

func init() {
	HistoryCmd.Flags().IntP("limit", "n", 20, "Maximum runs to list (0 = all)")
	HistoryCmd.Flags().Bool("verify", false, "Compare the last two runs of DIRECTORY")
}

func runHistory(cmd *cobra.Command, root string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")
	verify, _ := cmd.Flags().GetBool("verify")

	// Runs are stored under absolute roots
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		root = abs
	}

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if verify {
		if root == "" {
			return fmt.Errorf("--verify requires a DIRECTORY argument")
		}
		return runVerify(store, root, jsonOutput)
	}

	runs, err := store.ListRuns(root, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize runs: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(runs) == 0 {
		pterm.Println("No runs recorded")
		return nil
	}

	pterm.Printf("Run history: %d run(s)\n\n", len(runs))
	for _, run := range runs {
		pterm.Printf("  %s  %s  %d files, %d structures, %d failed  %.2fs  %s\n",
			shortDigest(run.ReportSHA256),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.TotalFiles, run.UniqueStructures, run.FailureCount,
			float64(run.DurationMs)/1000.0,
			run.Root)
	}
	return nil
}

func runVerify(store *history.Store, root string, jsonOutput bool) error {
	result, err := store.Verify(root)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize result: %w", err)
		}
		fmt.Println(string(out))
	} else if result.Matched {
		pterm.Printf("%s Last two runs of %s match (%s)\n",
			pterm.Green("✔"), root, shortDigest(result.Latest.ReportSHA256))
	} else {
		pterm.Printf("%s Last two runs of %s differ\n", pterm.Red("✗"), root)
		pterm.Printf("  Latest:   %s  %s  %d files, %d structures\n",
			result.Latest.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortDigest(result.Latest.ReportSHA256),
			result.Latest.TotalFiles, result.Latest.UniqueStructures)
		pterm.Printf("  Previous: %s  %s  %d files, %d structures\n",
			result.Previous.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortDigest(result.Previous.ReportSHA256),
			result.Previous.TotalFiles, result.Previous.UniqueStructures)
		if versionDrift(result.Latest.ToolVersion, result.Previous.ToolVersion) {
			pterm.Printf("  Note: runs were recorded by different xskel versions (%s vs %s)\n",
				result.Latest.ToolVersion, result.Previous.ToolVersion)
		}
	}

	if !result.Matched {
		// os.Exit skips PersistentPostRun
		logger.Cleanup()
		os.Exit(1)
	}
	return nil
}

// versionDrift reports whether two recorded tool versions differ.
// Untagged "dev" builds do not parse as semver; those fall back to a
// plain string comparison.
func versionDrift(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a != b
	}
	return !va.Equal(vb)
}

// shortDigest abbreviates a SHA-256 hex digest for terminal output
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

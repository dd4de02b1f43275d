package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quenby/xskel/config"
	"github.com/quenby/xskel/history"
	"github.com/quenby/xskel/logger"
	"github.com/quenby/xskel/scanner"
	"github.com/quenby/xskel/version"
)

// ScanCmd represents the scan command - the core run
var ScanCmd = &cobra.Command{
	Use:   "scan DIRECTORY",
	Short: "Scan a directory and group XML files by structure",
	Long: `Scan a directory tree, parse every matching XML file, and write a
report grouping files that share a structural skeleton.

The skeleton keeps element names, attribute keys, and child order.
Text content and attribute values are ignored, so documents that
differ only in their data land in the same group.

Files that fail to parse are recorded in the report's failures list;
the scan continues past them.

Examples:
  xskel scan ./corpus                      # Report to xskel-report.json
  xskel scan ./corpus -o structures.json   # Custom output path
  xskel scan ./corpus -t 8 -d 2            # 8 workers, two levels deep
  xskel scan ./corpus --format yaml        # YAML report
  xskel scan ./corpus --json               # JSON progress events`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args[0])
	},
}

func init() {
	ScanCmd.Flags().StringP("output", "o", "", "Report file path (default from config)")
	ScanCmd.Flags().IntP("threads", "t", 0, "Number of parse workers (0 = one per CPU)")
	ScanCmd.Flags().IntP("max-depth", "d", 0, "Maximum directory depth (0 = unlimited)")
	ScanCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	ScanCmd.Flags().Bool("no-pretty", false, "Disable pretty-printed report output")
	ScanCmd.Flags().String("format", "", "Report format: json or yaml (default from config)")
}

func runScan(cmd *cobra.Command, root string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ctrl+C cancels the scan; workers drain and the run errors out
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, elapsed, err := runScanOnce(ctx, cfg, root, newEmitter(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); !jsonOutput {
		report.Summary()
		pterm.Printf("\n⏱️  Total time: %.2fs\n", elapsed.Seconds())
		pterm.Printf("✅ Results saved to: %s\n", cfg.Output.Path)
	}

	return nil
}

// applyScanFlags lets explicit scan flags override the config cascade
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("threads") {
		cfg.Processing.Workers, _ = cmd.Flags().GetInt("threads")
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Processing.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("no-pretty") {
		cfg.Output.Pretty = false
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format, _ = cmd.Flags().GetString("format")
	}
}

// runScanOnce performs one scan-write-record cycle with a short-lived
// history store. Watch mode uses scanAndWrite directly and keeps its
// store open across rescans.
func runScanOnce(ctx context.Context, cfg *config.Config, root string, emitter scanner.ProgressEmitter) (*scanner.Report, time.Duration, error) {
	report, start, elapsed, err := scanAndWrite(ctx, cfg, root, emitter)
	if err != nil {
		return nil, 0, err
	}

	if cfg.History.Enabled {
		store, err := openHistory(cfg)
		if err != nil {
			logger.Warnw("Not recording run history",
				"error", err)
		} else {
			recordRunTo(store, root, report, start, elapsed)
			store.Close()
		}
	}

	return report, elapsed, nil
}

// scanAndWrite scans root and writes the report file
func scanAndWrite(ctx context.Context, cfg *config.Config, root string, emitter scanner.ProgressEmitter) (*scanner.Report, time.Time, time.Duration, error) {
	start := time.Now()

	s := scanner.New(scanOptions(cfg), emitter)
	report, err := s.Run(ctx, root)
	if err != nil {
		return nil, start, 0, err
	}

	writeOpts := scanner.WriteOptions{Pretty: cfg.Output.Pretty, Format: cfg.Output.Format}
	if err := report.WriteFile(cfg.Output.Path, writeOpts); err != nil {
		return nil, start, 0, fmt.Errorf("failed to write results: %w", err)
	}

	return report, start, time.Since(start), nil
}

// recordRunTo records one run. History failures never fail the scan:
// the report on disk is the primary artifact.
func recordRunTo(store *history.Store, root string, report *scanner.Report, start time.Time, elapsed time.Duration) {
	digest, err := report.Digest()
	if err != nil {
		logger.Warnw("Failed to digest report for history",
			"error", err)
		return
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	run := &history.Run{
		Root:             absRoot,
		StartedAt:        start.UTC(),
		DurationMs:       elapsed.Milliseconds(),
		TotalFiles:       report.TotalFiles,
		UniqueStructures: report.UniqueStructures,
		FailureCount:     len(report.Failures),
		ReportSHA256:     digest,
		ToolVersion:      version.Get().Version,
	}

	if err := store.RecordRun(run); err != nil {
		if history.IsStoreClosed(err) {
			// Watch shutdown race: the store closed while a rescan finished
			logger.Debugw("History store closed, run not recorded",
				logger.FieldRoot, absRoot)
			return
		}
		logger.Warnw("Failed to record run history",
			"error", err)
	}
}

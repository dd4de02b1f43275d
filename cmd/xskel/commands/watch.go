package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quenby/xskel/history"
	"github.com/quenby/xskel/logger"
	"github.com/quenby/xskel/scanner"
)

// WatchCmd represents the watch command - continuous rescanning
var WatchCmd = &cobra.Command{
	Use:   "watch DIRECTORY",
	Short: "Rescan automatically when files change",
	Long: `Watch a directory tree and keep the grouping report current.

An initial scan runs immediately. After that, changes to matching
files are debounced (watch.debounce_ms) and trigger a rescan, capped
at watch.max_rescans_per_minute. The report file's own writes are
ignored so a report inside the tree does not rescan itself.

Runs until interrupted (Ctrl+C).

Examples:
  xskel watch ./corpus                # Keep xskel-report.json current
  xskel watch ./corpus -o out.json    # Custom report path
  xskel watch ./corpus --no-progress  # Quiet rescans`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args[0])
	},
}

func init() {
	WatchCmd.Flags().StringP("output", "o", "", "Report file path (default from config)")
	WatchCmd.Flags().IntP("threads", "t", 0, "Number of parse workers (0 = one per CPU)")
	WatchCmd.Flags().IntP("max-depth", "d", 0, "Maximum directory depth (0 = unlimited)")
	WatchCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	WatchCmd.Flags().Bool("no-pretty", false, "Disable pretty-printed report output")
	WatchCmd.Flags().String("format", "", "Report format: json or yaml (default from config)")
}

func runWatch(cmd *cobra.Command, root string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	emitter := newEmitter(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One store for the whole session; rescans append to it
	var store *history.Store
	if cfg.History.Enabled {
		store, err = openHistory(cfg)
		if err != nil {
			logger.Warnw("Watch running without history",
				"error", err)
		} else {
			defer store.Close()
		}
	}

	rescan := func(ctx context.Context) {
		report, start, elapsed, err := scanAndWrite(ctx, cfg, root, emitter)
		if err != nil {
			if ctx.Err() != nil {
				return // Shutdown, not a scan problem
			}
			logger.Errorw("Rescan failed",
				logger.FieldRoot, root,
				"error", err)
			if !jsonOutput {
				pterm.Error.Printfln("Rescan failed: %v", err)
			}
			return
		}
		if store != nil {
			recordRunTo(store, root, report, start, elapsed)
		}
		if !jsonOutput {
			pterm.Printf("🔄 Rescanned %s: %d files, %d structures (%.2fs)\n",
				root, report.TotalFiles, report.UniqueStructures, elapsed.Seconds())
		}
	}

	// Initial scan before the watches go live
	rescan(ctx)
	if ctx.Err() != nil {
		return nil
	}

	watcher, err := scanner.NewWatcher(root, scanner.WatcherConfig{
		Debounce:         time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		RescansPerMinute: cfg.Watch.MaxRescansPerMinute,
		Extensions:       cfg.Processing.Extensions,
		IgnorePaths:      []string{cfg.Output.Path},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	if !jsonOutput {
		pterm.Printf("👀 Watching %s for changes\n", root)
		pterm.Printf("  Debounce: %dms\n", cfg.Watch.DebounceMs)
		if cfg.Watch.MaxRescansPerMinute > 0 {
			pterm.Printf("  Rescan cap: %d/minute\n", cfg.Watch.MaxRescansPerMinute)
		}
		pterm.Printf("\nPress Ctrl+C to stop\n\n")
	}

	if err := watcher.Run(ctx, rescan); err != nil {
		return err
	}

	if !jsonOutput {
		pterm.Printf("\n👀 Watch stopped\n")
	}
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quenby/xskel/config"
	"github.com/quenby/xskel/display"
	"github.com/quenby/xskel/history"
	"github.com/quenby/xskel/logger"
	"github.com/quenby/xskel/scanner"
)

// LoadConfig loads the configuration a command should run with.
// An explicit --config path wins over the search cascade.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// scanOptions translates configuration into scanner options
func scanOptions(cfg *config.Config) scanner.Options {
	return scanner.Options{
		Workers:             cfg.Processing.Workers,
		MaxDepth:            cfg.Processing.MaxDepth,
		Extensions:          cfg.Processing.Extensions,
		KeepNamespacePrefix: cfg.Processing.KeepNamespacePrefix,
		MaxElementDepth:     cfg.Processing.MaxElementDepth,
		IncludePaths:        cfg.Output.IncludePaths,
		IncludeMerged:       cfg.Output.IncludeMerged,
	}
}

// newEmitter picks the progress emitter for a command invocation.
// JSON mode streams events; otherwise a progress bar is shown only on
// an interactive terminal that did not opt out.
func newEmitter(cmd *cobra.Command) scanner.ProgressEmitter {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return scanner.NewJSONEmitter()
	}
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if noProgress || !display.InteractiveTerminal() {
		return scanner.NopEmitter{}
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	return scanner.NewCLIEmitter(verbosity)
}

// openHistory opens the run-history store at the configured path
func openHistory(cfg *config.Config) (*history.Store, error) {
	store, err := history.Open(cfg.HistoryPath(), logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store at %s: %w", cfg.HistoryPath(), err)
	}
	return store, nil
}

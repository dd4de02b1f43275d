package scanner

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pterm/pterm"

	"github.com/quenby/xskel/logger"
)

// ProgressEmitter receives scan lifecycle events. The scanner calls it
// from a single ticker goroutine plus once at start and completion, so
// implementations do not need to be safe for concurrent use.
//
// Implementations include:
// - CLIEmitter: pterm progress bar for terminal output
// - JSONEmitter: structured JSON events for machine consumption
// - NopEmitter: discards everything (tests, --no-progress)
type ProgressEmitter interface {
	// EmitStage announces the start of a processing stage
	EmitStage(stage string, message string)

	// EmitScanned reports files completed so far against files discovered
	// so far. Discovery streams alongside processing, so discovered keeps
	// growing until the walk finishes.
	EmitScanned(completed int, discovered int)

	// EmitComplete announces successful completion with summary counts
	EmitComplete(summary map[string]interface{})

	// EmitError announces an error during processing
	EmitError(stage string, err error)

	// EmitInfo emits a general informational message
	EmitInfo(message string)
}

// ProgressEvent is one structured JSON progress event
type ProgressEvent struct {
	Type      string                 `json:"type"`      // "stage", "scanned", "complete", "error", "info"
	Timestamp time.Time              `json:"timestamp"` // When this event occurred
	Data      map[string]interface{} `json:"data"`      // Event-specific data
}

// CLIEmitter renders scan progress to the terminal using pterm
type CLIEmitter struct {
	verbosity int
	bar       *pterm.ProgressbarPrinter
}

// NewCLIEmitter creates a CLI progress emitter for terminal output
func NewCLIEmitter(verbosity int) *CLIEmitter {
	return &CLIEmitter{verbosity: verbosity}
}

// EmitStage prints a stage announcement to terminal
func (e *CLIEmitter) EmitStage(stage string, message string) {
	pterm.Printf("🔄 %s: %s\n", pterm.LightCyan(stage), message)
}

// EmitScanned advances the progress bar. The bar starts lazily on the
// first event because the total is unknown until discovery reports at
// least one file, and the total keeps stretching while the walk runs.
func (e *CLIEmitter) EmitScanned(completed int, discovered int) {
	if discovered == 0 {
		return
	}
	if e.bar == nil {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(discovered).
			WithTitle("Scanning").
			WithRemoveWhenDone(true).
			Start()
		if err != nil {
			return
		}
		e.bar = bar
	}
	e.bar.Total = discovered
	if delta := completed - e.bar.Current; delta > 0 {
		e.bar.Add(delta)
	}
}

// EmitComplete stops the bar and prints a completion line
func (e *CLIEmitter) EmitComplete(summary map[string]interface{}) {
	if e.bar != nil {
		e.bar.Stop()
		e.bar = nil
	}
	pterm.Success.Println("Scan complete")
	if logger.ShouldOutput(e.verbosity, logger.OutputOperationInfo) {
		for key, value := range summary {
			pterm.Printf("  %s: %v\n", key, value)
		}
	}
}

// EmitError prints an error
func (e *CLIEmitter) EmitError(stage string, err error) {
	if e.bar != nil {
		e.bar.Stop()
		e.bar = nil
	}
	pterm.Error.Printf("Error in %s: %v\n", stage, err)
}

// EmitInfo prints an informational message
func (e *CLIEmitter) EmitInfo(message string) {
	if logger.ShouldOutput(e.verbosity, logger.OutputOperationInfo) {
		pterm.Info.Println(message)
	}
}

// JSONEmitter writes structured JSON events to stdout so wrapping tools
// can track a scan without parsing terminal output
type JSONEmitter struct {
	encoder *json.Encoder
}

// NewJSONEmitter creates a JSON progress emitter for structured output
func NewJSONEmitter() *JSONEmitter {
	return &JSONEmitter{
		encoder: json.NewEncoder(os.Stdout),
	}
}

// EmitStage emits a stage event as JSON
func (e *JSONEmitter) EmitStage(stage string, message string) {
	e.encoder.Encode(ProgressEvent{
		Type:      "stage",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage":   stage,
			"message": message,
		},
	})
}

// EmitScanned emits a progress event as JSON
func (e *JSONEmitter) EmitScanned(completed int, discovered int) {
	e.encoder.Encode(ProgressEvent{
		Type:      "scanned",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"completed":  completed,
			"discovered": discovered,
		},
	})
}

// EmitComplete emits a completion event as JSON
func (e *JSONEmitter) EmitComplete(summary map[string]interface{}) {
	e.encoder.Encode(ProgressEvent{
		Type:      "complete",
		Timestamp: time.Now(),
		Data:      summary,
	})
}

// EmitError emits an error event as JSON
func (e *JSONEmitter) EmitError(stage string, err error) {
	e.encoder.Encode(ProgressEvent{
		Type:      "error",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		},
	})
}

// EmitInfo emits an info event as JSON
func (e *JSONEmitter) EmitInfo(message string) {
	e.encoder.Encode(ProgressEvent{
		Type:      "info",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": message,
		},
	})
}

// NopEmitter discards all progress events
type NopEmitter struct{}

func (NopEmitter) EmitStage(stage string, message string) {}

func (NopEmitter) EmitScanned(completed int, discovered int) {}

func (NopEmitter) EmitComplete(summary map[string]interface{}) {}

func (NopEmitter) EmitError(stage string, err error) {}

func (NopEmitter) EmitInfo(message string) {}

package tei

import (
	"encoding/json"
	"strings"

	"github.com/pterm/pterm"
)

// Severity classifies a lint finding.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// Message is one lint finding. Line and column are 1-based; structural
// findings that have no position (like the root-name check) use 0:0.
type Message struct {
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Text   string `json:"text" yaml:"text"`
}

// Report collects lint findings by severity.
type Report struct {
	Errors   []Message `json:"errors" yaml:"errors"`
	Warnings []Message `json:"warnings" yaml:"warnings"`
	Info     []Message `json:"info" yaml:"info"`
}

// NewReport returns an empty report whose lists serialize as arrays.
func NewReport() *Report {
	return &Report{
		Errors:   []Message{},
		Warnings: []Message{},
		Info:     []Message{},
	}
}

// IsValid reports whether the document passed: warnings and info do not
// count against validity.
func (r *Report) IsValid() bool {
	return len(r.Errors) == 0
}

func (r *Report) push(line, column int, text string, severity Severity) {
	msg := Message{Line: line, Column: column, Text: text}
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, msg)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, msg)
	case SeverityInfo:
		r.Info = append(r.Info, msg)
	}
}

// Print renders the report to the terminal.
func (r *Report) Print() {
	if r.IsValid() && len(r.Warnings) == 0 && len(r.Info) == 0 {
		pterm.Println(pterm.Green("✔ Validation passed"))
		return
	}

	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.Bold).Sprint("Validation Report"))
	for _, msg := range r.Errors {
		pterm.Printf("%s %d:%d  %s\n", pterm.Red("✗"), msg.Line, msg.Column, msg.Text)
	}
	for _, msg := range r.Warnings {
		pterm.Printf("%s %d:%d  %s\n", pterm.Yellow("⚠"), msg.Line, msg.Column, msg.Text)
	}
	for _, msg := range r.Info {
		pterm.Printf("%s %d:%d  %s\n", pterm.Blue("ℹ"), msg.Line, msg.Column, msg.Text)
	}
	pterm.Println(strings.Repeat("-", 50))
	pterm.Printf("Total: %d errors, %d warnings, %d info\n",
		len(r.Errors), len(r.Warnings), len(r.Info))
}

// JSON serializes the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

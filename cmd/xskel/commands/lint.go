package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quenby/xskel/logger"
	"github.com/quenby/xskel/tei"
)

// LintCmd represents the lint command - TEI convention checks
var LintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Check XML files against TEI conventions",
	Long: `Check XML files against TEI encoding conventions.

Each file is checked against a rule profile: the root element should
be TEI, <pb> elements need their @ed and @n attributes, <head> belongs
inside <div>, and a leading byte-order mark is noted. Findings carry
1-based line:column positions; a file that does not parse reports the
syntax error alone.

A --rules file replaces each section it names wholesale and leaves the
rest at the built-in defaults.

Exits nonzero when any file has errors. Warnings and info do not
affect the exit code.

Examples:
  xskel lint document.xml              # Check one file
  xskel lint corpus/*.xml              # Check many
  xskel lint -r house-style.toml a.xml # Custom rule profile
  xskel lint --json document.xml       # Machine-readable findings`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLint(cmd, args)
	},
}

func init() {
	LintCmd.Flags().StringP("rules", "r", "", "TOML rule profile replacing the built-in checks")
}

// lintResult pairs a report with the file it describes for --json output
type lintResult struct {
	File   string      `json:"file"`
	Report *tei.Report `json:"report"`
}

func runLint(cmd *cobra.Command, files []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	rulesPath, _ := cmd.Flags().GetString("rules")

	rules := tei.DefaultRules()
	if rulesPath != "" {
		var err error
		rules, err = tei.LoadRules(rulesPath)
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
	}

	results := make([]lintResult, 0, len(files))
	failed := 0

	for i, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		report := tei.Lint(data, rules)
		if !report.IsValid() {
			failed++
		}
		results = append(results, lintResult{File: file, Report: report})

		if !jsonOutput {
			if i > 0 {
				pterm.Println()
			}
			if len(files) > 1 {
				pterm.Println(pterm.NewStyle(pterm.Bold).Sprint(file))
			}
			report.Print()
		}
	}

	if jsonOutput {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize results: %w", err)
		}
		fmt.Println(string(out))
	}

	if !jsonOutput && len(files) > 1 {
		pterm.Println()
		if failed > 0 {
			pterm.Printf("%s %d of %d files failed validation\n",
				pterm.Red("✗"), failed, len(files))
		} else {
			pterm.Println(pterm.Green("✔ All files passed"))
		}
	}

	if failed > 0 {
		// os.Exit skips PersistentPostRun
		logger.Cleanup()
		os.Exit(1)
	}

	return nil
}

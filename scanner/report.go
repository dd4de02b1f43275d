package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/quenby/xskel/errors"
	"github.com/quenby/xskel/grouping"
	"github.com/quenby/xskel/skeleton"
)

// summaryLimit is how many top groups Summary prints.
const summaryLimit = 5

// signatureDisplayLimit truncates long signatures in terminal output.
const signatureDisplayLimit = 80

// Failure records one file that could not be read or parsed.
type Failure struct {
	File  string `json:"file" yaml:"file"`
	Error string `json:"error" yaml:"error"`
}

// GroupEntry is one structural equivalence class in the report.
type GroupEntry struct {
	Signature string              `json:"signature" yaml:"signature"`
	Hash      uint64              `json:"hash" yaml:"hash"`
	Structure *skeleton.Structure `json:"structure" yaml:"structure"`
	Files     []string            `json:"files,omitempty" yaml:"files,omitempty"`
	Count     int                 `json:"count" yaml:"count"`
	Merged    *skeleton.Merged    `json:"merged,omitempty" yaml:"merged,omitempty"`
}

// Report is the result of one scan run. Group and file ordering is
// deterministic, so two scans over the same input serialize to
// identical bytes.
type Report struct {
	TotalFiles       int           `json:"total_files" yaml:"total_files"`
	UniqueStructures int           `json:"unique_structures" yaml:"unique_structures"`
	Groups           []*GroupEntry `json:"groups" yaml:"groups"`
	Failures         []Failure     `json:"failures" yaml:"failures"`
}

// BuildReport assembles the report from the finalized grouping table.
// Groups are ordered by descending file count and then ascending
// signature; failures sort by file path.
func BuildReport(table *grouping.Table, failures []Failure, opts Options) *Report {
	groups := table.Snapshot()

	entries := make([]*GroupEntry, 0, len(groups))
	for _, g := range groups {
		entry := &GroupEntry{
			Signature: g.Signature.Canonical,
			Hash:      g.Signature.Hash,
			Structure: skeleton.NewStructure(g.Root),
			Count:     g.Count(),
		}
		if opts.IncludePaths {
			entry.Files = g.Files
		}
		if opts.IncludeMerged {
			entry.Merged = skeleton.NewMerged(g.Root)
		}
		entries = append(entries, entry)
	}

	sortedFailures := make([]Failure, len(failures))
	copy(sortedFailures, failures)
	sort.Slice(sortedFailures, func(i, j int) bool {
		return sortedFailures[i].File < sortedFailures[j].File
	})

	return &Report{
		TotalFiles:       table.FileCount() + len(failures),
		UniqueStructures: len(entries),
		Groups:           entries,
		Failures:         sortedFailures,
	}
}

// WriteOptions selects the serialization format for WriteFile.
type WriteOptions struct {
	// Pretty indents JSON output. Ignored for YAML.
	Pretty bool

	// Format is "json" or "yaml". Empty means JSON.
	Format string
}

// Encode serializes the report.
func (r *Report) Encode(opts WriteOptions) ([]byte, error) {
	switch opts.Format {
	case "", "json":
		if opts.Pretty {
			return json.MarshalIndent(r, "", "  ")
		}
		return json.Marshal(r)
	case "yaml":
		return yaml.Marshal(r)
	default:
		return nil, errors.Newf("unsupported report format %q", opts.Format)
	}
}

// WriteFile serializes the report to path.
func (r *Report) WriteFile(path string, opts WriteOptions) error {
	data, err := r.Encode(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write report to %s", path)
	}
	return nil
}

// Digest returns the hex SHA-256 of the report's compact JSON encoding.
// Identical scans produce identical digests, which is what the run
// history uses to detect structural drift between runs.
func (r *Report) Digest() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Summary prints totals and the most common structures to the terminal.
func (r *Report) Summary() {
	pterm.Printf("\n📊 Processing Summary:\n")
	pterm.Printf("  Total files processed: %d\n", r.TotalFiles)
	pterm.Printf("  Unique structures found: %d\n", r.UniqueStructures)
	if len(r.Failures) > 0 {
		pterm.Printf("  Failures: %s\n", pterm.Red(len(r.Failures)))
	}

	if len(r.Groups) == 0 {
		return
	}

	pterm.Printf("\n🔍 Top %d most common structures:\n", summaryLimit)
	for i, group := range r.Groups {
		if i >= summaryLimit {
			break
		}
		pterm.Printf("  %d. %s files with structure: %s\n",
			i+1,
			pterm.Green(group.Count),
			truncateSignature(group.Signature, signatureDisplayLimit),
		)
	}
}

// truncateSignature shortens s to at most limit runes, appending an
// ellipsis when cut. Rune-based so multibyte element names never split.
func truncateSignature(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

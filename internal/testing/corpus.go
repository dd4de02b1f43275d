// Package testing provides shared helpers for package tests: throwaway
// SQLite databases and on-disk XML corpora.
package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteCorpus materializes files into a fresh temp directory and returns
// its path. Keys are slash-separated paths relative to the corpus root;
// intermediate directories are created as needed. The directory is
// removed automatically when the test finishes.
func WriteCorpus(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create corpus directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write corpus file %s: %v", rel, err)
		}
	}
	return root
}

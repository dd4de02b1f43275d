package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quenby/xskel/grouping"
	"github.com/quenby/xskel/skeleton"
	"github.com/quenby/xskel/xmltree"
)

func parseDoc(t *testing.T, doc string) *xmltree.Node {
	t.Helper()
	root, err := xmltree.Parse([]byte(doc), xmltree.Options{})
	if err != nil {
		t.Fatalf("parse %q: %v", doc, err)
	}
	return root
}

func TestBuildReport_Ordering(t *testing.T) {
	table := grouping.NewTable()

	beta := parseDoc(t, `<beta/>`)
	alpha := parseDoc(t, `<alpha/>`)
	book := parseDoc(t, `<book id="1"><title>x</title></book>`)

	table.Add("b1.xml", skeleton.New(book), book)
	table.Add("b2.xml", skeleton.New(book), book)
	table.Add("beta.xml", skeleton.New(beta), beta)
	table.Add("alpha.xml", skeleton.New(alpha), alpha)

	report := BuildReport(table, nil, DefaultOptions())

	if report.TotalFiles != 4 || report.UniqueStructures != 3 {
		t.Fatalf("unexpected totals: %d files, %d structures",
			report.TotalFiles, report.UniqueStructures)
	}

	got := []string{
		report.Groups[0].Signature,
		report.Groups[1].Signature,
		report.Groups[2].Signature,
	}
	want := []string{"book[id]{title}", "alpha", "beta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("group order = %v, want %v", got, want)
		}
	}
}

func TestBuildReport_FailuresSorted(t *testing.T) {
	table := grouping.NewTable()

	failures := []Failure{
		{File: "z.xml", Error: "bad"},
		{File: "a.xml", Error: "worse"},
	}

	report := BuildReport(table, failures, DefaultOptions())

	if report.TotalFiles != 2 {
		t.Fatalf("failures should count toward total files, got %d", report.TotalFiles)
	}
	if report.Failures[0].File != "a.xml" || report.Failures[1].File != "z.xml" {
		t.Fatalf("failures should sort by file, got %v", report.Failures)
	}
}

func TestReport_EncodeShape(t *testing.T) {
	table := grouping.NewTable()
	book := parseDoc(t, `<book id="1"><title>x</title></book>`)
	table.Add("b.xml", skeleton.New(book), book)

	report := BuildReport(table, []Failure{{File: "bad.xml", Error: "no root element"}}, DefaultOptions())

	data, err := report.Encode(WriteOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report should round-trip as JSON: %v", err)
	}

	for _, key := range []string{"total_files", "unique_structures", "groups", "failures"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("encoded report missing %q: %s", key, data)
		}
	}

	enc := string(data)
	if !strings.Contains(enc, `"signature":"book[id]{title}"`) {
		t.Fatalf("missing signature field: %s", enc)
	}
	if !strings.Contains(enc, `"structure":{"name":"book","attributes":{"id":null},"children":[{"name":"title"}]}`) {
		t.Fatalf("structure shape drifted: %s", enc)
	}
	if strings.Contains(enc, `"hash":"`) {
		t.Fatalf("hash must serialize as an integer, not a string: %s", enc)
	}
}

func TestReport_EmptyArraysNotNull(t *testing.T) {
	report := BuildReport(grouping.NewTable(), nil, DefaultOptions())

	data, err := report.Encode(WriteOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	enc := string(data)
	if !strings.Contains(enc, `"groups":[]`) {
		t.Fatalf("empty groups should encode as [], got %s", enc)
	}
	if !strings.Contains(enc, `"failures":[]`) {
		t.Fatalf("empty failures should encode as [], got %s", enc)
	}
}

func TestReport_EncodeYAML(t *testing.T) {
	table := grouping.NewTable()
	book := parseDoc(t, `<book id="1"><title>x</title></book>`)
	table.Add("b.xml", skeleton.New(book), book)

	report := BuildReport(table, nil, DefaultOptions())

	data, err := report.Encode(WriteOptions{Format: "yaml"})
	if err != nil {
		t.Fatalf("encode yaml: %v", err)
	}

	enc := string(data)
	for _, want := range []string{"total_files: 1", "unique_structures: 1", "signature: book[id]{title}"} {
		if !strings.Contains(enc, want) {
			t.Fatalf("yaml output missing %q:\n%s", want, enc)
		}
	}
}

func TestReport_EncodeUnknownFormat(t *testing.T) {
	report := BuildReport(grouping.NewTable(), nil, DefaultOptions())

	if _, err := report.Encode(WriteOptions{Format: "toml"}); err == nil {
		t.Fatal("unsupported format should error")
	}
}

func TestReport_WriteFile(t *testing.T) {
	table := grouping.NewTable()
	book := parseDoc(t, `<book id="1"><title>x</title></book>`)
	table.Add("b.xml", skeleton.New(book), book)

	report := BuildReport(table, nil, DefaultOptions())

	path := filepath.Join(t.TempDir(), "report.json")
	if err := report.WriteFile(path, WriteOptions{Pretty: true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "book[id]{title}") {
		t.Fatalf("written report missing content: %s", data)
	}
}

func TestReport_Digest(t *testing.T) {
	table := grouping.NewTable()
	book := parseDoc(t, `<book id="1"><title>x</title></book>`)
	table.Add("b.xml", skeleton.New(book), book)

	a := BuildReport(table, nil, DefaultOptions())
	b := BuildReport(table, nil, DefaultOptions())

	digestA, err := a.Digest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	digestB, err := b.Digest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if digestA != digestB {
		t.Fatal("identical reports should share a digest")
	}
	if len(digestA) != 64 {
		t.Fatalf("digest should be hex sha256, got %q", digestA)
	}

	c := BuildReport(table, []Failure{{File: "x.xml", Error: "boom"}}, DefaultOptions())
	digestC, err := c.Digest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if digestC == digestA {
		t.Fatal("different reports should not share a digest")
	}
}

func TestTruncateSignature(t *testing.T) {
	if got := truncateSignature("short", 80); got != "short" {
		t.Fatalf("short signatures should pass through, got %q", got)
	}

	long := strings.Repeat("a", 100)
	got := truncateSignature(long, 80)
	if got != strings.Repeat("a", 80)+"..." {
		t.Fatalf("long signature should cut at the limit, got %d chars", len(got))
	}

	wide := strings.Repeat("日", 90)
	got = truncateSignature(wide, 80)
	if got != strings.Repeat("日", 80)+"..." {
		t.Fatal("truncation must respect rune boundaries")
	}
}

// Package tei lints TEI-flavored XML documents: well-formedness plus a
// small configurable rule set for root naming, required attributes, and
// element containment. Findings carry 1-based line:column positions.
package tei

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quenby/xskel/errors"
)

var bomPrefix = []byte{0xEF, 0xBB, 0xBF}

// Lint checks one document against rules. A document that fails to
// parse yields a report holding exactly one error at the failure
// position; rule findings are only collected from well-formed input.
func Lint(data []byte, rules Rules) *Report {
	rep := NewReport()
	ix := newLineIndex(data)

	decoder := xml.NewDecoder(bytes.NewReader(data))

	var stack []string
	rootSeen := false
	rootClosed := false

	for {
		offset := decoder.InputOffset()
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, column := ix.position(decoder.InputOffset())
			return parseFailure(line, column, syntaxMessage(err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				line, column := ix.position(offset)
				return parseFailure(line, column, "unexpected element after document end")
			}

			line, column := ix.position(offset)

			if !rootSeen {
				rootSeen = true
				checkRoot(t.Name.Local, rules, rep)
			}

			checkRequiredAttributes(t, rules, rep, line, column)

			stack = append(stack, t.Name.Local)
			checkContainment(t.Name.Local, stack, rules, rep, line, column)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					rootClosed = true
				}
			}

		case xml.CharData:
			if len(stack) == 0 && !isIgnorableOutsideRoot(string(t)) {
				line, column := ix.position(offset)
				return parseFailure(line, column, "unexpected character data outside root element")
			}
		}
	}

	if !rootSeen {
		return parseFailure(1, 1, "no root element")
	}

	if bytes.HasPrefix(data, bomPrefix) {
		rep.push(1, 1, "UTF-8 BOM detected (harmless but unnecessary)", SeverityInfo)
	}

	return rep
}

func parseFailure(line, column int, text string) *Report {
	rep := NewReport()
	rep.push(line, column, "XML parsing error: "+text, SeverityError)
	return rep
}

// syntaxMessage strips the redundant position prefix Go's decoder bakes
// into syntax errors; the report already carries line and column.
func syntaxMessage(err error) string {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Msg
	}
	return err.Error()
}

func checkRoot(name string, rules Rules, rep *Report) {
	if rules.RootMustContain == "" {
		return
	}
	if strings.Contains(strings.ToLower(name), strings.ToLower(rules.RootMustContain)) {
		return
	}
	rep.push(0, 0,
		"Root element should contain '"+rules.RootMustContain+"' (case-insensitive), found <"+name+">",
		SeverityWarning)
}

func checkRequiredAttributes(elem xml.StartElement, rules Rules, rep *Report, line, column int) {
	required, ok := rules.RequiredAttributes[elem.Name.Local]
	if !ok {
		return
	}

	for _, attr := range required {
		found := false
		for _, a := range elem.Attr {
			if a.Name.Local == attr {
				found = true
				break
			}
		}
		if !found {
			rep.push(line, column, "<"+elem.Name.Local+"> missing @"+attr, SeverityError)
		}
	}
}

// checkContainment requires the element (or one of its open ancestors)
// to match the configured container. The stack includes the element
// itself, so a rule mapping an element to its own name is trivially
// satisfied.
func checkContainment(name string, stack []string, rules Rules, rep *Report, line, column int) {
	ancestor, ok := rules.Containment[name]
	if !ok {
		return
	}

	for _, open := range stack {
		if open == ancestor {
			return
		}
	}
	rep.push(line, column, "<"+name+"> should be inside <"+ancestor+">", SeverityWarning)
}

func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// lineIndex converts byte offsets into 1-based line:column positions.
// Columns count runes within the line, not bytes.
type lineIndex struct {
	data   []byte
	starts []int
}

func newLineIndex(data []byte) *lineIndex {
	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{data: data, starts: starts}
}

func (ix *lineIndex) position(offset int64) (line, column int) {
	pos := int(offset)
	if pos < 0 {
		pos = 0
	}
	if pos > len(ix.data) {
		pos = len(ix.data)
	}

	idx := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > pos
	}) - 1

	return idx + 1, utf8.RuneCount(ix.data[ix.starts[idx]:pos]) + 1
}

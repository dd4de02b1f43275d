package tei

import (
	"github.com/BurntSushi/toml"

	"github.com/quenby/xskel/errors"
)

// Rules drives the lint checks. The zero value checks nothing; use
// DefaultRules for the standard TEI profile.
type Rules struct {
	// RootMustContain requires the root element name to contain this
	// substring, case-insensitively. Empty disables the check.
	RootMustContain string `toml:"root_must_contain"`

	// RequiredAttributes maps element names to attributes each
	// occurrence must carry. A missing attribute is an error.
	RequiredAttributes map[string][]string `toml:"required_attributes"`

	// Containment maps element names to an ancestor element they must
	// appear inside. A violation is a warning.
	Containment map[string]string `toml:"containment"`
}

// DefaultRules returns the standard TEI profile: a tei-ish root, page
// breaks carrying @ed and @n, and headings inside divisions.
func DefaultRules() Rules {
	return Rules{
		RootMustContain: "tei",
		RequiredAttributes: map[string][]string{
			"pb": {"ed", "n"},
		},
		Containment: map[string]string{
			"head": "div",
		},
	}
}

// LoadRules reads a TOML rules file. Sections absent from the file fall
// back to DefaultRules; a section that is present replaces the default
// profile for that check entirely.
func LoadRules(path string) (Rules, error) {
	var rules Rules
	md, err := toml.DecodeFile(path, &rules)
	if err != nil {
		return Rules{}, errors.Wrapf(err, "failed to load lint rules from %s", path)
	}

	defaults := DefaultRules()
	// MetaData distinguishes an explicit empty string (check disabled)
	// from an absent key (default applies).
	if !md.IsDefined("root_must_contain") {
		rules.RootMustContain = defaults.RootMustContain
	}
	if rules.RequiredAttributes == nil {
		rules.RequiredAttributes = defaults.RequiredAttributes
	}
	if rules.Containment == nil {
		rules.Containment = defaults.Containment
	}

	return rules, nil
}

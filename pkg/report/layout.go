// Package report extracts per-entity vote counts from the text of a results
// report. Row recognition is driven by a pluggable RowLayout so alternate
// report formats can be supported without touching the parsing pipeline.
package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/coolbeans/escrutinio/pkg/tally"
)

// Capture group names every row layout must define.
const (
	groupEntidad = "entidad"
	groupTotal   = "total"
	groupHombres = "hombres"
	groupMujeres = "mujeres"
)

// defaultRowPattern matches one report row: entity name followed by three
// count/percentage column pairs. The percentage fields exist only to
// disambiguate the columns and are discarded after matching. Anchored at
// both ends so headers, page numbers and footnotes never match.
const defaultRowPattern = `^(?P<entidad>[A-ZÁÉÍÓÚÜÑa-záéíóúüñ0-9/\s\+\-\.]+?)\s+` +
	`(?P<total>\d+)\s+[\d,.]+\s*%?\s+` +
	`(?P<hombres>\d+)\s+[\d,.]+\s*%?\s+` +
	`(?P<mujeres>\d+)\s+[\d,.]+\s*%?\s*$`

// RowLayout describes how to recognize one data row in report text. Layouts
// are loaded from YAML files by the Registry, or built in code; either way
// Compile must succeed before the layout is used.
type RowLayout struct {
	// Name identifies the layout (file basename when loaded from disk).
	Name string `yaml:"name"`

	// Description is free-form operator documentation.
	Description string `yaml:"description,omitempty"`

	// Pattern is the row regular expression. It must define the named
	// capture groups entidad, total, hombres and mujeres, and should be
	// anchored at both ends.
	Pattern string `yaml:"pattern"`

	// Compiled pattern (populated by Compile).
	compiled *regexp.Regexp

	// Capture group name -> submatch index.
	groups map[string]int
}

// Row is one recognized report row with its counts parsed and the entity
// name normalized.
type Row struct {
	Entidad string
	Total   int
	Hombres int
	Mujeres int
}

// DefaultRowLayout returns the built-in layout for the standard national
// results report format.
func DefaultRowLayout() *RowLayout {
	layout := &RowLayout{
		Name:        "default",
		Description: "Standard results report: entity, then total/hombres/mujeres each followed by a percentage column",
		Pattern:     defaultRowPattern,
	}
	if err := layout.Compile(); err != nil {
		// The built-in pattern is a constant; failure here is a bug.
		panic(fmt.Sprintf("compiling default row layout: %v", err))
	}
	return layout
}

// Compile compiles the layout pattern and resolves its capture groups.
// Returns an error if the pattern is invalid or a required group is missing.
func (l *RowLayout) Compile() error {
	if l.Pattern == "" {
		return fmt.Errorf("layout %q has no pattern", l.Name)
	}

	compiled, err := regexp.Compile(l.Pattern)
	if err != nil {
		return fmt.Errorf("compiling layout %q pattern: %w", l.Name, err)
	}

	groups := make(map[string]int)
	for i, name := range compiled.SubexpNames() {
		if name != "" {
			groups[name] = i
		}
	}
	for _, required := range []string{groupEntidad, groupTotal, groupHombres, groupMujeres} {
		if _, ok := groups[required]; !ok {
			return fmt.Errorf("layout %q pattern is missing capture group %q", l.Name, required)
		}
	}

	l.compiled = compiled
	l.groups = groups
	return nil
}

// IsCompiled reports whether Compile has run successfully.
func (l *RowLayout) IsCompiled() bool {
	return l.compiled != nil
}

// Match tests a single line against the layout. Lines are matched
// independently, with no cross-line state. Returns false for lines that do
// not look like data rows.
func (l *RowLayout) Match(line string) (Row, bool) {
	match := l.compiled.FindStringSubmatch(line)
	if match == nil {
		return Row{}, false
	}

	row := Row{
		Entidad: tally.Normalize(match[l.groups[groupEntidad]]),
		Total:   mustCount(match[l.groups[groupTotal]]),
		Hombres: mustCount(match[l.groups[groupHombres]]),
		Mujeres: mustCount(match[l.groups[groupMujeres]]),
	}
	return row, true
}

// mustCount converts a matched digit run. The count groups only admit
// digits, so failures cannot happen for rows the pattern accepted.
func mustCount(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

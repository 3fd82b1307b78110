package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/escrutinio/pkg/tally"
)

var (
	// ErrMissingColumn means the export schema lacks the round column.
	ErrMissingColumn = errors.New("el archivo de datos no contiene la columna VUELTA")

	// ErrNoRowsForRound means filtering to the requested round matched nothing.
	ErrNoRowsForRound = errors.New("no hay datos para la vuelta solicitada")
)

// variablePattern splits a VARIABLE value into its base name and sex code:
// F (mujeres), M (hombres) or T (total). Rows whose VARIABLE does not end in
// one of the three suffixes are dropped.
var variablePattern = regexp.MustCompile(`^(?P<name>.+)_(?P<sexo>[FMT])$`)

// AggregateResult holds the export pivoted into the shared entity shape, at
// national granularity and, when the export carries a subdivision column,
// additionally keyed by "SUBDIVISION - BASENAME".
type AggregateResult struct {
	Round    tally.Round
	Entities map[string]tally.EntityVotes

	// EntitiesBySubdivision is empty when the export has no subdivision
	// column. That is not an error.
	EntitiesBySubdivision map[string]tally.EntityVotes
}

// sexCounts accumulates the three pivot columns for one group. hasTotal
// records whether an explicit _T variable contributed, since an explicit
// total takes precedence over hombres+mujeres.
type sexCounts struct {
	total    int
	hombres  int
	mujeres  int
	hasTotal bool
}

func (c *sexCounts) add(sexo string, value int) {
	switch sexo {
	case "F":
		c.mujeres += value
	case "M":
		c.hombres += value
	case "T":
		c.total += value
		c.hasTotal = true
	}
}

func (c *sexCounts) votes(entidad string) tally.EntityVotes {
	total := c.total
	if !c.hasTotal {
		total = c.hombres + c.mujeres
	}
	return tally.EntityVotes{
		Entidad: entidad,
		Total:   total,
		Hombres: c.hombres,
		Mujeres: c.mujeres,
	}
}

// Aggregate filters the export to one round and pivots its long-format
// variables into per-entity vote counts. Malformed rows (an unrecognized
// VARIABLE shape, a non-numeric VALUE) are dropped or zeroed, never fatal;
// only an absent round column or an empty round are errors.
func Aggregate(table *Table, round tally.Round) (*AggregateResult, error) {
	if !table.HasColumn(RoundColumn) {
		return nil, ErrMissingColumn
	}

	national := make(map[string]*sexCounts)
	bySubdivision := make(map[string]*sexCounts)
	hasSubdivision := table.HasColumn(SubdivisionColumn)

	matched := false
	for _, row := range table.Rows {
		if rowRound, ok := parseRound(row[RoundColumn]); !ok || rowRound != round {
			continue
		}
		matched = true

		base, sexo, ok := splitVariable(row[VariableColumn])
		if !ok {
			continue
		}
		value := coerceValue(row[ValueColumn])

		key := tally.Normalize(base)
		counts := national[key]
		if counts == nil {
			counts = &sexCounts{}
			national[key] = counts
		}
		counts.add(sexo, value)

		if hasSubdivision {
			subKey := tally.Normalize(row[SubdivisionColumn] + " - " + base)
			subCounts := bySubdivision[subKey]
			if subCounts == nil {
				subCounts = &sexCounts{}
				bySubdivision[subKey] = subCounts
			}
			subCounts.add(sexo, value)
		}
	}

	if !matched {
		return nil, fmt.Errorf("%w: vuelta %s", ErrNoRowsForRound, round)
	}

	result := &AggregateResult{
		Round:                 round,
		Entities:              make(map[string]tally.EntityVotes, len(national)),
		EntitiesBySubdivision: make(map[string]tally.EntityVotes, len(bySubdivision)),
	}
	for key, counts := range national {
		result.Entities[key] = counts.votes(key)
	}
	for key, counts := range bySubdivision {
		result.EntitiesBySubdivision[key] = counts.votes(key)
	}
	return result, nil
}

// splitVariable decomposes "<base>_<sexo>"; ok is false for any other shape.
func splitVariable(variable string) (base, sexo string, ok bool) {
	match := variablePattern.FindStringSubmatch(strings.TrimSpace(variable))
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}

// parseRound reads the round column of one row. Rows with an unreadable
// round never match any requested round.
func parseRound(field string) (tally.Round, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, false
	}
	return tally.Round(n), true
}

// coerceValue converts a VALUE field to an integer, accepting integer and
// decimal renderings. Non-numeric or missing values count as 0.
func coerceValue(field string) int {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0
	}
	if n, err := strconv.Atoi(field); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return int(f)
	}
	return 0
}

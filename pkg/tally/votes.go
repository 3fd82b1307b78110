// Package tally defines the shared vote-count value types and entity label
// tables used by the report parser, the dataset aggregator, and the phased
// comparator.
package tally

import "strings"

// Round identifies one of the two sequential voting rounds (vueltas).
type Round int

const (
	// Round1 is the first voting round.
	Round1 Round = 1
	// Round2 is the runoff round.
	Round2 Round = 2
)

// String returns the round number as printed in operator-facing output.
func (r Round) String() string {
	switch r {
	case Round1:
		return "1"
	case Round2:
		return "2"
	default:
		return "?"
	}
}

// EntityVotes holds the vote counts reported for a single entity: a
// candidate, or an aggregate category such as valid votes or blank ballots.
//
// Callers expect Total == Hombres + Mujeres but the invariant is not
// enforced here: a violation is exactly the kind of discrepancy the
// comparator exists to detect.
type EntityVotes struct {
	Entidad string
	Total   int
	Hombres int
	Mujeres int
}

// Entity labels shared by both data sources. Labels are compared after
// Normalize, so they are stored in normalized form.
const (
	// ValidVotesLabel is the aggregate of all candidate-level votes,
	// excluding blank and null ballots.
	ValidVotesLabel = "VOTOS VALIDOS"

	// BlanksLabel counts ballots cast with no selection.
	BlanksLabel = "BLANCOS"

	// NullsLabel counts ballots voided during scrutiny.
	NullsLabel = "NULOS"

	// TurnoutLabel counts voters who cast a ballot. Administrative: it is
	// excluded from every vote-total reconciliation.
	TurnoutLabel = "SUFRAGANTES"
)

// NonVoteAggregates lists administrative rows that appear in the report but
// do not represent votes: elector rolls, polling-table counts, turnout and
// absenteeism figures. They are skipped by valid-votes synthesis and by
// every comparison phase.
var NonVoteAggregates = map[string]bool{
	"ELECTORES":             true,
	"ELECTORES PPL":         true,
	"TOTAL ELECTORES + PPL": true,
	"JUNTAS":                true,
	"JUNTAS PPL":            true,
	"TOTAL JUNTAS + PPL":    true,
	"JUNTAS ANULADAS":       true,
	TurnoutLabel:            true,
	"AUSENTISMO":            true,
}

// BlankNullLabels lists the two invalid-ballot categories. They carry real
// counts but are excluded from the valid-votes aggregate.
var BlankNullLabels = map[string]bool{
	BlanksLabel: true,
	NullsLabel:  true,
}

// Normalize canonicalizes an entity name: runs of whitespace collapse to a
// single space, surrounding whitespace is trimmed, and the result is
// uppercased. Both data sources key their entity maps by normalized name,
// and normalization is idempotent.
func Normalize(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

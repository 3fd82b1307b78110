package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolbeans/escrutinio/pkg/tally"
)

// Calendar dates identifying the two rounds in the report header.
const (
	Round1Date = "09 DE FEBRERO DE 2025"
	Round2Date = "13 DE ABRIL DE 2025"
)

// roundHeaderLines is how many leading lines are scanned for a round date.
const roundHeaderLines = 30

var (
	// ErrRoundUndetected means neither round date was found in the header.
	ErrRoundUndetected = errors.New("no se pudo detectar la vuelta: verifica la fecha en el reporte")

	// ErrNoEntities means no line of the report matched the row layout.
	ErrNoEntities = errors.New("no se encontraron entidades en el reporte")

	// ErrTextExtraction wraps failures from the text-extraction collaborator.
	ErrTextExtraction = errors.New("error extrayendo texto del reporte")
)

// ParseResult holds everything extracted from one report: the detected
// round and the recognized entities keyed by normalized name. Built once
// per parse and read-only afterwards.
type ParseResult struct {
	Round    tally.Round
	Entities map[string]tally.EntityVotes
}

// Parse extracts vote entities from a report. The round is detected from
// the header dates, every line is tested against the layout independently,
// and a VOTOS VALIDOS entry is synthesized from candidate rows when the
// report does not carry one.
//
// Lines that do not match the layout are dropped silently; that is how
// headers, page numbers and footnotes are filtered out. When the same
// normalized entity appears more than once, the last occurrence wins.
func Parse(src PageSource, layout *RowLayout) (*ParseResult, error) {
	pages, err := src.Pages()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextExtraction, err)
	}

	lines := strings.Split(strings.Join(pages, "\n"), "\n")

	round, err := detectRound(lines)
	if err != nil {
		return nil, err
	}

	entities := make(map[string]tally.EntityVotes)
	for _, line := range lines {
		row, ok := layout.Match(strings.TrimSpace(line))
		if !ok {
			continue
		}
		entities[row.Entidad] = tally.EntityVotes{
			Entidad: row.Entidad,
			Total:   row.Total,
			Hombres: row.Hombres,
			Mujeres: row.Mujeres,
		}
	}

	if len(entities) == 0 {
		return nil, ErrNoEntities
	}

	synthesizeValidVotes(entities)

	return &ParseResult{Round: round, Entities: entities}, nil
}

// detectRound scans the first header lines for one of the two round dates.
// Round 1's date is checked first; the order is fixed.
func detectRound(lines []string) (tally.Round, error) {
	header := lines
	if len(header) > roundHeaderLines {
		header = header[:roundHeaderLines]
	}
	joined := strings.ToUpper(strings.Join(header, "\n"))

	if strings.Contains(joined, Round1Date) {
		return tally.Round1, nil
	}
	if strings.Contains(joined, Round2Date) {
		return tally.Round2, nil
	}
	return 0, ErrRoundUndetected
}

// synthesizeValidVotes adds a VOTOS VALIDOS entry summed over candidate
// rows when the report lacks one. Administrative aggregates and blank/null
// ballots stay out of the sum. The synthetic entry is only materialized
// when its total is strictly positive.
func synthesizeValidVotes(entities map[string]tally.EntityVotes) {
	if _, ok := entities[tally.ValidVotesLabel]; ok {
		return
	}

	var total, hombres, mujeres int
	for key, votes := range entities {
		if tally.NonVoteAggregates[key] || tally.BlankNullLabels[key] || key == tally.ValidVotesLabel {
			continue
		}
		total += votes.Total
		hombres += votes.Hombres
		mujeres += votes.Mujeres
	}

	if total > 0 {
		entities[tally.ValidVotesLabel] = tally.EntityVotes{
			Entidad: tally.ValidVotesLabel,
			Total:   total,
			Hombres: hombres,
			Mujeres: mujeres,
		}
	}
}

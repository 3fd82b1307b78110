// Package audit reconciles the vote figures extracted from a results report
// against the aggregated consolidated export. The comparison runs as five
// fixed phases over increasingly aggregated quantities and halts at the
// first irreconcilable discrepancy, emitting an ordered, human-readable
// trace either way.
//
// A halted comparison is not an error: it is the primary output for
// inconsistent data. Callers distinguish "the audit found a problem"
// (Halted) from "the pipeline could not run" (an error from the report
// parser or the dataset aggregator).
package audit

import (
	"fmt"
	"sort"

	"github.com/coolbeans/escrutinio/pkg/dataset"
	"github.com/coolbeans/escrutinio/pkg/report"
	"github.com/coolbeans/escrutinio/pkg/tally"
)

// ComparisonItem is one line of the audit trace. Header items carry only a
// phase banner; control items carry a halt message; data items carry both
// sides' figures. The three shapes are all a renderer needs to apply its
// success, error and header styles.
type ComparisonItem struct {
	Entity   string
	OK       bool
	Report   *tally.EntityVotes
	Dataset  *tally.EntityVotes
	Message  string
	Phase    int
	IsHeader bool
}

// ComparisonResult is the ordered audit trace. Items appear in execution
// order and the slice is truncated exactly at the failing item when the
// comparison halts.
type ComparisonResult struct {
	Items      []ComparisonItem
	Halted     bool
	HaltReason string
}

// comparison carries the state threaded through the phases: the two
// selected entity maps, the trace built so far, and the aggregates captured
// by phases 3 and 4 that phase 5 reuses without re-reading the maps.
type comparison struct {
	reportMap  map[string]tally.EntityVotes
	datasetMap map[string]tally.EntityVotes

	items []ComparisonItem

	validReport  tally.EntityVotes
	validDataset tally.EntityVotes

	invalidReport  tally.EntityVotes
	invalidDataset tally.EntityVotes
}

// phase is one reconciliation stage. run returns the halt reason, or the
// empty string to continue to the next phase.
type phase struct {
	num   int
	title string
	run   func(*comparison) string
}

// phases execute strictly in this order; a non-empty halt reason from any
// of them is absorbing.
var phases = []phase{
	{1, "Femenino y Masculino", (*comparison).runSexSplit},
	{2, "Totales por candidato/blanco/nulo", (*comparison).runEntityTotals},
	{3, "Votos validos", (*comparison).runValidVotes},
	{4, "Invalidos (blancos + nulos)", (*comparison).runInvalidAggregate},
	{5, "Total votos (validos + invalidos)", (*comparison).runGrandTotal},
}

// Compare reconciles a parsed report against an aggregated export. The
// trace always contains the header items of every phase that started, in
// order; once a phase halts, no later phase runs.
func Compare(rep *report.ParseResult, data *dataset.AggregateResult) *ComparisonResult {
	c := &comparison{
		reportMap:  normalizeKeys(rep.Entities),
		datasetMap: selectDatasetMap(rep.Entities, data),
	}

	for _, p := range phases {
		c.addPhaseHeader(p.num, p.title)
		if reason := p.run(c); reason != "" {
			c.items = append(c.items, ComparisonItem{
				Entity:  "CONTROL",
				Message: reason,
			})
			return &ComparisonResult{Items: c.items, Halted: true, HaltReason: reason}
		}
	}

	return &ComparisonResult{Items: c.items}
}

// selectDatasetMap picks the comparison granularity. The subdivision map is
// used only when the report's own entity keys intersect it, which is the
// case where the report itself is a subdivision-level document. Otherwise,
// including when there is no intersection at all, the national map is used.
func selectDatasetMap(reportEntities map[string]tally.EntityVotes, data *dataset.AggregateResult) map[string]tally.EntityVotes {
	if len(data.EntitiesBySubdivision) == 0 {
		return data.Entities
	}

	for key := range reportEntities {
		if _, ok := data.EntitiesBySubdivision[tally.Normalize(key)]; ok {
			return data.EntitiesBySubdivision
		}
	}
	return data.Entities
}

func normalizeKeys(entities map[string]tally.EntityVotes) map[string]tally.EntityVotes {
	normalized := make(map[string]tally.EntityVotes, len(entities))
	for key, votes := range entities {
		normalized[tally.Normalize(key)] = votes
	}
	return normalized
}

// sortedKeys fixes the walk order over an entity map so the first reported
// discrepancy is deterministic run to run.
func sortedKeys(entities map[string]tally.EntityVotes) []string {
	keys := make([]string, 0, len(entities))
	for key := range entities {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// addPhaseHeader appends the separator and banner items that open every
// phase, even one that halts with zero data items.
func (c *comparison) addPhaseHeader(num int, title string) {
	c.items = append(c.items,
		ComparisonItem{
			Entity:   "FASE",
			OK:       true,
			Message:  "========================================",
			Phase:    num,
			IsHeader: true,
		},
		ComparisonItem{
			Entity:   "FASE",
			OK:       true,
			Message:  fmt.Sprintf("Fase %d: %s", num, title),
			Phase:    num,
			IsHeader: true,
		},
	)
}

func (c *comparison) addMatch(entity string, rep, data tally.EntityVotes, message string) {
	repCopy, dataCopy := rep, data
	c.items = append(c.items, ComparisonItem{
		Entity:  entity,
		OK:      true,
		Report:  &repCopy,
		Dataset: &dataCopy,
		Message: message,
	})
}

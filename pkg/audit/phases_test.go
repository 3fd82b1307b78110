package audit

import (
	"strings"
	"testing"

	"github.com/coolbeans/escrutinio/pkg/tally"
)

// Phases 4 and 5 re-derive figures that phase 3 already validated, so their
// halt branches are unreachable through Compare with self-consistent inputs.
// They are exercised directly here.

func TestRunInvalidAggregate(t *testing.T) {
	t.Run("missing_label", func(t *testing.T) {
		c := &comparison{
			reportMap:  entityMap(votes(tally.BlanksLabel, 5, 3, 2)),
			datasetMap: entityMap(votes(tally.BlanksLabel, 5, 3, 2), votes(tally.NullsLabel, 3, 2, 1)),
		}
		reason := c.runInvalidAggregate()
		if !strings.Contains(reason, "Faltan BLANCOS o NULOS") {
			t.Errorf("reason = %q", reason)
		}
	})

	t.Run("sum_mismatch", func(t *testing.T) {
		c := &comparison{
			reportMap:  entityMap(votes(tally.BlanksLabel, 5, 3, 2), votes(tally.NullsLabel, 3, 2, 1)),
			datasetMap: entityMap(votes(tally.BlanksLabel, 6, 3, 3), votes(tally.NullsLabel, 3, 2, 1)),
		}
		reason := c.runInvalidAggregate()
		if !strings.Contains(reason, "INVALIDOS (BLANCOS+NULOS)") {
			t.Errorf("reason = %q", reason)
		}
		// Summed triples, not per-label detail.
		if !strings.Contains(reason, "T=8") || !strings.Contains(reason, "T=9") {
			t.Errorf("reason should report both summed totals, got %q", reason)
		}
	})

	t.Run("sums_match", func(t *testing.T) {
		labels := entityMap(votes(tally.BlanksLabel, 5, 3, 2), votes(tally.NullsLabel, 3, 2, 1))
		c := &comparison{reportMap: labels, datasetMap: labels}
		if reason := c.runInvalidAggregate(); reason != "" {
			t.Fatalf("unexpected halt: %q", reason)
		}
		if c.invalidReport.Total != 8 || c.invalidReport.Hombres != 5 || c.invalidReport.Mujeres != 3 {
			t.Errorf("invalid sum = %+v", c.invalidReport)
		}
		if len(c.items) != 1 || c.items[0].Entity != "INVALIDOS" || !c.items[0].OK {
			t.Errorf("items = %+v", c.items)
		}
	})
}

func TestRunGrandTotal(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		c := &comparison{
			validReport:    votes(tally.ValidVotesLabel, 100, 60, 40),
			invalidReport:  votes("INVALIDOS", 8, 5, 3),
			validDataset:   votes(tally.ValidVotesLabel, 100, 60, 40),
			invalidDataset: votes("INVALIDOS", 9, 5, 4),
		}
		reason := c.runGrandTotal()
		if !strings.Contains(reason, "TOTAL VOTOS") {
			t.Errorf("reason = %q", reason)
		}
		if !strings.Contains(reason, "T=108") || !strings.Contains(reason, "T=109") {
			t.Errorf("reason should report both grand totals, got %q", reason)
		}
	})

	t.Run("match", func(t *testing.T) {
		c := &comparison{
			validReport:    votes(tally.ValidVotesLabel, 100, 60, 40),
			invalidReport:  votes("INVALIDOS", 8, 5, 3),
			validDataset:   votes(tally.ValidVotesLabel, 100, 60, 40),
			invalidDataset: votes("INVALIDOS", 8, 5, 3),
		}
		if reason := c.runGrandTotal(); reason != "" {
			t.Fatalf("unexpected halt: %q", reason)
		}
		if got := c.items[0].Report; got.Total != 108 || got.Hombres != 65 || got.Mujeres != 43 {
			t.Errorf("grand total = %+v", got)
		}
	})
}

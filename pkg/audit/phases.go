package audit

import (
	"fmt"

	"github.com/coolbeans/escrutinio/pkg/tally"
)

// skippedInSexSplit is the phase-1 exclusion set: every administrative
// aggregate plus the categories validated by later phases.
var skippedInSexSplit = func() map[string]bool {
	skip := map[string]bool{
		tally.TurnoutLabel:    true,
		tally.ValidVotesLabel: true,
		tally.BlanksLabel:     true,
		tally.NullsLabel:      true,
	}
	for label := range tally.NonVoteAggregates {
		skip[label] = true
	}
	return skip
}()

// skippedInTotals is the phase-2 exclusion set. Blank and null ballots are
// deliberately included in phase 2: their per-entity totals are checked
// here, their full triples in phase 3.
var skippedInTotals = map[string]bool{
	tally.ValidVotesLabel: true,
	tally.TurnoutLabel:    true,
}

// runSexSplit (fase 1) checks the hombres/mujeres split of every candidate
// entity in the export against the report.
func (c *comparison) runSexSplit() string {
	for _, key := range sortedKeys(c.datasetMap) {
		if skippedInSexSplit[tally.Normalize(key)] {
			continue
		}
		dataVotes := c.datasetMap[key]

		repVotes, ok := c.reportMap[tally.Normalize(key)]
		if !ok {
			return fmt.Sprintf("❌ %s: No existe en el PDF (fase 1: F/M).", key)
		}

		if repVotes.Hombres != dataVotes.Hombres || repVotes.Mujeres != dataVotes.Mujeres {
			return fmt.Sprintf(
				"❌ %s: Discrepancia en F/M. PDF: H=%d, M=%d. CSV: H=%d, M=%d.",
				key, repVotes.Hombres, repVotes.Mujeres, dataVotes.Hombres, dataVotes.Mujeres,
			)
		}

		c.addMatch(key, repVotes, dataVotes, fmt.Sprintf("✅ %s: F/M coinciden.", key))
	}
	return ""
}

// runEntityTotals (fase 2) checks per-entity totals, including blank and
// null ballots.
func (c *comparison) runEntityTotals() string {
	for _, key := range sortedKeys(c.datasetMap) {
		normKey := tally.Normalize(key)
		if skippedInTotals[normKey] || tally.NonVoteAggregates[normKey] {
			continue
		}
		dataVotes := c.datasetMap[key]

		repVotes, ok := c.reportMap[normKey]
		if !ok {
			return fmt.Sprintf("❌ %s: No existe en el PDF (fase 2: Totales).", key)
		}

		if repVotes.Total != dataVotes.Total {
			return fmt.Sprintf(
				"❌ %s: Discrepancia en Total. PDF: T=%d. CSV: T=%d.",
				key, repVotes.Total, dataVotes.Total,
			)
		}

		c.addMatch(key, repVotes, dataVotes, fmt.Sprintf("✅ %s: Total coincide.", key))
	}
	return ""
}

// runValidVotes (fase 3) checks the VOTOS VALIDOS triple, then BLANCOS and
// NULOS individually, in that fixed order. A valid-votes mismatch triggers
// the per-candidate diagnostic scan so the halt message names the likely
// culprits.
func (c *comparison) runValidVotes() string {
	repValid, repOK := c.reportMap[tally.ValidVotesLabel]
	dataValid, dataOK := c.datasetMap[tally.ValidVotesLabel]
	if !repOK || !dataOK {
		return "❌ VOTOS VALIDOS: No existe en PDF o CSV (fase 3)."
	}

	if repValid.Total != dataValid.Total ||
		repValid.Hombres != dataValid.Hombres ||
		repValid.Mujeres != dataValid.Mujeres {
		return fmt.Sprintf(
			"❌ VOTOS VALIDOS: Discrepancia detectada. PDF: T=%d, H=%d, M=%d. CSV: T=%d, H=%d, M=%d.%s",
			repValid.Total, repValid.Hombres, repValid.Mujeres,
			dataValid.Total, dataValid.Hombres, dataValid.Mujeres,
			candidateDiffHint(c.reportMap, c.datasetMap),
		)
	}

	c.validReport = repValid
	c.validDataset = dataValid
	c.addMatch(tally.ValidVotesLabel, repValid, dataValid, "✅ VOTOS VALIDOS: Coinciden.")

	for _, label := range []string{tally.BlanksLabel, tally.NullsLabel} {
		repVotes, repOK := c.reportMap[label]
		dataVotes, dataOK := c.datasetMap[label]
		if !repOK || !dataOK {
			return fmt.Sprintf("❌ %s: No existe en PDF o CSV (fase 3).", label)
		}
		if repVotes.Total != dataVotes.Total ||
			repVotes.Hombres != dataVotes.Hombres ||
			repVotes.Mujeres != dataVotes.Mujeres {
			return fmt.Sprintf(
				"❌ %s: Discrepancia detectada. PDF: T=%d, H=%d, M=%d. CSV: T=%d, H=%d, M=%d.",
				label, repVotes.Total, repVotes.Hombres, repVotes.Mujeres,
				dataVotes.Total, dataVotes.Hombres, dataVotes.Mujeres,
			)
		}
		c.addMatch(label, repVotes, dataVotes, fmt.Sprintf("✅ %s: Coinciden.", label))
	}
	return ""
}

// runInvalidAggregate (fase 4) sums BLANCOS + NULOS independently on each
// side and compares the summed triples as one unit.
func (c *comparison) runInvalidAggregate() string {
	for _, label := range []string{tally.BlanksLabel, tally.NullsLabel} {
		if _, ok := c.reportMap[label]; !ok {
			return "❌ Invalidos: Faltan BLANCOS o NULOS en PDF/CSV (fase 4)."
		}
		if _, ok := c.datasetMap[label]; !ok {
			return "❌ Invalidos: Faltan BLANCOS o NULOS en PDF/CSV (fase 4)."
		}
	}

	c.invalidReport = sumInvalid(c.reportMap)
	c.invalidDataset = sumInvalid(c.datasetMap)

	if c.invalidReport.Total != c.invalidDataset.Total ||
		c.invalidReport.Hombres != c.invalidDataset.Hombres ||
		c.invalidReport.Mujeres != c.invalidDataset.Mujeres {
		return fmt.Sprintf(
			"❌ INVALIDOS (BLANCOS+NULOS): Discrepancia detectada. PDF: T=%d, H=%d, M=%d. CSV: T=%d, H=%d, M=%d.",
			c.invalidReport.Total, c.invalidReport.Hombres, c.invalidReport.Mujeres,
			c.invalidDataset.Total, c.invalidDataset.Hombres, c.invalidDataset.Mujeres,
		)
	}

	c.addMatch("INVALIDOS", c.invalidReport, c.invalidDataset, "✅ INVALIDOS: Coinciden.")
	return ""
}

// runGrandTotal (fase 5) adds valid and invalid votes per source, reusing
// the triples captured by phases 3 and 4 rather than re-reading the maps.
func (c *comparison) runGrandTotal() string {
	repTotal := tally.EntityVotes{
		Entidad: "TOTAL VOTOS",
		Total:   c.validReport.Total + c.invalidReport.Total,
		Hombres: c.validReport.Hombres + c.invalidReport.Hombres,
		Mujeres: c.validReport.Mujeres + c.invalidReport.Mujeres,
	}
	dataTotal := tally.EntityVotes{
		Entidad: "TOTAL VOTOS",
		Total:   c.validDataset.Total + c.invalidDataset.Total,
		Hombres: c.validDataset.Hombres + c.invalidDataset.Hombres,
		Mujeres: c.validDataset.Mujeres + c.invalidDataset.Mujeres,
	}

	if repTotal.Total != dataTotal.Total ||
		repTotal.Hombres != dataTotal.Hombres ||
		repTotal.Mujeres != dataTotal.Mujeres {
		return fmt.Sprintf(
			"❌ TOTAL VOTOS: Discrepancia detectada. PDF: T=%d, H=%d, M=%d. CSV: T=%d, H=%d, M=%d.",
			repTotal.Total, repTotal.Hombres, repTotal.Mujeres,
			dataTotal.Total, dataTotal.Hombres, dataTotal.Mujeres,
		)
	}

	c.addMatch("TOTAL VOTOS", repTotal, dataTotal, "✅ TOTAL VOTOS: Coinciden.")
	return ""
}

func sumInvalid(entities map[string]tally.EntityVotes) tally.EntityVotes {
	blancos := entities[tally.BlanksLabel]
	nulos := entities[tally.NullsLabel]
	return tally.EntityVotes{
		Entidad: "INVALIDOS",
		Total:   blancos.Total + nulos.Total,
		Hombres: blancos.Hombres + nulos.Hombres,
		Mujeres: blancos.Mujeres + nulos.Mujeres,
	}
}

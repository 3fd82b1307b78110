package audit

import (
	"fmt"
	"strings"

	"github.com/coolbeans/escrutinio/pkg/tally"
)

// candidateDiffLimit caps how many differing candidates a valid-votes halt
// message names.
const candidateDiffLimit = 5

// candidateDiffHint scans the candidate entities for differences when the
// valid-votes aggregate mismatches, narrowing the root cause to specific
// candidates without a second full pass in the main trace. At most
// candidateDiffLimit entities are listed, in key order.
func candidateDiffHint(reportMap, datasetMap map[string]tally.EntityVotes) string {
	diffs := candidateDiffs(reportMap, datasetMap, candidateDiffLimit)
	if len(diffs) == 0 {
		return " No se encontraron diferencias por candidato."
	}
	return " Posibles diferencias en candidatos: " + strings.Join(diffs, "; ")
}

func candidateDiffs(reportMap, datasetMap map[string]tally.EntityVotes, limit int) []string {
	var diffs []string
	for _, key := range sortedKeys(datasetMap) {
		normKey := tally.Normalize(key)
		if tally.NonVoteAggregates[normKey] || tally.BlankNullLabels[normKey] ||
			normKey == tally.ValidVotesLabel || normKey == tally.TurnoutLabel {
			continue
		}
		dataVotes := datasetMap[key]

		repVotes, ok := reportMap[normKey]
		if !ok {
			continue
		}
		if repVotes.Total == dataVotes.Total &&
			repVotes.Hombres == dataVotes.Hombres &&
			repVotes.Mujeres == dataVotes.Mujeres {
			continue
		}

		diffs = append(diffs, fmt.Sprintf(
			"%s (T %d->%d, H %d->%d, M %d->%d)",
			normKey,
			repVotes.Total, dataVotes.Total,
			repVotes.Hombres, dataVotes.Hombres,
			repVotes.Mujeres, dataVotes.Mujeres,
		))
		if len(diffs) >= limit {
			break
		}
	}
	return diffs
}

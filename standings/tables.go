package standings

import (
	"sort"

	"github.com/Dosada05/swisscut/models"
)

// unassignedTable sorts matches without a table after every numbered table.
const unassignedTable = 1000

// OrderByTable returns a copy of the matches sorted by table number.
func OrderByTable(matches []models.Match) []models.Match {
	out := make([]models.Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		return tableKey(out[i]) < tableKey(out[j])
	})
	return out
}

func tableKey(m models.Match) int {
	if m.TableNumber == nil {
		return unassignedTable
	}
	return *m.TableNumber
}

// RoundMatches returns the matches of one round ordered by table.
func RoundMatches(matches []models.Match, round int) []models.Match {
	var out []models.Match
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return OrderByTable(out)
}

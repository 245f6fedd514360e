package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/swisscut/models"
)

func TestRoundMatchesOrderedByTable(t *testing.T) {
	unassigned := models.Match{ID: 10, Round: 2, CorpPlayerID: 9, IsBye: true}
	matches := []models.Match{
		{ID: 1, Round: 1, TableNumber: intPtr(1)},
		unassigned,
		{ID: 11, Round: 2, TableNumber: intPtr(3)},
		{ID: 12, Round: 2, TableNumber: intPtr(1)},
		{ID: 13, Round: 2, TableNumber: intPtr(2)},
	}

	got := RoundMatches(matches, 2)

	ids := make([]int, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []int{12, 13, 11, 10}, ids)
	assert.Empty(t, RoundMatches(matches, 5))
}

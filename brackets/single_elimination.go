package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"
)

type BracketMatch struct {
	UID          string
	Round        int
	OrderInRound int

	// Participant1 holds the better seed of the pair.
	Participant1ID *int
	Participant2ID *int
	Seed1          int
	Seed2          int

	SourceMatch1UID *string
	SourceMatch2UID *string

	IsPlaceholder bool

	IsBye            bool
	ByeParticipantID *int
}

type node struct {
	participantID    *int
	seed             int
	sourceMatchUID   *string
	isByePlaceholder bool
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket lays the seeds out in standard bracket order (1 v N, 4 v 5,
// 2 v N-1, ...) so that seeds 1 and 2 can only meet in the final. Missing
// slots become byes, which always land on the best seeds.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	seeds := params.Seeds
	n := len(seeds)

	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 seeds, got %d", ErrNotEnoughSeeds, n)
	}
	for i, s := range seeds {
		if s.Seed != i+1 {
			return nil, fmt.Errorf("%w: seed %d found at position %d", ErrInvalidBracket, s.Seed, i+1)
		}
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	sizeOfFullBracket := 1 << uint(numRounds)

	currentRoundNodes := make([]*node, 0, sizeOfFullBracket)
	for _, seed := range seedOrder(sizeOfFullBracket) {
		if seed > n {
			currentRoundNodes = append(currentRoundNodes, &node{isByePlaceholder: true, seed: seed})
			continue
		}
		pid := seeds[seed-1].PlayerID
		currentRoundNodes = append(currentRoundNodes, &node{participantID: &pid, seed: seed})
	}

	allGeneratedMatches := make([]*BracketMatch, 0, sizeOfFullBracket-1)

	for r := 1; r <= numRounds; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nextRoundNodes := make([]*node, 0, len(currentRoundNodes)/2)

		for i := 0; i < len(currentRoundNodes); i += 2 {
			node1, node2 := currentRoundNodes[i], currentRoundNodes[i+1]
			if node2.seed != 0 && (node1.seed == 0 || node2.seed < node1.seed) {
				node1, node2 = node2, node1
			}

			order := i/2 + 1
			uid := matchUID(r, order)
			bm := &BracketMatch{
				UID:          uid,
				Round:        r,
				OrderInRound: order,
				Seed1:        node1.seed,
			}

			switch {
			case node1.isByePlaceholder && node2.isByePlaceholder:
				return nil, fmt.Errorf("%w: two byes meet in %s", ErrInvalidBracket, uid)

			case node1.participantID != nil && node2.isByePlaceholder:
				bm.IsBye = true
				bm.ByeParticipantID = node1.participantID
				bm.Participant1ID = node1.participantID
				nextRoundNodes = append(nextRoundNodes, &node{participantID: node1.participantID, seed: node1.seed})

			case node1.participantID != nil && node2.participantID != nil:
				bm.Participant2ID = node2.participantID
				bm.Participant1ID = node1.participantID
				bm.Seed2 = node2.seed
				nextRoundNodes = append(nextRoundNodes, &node{sourceMatchUID: &uid})

			default:
				bm.IsPlaceholder = true
				bm.SourceMatch1UID = node1.sourceMatchUID
				bm.SourceMatch2UID = node2.sourceMatchUID
				bm.Participant1ID = node1.participantID
				bm.Participant2ID = node2.participantID
				bm.Seed2 = node2.seed
				nextRoundNodes = append(nextRoundNodes, &node{sourceMatchUID: &uid})
			}

			allGeneratedMatches = append(allGeneratedMatches, bm)
		}
		currentRoundNodes = nextRoundNodes
	}

	if len(currentRoundNodes) != 1 {
		return nil, fmt.Errorf("%w: bracket for %d seeds did not converge to a final", ErrInvalidBracket, n)
	}

	sort.Slice(allGeneratedMatches, func(i, j int) bool {
		if allGeneratedMatches[i].Round != allGeneratedMatches[j].Round {
			return allGeneratedMatches[i].Round < allGeneratedMatches[j].Round
		}
		return allGeneratedMatches[i].OrderInRound < allGeneratedMatches[j].OrderInRound
	})

	return allGeneratedMatches, nil
}

// matchUID names a bracket slot; a stored cut match maps onto it by round
// and table number.
func matchUID(round, order int) string {
	return fmt.Sprintf("R%dM%d", round, order)
}

// seedOrder returns the seed sitting in each slot of a bracket of the given
// power-of-two size: 1, 8, 4, 5, 2, 7, 3, 6 for size 8.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		total := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, total-s)
		}
		order = next
	}
	return order
}

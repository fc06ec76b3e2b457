package brackets

import (
	"context"
	"errors"

	"github.com/openarena/bracket-engine/models"
)

var ErrNotEnoughEntrants = errors.New("not enough entrants to generate a bracket (minimum 2)")

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// Generate pads the entrant list with bye placeholders to the next power of
// two, pairs consecutive slots into round 1, pre-creates pending placeholder
// matches for every later round down to the final, and links each match at
// position pos to the match at position pos/2 of the next round.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]*Match, error) {
	arena, _, err := buildWinnersBracket(params.EntrantIDs)
	if err != nil {
		return nil, err
	}
	if err := Validate(arena); err != nil {
		return nil, err
	}
	return arena, nil
}

// buildWinnersBracket constructs a full single-elimination winners bracket
// and returns the arena plus per-round arena-index lists. Shared with the
// double-elimination generator.
func buildWinnersBracket(entrantIDs []int) ([]*Match, [][]int, error) {
	n := len(entrantIDs)
	if n < 2 {
		return nil, nil, ErrNotEnoughEntrants
	}

	size := ceilPow2(n)
	slots := make([]*int, size)
	for i := range entrantIDs {
		slots[i] = intPtr(entrantIDs[i])
	}

	arena := make([]*Match, 0, size-1)
	rounds := make([][]int, 0)

	firstRound := make([]int, 0, size/2)
	for i := 0; i < size; i += 2 {
		m := &Match{
			Round:  1,
			Number: i/2 + 1,
			Stage:  models.StageWinners,
			SideA:  slots[i],
			SideB:  slots[i+1],
			Status: models.MatchStatusPending,
		}
		// A missing side is a bye; the sole entrant (if any) advances
		// without playing. Never scored.
		if m.SideA == nil || m.SideB == nil {
			m.Status = models.MatchStatusBye
		}
		firstRound = append(firstRound, len(arena))
		arena = append(arena, m)
	}
	rounds = append(rounds, firstRound)

	prev := firstRound
	for round := 2; len(prev) > 1; round++ {
		cur := make([]int, 0, len(prev)/2)
		for i := 0; i < len(prev)/2; i++ {
			cur = append(cur, len(arena))
			arena = append(arena, &Match{
				Round:  round,
				Number: i + 1,
				Stage:  models.StageWinners,
				Status: models.MatchStatusPending,
			})
		}
		for pos, idx := range prev {
			arena[idx].WinnerTo = intPtr(cur[pos/2])
		}
		rounds = append(rounds, cur)
		prev = cur
	}

	return arena, rounds, nil
}

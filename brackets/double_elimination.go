package brackets

import (
	"context"

	"github.com/openarena/bracket-engine/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

// Generate builds a winners bracket identical to single elimination, then a
// heuristically sized losers bracket and a single grand final.
//
// The losers bracket is an approximation, not a textbook double-elimination
// drop schedule: it has max(1, winnersRounds-1) rounds, and round lr holds
// max(1, winnersRound1Count >> (lr-1)) matches. The loser of a winners-round-r
// match at position pos drops to losers round r at the same position (clamped
// to the round's last match) when that round exists, otherwise to the first
// match of losers round 1.
func (g *DoubleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]*Match, error) {
	arena, wRounds, err := buildWinnersBracket(params.EntrantIDs)
	if err != nil {
		return nil, err
	}

	numWinnersRounds := len(wRounds)
	wRound1Count := len(wRounds[0])

	numLosersRounds := numWinnersRounds - 1
	if numLosersRounds < 1 {
		numLosersRounds = 1
	}

	lRounds := make([][]int, 0, numLosersRounds)
	for lr := 1; lr <= numLosersRounds; lr++ {
		count := wRound1Count >> (lr - 1)
		if count < 1 {
			count = 1
		}
		roundIdx := make([]int, 0, count)
		for i := 0; i < count; i++ {
			roundIdx = append(roundIdx, len(arena))
			arena = append(arena, &Match{
				Round:  lr,
				Number: i + 1,
				Stage:  models.StageLosers,
				Status: models.MatchStatusPending,
			})
		}
		lRounds = append(lRounds, roundIdx)
	}

	// Losers rounds advance among themselves like winners rounds do.
	for lr := 0; lr < numLosersRounds-1; lr++ {
		next := lRounds[lr+1]
		for pos, idx := range lRounds[lr] {
			target := pos / 2
			if target >= len(next) {
				target = len(next) - 1
			}
			arena[idx].WinnerTo = intPtr(next[target])
		}
	}

	// Drop each winners-round loser into the losers round with the same
	// index, falling back to the first match of losers round 1.
	for r := 0; r < numWinnersRounds; r++ {
		for pos, idx := range wRounds[r] {
			var target int
			if r < numLosersRounds {
				round := lRounds[r]
				target = pos
				if target >= len(round) {
					target = len(round) - 1
				}
				target = round[target]
			} else {
				target = lRounds[0][0]
			}
			arena[idx].LoserTo = intPtr(target)
		}
	}

	lastWinnersRound := numWinnersRounds
	lastLosersRound := numLosersRounds
	grandFinalRound := lastWinnersRound
	if lastLosersRound > grandFinalRound {
		grandFinalRound = lastLosersRound
	}
	grandFinalRound++

	grandFinalIdx := len(arena)
	arena = append(arena, &Match{
		Round:  grandFinalRound,
		Number: 1,
		Stage:  models.StageGrandFinal,
		Status: models.MatchStatusPending,
	})

	winnersFinal := wRounds[numWinnersRounds-1][0]
	losersFinal := lRounds[numLosersRounds-1][0]
	arena[winnersFinal].WinnerTo = intPtr(grandFinalIdx)
	arena[losersFinal].WinnerTo = intPtr(grandFinalIdx)

	if err := Validate(arena); err != nil {
		return nil, err
	}
	return arena, nil
}

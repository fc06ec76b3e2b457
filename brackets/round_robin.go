package brackets

import (
	"context"

	"github.com/openarena/bracket-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate schedules every unordered pair of entrants exactly once using the
// circle method: with an even field of n entrants (a nil placeholder is
// appended when the count is odd), round r pairs position i with position
// n-1-i, then all positions except the first rotate by one. Each entrant
// plays exactly one match per round; a pairing against the placeholder is a
// bye for its partner. Round robin has no advancement, so no links are set.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateParams) ([]*Match, error) {
	if len(params.EntrantIDs) < 2 {
		return nil, ErrNotEnoughEntrants
	}

	seats := make([]*int, 0, len(params.EntrantIDs)+1)
	for i := range params.EntrantIDs {
		seats = append(seats, intPtr(params.EntrantIDs[i]))
	}
	if len(seats)%2 != 0 {
		seats = append(seats, nil) // bye rotation partner
	}

	n := len(seats)
	numRounds := n - 1
	arena := make([]*Match, 0, numRounds*n/2)

	for round := 1; round <= numRounds; round++ {
		number := 0
		for i := 0; i < n/2; i++ {
			a, b := seats[i], seats[n-1-i]
			number++
			m := &Match{
				Round:  round,
				Number: number,
				Stage:  models.StageRoundRobin,
				SideA:  a,
				SideB:  b,
				Status: models.MatchStatusPending,
			}
			if b == nil {
				m.SideB = nil
				m.Status = models.MatchStatusBye
			} else if a == nil {
				m.SideA, m.SideB = b, nil
				m.Status = models.MatchStatusBye
			}
			arena = append(arena, m)
		}

		// Rotate: first seat stays fixed, the last seat moves to the
		// second position.
		rotated := make([]*int, n)
		rotated[0] = seats[0]
		rotated[1] = seats[n-1]
		copy(rotated[2:], seats[1:n-1])
		seats = rotated
	}

	if err := Validate(arena); err != nil {
		return nil, err
	}
	return arena, nil
}

package brackets

import (
	"context"
	"fmt"

	"github.com/openarena/bracket-engine/models"
)

// Bracket type identifiers accepted by the generation API.
const (
	TypeSingleElimination = "single_elimination"
	TypeDoubleElimination = "double_elimination"
	TypeRoundRobin        = "round_robin"
)

// Match is one matchup slot produced by a generator. Generators are pure:
// they know nothing about tournaments or persistence, only entrant ids and
// bracket structure. WinnerTo/LoserTo are optional indices into the slice the
// generator returned (an arena), so the structure carries no pointer cycles;
// the caller maps indices to database ids after inserting the rows.
type Match struct {
	Round  int
	Number int // 1-based position within (Stage, Round)
	Stage  models.MatchStage

	SideA *int
	SideB *int

	Status models.MatchStatus // pending or bye

	WinnerTo *int // arena index the winner advances to
	LoserTo  *int // arena index the loser drops to (double elimination)
}

// GenerateParams carries the ordered entrant list. Shuffling, when requested,
// happens before the generator is invoked.
type GenerateParams struct {
	EntrantIDs []int
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*Match, error)

	Name() string
}

// New returns the generator for a bracket type identifier, or false when the
// identifier is unknown.
func New(bracketType string) (Generator, bool) {
	switch bracketType {
	case TypeSingleElimination:
		return NewSingleEliminationGenerator(), true
	case TypeDoubleElimination:
		return NewDoubleEliminationGenerator(), true
	case TypeRoundRobin:
		return NewRoundRobinGenerator(), true
	default:
		return nil, false
	}
}

// Validate checks the structural invariants of a generated arena: links stay
// in bounds, never self-reference, winner links always point to a strictly
// later round (no cycles), and loser links switch stage tracks.
func Validate(matches []*Match) error {
	for i, m := range matches {
		if m.WinnerTo != nil {
			t := *m.WinnerTo
			if t < 0 || t >= len(matches) {
				return fmt.Errorf("match %d: winner link %d out of bounds", i, t)
			}
			if t == i {
				return fmt.Errorf("match %d: winner link references itself", i)
			}
			if matches[t].Round <= m.Round {
				return fmt.Errorf("match %d (round %d): winner link to match %d does not advance the round (%d)",
					i, m.Round, t, matches[t].Round)
			}
		}
		if m.LoserTo != nil {
			t := *m.LoserTo
			if t < 0 || t >= len(matches) {
				return fmt.Errorf("match %d: loser link %d out of bounds", i, t)
			}
			if t == i {
				return fmt.Errorf("match %d: loser link references itself", i)
			}
			if matches[t].Stage == m.Stage {
				return fmt.Errorf("match %d: loser link must change stage, stays in %s", i, m.Stage)
			}
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }

// ceilPow2 returns the smallest power of two >= n (n >= 1).
func ceilPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

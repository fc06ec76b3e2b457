package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/openarena/bracket-engine/brackets"
	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/repositories"
)

type StandingsService interface {
	Recalculate(ctx context.Context, tournamentID int) ([]*models.Standing, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Standing, error)
}

type standingsService struct {
	txManager      repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	matchupRepo    repositories.MatchupRepository
	standingRepo   repositories.StandingRepository
	notifier       Notifier
	logger         *slog.Logger
}

func NewStandingsService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	matchupRepo repositories.MatchupRepository,
	standingRepo repositories.StandingRepository,
	notifier Notifier,
	logger *slog.Logger,
) StandingsService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &standingsService{
		txManager:      txManager,
		tournamentRepo: tournamentRepo,
		matchupRepo:    matchupRepo,
		standingRepo:   standingRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

type tally struct {
	wins, losses, draws, points int
}

// Recalculate rebuilds the tournament's standings from scratch. Only fully
// completed matchups count toward the record: byes, pending, cancelled,
// forfeited and no-show matchups are excluded, so a forfeit does not award
// the opponent a win. Win = 3 points, draw = 1, loss = 0. Entrants appearing
// anywhere in the bracket are ranked even with no completed matches.
func (s *standingsService) Recalculate(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	matchups, err := s.matchupRepo.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchups for tournament %d: %w", tournamentID, err)
	}

	tallies := make(map[int]*tally)
	touch := func(id int) *tally {
		t, ok := tallies[id]
		if !ok {
			t = &tally{}
			tallies[id] = t
		}
		return t
	}

	for _, m := range matchups {
		// Seed every entrant that appears in the bracket so zero-match
		// entrants still receive a ranked row.
		if m.Entrants.SideA != nil {
			touch(*m.Entrants.SideA)
		}
		if m.Entrants.SideB != nil {
			touch(*m.Entrants.SideB)
		}

		if m.Status != models.MatchStatusCompleted {
			continue
		}
		a, b := m.Entrants.SideA, m.Entrants.SideB
		if a == nil || b == nil {
			continue
		}

		switch {
		case m.WinnerID == nil:
			touch(*a).draws++
			touch(*a).points++
			touch(*b).draws++
			touch(*b).points++
		case *m.WinnerID == *a:
			touch(*a).wins++
			touch(*a).points += 3
			touch(*b).losses++
		case *m.WinnerID == *b:
			touch(*b).wins++
			touch(*b).points += 3
			touch(*a).losses++
		default:
			s.logger.Warn("completed matchup has winner outside its entrant pair, skipping",
				slog.Int("matchup_id", m.ID), slog.Int("winner_id", *m.WinnerID))
		}
	}

	entrantIDs := make([]int, 0, len(tallies))
	for id := range tallies {
		entrantIDs = append(entrantIDs, id)
	}
	// Points desc, wins desc, entrant id asc. The id key exists purely for
	// deterministic ordering of residual ties.
	sort.Slice(entrantIDs, func(i, j int) bool {
		ti, tj := tallies[entrantIDs[i]], tallies[entrantIDs[j]]
		if ti.points != tj.points {
			return ti.points > tj.points
		}
		if ti.wins != tj.wins {
			return ti.wins > tj.wins
		}
		return entrantIDs[i] < entrantIDs[j]
	})

	now := time.Now()
	standings := make([]*models.Standing, 0, len(entrantIDs))
	for i, id := range entrantIDs {
		t := tallies[id]
		st := &models.Standing{
			TournamentID: tournamentID,
			Wins:         t.wins,
			Losses:       t.losses,
			Draws:        t.draws,
			Points:       t.points,
			Rank:         i + 1,
			UpdatedAt:    now,
		}
		if played := t.wins + t.losses + t.draws; played > 0 {
			st.WinRate = round2(float64(t.wins) / float64(played) * 100)
		}
		entrantID := id
		switch tournament.Mode {
		case models.ModeFreeForAll:
			st.UserID = &entrantID
		default:
			st.TeamID = &entrantID
		}
		standings = append(standings, st)
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.standingRepo.DeleteByTournamentID(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to clear standings: %w", err)
		}
		if err := s.standingRepo.BatchCreate(ctx, exec, standings); err != nil {
			return fmt.Errorf("failed to insert standings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("standings recalculated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("entrants", len(standings)))

	s.notifier.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:   brackets.EventStandingsUpdated,
		RoomID: tournamentRoom(tournamentID),
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"standings":     standings,
		},
	})

	return standings, nil
}

func (s *standingsService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Standing, error) {
	standings, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
	}
	return standings, nil
}

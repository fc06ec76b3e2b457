package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openarena/bracket-engine/brackets"
	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/repositories"
)

// DefaultHistoryLimit caps the match-history list per leaderboard entry.
const DefaultHistoryLimit = 50

type LeaderboardService interface {
	// Rebuild derives the leaderboard from the current Standing rows; run it
	// after StandingsService.Recalculate for the same tournament.
	Rebuild(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error)
}

type leaderboardService struct {
	txManager       repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	standingRepo    repositories.StandingRepository
	matchupRepo     repositories.MatchupRepository
	leaderboardRepo repositories.LeaderboardRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	notifier        Notifier
	logger          *slog.Logger
	historyLimit    int
}

func NewLeaderboardService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	standingRepo repositories.StandingRepository,
	matchupRepo repositories.MatchupRepository,
	leaderboardRepo repositories.LeaderboardRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
	historyLimit int,
) LeaderboardService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &leaderboardService{
		txManager:       txManager,
		tournamentRepo:  tournamentRepo,
		standingRepo:    standingRepo,
		matchupRepo:     matchupRepo,
		leaderboardRepo: leaderboardRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		logger:          logger,
		historyLimit:    historyLimit,
	}
}

func (s *leaderboardService) Rebuild(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	standings, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for tournament %d: %w", tournamentID, err)
	}

	// Fetch each entrant's completed-match history in parallel; the rows are
	// small and the queries independent.
	histories := make([][]*models.Matchup, len(standings))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range standings {
		i := i
		entrantID := standings[i].EntrantID()
		g.Go(func() error {
			matchups, err := s.matchupRepo.ListCompletedByEntrant(gCtx, nil, tournamentID, tournament.Mode, entrantID, s.historyLimit)
			if err != nil {
				return fmt.Errorf("failed to load match history for entrant %d: %w", entrantID, err)
			}
			histories[i] = matchups
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names, err := s.resolveNames(ctx, tournament.Mode, standings, histories)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]*models.LeaderboardEntry, 0, len(standings))
	for i, st := range standings {
		entrantID := st.EntrantID()
		history := make([]models.MatchHistoryItem, 0, len(histories[i]))
		for _, m := range histories[i] {
			history = append(history, buildHistoryItem(m, entrantID, tournament.Mode, names))
		}

		matchesPlayed := st.Wins + st.Losses + st.Draws
		stats := models.LeaderboardStats{models.StatAvgPointsPerMatch: 0}
		if matchesPlayed > 0 {
			stats[models.StatAvgPointsPerMatch] = round2(float64(st.Points) / float64(matchesPlayed))
		}

		entries = append(entries, &models.LeaderboardEntry{
			TournamentID:  tournamentID,
			TeamID:        st.TeamID,
			UserID:        st.UserID,
			Rank:          st.Rank,
			Wins:          st.Wins,
			Losses:        st.Losses,
			Draws:         st.Draws,
			Points:        st.Points,
			WinRate:       st.WinRate,
			MatchesPlayed: matchesPlayed,
			MatchHistory:  history,
			Stats:         stats,
			UpdatedAt:     now,
		})
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.leaderboardRepo.DeleteByTournamentID(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to clear leaderboard: %w", err)
		}
		if err := s.leaderboardRepo.BatchCreate(ctx, exec, entries); err != nil {
			return fmt.Errorf("failed to insert leaderboard: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leaderboard rebuilt",
		slog.Int("tournament_id", tournamentID),
		slog.Int("entries", len(entries)))

	s.notifier.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:   brackets.EventLeaderboardUpdated,
		RoomID: tournamentRoom(tournamentID),
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"leaderboard":   entries,
		},
	})

	return entries, nil
}

func (s *leaderboardService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.LeaderboardEntry, error) {
	entries, err := s.leaderboardRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard for tournament %d: %w", tournamentID, err)
	}
	return entries, nil
}

// resolveNames batches the display-name lookup for every entrant and opponent
// appearing on the leaderboard.
func (s *leaderboardService) resolveNames(ctx context.Context, mode models.TournamentMode, standings []*models.Standing, histories [][]*models.Matchup) (map[int]string, error) {
	idSet := make(map[int]struct{})
	for _, st := range standings {
		idSet[st.EntrantID()] = struct{}{}
	}
	for _, history := range histories {
		for _, m := range history {
			if m.Entrants.SideA != nil {
				idSet[*m.Entrants.SideA] = struct{}{}
			}
			if m.Entrants.SideB != nil {
				idSet[*m.Entrants.SideB] = struct{}{}
			}
		}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var (
		names map[int]string
		err   error
	)
	if mode == models.ModeFreeForAll {
		names, err = s.userRepo.GetNamesByIDs(ctx, nil, ids)
	} else {
		names, err = s.teamRepo.GetNamesByIDs(ctx, nil, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entrant names: %w", err)
	}
	return names, nil
}

func buildHistoryItem(m *models.Matchup, entrantID int, mode models.TournamentMode, names map[int]string) models.MatchHistoryItem {
	item := models.MatchHistoryItem{
		MatchupID:  m.ID,
		OpponentID: m.Entrants.Opponent(entrantID),
		Result:     models.ResultDraw,
	}
	switch {
	case m.WinnerID == nil:
	case *m.WinnerID == entrantID:
		item.Result = models.ResultWin
	default:
		item.Result = models.ResultLoss
	}

	if item.OpponentID != nil {
		if name, ok := names[*item.OpponentID]; ok {
			item.OpponentName = name
		} else {
			item.OpponentName = fmt.Sprintf("Entrant %d", *item.OpponentID)
		}
	}

	// Raw scores are part of the history only for team-based matchups.
	if mode == models.ModeTeamVsTeam {
		if m.Entrants.SideA != nil && *m.Entrants.SideA == entrantID {
			item.ScoreFor, item.ScoreAgainst = m.SideAScore, m.SideBScore
		} else {
			item.ScoreFor, item.ScoreAgainst = m.SideBScore, m.SideAScore
		}
	}

	if m.CompletedAt != nil {
		item.CompletedAt = *m.CompletedAt
	} else {
		item.CompletedAt = m.CreatedAt
	}
	return item
}

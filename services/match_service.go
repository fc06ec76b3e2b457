package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openarena/bracket-engine/brackets"
	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/repositories"
)

// SubmitResultParams carries a recorded outcome. A nil WinnerID on a
// completed matchup denotes a draw.
type SubmitResultParams struct {
	SideAScore *int `json:"side_a_score"`
	SideBScore *int `json:"side_b_score"`
	WinnerID   *int `json:"winner_id"`
}

type MatchService interface {
	SubmitResult(ctx context.Context, matchupID int, params SubmitResultParams) (*models.Matchup, error)
	UpdateStatus(ctx context.Context, matchupID int, status models.MatchStatus) (*models.Matchup, error)
	FlagDispute(ctx context.Context, matchupID int, reason string) (*models.Matchup, error)
	PropagateByes(ctx context.Context, tournamentID, eventID int) (int, error)
}

type matchService struct {
	txManager   repositories.TxManager
	matchupRepo repositories.MatchupRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewMatchService(
	txManager repositories.TxManager,
	matchupRepo repositories.MatchupRepository,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &matchService{
		txManager:   txManager,
		matchupRepo: matchupRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// SubmitResult records a completed outcome and advances the entrants along
// the bracket links: the winner into the first open slot of the next matchup,
// the loser into its losers-bracket drop when one is linked. The result write
// and both advancements commit atomically.
func (s *matchService) SubmitResult(ctx context.Context, matchupID int, params SubmitResultParams) (*models.Matchup, error) {
	m, err := s.matchupRepo.GetByID(ctx, nil, matchupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matchup %d: %w", matchupID, err)
	}

	if !m.Status.CanTransitionTo(models.MatchStatusCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, models.MatchStatusCompleted)
	}
	if m.Entrants.SideA == nil || m.Entrants.SideB == nil {
		return nil, fmt.Errorf("%w: matchup %d", ErrMatchupMissingEntrants, matchupID)
	}
	if params.WinnerID != nil && !m.Entrants.Involves(*params.WinnerID) {
		return nil, fmt.Errorf("%w: entrant %d is not in matchup %d", ErrInvalidWinner, *params.WinnerID, matchupID)
	}

	now := time.Now()
	m.SideAScore = params.SideAScore
	m.SideBScore = params.SideBScore
	m.WinnerID = params.WinnerID
	m.Status = models.MatchStatusCompleted
	m.CompletedAt = &now
	if m.StartedAt == nil {
		m.StartedAt = &now
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchupRepo.UpdateResult(ctx, exec, m); err != nil {
			return fmt.Errorf("failed to record result for matchup %d: %w", matchupID, err)
		}
		// Draws have no one to advance; round robin has no links anyway.
		if m.WinnerID == nil {
			return nil
		}
		if m.NextMatchID != nil {
			if err := s.placeEntrant(ctx, exec, *m.NextMatchID, *m.WinnerID); err != nil {
				return err
			}
		}
		if loser := m.LoserID(); loser != nil && m.LoserNextMatchID != nil {
			if err := s.placeEntrant(ctx, exec, *m.LoserNextMatchID, *loser); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("matchup result recorded",
		slog.Int("matchup_id", matchupID),
		slog.Int("tournament_id", m.TournamentID),
		slog.Bool("draw", m.WinnerID == nil))

	s.broadcastMatch(m)
	return m, nil
}

// UpdateStatus applies a non-result status transition (scheduling, starting,
// cancelling, forfeits, no-shows). Completion must go through SubmitResult so
// scores and advancement are handled. Forfeited and no-show matchups keep no
// winner and stay out of standings.
func (s *matchService) UpdateStatus(ctx context.Context, matchupID int, status models.MatchStatus) (*models.Matchup, error) {
	if status == models.MatchStatusCompleted {
		return nil, ErrResultRequired
	}

	m, err := s.matchupRepo.GetByID(ctx, nil, matchupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matchup %d: %w", matchupID, err)
	}
	if !m.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, status)
	}

	var startedAt *time.Time
	if status == models.MatchStatusInProgress && m.StartedAt == nil {
		now := time.Now()
		startedAt = &now
	}
	if err := s.matchupRepo.UpdateStatus(ctx, nil, matchupID, status, startedAt); err != nil {
		return nil, fmt.Errorf("failed to update status for matchup %d: %w", matchupID, err)
	}

	m.Status = status
	if startedAt != nil {
		m.StartedAt = startedAt
	}
	s.broadcastMatch(m)
	return m, nil
}

// FlagDispute marks a matchup as administratively disputed. The engine never
// resolves disputes; the flag is an override channel for the surrounding
// application.
func (s *matchService) FlagDispute(ctx context.Context, matchupID int, reason string) (*models.Matchup, error) {
	now := time.Now()
	if err := s.matchupRepo.SetDispute(ctx, nil, matchupID, reason, now); err != nil {
		return nil, fmt.Errorf("failed to flag dispute on matchup %d: %w", matchupID, err)
	}
	m, err := s.matchupRepo.GetByID(ctx, nil, matchupID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload matchup %d: %w", matchupID, err)
	}
	s.broadcastMatch(m)
	return m, nil
}

// PropagateByes advances the sole entrant of every bye matchup in the event
// into its next matchup. Idempotent: entrants already placed are skipped.
// Returns the number of placements made.
func (s *matchService) PropagateByes(ctx context.Context, tournamentID, eventID int) (int, error) {
	matchups, err := s.matchupRepo.ListByEvent(ctx, nil, tournamentID, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to list matchups for event %d: %w", eventID, err)
	}

	placed := 0
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, m := range matchups {
			if m.Status != models.MatchStatusBye || m.NextMatchID == nil {
				continue
			}
			sole := m.Entrants.SoleEntrant()
			if sole == nil {
				continue
			}
			next, err := s.matchupRepo.GetByID(ctx, exec, *m.NextMatchID)
			if err != nil {
				return fmt.Errorf("failed to load next matchup %d: %w", *m.NextMatchID, err)
			}
			if next.Entrants.Involves(*sole) {
				continue
			}
			if err := s.placeEntrant(ctx, exec, next.ID, *sole); err != nil {
				return err
			}
			placed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if placed > 0 {
		s.logger.Info("bye entrants propagated",
			slog.Int("tournament_id", tournamentID),
			slog.Int("event_id", eventID),
			slog.Int("placed", placed))
		s.notifier.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
			Type:   brackets.EventBracketUpdated,
			RoomID: tournamentRoom(tournamentID),
			Payload: map[string]interface{}{
				"tournament_id": tournamentID,
				"event_id":      eventID,
				"byes_advanced": placed,
			},
		})
	}
	return placed, nil
}

// placeEntrant fills the first open slot of the target matchup.
func (s *matchService) placeEntrant(ctx context.Context, exec repositories.SQLExecutor, matchupID, entrantID int) error {
	target, err := s.matchupRepo.GetByID(ctx, exec, matchupID)
	if err != nil {
		return fmt.Errorf("failed to load advancement target %d: %w", matchupID, err)
	}
	if target.Entrants.Involves(entrantID) {
		return nil
	}
	entrants := target.Entrants
	switch {
	case entrants.SideA == nil:
		entrants.SideA = &entrantID
	case entrants.SideB == nil:
		entrants.SideB = &entrantID
	default:
		return fmt.Errorf("%w: matchup %d", ErrAdvancementSlotsFull, matchupID)
	}
	if err := s.matchupRepo.UpdateEntrants(ctx, exec, matchupID, entrants); err != nil {
		return fmt.Errorf("failed to place entrant %d into matchup %d: %w", entrantID, matchupID, err)
	}
	return nil
}

func (s *matchService) broadcastMatch(m *models.Matchup) {
	s.notifier.BroadcastToRoom(tournamentRoom(m.TournamentID), brackets.WebSocketMessage{
		Type:    brackets.EventMatchUpdated,
		RoomID:  tournamentRoom(m.TournamentID),
		Payload: m,
	})
}

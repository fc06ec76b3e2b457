package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/openarena/bracket-engine/brackets"
	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/repositories"
)

// GenerateOptions tunes a generation run. Shuffle defaults to true: entrant
// order is randomized before assignment as the fairness mechanism. No seeding
// is exposed, so shuffled runs are not reproducible.
type GenerateOptions struct {
	Shuffle *bool
}

func (o GenerateOptions) shuffleEnabled() bool {
	return o.Shuffle == nil || *o.Shuffle
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID, eventID int, bracketType string, opts GenerateOptions) ([]*models.Matchup, error)
	ListEventMatchups(ctx context.Context, tournamentID, eventID int) ([]*models.Matchup, error)
}

type bracketService struct {
	txManager       repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	eventRepo       repositories.EventRepository
	participantRepo repositories.ParticipantRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	matchupRepo     repositories.MatchupRepository
	notifier        Notifier
	logger          *slog.Logger
}

func NewBracketService(
	txManager repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	eventRepo repositories.EventRepository,
	participantRepo repositories.ParticipantRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	matchupRepo repositories.MatchupRepository,
	notifier Notifier,
	logger *slog.Logger,
) BracketService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &bracketService{
		txManager:       txManager,
		tournamentRepo:  tournamentRepo,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		matchupRepo:     matchupRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// GenerateBracket collects and validates the event's entrants, runs the
// requested generator, and replaces the event's matchup set inside a single
// transaction. Regeneration is destructive: any previous matchups for the
// (tournament, event) scope are deleted first. All validation happens before
// the first write, so a failed run leaves the previous bracket untouched.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID, eventID int, bracketType string, opts GenerateOptions) ([]*models.Matchup, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	event, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.TournamentID != tournament.ID {
		return nil, fmt.Errorf("%w: event %d belongs to tournament %d", ErrEventScopeMismatch, eventID, event.TournamentID)
	}

	generator, ok := brackets.New(bracketType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBracketType, bracketType)
	}

	entrantIDs, err := s.collectEntrants(ctx, tournament, eventID)
	if err != nil {
		return nil, err
	}

	if opts.shuffleEnabled() {
		rand.Shuffle(len(entrantIDs), func(i, j int) {
			entrantIDs[i], entrantIDs[j] = entrantIDs[j], entrantIDs[i]
		})
	}

	arena, err := generator.Generate(ctx, brackets.GenerateParams{EntrantIDs: entrantIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s bracket for event %d: %w", generator.Name(), eventID, err)
	}

	generationID := uuid.New()
	created := make([]*models.Matchup, 0, len(arena))

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchupRepo.DeleteByEvent(ctx, exec, tournamentID, eventID); err != nil {
			return fmt.Errorf("failed to clear previous bracket: %w", err)
		}

		// First pass: insert every matchup and record its database id per
		// arena position.
		dbIDs := make([]int, len(arena))
		for i, bm := range arena {
			m := &models.Matchup{
				TournamentID: tournamentID,
				EventID:      eventID,
				GenerationID: generationID,
				Round:        bm.Round,
				MatchNumber:  bm.Number,
				Stage:        bm.Stage,
				Status:       bm.Status,
				Entrants: models.Entrants{
					Mode:  tournament.Mode,
					SideA: bm.SideA,
					SideB: bm.SideB,
				},
			}
			if err := s.matchupRepo.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("failed to create matchup %s round %d match %d: %w", bm.Stage, bm.Round, bm.Number, err)
			}
			dbIDs[i] = m.ID
			created = append(created, m)
		}

		// Second pass: translate arena indices into database ids.
		for i, bm := range arena {
			if bm.WinnerTo == nil && bm.LoserTo == nil {
				continue
			}
			var next, loserNext *int
			if bm.WinnerTo != nil {
				id := dbIDs[*bm.WinnerTo]
				next = &id
			}
			if bm.LoserTo != nil {
				id := dbIDs[*bm.LoserTo]
				loserNext = &id
			}
			if err := s.matchupRepo.UpdateLinks(ctx, exec, dbIDs[i], next, loserNext); err != nil {
				return fmt.Errorf("failed to link matchup %d: %w", dbIDs[i], err)
			}
			created[i].NextMatchID = next
			created[i].LoserNextMatchID = loserNext
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("event_id", eventID),
		slog.String("bracket_type", bracketType),
		slog.Int("entrants", len(entrantIDs)),
		slog.Int("matchups", len(created)),
		slog.String("generation_id", generationID.String()))

	s.notifier.BroadcastToRoom(tournamentRoom(tournamentID), brackets.WebSocketMessage{
		Type:   brackets.EventBracketUpdated,
		RoomID: tournamentRoom(tournamentID),
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"event_id":      eventID,
			"generation_id": generationID,
			"matchups":      created,
		},
	})

	return created, nil
}

func (s *bracketService) ListEventMatchups(ctx context.Context, tournamentID, eventID int) ([]*models.Matchup, error) {
	matchups, err := s.matchupRepo.ListByEvent(ctx, nil, tournamentID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchups for event %d: %w", eventID, err)
	}
	return matchups, nil
}

// collectEntrants gathers distinct entrant ids for the event: direct event
// associations first, tournament registrations with an eligible status as the
// fallback. Every id must resolve to an existing team/user record; unresolved
// ids fail validation before anything is written.
func (s *bracketService) collectEntrants(ctx context.Context, tournament *models.Tournament, eventID int) ([]int, error) {
	var (
		ids []int
		err error
	)
	switch tournament.Mode {
	case models.ModeFreeForAll:
		ids, err = s.eventRepo.ListUserIDs(ctx, nil, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to list event users: %w", err)
		}
		if len(ids) == 0 {
			ids, err = s.participantRepo.ListUserIDs(ctx, nil, tournament.ID, models.GenerationEligibleStatuses)
			if err != nil {
				return nil, fmt.Errorf("failed to list tournament participants: %w", err)
			}
		}
	default:
		ids, err = s.eventRepo.ListTeamIDs(ctx, nil, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to list event teams: %w", err)
		}
		if len(ids) == 0 {
			ids, err = s.participantRepo.ListTeamIDs(ctx, nil, tournament.ID, models.GenerationEligibleStatuses)
			if err != nil {
				return nil, fmt.Errorf("failed to list tournament participants: %w", err)
			}
		}
	}

	ids = dedupe(ids)
	if len(ids) < 2 {
		return nil, notEnoughEntrants(len(ids))
	}

	var existing []int
	if tournament.Mode == models.ModeFreeForAll {
		existing, err = s.userRepo.FilterExistingIDs(ctx, nil, ids)
	} else {
		existing, err = s.teamRepo.FilterExistingIDs(ctx, nil, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entrant ids: %w", err)
	}

	if missing := difference(ids, existing); len(missing) > 0 {
		return nil, unresolvedEntrants(missing)
	}
	return ids, nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// difference returns the elements of ids absent from existing, in input order.
func difference(ids, existing []int) []int {
	have := make(map[int]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	missing := make([]int, 0)
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/openarena/bracket-engine/brackets"
	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bracketServiceFixture struct {
	txManager       *fakeTxManager
	tournamentRepo  *fakeTournamentRepo
	eventRepo       *fakeEventRepo
	participantRepo *fakeParticipantRepo
	teamRepo        *fakeTeamRepo
	userRepo        *fakeUserRepo
	matchupRepo     *fakeMatchupRepo
	notifier        *capturingNotifier
	service         BracketService
}

func newBracketServiceFixture(mode models.TournamentMode) *bracketServiceFixture {
	f := &bracketServiceFixture{
		txManager: &fakeTxManager{},
		tournamentRepo: &fakeTournamentRepo{
			GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
				return &models.Tournament{ID: id, Mode: mode, Status: models.TournamentStatusActive}, nil
			},
		},
		eventRepo: &fakeEventRepo{
			GetByIDFunc: func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
				return &models.Event{ID: id, TournamentID: 1}, nil
			},
		},
		participantRepo: &fakeParticipantRepo{},
		teamRepo:        &fakeTeamRepo{},
		userRepo:        &fakeUserRepo{},
		matchupRepo:     &fakeMatchupRepo{},
		notifier:        &capturingNotifier{},
	}
	f.service = NewBracketService(
		f.txManager, f.tournamentRepo, f.eventRepo, f.participantRepo,
		f.teamRepo, f.userRepo, f.matchupRepo, f.notifier, testLogger())
	return f
}

func shuffleOff() GenerateOptions {
	off := false
	return GenerateOptions{Shuffle: &off}
}

func TestGenerateBracketUnknownType(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	f.eventRepo.ListTeamIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
		return []int{1, 2}, nil
	}

	_, err := f.service.GenerateBracket(context.Background(), 1, 10, "swiss", shuffleOff())
	assert.ErrorIs(t, err, ErrUnknownBracketType)
	assert.Zero(t, f.txManager.Calls, "nothing is written on validation failure")
}

func TestGenerateBracketEventScopeMismatch(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	f.eventRepo.GetByIDFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
		return &models.Event{ID: id, TournamentID: 99}, nil
	}

	_, err := f.service.GenerateBracket(context.Background(), 1, 10, brackets.TypeSingleElimination, shuffleOff())
	assert.ErrorIs(t, err, ErrEventScopeMismatch)
}

func TestGenerateBracketNotEnoughEntrants(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	// Duplicates collapse before the minimum check.
	f.eventRepo.ListTeamIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
		return []int{7, 7}, nil
	}

	_, err := f.service.GenerateBracket(context.Background(), 1, 10, brackets.TypeSingleElimination, shuffleOff())

	var vErr *EntrantValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "participants", vErr.Field)
	assert.Empty(t, vErr.MissingIDs)
	assert.Zero(t, f.txManager.Calls)
}

func TestGenerateBracketUnresolvedEntrants(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	f.eventRepo.ListTeamIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
		return []int{1, 2, 3}, nil
	}
	f.teamRepo.FilterExistingIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]int, error) {
		return []int{1, 2}, nil
	}

	_, err := f.service.GenerateBracket(context.Background(), 1, 10, brackets.TypeSingleElimination, shuffleOff())

	var vErr *EntrantValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []int{3}, vErr.MissingIDs)
	assert.Zero(t, f.txManager.Calls)
}

func TestGenerateBracketSingleElimination(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	f.eventRepo.ListTeamIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
		return []int{11, 12, 13, 14}, nil
	}

	var deletes int
	f.matchupRepo.DeleteByEventFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID, eventID int) error {
		deletes++
		return nil
	}

	nextID := 100
	var created []*models.Matchup
	f.matchupRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error {
		nextID++
		m.ID = nextID
		created = append(created, m)
		return nil
	}

	links := make(map[int][2]*int)
	f.matchupRepo.UpdateLinksFunc = func(ctx context.Context, exec repositories.SQLExecutor, id int, nextMatchID, loserNextMatchID *int) error {
		links[id] = [2]*int{nextMatchID, loserNextMatchID}
		return nil
	}

	matchups, err := f.service.GenerateBracket(context.Background(), 1, 10, brackets.TypeSingleElimination, shuffleOff())
	require.NoError(t, err)

	assert.Equal(t, 1, deletes, "previous bracket is cleared first")
	assert.Equal(t, 1, f.txManager.Calls)
	require.Len(t, matchups, 3)

	// Round 1 pairs the entrants in order when shuffling is off.
	assert.Equal(t, 11, *matchups[0].Entrants.SideA)
	assert.Equal(t, 12, *matchups[0].Entrants.SideB)
	assert.Equal(t, 13, *matchups[1].Entrants.SideA)
	assert.Equal(t, 14, *matchups[1].Entrants.SideB)
	assert.Equal(t, models.ModeTeamVsTeam, matchups[0].Entrants.Mode)

	// Arena links are rewritten into database ids.
	final := matchups[2]
	for _, m := range matchups[:2] {
		require.NotNil(t, m.NextMatchID)
		assert.Equal(t, final.ID, *m.NextMatchID)
		link, ok := links[m.ID]
		require.True(t, ok)
		assert.Equal(t, final.ID, *link[0])
		assert.Nil(t, link[1])
	}
	assert.Nil(t, final.NextMatchID)
	_, finalLinked := links[final.ID]
	assert.False(t, finalLinked, "the final has no links to persist")

	// The whole run shares one generation id.
	assert.NotEqual(t, uuid.Nil, matchups[0].GenerationID)
	for _, m := range matchups[1:] {
		assert.Equal(t, matchups[0].GenerationID, m.GenerationID)
	}

	require.Len(t, f.notifier.Rooms, 1)
	assert.Equal(t, "tournament_1", f.notifier.Rooms[0])
	msg, ok := f.notifier.Messages[0].(brackets.WebSocketMessage)
	require.True(t, ok)
	assert.Equal(t, brackets.EventBracketUpdated, msg.Type)
}

func TestGenerateBracketFallsBackToTournamentParticipants(t *testing.T) {
	f := newBracketServiceFixture(models.ModeFreeForAll)
	f.participantRepo.ListUserIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error) {
		assert.Equal(t, models.GenerationEligibleStatuses, statuses)
		return []int{5, 6}, nil
	}

	var created []*models.Matchup
	f.matchupRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error {
		m.ID = len(created) + 1
		created = append(created, m)
		return nil
	}

	matchups, err := f.service.GenerateBracket(context.Background(), 1, 10, brackets.TypeSingleElimination, shuffleOff())
	require.NoError(t, err)
	require.Len(t, matchups, 1)
	assert.Equal(t, models.ModeFreeForAll, matchups[0].Entrants.Mode)
	assert.Equal(t, 5, *matchups[0].Entrants.SideA)
	assert.Equal(t, 6, *matchups[0].Entrants.SideB)
}

func TestGenerateBracketRollsBackOnCreateFailure(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	f.eventRepo.ListTeamIDsFunc = func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
		return []int{1, 2}, nil
	}

	dbErr := errors.New("insert failed")
	f.matchupRepo.CreateFunc = func(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error {
		return dbErr
	}

	_, err := f.service.GenerateBracket(context.Background(), 1, 10, brackets.TypeSingleElimination, shuffleOff())
	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, f.notifier.Rooms, "no broadcast on failure")
}

func TestListEventMatchups(t *testing.T) {
	f := newBracketServiceFixture(models.ModeTeamVsTeam)
	want := []*models.Matchup{{ID: 1}, {ID: 2}}
	f.matchupRepo.ListByEventFunc = func(ctx context.Context, exec repositories.SQLExecutor, tournamentID, eventID int) ([]*models.Matchup, error) {
		assert.Equal(t, 1, tournamentID)
		assert.Equal(t, 10, eventID)
		return want, nil
	}

	got, err := f.service.ListEventMatchups(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

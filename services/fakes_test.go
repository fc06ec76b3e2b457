package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/repositories"
)

// Hand-rolled fakes with overridable Func fields. A nil Func means the fake
// returns its zero-value success; lookups without an override return the
// repository's not-found sentinel.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxManager struct {
	WithinTxFunc func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
	Calls        int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.Calls++
	if f.WithinTxFunc != nil {
		return f.WithinTxFunc(ctx, fn)
	}
	return fn(nil)
}

type fakeTournamentRepo struct {
	GetByIDFunc func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error)
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrTournamentNotFound
}

type fakeEventRepo struct {
	GetByIDFunc     func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error)
	ListTeamIDsFunc func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error)
	ListUserIDsFunc func(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error)
}

func (f *fakeEventRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrEventNotFound
}

func (f *fakeEventRepo) ListTeamIDs(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
	if f.ListTeamIDsFunc != nil {
		return f.ListTeamIDsFunc(ctx, exec, eventID)
	}
	return nil, nil
}

func (f *fakeEventRepo) ListUserIDs(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]int, error) {
	if f.ListUserIDsFunc != nil {
		return f.ListUserIDsFunc(ctx, exec, eventID)
	}
	return nil, nil
}

type fakeParticipantRepo struct {
	ListTeamIDsFunc func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error)
	ListUserIDsFunc func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error)
}

func (f *fakeParticipantRepo) ListTeamIDs(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error) {
	if f.ListTeamIDsFunc != nil {
		return f.ListTeamIDsFunc(ctx, exec, tournamentID, statuses)
	}
	return nil, nil
}

func (f *fakeParticipantRepo) ListUserIDs(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, statuses []models.ParticipantStatus) ([]int, error) {
	if f.ListUserIDsFunc != nil {
		return f.ListUserIDsFunc(ctx, exec, tournamentID, statuses)
	}
	return nil, nil
}

type fakeTeamRepo struct {
	FilterExistingIDsFunc func(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]int, error)
	GetNamesByIDsFunc     func(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]string, error)
}

func (f *fakeTeamRepo) FilterExistingIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]int, error) {
	if f.FilterExistingIDsFunc != nil {
		return f.FilterExistingIDsFunc(ctx, exec, ids)
	}
	return ids, nil
}

func (f *fakeTeamRepo) GetNamesByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]string, error) {
	if f.GetNamesByIDsFunc != nil {
		return f.GetNamesByIDsFunc(ctx, exec, ids)
	}
	return map[int]string{}, nil
}

type fakeUserRepo struct {
	FilterExistingIDsFunc func(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]int, error)
	GetNamesByIDsFunc     func(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]string, error)
}

func (f *fakeUserRepo) FilterExistingIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]int, error) {
	if f.FilterExistingIDsFunc != nil {
		return f.FilterExistingIDsFunc(ctx, exec, ids)
	}
	return ids, nil
}

func (f *fakeUserRepo) GetNamesByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]string, error) {
	if f.GetNamesByIDsFunc != nil {
		return f.GetNamesByIDsFunc(ctx, exec, ids)
	}
	return map[int]string{}, nil
}

type fakeMatchupRepo struct {
	CreateFunc                 func(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error
	GetByIDFunc                func(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Matchup, error)
	ListByEventFunc            func(ctx context.Context, exec repositories.SQLExecutor, tournamentID, eventID int) ([]*models.Matchup, error)
	ListByTournamentFunc       func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, status *models.MatchStatus) ([]*models.Matchup, error)
	ListCompletedByEntrantFunc func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, mode models.TournamentMode, entrantID, limit int) ([]*models.Matchup, error)
	DeleteByEventFunc          func(ctx context.Context, exec repositories.SQLExecutor, tournamentID, eventID int) error
	UpdateLinksFunc            func(ctx context.Context, exec repositories.SQLExecutor, id int, nextMatchID, loserNextMatchID *int) error
	UpdateEntrantsFunc         func(ctx context.Context, exec repositories.SQLExecutor, id int, entrants models.Entrants) error
	UpdateResultFunc           func(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error
	UpdateStatusFunc           func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus, startedAt *time.Time) error
	SetDisputeFunc             func(ctx context.Context, exec repositories.SQLExecutor, id int, reason string, disputedAt time.Time) error
}

func (f *fakeMatchupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, m)
	}
	return nil
}

func (f *fakeMatchupRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Matchup, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, exec, id)
	}
	return nil, repositories.ErrMatchupNotFound
}

func (f *fakeMatchupRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, tournamentID, eventID int) ([]*models.Matchup, error) {
	if f.ListByEventFunc != nil {
		return f.ListByEventFunc(ctx, exec, tournamentID, eventID)
	}
	return nil, nil
}

func (f *fakeMatchupRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, status *models.MatchStatus) ([]*models.Matchup, error) {
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, exec, tournamentID, status)
	}
	return nil, nil
}

func (f *fakeMatchupRepo) ListCompletedByEntrant(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, mode models.TournamentMode, entrantID, limit int) ([]*models.Matchup, error) {
	if f.ListCompletedByEntrantFunc != nil {
		return f.ListCompletedByEntrantFunc(ctx, exec, tournamentID, mode, entrantID, limit)
	}
	return nil, nil
}

func (f *fakeMatchupRepo) DeleteByEvent(ctx context.Context, exec repositories.SQLExecutor, tournamentID, eventID int) error {
	if f.DeleteByEventFunc != nil {
		return f.DeleteByEventFunc(ctx, exec, tournamentID, eventID)
	}
	return nil
}

func (f *fakeMatchupRepo) UpdateLinks(ctx context.Context, exec repositories.SQLExecutor, id int, nextMatchID, loserNextMatchID *int) error {
	if f.UpdateLinksFunc != nil {
		return f.UpdateLinksFunc(ctx, exec, id, nextMatchID, loserNextMatchID)
	}
	return nil
}

func (f *fakeMatchupRepo) UpdateEntrants(ctx context.Context, exec repositories.SQLExecutor, id int, entrants models.Entrants) error {
	if f.UpdateEntrantsFunc != nil {
		return f.UpdateEntrantsFunc(ctx, exec, id, entrants)
	}
	return nil
}

func (f *fakeMatchupRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, m *models.Matchup) error {
	if f.UpdateResultFunc != nil {
		return f.UpdateResultFunc(ctx, exec, m)
	}
	return nil
}

func (f *fakeMatchupRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus, startedAt *time.Time) error {
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, exec, id, status, startedAt)
	}
	return nil
}

func (f *fakeMatchupRepo) SetDispute(ctx context.Context, exec repositories.SQLExecutor, id int, reason string, disputedAt time.Time) error {
	if f.SetDisputeFunc != nil {
		return f.SetDisputeFunc(ctx, exec, id, reason, disputedAt)
	}
	return nil
}

type fakeStandingRepo struct {
	BatchCreateFunc          func(ctx context.Context, exec repositories.SQLExecutor, standings []*models.Standing) error
	ListByTournamentFunc     func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, sortByRank bool) ([]*models.Standing, error)
	DeleteByTournamentIDFunc func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error
}

func (f *fakeStandingRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, standings []*models.Standing) error {
	if f.BatchCreateFunc != nil {
		return f.BatchCreateFunc(ctx, exec, standings)
	}
	return nil
}

func (f *fakeStandingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, sortByRank bool) ([]*models.Standing, error) {
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, exec, tournamentID, sortByRank)
	}
	return nil, nil
}

func (f *fakeStandingRepo) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	if f.DeleteByTournamentIDFunc != nil {
		return f.DeleteByTournamentIDFunc(ctx, exec, tournamentID)
	}
	return nil
}

type fakeLeaderboardRepo struct {
	BatchCreateFunc          func(ctx context.Context, exec repositories.SQLExecutor, entries []*models.LeaderboardEntry) error
	ListByTournamentFunc     func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error)
	DeleteByTournamentIDFunc func(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error
}

func (f *fakeLeaderboardRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, entries []*models.LeaderboardEntry) error {
	if f.BatchCreateFunc != nil {
		return f.BatchCreateFunc(ctx, exec, entries)
	}
	return nil
}

func (f *fakeLeaderboardRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error) {
	if f.ListByTournamentFunc != nil {
		return f.ListByTournamentFunc(ctx, exec, tournamentID)
	}
	return nil, nil
}

func (f *fakeLeaderboardRepo) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	if f.DeleteByTournamentIDFunc != nil {
		return f.DeleteByTournamentIDFunc(ctx, exec, tournamentID)
	}
	return nil
}

// capturingNotifier records broadcasts; the leaderboard service fans out
// history queries on goroutines, so access is guarded.
type capturingNotifier struct {
	mu       sync.Mutex
	Rooms    []string
	Messages []interface{}
}

func (n *capturingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Rooms = append(n.Rooms, roomID)
	n.Messages = append(n.Messages, message)
}

package team

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/preference"
)

type Service interface {
	List(ctx context.Context, filter TeamFilter) ([]*Team, int, error)
	// Transfer moves a team to another league of the same sport.
	Transfer(ctx context.Context, teamID, leagueID int64) (*Team, error)
	ViewMode(ctx context.Context, owner string) ViewMode
	SetViewMode(ctx context.Context, owner string, mode ViewMode) error
}

type service struct {
	repo  Repository
	prefs preference.Store
	log   *zap.SugaredLogger
}

func NewService(repo Repository, prefs preference.Store, log *zap.SugaredLogger) Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &service{repo: repo, prefs: prefs, log: log}
}

func (s *service) List(ctx context.Context, filter TeamFilter) ([]*Team, int, error) {
	if filter.LeagueID != nil {
		if _, err := s.repo.GetLeague(ctx, *filter.LeagueID); err != nil {
			return nil, 0, err
		}
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Transfer(ctx context.Context, teamID, leagueID int64) (*Team, error) {
	t, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if t.LeagueID == leagueID {
		return nil, ErrSameLeague
	}

	target, err := s.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if target.SportID != t.SportID {
		return nil, ErrSportMismatch
	}

	if err := s.repo.SetLeague(ctx, teamID, leagueID); err != nil {
		return nil, err
	}
	s.log.Infow("team transferred", "team_id", teamID, "from_league", t.LeagueID, "to_league", leagueID)

	return s.repo.GetByID(ctx, teamID)
}

// ViewMode falls back to the default when nothing valid is stored or the store is down.
func (s *service) ViewMode(ctx context.Context, owner string) ViewMode {
	raw, err := s.prefs.Get(ctx, owner, preference.KeyTeamViewMode)
	if err != nil {
		if !errors.Is(err, preference.ErrNotFound) {
			s.log.Warnw("failed to read team view mode", "owner", owner, "error", err)
		}
		return DefaultViewMode
	}
	if mode := ViewMode(raw); mode.Valid() {
		return mode
	}
	return DefaultViewMode
}

func (s *service) SetViewMode(ctx context.Context, owner string, mode ViewMode) error {
	if !mode.Valid() {
		return ErrInvalidView
	}
	if err := s.prefs.Set(ctx, owner, preference.KeyTeamViewMode, string(mode)); err != nil {
		s.log.Warnw("failed to save team view mode", "owner", owner, "error", err)
	}
	return nil
}

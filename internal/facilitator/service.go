package facilitator

import (
	"context"

	"go.uber.org/zap"
)

type Service interface {
	// Assign distributes the active facilitators over the league's tiers and saves the result.
	Assign(ctx context.Context, leagueID int64) ([]Assignment, error)
}

type service struct {
	repo Repository
	log  *zap.SugaredLogger
}

func NewService(repo Repository, log *zap.SugaredLogger) Service {
	if repo == nil {
		panic(errNilRepository)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &service{repo: repo, log: log}
}

func (s *service) Assign(ctx context.Context, leagueID int64) ([]Assignment, error) {
	ok, err := s.repo.LeagueExists(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLeagueNotFound
	}

	tiers, err := s.repo.ListTiers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	facilitators, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	assignments, err := RoundRobin(tiers, facilitators)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveAssignments(ctx, assignments); err != nil {
		return nil, err
	}

	s.log.Infow("facilitators assigned", "league_id", leagueID, "tiers", len(tiers), "facilitators", len(facilitators))
	return assignments, nil
}

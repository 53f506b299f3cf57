package team

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/league-admin-backend/internal/preference"
)

type memRepo struct {
	teams   map[int64]*Team
	leagues map[int64]*League
}

func newMemRepo() *memRepo {
	return &memRepo{
		leagues: map[int64]*League{
			1: {ID: 1, SportID: 10, Name: "Volleyball A"},
			2: {ID: 2, SportID: 10, Name: "Volleyball B"},
			3: {ID: 3, SportID: 20, Name: "Soccer"},
		},
		teams: map[int64]*Team{
			100: {ID: 100, LeagueID: 1, SportID: 10, Name: "Spikers"},
		},
	}
}

func (m *memRepo) List(_ context.Context, f TeamFilter) ([]*Team, int, error) {
	var out []*Team
	for _, t := range m.teams {
		if f.LeagueID == nil || t.LeagueID == *f.LeagueID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memRepo) GetLeague(_ context.Context, id int64) (*League, error) {
	l, ok := m.leagues[id]
	if !ok {
		return nil, ErrLeagueNotFound
	}
	return l, nil
}

func (m *memRepo) SetLeague(_ context.Context, teamID, leagueID int64) error {
	t, ok := m.teams[teamID]
	if !ok {
		return ErrNotFound
	}
	t.LeagueID = leagueID
	t.LeagueName = m.leagues[leagueID].Name
	return nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string, string) (string, error) {
	return "", errors.New("redis down")
}

func (brokenStore) Set(context.Context, string, string, string) error {
	return errors.New("redis down")
}

func (brokenStore) Clear(context.Context, string, string) error {
	return errors.New("redis down")
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Same Sport", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		got, err := svc.Transfer(ctx, 100, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.LeagueID)
		assert.Equal(t, "Volleyball B", got.LeagueName)
	})

	t.Run("Different Sport", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		_, err := svc.Transfer(ctx, 100, 3)
		assert.ErrorIs(t, err, ErrSportMismatch)
	})

	t.Run("Missing League", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		_, err := svc.Transfer(ctx, 100, 42)
		assert.ErrorIs(t, err, ErrLeagueNotFound)
	})

	t.Run("Missing Team", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		_, err := svc.Transfer(ctx, 999, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Already There", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		_, err := svc.Transfer(ctx, 100, 1)
		assert.ErrorIs(t, err, ErrSameLeague)
	})
}

func TestListUnknownLeague(t *testing.T) {
	svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
	id := int64(77)
	_, _, err := svc.List(context.Background(), TeamFilter{LeagueID: &id})
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestViewMode(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults To Card", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		assert.Equal(t, ViewCard, svc.ViewMode(ctx, "admin-1"))
	})

	t.Run("Persists Per Owner", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		require.NoError(t, svc.SetViewMode(ctx, "admin-1", ViewTable))
		assert.Equal(t, ViewTable, svc.ViewMode(ctx, "admin-1"))
		assert.Equal(t, ViewCard, svc.ViewMode(ctx, "admin-2"))
	})

	t.Run("Rejects Unknown Mode", func(t *testing.T) {
		svc := NewService(newMemRepo(), preference.NewMemoryStore(0), nil)
		assert.ErrorIs(t, svc.SetViewMode(ctx, "admin-1", "grid"), ErrInvalidView)
	})

	t.Run("Ignores Garbage In Store", func(t *testing.T) {
		store := preference.NewMemoryStore(0)
		require.NoError(t, store.Set(ctx, "admin-1", preference.KeyTeamViewMode, "grid"))
		svc := NewService(newMemRepo(), store, nil)
		assert.Equal(t, ViewCard, svc.ViewMode(ctx, "admin-1"))
	})

	t.Run("Store Failure Degrades", func(t *testing.T) {
		svc := NewService(newMemRepo(), brokenStore{}, nil)
		assert.Equal(t, ViewCard, svc.ViewMode(ctx, "admin-1"))
		assert.NoError(t, svc.SetViewMode(ctx, "admin-1", ViewTable))
	})
}

package roster

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/billing"
	"github.com/nekogravitycat/league-admin-backend/internal/metrics"
	"github.com/nekogravitycat/league-admin-backend/internal/notify"
	"github.com/nekogravitycat/league-admin-backend/internal/preference"
)

const inboxCapacity = 20

// Snapshot is everything an admin's roster screen renders.
type Snapshot struct {
	View
	SearchTerm        string
	IsAnyFilterActive bool
	Notices           []notify.Notice
}

// Session pairs one admin's query state with the loader that serves it.
type Session struct {
	owner  string
	state  *State
	loader *Loader
	inbox  *notify.Inbox
	log    *zap.SugaredLogger
}

// Snapshot returns the committed view plus any notices raised since the last call.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		View:              s.loader.View(),
		SearchTerm:        s.state.SearchTerm(),
		IsAnyFilterActive: s.state.IsAnyFilterActive(),
		Notices:           s.inbox.Drain(),
	}
}

func (s *Session) Query() Query {
	return s.state.Query()
}

// Refresh reloads the current query. A superseded load is not an error.
func (s *Session) Refresh(ctx context.Context) error {
	err := s.loader.Load(ctx, s.owner, s.state.Query())
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}

// SetSearchTerm stores the raw term; the reload happens once the debounce settles.
func (s *Session) SetSearchTerm(ctx context.Context, term string) {
	s.state.SetSearchTerm(ctx, term)
}

func (s *Session) Sort(ctx context.Context, field SortField) error {
	if err := s.state.HandleSort(field); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Session) ToggleFilter(ctx context.Context, key FilterKey) error {
	if err := s.state.HandleFilterChange(ctx, key); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Session) ToggleSportInLeague(ctx context.Context, sportID int64) error {
	if err := s.state.ToggleSportInLeague(ctx, sportID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Session) ToggleSportWithSkill(ctx context.Context, sportID int64) error {
	if err := s.state.ToggleSportWithSkill(ctx, sportID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Session) ClearFilters(ctx context.Context) error {
	s.state.ClearFilters(ctx)
	return s.Refresh(ctx)
}

func (s *Session) ChangePage(ctx context.Context, page int) error {
	if err := s.state.HandlePageChange(page); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Session) ChangePageSize(ctx context.Context, size int) error {
	if err := s.state.HandlePageSizeChange(size); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// ExportAll returns every user matching the current query, ignoring pagination.
func (s *Session) ExportAll(ctx context.Context) ([]User, error) {
	return s.loader.FetchAll(ctx, s.owner, s.state.Query())
}

func (s *Session) close() {
	s.state.Close()
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Source         Source
	Admins         AdminChecker
	Preferences    preference.Store
	Calculator     *billing.Calculator
	StrictRows     bool
	SearchDebounce time.Duration
	PageSize       int
	IdleTTL        time.Duration
	Logger         *zap.SugaredLogger
	Metrics        *metrics.Metrics
}

// Manager keeps one Session per admin and expires idle ones.
type Manager struct {
	cfg      ManagerConfig
	sessions *cache.Cache
	decoder  *RowDecoder
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewUnregistered()
	}
	if cfg.Calculator == nil {
		cfg.Calculator = billing.NewCalculator(billing.DefaultTaxRate)
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}

	m := &Manager{
		cfg:      cfg,
		sessions: cache.New(cfg.IdleTTL, 0),
		decoder:  NewRowDecoder(cfg.Calculator, cfg.StrictRows, cfg.Logger, cfg.Metrics),
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
	}
	m.sessions.OnEvicted(func(owner string, v any) {
		if s, ok := v.(*Session); ok {
			s.close()
		}
		m.log.Debugw("roster session evicted", "owner", owner)
	})
	return m
}

// Session returns the admin's session, creating and loading it on first use.
// Each access extends the idle deadline.
func (m *Manager) Session(ctx context.Context, owner string) (*Session, error) {
	if v, ok := m.sessions.Get(owner); ok {
		s := v.(*Session)
		m.sessions.Set(owner, s, cache.DefaultExpiration)
		return s, nil
	}

	s := m.newSession(ctx, owner)
	if err := m.sessions.Add(owner, s, cache.DefaultExpiration); err != nil {
		// Lost a race with a concurrent first request.
		s.close()
		if v, ok := m.sessions.Get(owner); ok {
			return v.(*Session), nil
		}
		return nil, err
	}
	m.metrics.RosterSessions.Set(float64(m.sessions.ItemCount()))

	if err := s.Refresh(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (m *Manager) newSession(ctx context.Context, owner string) *Session {
	inbox := notify.NewInbox(inboxCapacity)
	log := m.log.With("owner", owner)

	loader := NewLoader(LoaderDeps{
		Source:   m.cfg.Source,
		Admins:   m.cfg.Admins,
		Decoder:  m.decoder,
		Notifier: inbox,
		Logger:   log,
		Metrics:  m.metrics,
	})

	s := &Session{owner: owner, loader: loader, inbox: inbox, log: log}
	s.state = NewState(ctx, StateOptions{
		Owner:          owner,
		Preferences:    m.cfg.Preferences,
		Logger:         log,
		SearchDebounce: m.cfg.SearchDebounce,
		PageSize:       m.cfg.PageSize,
		OnSearchCommitted: func() {
			// The debounce fires after the originating request is gone.
			if err := s.Refresh(context.Background()); err != nil {
				log.Debugw("debounced roster refresh failed", "error", err)
			}
		},
	})
	return s
}

// Drop discards an admin's session, e.g. on logout or account deletion.
func (m *Manager) Drop(owner string) {
	m.sessions.Delete(owner)
	m.metrics.RosterSessions.Set(float64(m.sessions.ItemCount()))
}

// Sweep evicts idle sessions. It is run periodically by the scheduler.
func (m *Manager) Sweep() {
	m.sessions.DeleteExpired()
	m.metrics.RosterSessions.Set(float64(m.sessions.ItemCount()))
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.ItemCount()
}

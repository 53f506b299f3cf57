package roster

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/preference"
)

// Query is an immutable snapshot of what the next listing call should ask for.
type Query struct {
	Search        string
	Filters       Filters
	SortField     SortField
	SortDirection SortDirection
	Page          int
	PageSize      int
}

// Params converts the snapshot into listing procedure arguments.
func (q Query) Params() ListParams {
	return ListParams{
		Limit:              q.PageSize,
		Offset:             (q.Page - 1) * q.PageSize,
		Search:             strings.TrimSpace(q.Search),
		SortField:          q.SortField,
		SortDirection:      q.SortDirection,
		Administrator:      q.Filters.Administrator,
		Facilitator:        q.Filters.Facilitator,
		ActivePlayer:       q.Filters.ActivePlayer,
		PendingUsers:       q.Filters.PendingUsers,
		PlayersNotInLeague: q.Filters.PlayersNotInLeague,
		SportsInLeague:     q.Filters.SportsInLeague,
		SportsWithSkill:    q.Filters.SportsWithSkill,
	}
}

// StateOptions configures a State.
type StateOptions struct {
	Owner          string
	Preferences    preference.Store
	Logger         *zap.SugaredLogger
	SearchDebounce time.Duration
	PageSize       int

	// OnSearchCommitted runs after a debounced search term takes effect.
	OnSearchCommitted func()
}

// State is the single source of truth for the shape of the next roster query.
// Every mutation that changes what would be listed resets the page to 1.
type State struct {
	mu sync.Mutex

	owner string
	prefs preference.Store
	log   *zap.SugaredLogger

	searchTerm      string
	debouncedSearch string
	filters         Filters
	sortField       SortField
	sortDirection   SortDirection
	currentPage     int
	pageSize        int

	debouncer         *Debouncer
	onSearchCommitted func()
}

// NewState restores the persisted search term and filters for the owner.
// Unreadable preferences fall back to defaults.
func NewState(ctx context.Context, opts StateOptions) *State {
	pageSize := opts.PageSize
	if !validPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &State{
		owner:             opts.Owner,
		prefs:             opts.Preferences,
		log:               log,
		filters:           DefaultFilters(),
		sortField:         SortName,
		sortDirection:     SortAsc,
		currentPage:       1,
		pageSize:          pageSize,
		debouncer:         NewDebouncer(opts.SearchDebounce),
		onSearchCommitted: opts.OnSearchCommitted,
	}
	s.restore(ctx)
	return s
}

func (s *State) restore(ctx context.Context) {
	if s.prefs == nil {
		return
	}

	if term, err := s.prefs.Get(ctx, s.owner, preference.KeyRosterSearch); err == nil {
		s.searchTerm = term
		s.debouncedSearch = term
	} else if !errors.Is(err, preference.ErrNotFound) {
		s.log.Warnw("failed to restore roster search term", "owner", s.owner, "error", err)
	}

	raw, err := s.prefs.Get(ctx, s.owner, preference.KeyRosterFilters)
	switch {
	case err == nil:
		var f Filters
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			s.log.Warnw("ignoring unreadable roster filters", "owner", s.owner, "error", err)
			return
		}
		s.filters = f.normalize()
	case !errors.Is(err, preference.ErrNotFound):
		s.log.Warnw("failed to restore roster filters", "owner", s.owner, "error", err)
	}
}

// Query returns a snapshot of the current query shape.
func (s *State) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Query{
		Search:        s.debouncedSearch,
		Filters:       s.filters.Clone(),
		SortField:     s.sortField,
		SortDirection: s.sortDirection,
		Page:          s.currentPage,
		PageSize:      s.pageSize,
	}
}

// SearchTerm returns the raw, not yet debounced, search input.
func (s *State) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// SetSearchTerm records the raw input immediately and schedules the debounced
// value that actually drives the query.
func (s *State) SetSearchTerm(ctx context.Context, term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()

	s.persist(ctx, preference.KeyRosterSearch, term)
	s.debouncer.Trigger(func() { s.commitSearch(term) })
}

func (s *State) commitSearch(term string) {
	s.mu.Lock()
	changed := s.debouncedSearch != term
	if changed {
		s.debouncedSearch = term
		s.currentPage = 1
	}
	s.mu.Unlock()

	if changed && s.onSearchCommitted != nil {
		s.onSearchCommitted()
	}
}

// HandleSort flips direction on the current field, otherwise sorts ascending by the new one.
func (s *State) HandleSort(field SortField) error {
	if !field.Valid() {
		return ErrUnknownSort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sortField == field {
		s.sortDirection = s.sortDirection.Flip()
	} else {
		s.sortField = field
		s.sortDirection = SortAsc
	}
	s.currentPage = 1
	return nil
}

// HandleFilterChange flips one boolean filter.
func (s *State) HandleFilterChange(ctx context.Context, key FilterKey) error {
	s.mu.Lock()
	if err := s.filters.Toggle(key); err != nil {
		s.mu.Unlock()
		return err
	}
	s.currentPage = 1
	snapshot := s.filters.Clone()
	s.mu.Unlock()

	s.persistFilters(ctx, snapshot)
	return nil
}

// ToggleSportInLeague adds or removes a sport from the "plays in a league of" set.
func (s *State) ToggleSportInLeague(ctx context.Context, sportID int64) error {
	return s.toggleSport(ctx, sportID, func(f *Filters) *[]int64 { return &f.SportsInLeague })
}

// ToggleSportWithSkill adds or removes a sport from the "has a skill rating in" set.
func (s *State) ToggleSportWithSkill(ctx context.Context, sportID int64) error {
	return s.toggleSport(ctx, sportID, func(f *Filters) *[]int64 { return &f.SportsWithSkill })
}

func (s *State) toggleSport(ctx context.Context, sportID int64, set func(*Filters) *[]int64) error {
	if sportID <= 0 {
		return ErrInvalidSportID
	}

	s.mu.Lock()
	target := set(&s.filters)
	*target = toggleMember(*target, sportID)
	s.currentPage = 1
	snapshot := s.filters.Clone()
	s.mu.Unlock()

	s.persistFilters(ctx, snapshot)
	return nil
}

// ClearFilters resets every filter to its default and returns to page 1.
func (s *State) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	s.filters = DefaultFilters()
	s.currentPage = 1
	s.mu.Unlock()

	s.persistFilters(ctx, DefaultFilters())
}

// IsAnyFilterActive reports whether the roster is currently narrowed by a filter.
func (s *State) IsAnyFilterActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.IsAnyActive()
}

// HandlePageChange moves to another page without touching filters.
func (s *State) HandlePageChange(page int) error {
	if page < 1 {
		return ErrInvalidPage
	}

	s.mu.Lock()
	s.currentPage = page
	s.mu.Unlock()
	return nil
}

// HandlePageSizeChange changes the page size and returns to page 1.
func (s *State) HandlePageSizeChange(size int) error {
	if !validPageSize(size) {
		return ErrInvalidPageSize
	}

	s.mu.Lock()
	s.pageSize = size
	s.currentPage = 1
	s.mu.Unlock()
	return nil
}

// Close cancels a pending debounced search.
func (s *State) Close() {
	s.debouncer.Stop()
}

func (s *State) persistFilters(ctx context.Context, f Filters) {
	data, err := json.Marshal(f.normalize())
	if err != nil {
		s.log.Warnw("failed to encode roster filters", "owner", s.owner, "error", err)
		return
	}
	s.persist(ctx, preference.KeyRosterFilters, string(data))
}

// persist is best effort; storage failures only degrade to in-memory state.
func (s *State) persist(ctx context.Context, key, value string) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Set(ctx, s.owner, key, value); err != nil {
		s.log.Warnw("failed to persist roster preference", "owner", s.owner, "key", key, "error", err)
	}
}

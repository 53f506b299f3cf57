package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/metrics"
	"github.com/nekogravitycat/league-admin-backend/internal/notify"
)

const (
	msgLoadFailed   = "Failed to load users"
	msgAccessDenied = "You do not have permission to view users"
	exportPageSize  = 500
)

// Source is the paginated listing procedure.
type Source interface {
	ListUsers(ctx context.Context, params ListParams) ([]Row, error)
}

// AdminChecker answers the caller's own admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AdminCheckerFunc adapts a function to AdminChecker.
type AdminCheckerFunc func(ctx context.Context, userID string) (bool, error)

func (f AdminCheckerFunc) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return f(ctx, userID)
}

// Loader issues one listing call per query change and commits the result.
// Every call takes a sequence number; only the latest one may commit, and
// starting a new call cancels the previous one.
type Loader struct {
	source   Source
	admins   AdminChecker
	decoder  *RowDecoder
	notifier notify.Dispatcher
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
	now      func() time.Time

	seq atomic.Uint64

	mu       sync.Mutex
	cancel   context.CancelFunc
	inFlight int
	view     View
}

// LoaderDeps bundles the Loader's collaborators.
type LoaderDeps struct {
	Source   Source
	Admins   AdminChecker
	Decoder  *RowDecoder
	Notifier notify.Dispatcher
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Metrics
}

func NewLoader(deps LoaderDeps) *Loader {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewUnregistered()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.DispatcherFunc(func(notify.Level, string) {})
	}

	return &Loader{
		source:   deps.Source,
		admins:   deps.Admins,
		decoder:  deps.Decoder,
		notifier: notifier,
		log:      log,
		metrics:  m,
		now:      time.Now,
		view:     View{Users: []User{}},
	}
}

// View returns the last committed page.
func (l *Loader) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := l.view
	v.Users = append([]User(nil), l.view.Users...)
	v.Loading = l.inFlight > 0
	return v
}

// Load runs the admin self-check and the listing call for q on behalf of callerID.
// Failures are reported through the notifier and leave the previous page in place.
// ErrStale is returned when a newer Load superseded this one.
func (l *Loader) Load(ctx context.Context, callerID string, q Query) error {
	seq, ctx, done := l.begin(ctx)
	defer done()

	if err := l.checkAdmin(ctx, callerID); err != nil {
		if l.isStale(seq) {
			l.metrics.RosterStale.Inc()
			return ErrStale
		}
		if errors.Is(err, ErrForbidden) {
			return l.deny()
		}
		return err
	}

	start := l.now()
	rows, err := l.source.ListUsers(ctx, q.Params())
	l.metrics.RosterFetchDuration.Observe(l.now().Sub(start).Seconds())
	if err != nil {
		if l.isStale(seq) {
			l.metrics.RosterStale.Inc()
			return ErrStale
		}
		return l.fail(callerID, fmt.Errorf("list users: %w", err))
	}

	users, total, err := l.decoder.Decode(rows)
	if err != nil {
		if l.isStale(seq) {
			l.metrics.RosterStale.Inc()
			return ErrStale
		}
		return l.fail(callerID, err)
	}

	if !l.commit(seq, q, users, total) {
		l.metrics.RosterStale.Inc()
		return ErrStale
	}
	l.metrics.RosterFetches.WithLabelValues("ok").Inc()
	return nil
}

// FetchAll collects every row matching q regardless of its page, for exports.
// It does not touch the committed view.
func (l *Loader) FetchAll(ctx context.Context, callerID string, q Query) ([]User, error) {
	if err := l.checkAdmin(ctx, callerID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return nil, l.deny()
		}
		return nil, err
	}

	params := q.Params()
	params.Limit = exportPageSize
	params.Offset = 0

	var all []User
	for {
		rows, err := l.source.ListUsers(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list users for export: %w", err)
		}
		users, total, err := l.decoder.Decode(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, users...)

		params.Offset += len(rows)
		if len(rows) == 0 || params.Offset >= total {
			break
		}
	}

	if all == nil {
		all = []User{}
	}
	return all, nil
}

func (l *Loader) begin(ctx context.Context) (uint64, context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	seq := l.seq.Add(1)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.inFlight++
	l.mu.Unlock()

	return seq, ctx, func() {
		l.mu.Lock()
		l.inFlight--
		l.mu.Unlock()
		cancel()
	}
}

// checkAdmin returns ErrForbidden when the caller is not an admin or the
// lookup fails. It does not notify; callers decide once staleness is known.
func (l *Loader) checkAdmin(ctx context.Context, callerID string) error {
	ok, err := l.admins.IsAdmin(ctx, callerID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		l.log.Errorw("roster admin self-check failed", "caller", callerID, "error", err)
		return ErrForbidden
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (l *Loader) deny() error {
	l.metrics.RosterFetches.WithLabelValues("forbidden").Inc()
	l.notifier.Notify(notify.LevelError, msgAccessDenied)
	return ErrForbidden
}

func (l *Loader) fail(callerID string, err error) error {
	l.log.Errorw("roster fetch failed", "caller", callerID, "error", err)
	l.metrics.RosterFetches.WithLabelValues("error").Inc()
	l.notifier.Notify(notify.LevelError, msgLoadFailed)
	return err
}

func (l *Loader) isStale(seq uint64) bool {
	return l.seq.Load() != seq
}

// commit swaps in the new page and totals together, but only for the latest request.
func (l *Loader) commit(seq uint64, q Query, users []User, total int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seq.Load() != seq {
		return false
	}

	l.view = View{
		Users:      users,
		Pagination: NewPagination(q.Page, q.PageSize, total),
		Query:      q,
		Loaded:     true,
		FetchedAt:  l.now().UTC(),
	}
	return true
}

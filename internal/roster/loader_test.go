package roster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/league-admin-backend/internal/notify"
)

func newTestLoader(src Source, admins AdminChecker, n notify.Dispatcher) *Loader {
	return NewLoader(LoaderDeps{
		Source:   src,
		Admins:   admins,
		Decoder:  newTestDecoder(false),
		Notifier: n,
	})
}

func defaultQuery() Query {
	return Query{Filters: DefaultFilters(), SortField: SortName, SortDirection: SortAsc, Page: 1, PageSize: 25}
}

func TestLoaderLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits Users And Totals", func(t *testing.T) {
		src := &fakeSource{rows: mixedRows()}
		l := newTestLoader(src, allowAll(), nil)

		require.NoError(t, l.Load(ctx, testOwner, defaultQuery()))

		v := l.View()
		assert.True(t, v.Loaded)
		assert.False(t, v.Loading)
		assert.Len(t, v.Users, 3)
		assert.Equal(t, 3, v.Pagination.TotalItems)
		assert.Equal(t, 1, v.Pagination.TotalPages)
		assert.Equal(t, 25, src.calls[0].Limit)
		assert.Equal(t, 0, src.calls[0].Offset)
	})

	t.Run("Empty Roster", func(t *testing.T) {
		l := newTestLoader(&fakeSource{}, allowAll(), nil)
		require.NoError(t, l.Load(ctx, testOwner, defaultQuery()))

		v := l.View()
		assert.Empty(t, v.Users)
		assert.Zero(t, v.Pagination.TotalItems)
		assert.Zero(t, v.Pagination.TotalPages)
		assert.Empty(t, v.PageNumbers())
		from, to, total := v.Showing()
		assert.Equal(t, [3]int{0, 0, 0}, [3]int{from, to, total})
	})

	t.Run("Failure Keeps Previous Page", func(t *testing.T) {
		src := &fakeSource{rows: mixedRows()}
		n := &recordingNotifier{}
		l := newTestLoader(src, allowAll(), n)
		require.NoError(t, l.Load(ctx, testOwner, defaultQuery()))
		before := l.View()

		src.mu.Lock()
		src.err = errors.New("connection reset")
		src.mu.Unlock()

		next := defaultQuery()
		next.Page = 2
		assert.Error(t, l.Load(ctx, testOwner, next))

		after := l.View()
		assert.Equal(t, before.Users, after.Users)
		assert.Equal(t, before.Pagination, after.Pagination)
		require.Len(t, n.all(), 1)
		assert.Equal(t, notify.LevelError, n.all()[0].Level)
		assert.Equal(t, "Failed to load users", n.all()[0].Message)
	})

	t.Run("Non Admin Is Rejected Before Listing", func(t *testing.T) {
		src := &fakeSource{rows: mixedRows()}
		n := &recordingNotifier{}
		l := newTestLoader(src, denyAll(), n)

		err := l.Load(ctx, testOwner, defaultQuery())
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Zero(t, src.callCount(), "listing must not be called")
		assert.False(t, l.View().Loaded)
		require.Len(t, n.all(), 1)
		assert.Equal(t, notify.LevelError, n.all()[0].Level)
	})

	t.Run("Admin Check Error Is Rejected", func(t *testing.T) {
		src := &fakeSource{}
		admins := AdminCheckerFunc(func(context.Context, string) (bool, error) {
			return false, errors.New("profile lookup failed")
		})
		l := newTestLoader(src, admins, nil)

		assert.ErrorIs(t, l.Load(ctx, testOwner, defaultQuery()), ErrForbidden)
		assert.Zero(t, src.callCount())
	})
}

func TestLoaderDiscardsStaleResponses(t *testing.T) {
	ctx := context.Background()
	slow := &fakeSource{rows: mixedRows(), block: make(chan struct{})}
	l := newTestLoader(slow, allowAll(), nil)

	done := make(chan error, 1)
	go func() { done <- l.Load(ctx, testOwner, defaultQuery()) }()

	require.Eventually(t, func() bool { return slow.callCount() == 1 }, time.Second, time.Millisecond)

	// A newer request supersedes and cancels the slow one.
	slow.mu.Lock()
	slow.block = nil
	slow.rows = []Row{profileRow(1, bothID, "Newest", "new@example.com")}
	slow.mu.Unlock()

	require.NoError(t, l.Load(ctx, testOwner, defaultQuery()))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(time.Second):
		t.Fatal("superseded load did not return")
	}

	v := l.View()
	require.Len(t, v.Users, 1)
	assert.Equal(t, "Newest", *v.Users[0].Name)
	assert.Equal(t, 1, v.Pagination.TotalItems)
}

// sequencedSource answers the first call only once release is closed,
// ignoring cancellation, and every later call immediately.
type sequencedSource struct {
	mu      sync.Mutex
	calls   int
	first   []Row
	later   []Row
	release chan struct{}
}

func (s *sequencedSource) ListUsers(_ context.Context, _ ListParams) ([]Row, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	if n == 1 {
		<-s.release
		return s.first, nil
	}
	return s.later, nil
}

func (s *sequencedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestLoaderSupersededFailuresStaySilent(t *testing.T) {
	ctx := context.Background()

	t.Run("Malformed Rows In Superseded Response", func(t *testing.T) {
		src := &sequencedSource{
			first:   []Row{{TotalCount: 1, Status: string(StatusActive)}},
			later:   []Row{profileRow(1, bothID, "Newest", "new@example.com")},
			release: make(chan struct{}),
		}
		n := &recordingNotifier{}
		l := NewLoader(LoaderDeps{
			Source:   src,
			Admins:   allowAll(),
			Decoder:  newTestDecoder(true),
			Notifier: n,
		})

		done := make(chan error, 1)
		go func() { done <- l.Load(ctx, testOwner, defaultQuery()) }()
		require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)

		require.NoError(t, l.Load(ctx, testOwner, defaultQuery()))
		close(src.release)

		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrStale)
		case <-time.After(time.Second):
			t.Fatal("superseded load did not return")
		}

		assert.Empty(t, n.all())
		v := l.View()
		require.Len(t, v.Users, 1)
		assert.Equal(t, "Newest", *v.Users[0].Name)
	})

	t.Run("Denied Admin Check In Superseded Request", func(t *testing.T) {
		release := make(chan struct{})
		var checks atomic.Int32
		admins := AdminCheckerFunc(func(context.Context, string) (bool, error) {
			if checks.Add(1) == 1 {
				<-release
				return false, nil
			}
			return true, nil
		})
		n := &recordingNotifier{}
		l := newTestLoader(&fakeSource{rows: mixedRows()}, admins, n)

		done := make(chan error, 1)
		go func() { done <- l.Load(ctx, testOwner, defaultQuery()) }()
		require.Eventually(t, func() bool { return checks.Load() == 1 }, time.Second, time.Millisecond)

		require.NoError(t, l.Load(ctx, testOwner, defaultQuery()))
		close(release)

		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrStale)
		case <-time.After(time.Second):
			t.Fatal("superseded load did not return")
		}

		assert.Empty(t, n.all())
		assert.Len(t, l.View().Users, 3)
	})
}

func TestLoaderFetchAll(t *testing.T) {
	src := &fakeSource{rows: mixedRows()}
	l := newTestLoader(src, allowAll(), nil)

	q := defaultQuery()
	q.Page = 3
	users, err := l.FetchAll(context.Background(), testOwner, q)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, 0, src.calls[0].Offset, "export ignores the current page")
	assert.False(t, l.View().Loaded, "export does not touch the committed view")
}

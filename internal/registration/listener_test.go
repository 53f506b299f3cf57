package registration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byID   map[int64]*Registration
	err    error
	recent []*Registration
}

func (f *fakeRepo) GetByPaymentID(_ context.Context, id int64) (*Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) ListRecent(_ context.Context, limit int) ([]*Registration, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func TestListenerHandle(t *testing.T) {
	ctx := context.Background()
	name := "Jane"
	repo := &fakeRepo{byID: map[int64]*Registration{
		42: {PaymentID: 42, UserName: &name, LeagueName: "Tuesday Volleyball", AmountDue: decimal.RequireFromString("250")},
	}}

	t.Run("Prepends New Payment", func(t *testing.T) {
		feed := NewFeed(50)
		l := NewListener(ListenerDeps{Repository: repo, Feed: feed})

		l.Handle(ctx, "42")
		require.Equal(t, 1, feed.Len())
		assert.Equal(t, "282.50", feed.Snapshot()[0].TotalOwed.StringFixed(2))

		l.Handle(ctx, "42")
		assert.Equal(t, 1, feed.Len(), "repeated notification is ignored")
	})

	t.Run("Bad Payloads Are Skipped", func(t *testing.T) {
		feed := NewFeed(50)
		l := NewListener(ListenerDeps{Repository: repo, Feed: feed})

		l.Handle(ctx, "not-a-number")
		l.Handle(ctx, "7")
		assert.Zero(t, feed.Len())
	})

	t.Run("Repository Error", func(t *testing.T) {
		feed := NewFeed(50)
		l := NewListener(ListenerDeps{Repository: &fakeRepo{err: errors.New("db down")}, Feed: feed})

		l.Handle(ctx, "42")
		assert.Zero(t, feed.Len())
	})
}

func TestListenerFill(t *testing.T) {
	repo := &fakeRepo{recent: []*Registration{
		{PaymentID: 3, AmountDue: decimal.RequireFromString("100")},
		{PaymentID: 2},
		{PaymentID: 1},
	}}
	feed := NewFeed(2)
	l := NewListener(ListenerDeps{Repository: repo, Feed: feed})

	require.NoError(t, l.Fill(context.Background()))
	got := feed.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "113.00", got[0].TotalOwed.StringFixed(2))
}

// stalledRepo takes its ListRecent snapshot, signals fetched and then
// waits for release before answering.
type stalledRepo struct {
	*fakeRepo
	fetched chan struct{}
	release chan struct{}
}

func (s *stalledRepo) ListRecent(ctx context.Context, limit int) ([]*Registration, error) {
	out, err := s.fakeRepo.ListRecent(ctx, limit)
	close(s.fetched)
	<-s.release
	return out, err
}

func TestListenerFillKeepsConcurrentArrivals(t *testing.T) {
	ctx := context.Background()
	repo := &stalledRepo{
		fakeRepo: &fakeRepo{
			recent: []*Registration{{PaymentID: 1}},
			byID:   map[int64]*Registration{2: {PaymentID: 2, LeagueName: "Thursday Hockey"}},
		},
		fetched: make(chan struct{}),
		release: make(chan struct{}),
	}
	feed := NewFeed(50)
	l := NewListener(ListenerDeps{Repository: repo, Feed: feed})

	done := make(chan error, 1)
	go func() { done <- l.Fill(ctx) }()

	<-repo.fetched
	l.Handle(ctx, "2")
	require.Equal(t, 1, feed.Len())
	close(repo.release)
	require.NoError(t, <-done)

	assert.Equal(t, []int64{2, 1}, paymentIDs(feed.Snapshot()))
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	repo := &fakeRepo{byID: map[int64]*Registration{9: {PaymentID: 9, LeagueName: "Sunday Soccer"}}}
	l := NewListener(ListenerDeps{Repository: repo, Feed: NewFeed(5), Hub: hub})
	l.Handle(context.Background(), "9")

	var msg struct {
		Type    string `json:"type"`
		Payload View   `json:"payload"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventCreated, msg.Type)
	assert.Equal(t, int64(9), msg.Payload.PaymentID)
	assert.Equal(t, "Sunday Soccer", msg.Payload.LeagueName)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

package registration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/billing"
	"github.com/nekogravitycat/league-admin-backend/internal/metrics"
)

// Channel is the Postgres NOTIFY channel raised for every new league payment.
const Channel = "league_payment_inserted"

// EventCreated is the stream message type for a new registration.
const EventCreated = "registration.created"

// Listener turns payment insert notifications into feed entries and stream messages.
type Listener struct {
	pool    *pgxpool.Pool
	repo    Repository
	feed    *Feed
	hub     *Hub
	calc    *billing.Calculator
	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	newBackOff func() backoff.BackOff
}

// ListenerDeps bundles the Listener's collaborators.
type ListenerDeps struct {
	Pool       *pgxpool.Pool
	Repository Repository
	Feed       *Feed
	Hub        *Hub
	Calculator *billing.Calculator
	Logger     *zap.SugaredLogger
	Metrics    *metrics.Metrics
}

func NewListener(deps ListenerDeps) *Listener {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewUnregistered()
	}
	calc := deps.Calculator
	if calc == nil {
		calc = billing.NewCalculator(billing.DefaultTaxRate)
	}

	return &Listener{
		pool:    deps.Pool,
		repo:    deps.Repository,
		feed:    deps.Feed,
		hub:     deps.Hub,
		calc:    calc,
		log:     log,
		metrics: m,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Fill loads the latest registrations into the feed.
func (l *Listener) Fill(ctx context.Context) error {
	mark := l.feed.Mark()
	recent, err := l.repo.ListRecent(ctx, l.feed.Cap())
	if err != nil {
		return fmt.Errorf("fill registration feed: %w", err)
	}
	for _, r := range recent {
		r.TotalOwed = l.calc.Owed(r.AmountDue)
	}
	l.feed.Replace(mark, recent)
	return nil
}

// Run listens until ctx is cancelled, reconnecting with exponential backoff.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.Fill(ctx); err != nil {
		l.log.Warnw("initial registration feed fill failed", "error", err)
	}

	b := backoff.WithContext(l.newBackOff(), ctx)
	for {
		err := l.listen(ctx, b.Reset)
		if ctx.Err() != nil {
			return nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("registration listener gave up: %w", err)
		}
		l.log.Warnw("registration listener disconnected, retrying", "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// listen holds one connection in LISTEN mode. connected runs once the
// subscription is established.
func (l *Listener) listen(ctx context.Context, connected func()) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	connected()
	l.log.Infow("listening for registrations", "channel", Channel)

	// Entries inserted while disconnected would otherwise be missed.
	if err := l.Fill(ctx); err != nil {
		l.log.Warnw("registration feed refill failed", "error", err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.Handle(ctx, n.Payload)
	}
}

// Handle processes one notification payload, the new payment id.
func (l *Listener) Handle(ctx context.Context, payload string) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		l.metrics.FeedEvents.WithLabelValues("invalid").Inc()
		l.log.Warnw("ignoring malformed registration notification", "payload", payload)
		return
	}

	reg, err := l.repo.GetByPaymentID(ctx, id)
	if err != nil {
		l.metrics.FeedEvents.WithLabelValues("error").Inc()
		if errors.Is(err, ErrNotFound) {
			l.log.Warnw("notified payment no longer exists", "payment_id", id)
			return
		}
		l.log.Errorw("failed to load registration", "payment_id", id, "error", err)
		return
	}
	reg.TotalOwed = l.calc.Owed(reg.AmountDue)

	if !l.feed.Prepend(*reg) {
		l.metrics.FeedEvents.WithLabelValues("duplicate").Inc()
		return
	}
	l.metrics.FeedEvents.WithLabelValues("ok").Inc()

	if l.hub != nil {
		l.hub.Broadcast(EventCreated, NewView(*reg))
	}
}

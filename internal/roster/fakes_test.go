package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/league-admin-backend/internal/billing"
	"github.com/nekogravitycat/league-admin-backend/internal/notify"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []ListParams
	rows  []Row
	err   error

	// block, when set, is waited on before answering.
	block chan struct{}
}

func (f *fakeSource) ListUsers(ctx context.Context, params ListParams) ([]Row, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	rows, err, block := f.rows, f.err, f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rows, err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *recordingNotifier) Notify(level notify.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notify.Notice{Level: level, Message: message})
}

func (r *recordingNotifier) all() []notify.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notice(nil), r.notices...)
}

type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Get(context.Context, string, string) (string, error) {
	return "", errStoreDown
}

func (failingStore) Set(context.Context, string, string, string) error {
	return errStoreDown
}

func (failingStore) Clear(context.Context, string, string) error {
	return errStoreDown
}

func allowAll() AdminChecker {
	return AdminCheckerFunc(func(context.Context, string) (bool, error) { return true, nil })
}

func denyAll() AdminChecker {
	return AdminCheckerFunc(func(context.Context, string) (bool, error) { return false, nil })
}

func strPtr(s string) *string { return &s }

func newTestDecoder(strict bool) *RowDecoder {
	return NewRowDecoder(billing.NewCalculator(billing.DefaultTaxRate), strict, nil, nil)
}

func profileRow(total int64, id, name, email string) Row {
	return Row{
		TotalCount: total,
		ProfileID:  strPtr(id),
		AuthID:     strPtr(id),
		Name:       strPtr(name),
		Email:      strPtr(email),
		Status:     string(StatusActive),
		AmountDue:  decimal.Zero,
		AmountPaid: decimal.Zero,
	}
}

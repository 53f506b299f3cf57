package roster

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nekogravitycat/league-admin-backend/internal/billing"
	"github.com/nekogravitycat/league-admin-backend/internal/metrics"
)

// RowDecoder validates listing rows at the boundary and maps them to Users.
// In strict mode any malformed row fails the whole page; otherwise the row
// is logged and skipped.
type RowDecoder struct {
	validate *validator.Validate
	calc     *billing.Calculator
	strict   bool
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

func NewRowDecoder(calc *billing.Calculator, strict bool, log *zap.SugaredLogger, m *metrics.Metrics) *RowDecoder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	return &RowDecoder{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		calc:     calc,
		strict:   strict,
		log:      log,
		metrics:  m,
	}
}

// Decode returns the mapped users and the total match count taken from the first row.
func (d *RowDecoder) Decode(rows []Row) ([]User, int, error) {
	users := make([]User, 0, len(rows))
	if len(rows) == 0 {
		return users, 0, nil
	}

	total := int(rows[0].TotalCount)

	for i, row := range rows {
		u, err := d.decodeRow(row)
		if err != nil {
			if d.strict {
				return nil, 0, fmt.Errorf("row %d: %w", i, err)
			}
			d.metrics.RosterRowsDropped.Inc()
			d.log.Warnw("dropping malformed roster row", "index", i, "error", err)
			continue
		}
		users = append(users, u)
	}

	return users, total, nil
}

func (d *RowDecoder) decodeRow(row Row) (User, error) {
	id := resolveID(row)
	if id == "" {
		return User{}, fmt.Errorf("%w: neither profile id nor auth id present", ErrMalformedRow)
	}
	if err := d.validate.Struct(row); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}

	owed := d.calc.Owed(row.AmountDue)

	return User{
		ID:            id,
		ProfileID:     row.ProfileID,
		AuthID:        row.AuthID,
		Name:          row.Name,
		Email:         row.Email,
		Phone:         row.Phone,
		IsAdmin:       row.IsAdmin,
		IsFacilitator: row.IsFacilitator,
		TeamIDs:       nonNil(row.TeamIDs),
		LeagueIDs:     nonNil(row.LeagueIDs),
		Status:        clientStatus(row.Status),
		TotalOwed:     owed,
		TotalPaid:     row.AmountPaid.Round(2),
	}, nil
}

// resolveID prefers the profile id and falls back to the auth identity.
func resolveID(row Row) string {
	if row.ProfileID != nil && *row.ProfileID != "" {
		return *row.ProfileID
	}
	if row.AuthID != nil && *row.AuthID != "" {
		return *row.AuthID
	}
	return ""
}

// clientStatus folds server-side statuses into what the roster displays.
// A confirmed identity that never created a profile is shown as pending.
func clientStatus(s string) Status {
	if Status(s) == StatusConfirmedNoProfile {
		return StatusPending
	}
	return Status(s)
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

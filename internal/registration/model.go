package registration

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("registration not found")

// EmptyFeedMessage is shown when no registrations have arrived yet.
const EmptyFeedMessage = "No individual registrations yet"

// Registration is one league payment row joined with who registered and where.
type Registration struct {
	PaymentID  int64
	UserID     string
	UserName   *string
	UserEmail  *string
	LeagueID   int64
	LeagueName string
	TeamID     *int64
	TeamName   *string
	AmountDue  decimal.Decimal
	AmountPaid decimal.Decimal
	TotalOwed  decimal.Decimal
	CreatedAt  time.Time
}

package roster

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
)

var (
	ErrForbidden       = apperror.New(http.StatusForbidden, "administrator access required")
	ErrUnknownFilter   = apperror.New(http.StatusBadRequest, "unknown filter")
	ErrUnknownSort     = apperror.New(http.StatusBadRequest, "unknown sort field")
	ErrInvalidPage     = apperror.New(http.StatusBadRequest, "page must be at least 1")
	ErrInvalidPageSize = apperror.New(http.StatusBadRequest, "page size must be between 1 and 200")
	ErrInvalidSportID  = apperror.New(http.StatusBadRequest, "invalid sport id")
	ErrUnknownColumn   = apperror.New(http.StatusBadRequest, "unknown export column")

	// ErrMalformedRow is returned in strict mode when the listing procedure
	// returns a row that fails validation.
	ErrMalformedRow = errors.New("malformed roster row")

	// ErrStale marks a response that was superseded by a newer request and discarded.
	ErrStale = errors.New("roster response superseded")
)

// Status is the client-facing account state of a roster entry.
type Status string

const (
	StatusActive             Status = "active"
	StatusPending            Status = "pending"
	StatusUnconfirmed        Status = "unconfirmed"
	StatusConfirmedNoProfile Status = "confirmed_no_profile"
	StatusProfileIncomplete  Status = "profile_incomplete"
)

// User is the denormalized roster projection of a profile and/or auth identity.
type User struct {
	ID            string
	ProfileID     *string
	AuthID        *string
	Name          *string
	Email         *string
	Phone         *string
	IsAdmin       bool
	IsFacilitator bool
	TeamIDs       []int64
	LeagueIDs     []int64
	Status        Status
	TotalOwed     decimal.Decimal
	TotalPaid     decimal.Decimal
}

// Row is one record returned by the paginated listing procedure.
// TotalCount repeats the full match count on every row.
type Row struct {
	TotalCount    int64   `validate:"gte=0"`
	ProfileID     *string `validate:"omitempty,uuid"`
	AuthID        *string `validate:"omitempty,uuid"`
	Name          *string
	Email         *string `validate:"omitempty,email"`
	Phone         *string
	IsAdmin       bool
	IsFacilitator bool
	TeamIDs       []int64
	LeagueIDs     []int64
	Status        string `validate:"required,oneof=active pending unconfirmed confirmed_no_profile profile_incomplete"`
	AmountDue     decimal.Decimal
	AmountPaid    decimal.Decimal
}

// ListParams is the full argument list of the paginated listing procedure.
type ListParams struct {
	Limit              int
	Offset             int
	Search             string
	SortField          SortField
	SortDirection      SortDirection
	Administrator      bool
	Facilitator        bool
	ActivePlayer       bool
	PendingUsers       bool
	PlayersNotInLeague bool
	SportsInLeague     []int64
	SportsWithSkill    []int64
}

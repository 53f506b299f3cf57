package facilitator

import (
	"errors"
	"net/http"

	"github.com/nekogravitycat/league-admin-backend/internal/pkg/apperror"
)

var (
	ErrLeagueNotFound = apperror.New(http.StatusNotFound, "league not found")
	ErrNoFacilitators = apperror.New(http.StatusConflict, "no active facilitators to assign")
	ErrNoTiers        = apperror.New(http.StatusConflict, "league has no tiers")
	errNilRepository  = errors.New("facilitator repository is required")
)

// Tier is one ranked bracket of a league. Position orders tiers within the league.
type Tier struct {
	ID            int64
	LeagueID      int64
	Position      int
	FacilitatorID *string
}

// Facilitator is a profile flagged as able to run tiers.
type Facilitator struct {
	ID    string
	Name  string
	Email string
}

// Assignment pairs a tier with the facilitator given to it.
type Assignment struct {
	TierID        int64
	Position      int
	FacilitatorID string
	Name          string
}

package roster

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	profileOnlyID = "22222222-2222-2222-2222-222222222222"
	authOnlyID    = "33333333-3333-3333-3333-333333333333"
	bothID        = "44444444-4444-4444-4444-444444444444"
)

func mixedRows() []Row {
	return []Row{
		{
			TotalCount: 3,
			ProfileID:  strPtr(profileOnlyID),
			Name:       strPtr("Profile Person"),
			Email:      strPtr("profile@example.com"),
			Status:     string(StatusProfileIncomplete),
		},
		{
			TotalCount: 3,
			AuthID:     strPtr(authOnlyID),
			Email:      strPtr("auth.user1@example.com"),
			Status:     string(StatusConfirmedNoProfile),
		},
		{
			TotalCount:    3,
			ProfileID:     strPtr(bothID),
			AuthID:        strPtr(bothID),
			Name:          strPtr("Both Sides"),
			Email:         strPtr("both@example.com"),
			Phone:         strPtr("555-0100"),
			IsFacilitator: true,
			TeamIDs:       []int64{4, 9},
			LeagueIDs:     []int64{2},
			Status:        string(StatusActive),
			AmountDue:     decimal.RequireFromString("400"),
			AmountPaid:    decimal.RequireFromString("400"),
		},
	}
}

func TestDecodeMixedRows(t *testing.T) {
	users, total, err := newTestDecoder(true).Decode(mixedRows())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, 3, total)

	t.Run("Profile Only", func(t *testing.T) {
		u := users[0]
		assert.Equal(t, profileOnlyID, u.ID)
		assert.Nil(t, u.AuthID)
		assert.Equal(t, StatusProfileIncomplete, u.Status)
		assert.Equal(t, []int64{}, u.TeamIDs)
	})

	t.Run("Auth Only", func(t *testing.T) {
		u := users[1]
		assert.Equal(t, authOnlyID, u.ID, "id falls back to the auth identity")
		assert.Nil(t, u.ProfileID)
		assert.Nil(t, u.Name)
		assert.Equal(t, "auth.user1@example.com", *u.Email)
		assert.Equal(t, StatusPending, u.Status, "confirmed identity without profile shows as pending")
	})

	t.Run("Both", func(t *testing.T) {
		u := users[2]
		assert.Equal(t, bothID, u.ID)
		assert.True(t, u.IsFacilitator)
		assert.Equal(t, []int64{4, 9}, u.TeamIDs)
		assert.Equal(t, "452.00", u.TotalOwed.StringFixed(2))
		assert.Equal(t, "400.00", u.TotalPaid.StringFixed(2))
	})
}

func TestDecodeEmpty(t *testing.T) {
	users, total, err := newTestDecoder(true).Decode(nil)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.Zero(t, total)
}

func TestDecodeMalformedRows(t *testing.T) {
	noID := Row{TotalCount: 2, Email: strPtr("ghost@example.com"), Status: string(StatusPending)}
	badStatus := profileRow(2, bothID, "Bad", "bad@example.com")
	badStatus.Status = "archived"

	rows := []Row{noID, profileRow(2, profileOnlyID, "Good", "good@example.com"), badStatus}

	t.Run("Lenient Drops", func(t *testing.T) {
		users, total, err := newTestDecoder(false).Decode(rows)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, profileOnlyID, users[0].ID)
		assert.Equal(t, 2, total, "total still comes from the first row")
	})

	t.Run("Strict Fails", func(t *testing.T) {
		_, _, err := newTestDecoder(true).Decode(rows)
		assert.ErrorIs(t, err, ErrMalformedRow)
	})

	t.Run("Invalid UUID", func(t *testing.T) {
		r := profileRow(1, "not-a-uuid", "X", "x@example.com")
		_, _, err := newTestDecoder(true).Decode([]Row{r})
		assert.ErrorIs(t, err, ErrMalformedRow)
	})
}

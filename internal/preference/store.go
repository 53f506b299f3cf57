// Package preference persists small per-user UI settings (last search term,
// roster filter selection, team view mode) behind a key-value port.
package preference

import (
	"context"
	"errors"
)

// Well-known preference keys.
const (
	KeyRosterSearch  = "adminUsersTab.searchTerm"
	KeyRosterFilters = "adminUsersTab.filters"
	KeyTeamViewMode  = "teamManagement.viewMode"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("preference not found")

// Store is the persisted-settings port. Values are opaque strings
// (callers JSON-encode structured values). Keys are scoped by owner.
type Store interface {
	Get(ctx context.Context, owner, key string) (string, error)
	Set(ctx context.Context, owner, key, value string) error
	Clear(ctx context.Context, owner, key string) error
}

func scopedKey(owner, key string) string {
	return "pref:" + owner + ":" + key
}

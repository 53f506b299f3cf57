package roster

import (
	"slices"
)

// FilterKey names one of the boolean roster filters.
type FilterKey string

const (
	FilterAdministrator      FilterKey = "administrator"
	FilterFacilitator        FilterKey = "facilitator"
	FilterActivePlayer       FilterKey = "activePlayer"
	FilterPendingUsers       FilterKey = "pendingUsers"
	FilterPlayersNotInLeague FilterKey = "playersNotInLeague"
)

// FilterKeys lists every boolean filter in display order.
var FilterKeys = []FilterKey{
	FilterAdministrator,
	FilterFacilitator,
	FilterActivePlayer,
	FilterPendingUsers,
	FilterPlayersNotInLeague,
}

// Filters is the roster filter selection. Categories combine with AND on the
// server; the two sport sets match if any listed sport matches.
type Filters struct {
	Administrator      bool    `json:"administrator"`
	Facilitator        bool    `json:"facilitator"`
	ActivePlayer       bool    `json:"activePlayer"`
	PendingUsers       bool    `json:"pendingUsers"`
	PlayersNotInLeague bool    `json:"playersNotInLeague"`
	SportsInLeague     []int64 `json:"sportsInLeague"`
	SportsWithSkill    []int64 `json:"sportsWithSkill"`
}

// DefaultFilters returns the cleared selection.
func DefaultFilters() Filters {
	return Filters{
		SportsInLeague:  []int64{},
		SportsWithSkill: []int64{},
	}
}

func (f *Filters) flag(key FilterKey) (*bool, bool) {
	switch key {
	case FilterAdministrator:
		return &f.Administrator, true
	case FilterFacilitator:
		return &f.Facilitator, true
	case FilterActivePlayer:
		return &f.ActivePlayer, true
	case FilterPendingUsers:
		return &f.PendingUsers, true
	case FilterPlayersNotInLeague:
		return &f.PlayersNotInLeague, true
	}
	return nil, false
}

// Toggle flips the boolean filter named by key.
func (f *Filters) Toggle(key FilterKey) error {
	p, ok := f.flag(key)
	if !ok {
		return ErrUnknownFilter
	}
	*p = !*p
	return nil
}

// Enabled reports the value of a boolean filter.
func (f Filters) Enabled(key FilterKey) bool {
	p, ok := f.flag(key)
	return ok && *p
}

// IsAnyActive reports whether any boolean is set or either sport set is non-empty.
func (f Filters) IsAnyActive() bool {
	for _, key := range FilterKeys {
		if f.Enabled(key) {
			return true
		}
	}
	return len(f.SportsInLeague) > 0 || len(f.SportsWithSkill) > 0
}

// Clone returns a deep copy.
func (f Filters) Clone() Filters {
	out := f
	out.SportsInLeague = append([]int64{}, f.SportsInLeague...)
	out.SportsWithSkill = append([]int64{}, f.SportsWithSkill...)
	return out
}

// normalize replaces nil sets so the JSON encoding is stable.
func (f Filters) normalize() Filters {
	if f.SportsInLeague == nil {
		f.SportsInLeague = []int64{}
	}
	if f.SportsWithSkill == nil {
		f.SportsWithSkill = []int64{}
	}
	return f
}

// toggleMember adds id when absent and removes it when present.
func toggleMember(set []int64, id int64) []int64 {
	if i := slices.Index(set, id); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), id)
}

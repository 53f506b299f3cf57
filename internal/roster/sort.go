package roster

// SortField is a roster column the listing procedure can order by.
type SortField string

const (
	SortName      SortField = "name"
	SortEmail     SortField = "email"
	SortPhone     SortField = "phone"
	SortStatus    SortField = "status"
	SortCreatedAt SortField = "created_at"
	SortTotalOwed SortField = "total_owed"
	SortTotalPaid SortField = "total_paid"
)

var sortFields = map[SortField]bool{
	SortName:      true,
	SortEmail:     true,
	SortPhone:     true,
	SortStatus:    true,
	SortCreatedAt: true,
	SortTotalOwed: true,
	SortTotalPaid: true,
}

// Valid reports whether the field is sortable.
func (f SortField) Valid() bool {
	return sortFields[f]
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

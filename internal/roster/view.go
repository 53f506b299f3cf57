package roster

import "time"

// View is the last committed roster page.
type View struct {
	Users      []User
	Pagination Pagination
	Query      Query
	Loaded     bool
	Loading    bool
	FetchedAt  time.Time
}

// FilteredUsers is the filtered view of the roster. Filtering happens in the
// listing procedure, so this is the fetched page itself.
func (v View) FilteredUsers() []User {
	return v.Users
}

// Showing returns the "showing X to Y of Z" figures for the pager.
func (v View) Showing() (from, to, total int) {
	from, to = v.Pagination.Range()
	return from, to, v.Pagination.TotalItems
}

// PageNumbers returns the page buttons to render.
func (v View) PageNumbers() []int {
	return v.Pagination.PageNumbers()
}

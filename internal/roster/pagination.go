package roster

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const (
	MaxPageSize     = 200
	DefaultPageSize = 25
)

// Pagination mirrors the pager shown under the roster table.
// TotalItems and TotalPages are only meaningful after a successful fetch.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// TotalPages returns ceil(totalItems / pageSize), or 0 for a non-positive page size.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// NewPagination builds the pager for a page of a result set.
func NewPagination(currentPage, pageSize, totalItems int) Pagination {
	return Pagination{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  TotalPages(totalItems, pageSize),
	}
}

// Range returns the 1-based "showing X to Y" bounds. Both are 0 when empty.
func (p Pagination) Range() (from, to int) {
	if p.TotalItems == 0 {
		return 0, 0
	}
	from = (p.CurrentPage-1)*p.PageSize + 1
	to = min(p.CurrentPage*p.PageSize, p.TotalItems)
	return from, to
}

// Summary renders the pager caption, e.g. "Showing 1 to 25 of 1,204".
func (p Pagination) Summary() string {
	from, to := p.Range()
	return fmt.Sprintf("Showing %s to %s of %s",
		humanize.Comma(int64(from)), humanize.Comma(int64(to)), humanize.Comma(int64(p.TotalItems)))
}

// PageNumbers returns the page buttons to render; none when there are no pages.
func (p Pagination) PageNumbers() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

func validPageSize(size int) bool {
	return size >= 1 && size <= MaxPageSize
}

package response

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items        []T    `json:"items"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
	Total        int    `json:"total"`
	TotalPages   int    `json:"total_pages"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, page, pageSize, total int) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return PageResponse[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// WithEmptyMessage sets the contextual copy shown when the page has no items.
func (p PageResponse[T]) WithEmptyMessage(msg string) PageResponse[T] {
	if len(p.Items) == 0 {
		p.EmptyMessage = msg
	}
	return p
}

// ABOUTME: Pagination envelope returned by all search endpoints
// ABOUTME: Generic over the record type so every reader shares one shape
package models

// Pagination describes the position of one page within a filtered result set.
type Pagination struct {
	Current    int  `json:"current"`
	Total      int  `json:"total"`
	TotalItems int  `json:"totalItems"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is one page of records plus its pagination metadata.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate slices items into the requested 1-based page. A page past the end
// yields an empty Data slice, not an error.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize

	data := []T{}
	if start < len(items) {
		if end > len(items) {
			end = len(items)
		}
		data = items[start:end]
	}

	total := (len(items) + pageSize - 1) / pageSize
	return Page[T]{
		Data: data,
		Pagination: Pagination{
			Current:    page,
			Total:      total,
			TotalItems: len(items),
			HasNext:    end < len(items),
			HasPrev:    page > 1,
		},
	}
}

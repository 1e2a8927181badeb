package service

import (
	"newsportal/internal/repository"
)

// MaxPageSize caps the limit of every listing.
const MaxPageSize = 100

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
}

// TotalPages returns the number of pages needed for Total items.
func (p *PageResult[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

func normalizePage(page, limit, defaultLimit int) repository.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return repository.Page{Page: page, Limit: limit}
}

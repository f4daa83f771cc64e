package models

import (
	"math"
	"strings"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// MaxPageNumber keeps Offset within int32 for any page size.
const MaxPageNumber = math.MaxInt32 / MaxPageSize

// ListQuery carries the paging and sorting parameters shared by list endpoints.
type ListQuery struct {
	PageNumber    int
	PageSize      int
	SortBy        string
	SortDirection string
}

// Normalize applies defaults and clamps out of range values.
func (q ListQuery) Normalize() ListQuery {
	if q.PageNumber < 1 {
		q.PageNumber = DefaultPageNumber
	}
	if q.PageNumber > MaxPageNumber {
		q.PageNumber = MaxPageNumber
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if strings.EqualFold(q.SortDirection, "asc") {
		q.SortDirection = "ASC"
	} else {
		q.SortDirection = "DESC"
	}
	return q
}

// Offset returns the row offset of the requested page.
func (q ListQuery) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	PagesCount int `json:"pagesCount"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// Page is one page of items plus its metadata.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// NewPage assembles a page from a normalised query and the total row count.
func NewPage[T any](items []T, q ListQuery, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if q.PageSize > 0 {
		pages = (total + q.PageSize - 1) / q.PageSize
	}
	return &Page[T]{
		Items: items,
		Pagination: Pagination{
			PagesCount: pages,
			Page:       q.PageNumber,
			PageSize:   q.PageSize,
			TotalCount: total,
		},
	}
}

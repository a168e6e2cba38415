package shared

import (
	"math"
	"net/url"
	"strconv"
)

// DefaultPerPage bounds unpaginated listings.
const DefaultPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is a paginated listing envelope.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ParsePageQuery reads page/per_page query parameters, falling back to
// the defaults on absent or malformed values.
func ParsePageQuery(query url.Values) (page, perPage int) {
	page, _ = strconv.Atoi(query.Get("page"))
	perPage, _ = strconv.Atoi(query.Get("per_page"))
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

// Paginate slices an already-ordered listing into the requested page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	meta := NewPagination(page, perPage, len(items))
	start := (meta.Page - 1) * meta.PerPage
	if start >= len(items) {
		return Page[T]{Data: []T{}, Pagination: meta}
	}
	end := start + meta.PerPage
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{Data: items[start:end], Pagination: meta}
}

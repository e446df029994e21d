package model

import (
	"encoding/json"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Base contains common fields for all models
type Base struct {
	ID        int64     `json:"id" db:"id"`
	Deleted   bool      `json:"-" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents common pagination parameters. Page is 1-based; a
// PageSize of zero means unpaged.
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Unpaged returns a Pagination that selects every row.
func Unpaged() Pagination {
	return Pagination{Page: 1}
}

// Normalize clamps user supplied paging values.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) IsUnpaged() bool {
	return p.PageSize <= 0
}

func (p Pagination) Limit() int {
	return p.PageSize
}

func (p Pagination) Offset() int {
	if p.IsUnpaged() || p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// SortOrder represents sorting parameters
type SortOrder struct {
	Field string `json:"field" form:"sort_field"`
	Dir   string `json:"direction" form:"sort_dir"`
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPage assembles a Page, computing the page count from total.
func NewPage[T any](items []T, p Pagination, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	size := p.PageSize
	pages := 1
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	} else {
		size = len(items)
	}
	return Page[T]{
		Items:      items,
		Page:       p.Page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}
}

// MapPage converts the items of a page, keeping its metadata.
func MapPage[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Page[U]{
		Items:      out,
		Page:       in.Page,
		PageSize:   in.PageSize,
		Total:      in.Total,
		TotalPages: in.TotalPages,
	}
}

// Snapshot serializes v for audit old/new values.
func Snapshot(v interface{}) (*string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

package model

// Page is the envelope of every list endpoint
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// PageRequest is a zero-based page request
type PageRequest struct {
	Page int
	Size int
}

// DefaultPageSize ...
const DefaultPageSize = 20

// MaxPageSize ...
const MaxPageSize = 100

// Normalize clamps page and size into valid bounds
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}

// Offset ...
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// NewPage builds the envelope for one page of a total result set
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        req.Page,
		Size:          req.Size,
	}
}

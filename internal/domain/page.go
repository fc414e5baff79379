package domain

// Page is the offset-paginated result envelope returned by list queries.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

func NewPage[T any](content []T, limit, offset int, total int64) Page[T] {
	page := 0
	if limit > 0 {
		page = offset / limit
	}
	return Page[T]{
		Content:       content,
		Page:          page,
		Size:          limit,
		TotalElements: total,
	}
}

package domain

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps Offset far from integer overflow.
	MaxPage = 1_000_000
)

type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to [1, MaxPage] and the page size to [1, MaxPerPage],
// using def when no size was requested.
func (p PageRequest) Normalize(def int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = def
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	Pages       int   `json:"pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.PerPage > 0 {
		pages = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}

	return Page[T]{
		Items:       items,
		Total:       total,
		Pages:       pages,
		CurrentPage: req.Page,
		PerPage:     req.PerPage,
	}
}

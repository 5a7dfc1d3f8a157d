package pagination

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 15
	// MaxPerPage caps how many rows any paged query can request.
	MaxPerPage = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize enforces the configured defaults and maximum page size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Page wraps a result set with page metadata.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// NewPage assembles the page envelope from normalized params and a total count.
func NewPage[T any](data []T, params Params, total int64) Page[T] {
	n := params.Normalize()
	if data == nil {
		data = []T{}
	}
	last := int((total + int64(n.PerPage) - 1) / int64(n.PerPage))
	if last < 1 {
		last = 1
	}
	return Page[T]{
		Data:     data,
		Page:     n.Page,
		PerPage:  n.PerPage,
		Total:    total,
		LastPage: last,
	}
}

package utils

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Pagination describes one page of a listing the way the admin tables render it.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	LastPage    int   `json:"last_page"`
	Total       int64 `json:"total"`
	// From and To are 1-based positions of the first and last row on the page,
	// both zero for an empty page.
	From int `json:"from"`
	To   int `json:"to"`
}

// NormalizePage clamps page and perPage into their accepted ranges.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Offset returns the number of rows to skip for page.
func Offset(page, perPage int) int {
	page, perPage = NormalizePage(page, perPage)
	return (page - 1) * perPage
}

// Paginate computes the page metadata for total rows.
func Paginate(page, perPage int, total int64) Pagination {
	page, perPage = NormalizePage(page, perPage)
	p := Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    1,
	}
	if total > 0 {
		p.LastPage = int((total + int64(perPage) - 1) / int64(perPage))
	}
	first := int64((page-1)*perPage) + 1
	if total == 0 || first > total {
		return p
	}
	last := first + int64(perPage) - 1
	if last > total {
		last = total
	}
	p.From = int(first)
	p.To = int(last)
	return p
}

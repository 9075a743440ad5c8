package models

// Pagination describes a paginated list.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Page carries the paging arguments shared by every list filter.
type Page struct {
	Page     int
	PageSize int
}

// Normalize clamps page and size to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
	return p
}

// Offset returns the SQL offset for the page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Pagination builds response metadata for total rows.
func (p Page) Pagination(total int) *Pagination {
	n := p.Normalize()
	return &Pagination{Page: n.Page, PageSize: n.PageSize, TotalCount: total}
}

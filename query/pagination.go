package query

import "math"

// Pagination is the page metadata returned with every listing page.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// Paginate computes page metadata. page and limit must already be validated
// (page >= 1, 1 <= limit <= MaxLimit).
func Paginate(total int64, page, limit int) Pagination {
	pages := int64(0)
	if total > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(page) < pages,
		HasPrev: page > 1,
	}
}

// Skip is the number of documents preceding the page. It saturates rather
// than going negative for pages beyond MaxPage.
func (p Pagination) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	page := int64(p.Page - 1)
	if page > math.MaxInt64/int64(p.Limit) {
		return math.MaxInt64
	}
	return page * int64(p.Limit)
}

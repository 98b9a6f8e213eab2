package model

// Pagination describes one window into a filtered result set.
// Page is 1-indexed and accepted as given; clamping is a caller concern.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives window metadata from the raw counts.
// TotalPages is 0 when total is 0, otherwise ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the zero-indexed start of the row window, (page-1)*limit.
// Together with Limit this selects rows [Offset, Offset+Limit-1].
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

package repository

import "fmt"

// Pagination holds pagination parameters for listings. A zero PageSize means no limit.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

// Offset is the index of the page's first row. It is computed in int64 so that large
// page numbers cannot wrap around.
func (p *Pagination) Offset() int64 {
	if p.PageNo <= 1 || p.PageSize <= 0 {
		return 0
	}
	return int64(p.PageNo-1) * int64(p.PageSize)
}

// Validate rejects negative page numbers and sizes.
func (p *Pagination) Validate() error {
	if p.PageNo < 0 || p.PageSize < 0 {
		return fmt.Errorf("page_no and page_size must not be negative (got %d, %d)", p.PageNo, p.PageSize)
	}
	return nil
}

type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }

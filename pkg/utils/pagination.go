package utils

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Pagination 列表查询参数 ?page=&limit=
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// PageResult 列表响应
type PageResult struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int64       `json:"totalPages"`
}

// GetPageOffset 修正非法的 Page/Limit 后返回 offset, limit
func (p *Pagination) GetPageOffset() (int, int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	return (p.Page - 1) * p.Limit, p.Limit
}

func NewPageResult(list interface{}, total int64, p Pagination) PageResult {
	p.GetPageOffset()
	limit := int64(p.Limit)
	return PageResult{
		List:       list,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

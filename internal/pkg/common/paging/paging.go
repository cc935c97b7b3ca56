package paging

// Query 为列表类接口的分页参数. Paging 为 false 时返回全部结果.
type Query struct {
	Paging   bool `form:"paging" json:"paging"`
	Page     int  `form:"page" json:"page"`
	PageSize int  `form:"page_size" json:"page_size"`
}

// SetDefaults 设置默认分页, 限制每页项目最大数
func (p *Query) SetDefaults(defaultPage, defaultSize, maxSize int) {
	if p.Page <= 0 {
		p.Page = defaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
}

// Window 返回第 Page 页在长度为 total 的列表中的 [start, end) 区间.
func (p Query) Window(total int) (start, end int) {
	if !p.Paging || p.PageSize <= 0 {
		return 0, total
	}
	page := max(p.Page, 1)
	// 先比较页号再相乘, 避免超大页号溢出.
	if page-1 > total/p.PageSize {
		return total, total
	}
	start = min((page-1)*p.PageSize, total)
	end = start + min(p.PageSize, total-start)
	return start, end
}

// Slice 按分页参数截取 items. 越界的页返回空切片.
func Slice[T any](items []T, p Query) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}

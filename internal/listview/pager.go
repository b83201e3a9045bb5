package listview

// All is the page size that shows every row on one page.
const All = 0

// Pager slices a row list into pages. Changing the rows or the page size
// returns to page 1; the page number never exceeds TotalPages.
type Pager[R any] struct {
	rows []R
	size int
	page int
}

func NewPager[R any](size int) *Pager[R] {
	if size < 0 {
		size = All
	}
	return &Pager[R]{size: size, page: 1}
}

func (p *Pager[R]) SetSource(rows []R) {
	p.rows = rows
	p.page = 1
}

func (p *Pager[R]) SetPageSize(size int) {
	if size < 0 {
		size = All
	}
	p.size = size
	p.page = 1
}

// SetPage moves to page n, clamped to [1, TotalPages].
func (p *Pager[R]) SetPage(n int) {
	p.page = n
	p.clamp()
}

func (p *Pager[R]) clamp() {
	if total := p.TotalPages(); p.page > total {
		p.page = total
	}
	if p.page < 1 {
		p.page = 1
	}
}

func (p *Pager[R]) Page() int     { return p.page }
func (p *Pager[R]) PageSize() int { return p.size }
func (p *Pager[R]) Total() int    { return len(p.rows) }

func (p *Pager[R]) TotalPages() int {
	if p.size == All {
		return 1
	}
	n := (len(p.rows) + p.size - 1) / p.size
	if n < 1 {
		return 1
	}
	return n
}

// Items returns the rows of the current page.
func (p *Pager[R]) Items() []R {
	if p.size == All {
		return p.rows
	}
	p.clamp()
	start := (p.page - 1) * p.size
	if start >= len(p.rows) {
		return []R{}
	}
	end := start + p.size
	if end > len(p.rows) {
		end = len(p.rows)
	}
	return p.rows[start:end]
}

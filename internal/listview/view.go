package listview

import (
	"sync"
	"time"
)

type ViewOptions[R any] struct {
	Filters  []Filter[R]
	Haystack func(R) string
	PageSize int
	Debounce time.Duration
}

// View composes a source list with a debounced text query, a filter menu and
// a pager. Derived rows are recomputed whenever the source, a filter or the
// applied query changes, so every read sees a consistent state.
type View[R any] struct {
	mu       sync.Mutex
	source   []R
	filtered []R
	haystack func(R) string
	menu     *Menu[R]
	pager    *Pager[R]
	query    *Debouncer[string]
}

func NewView[R any](opts ViewOptions[R]) *View[R] {
	v := &View[R]{
		haystack: opts.Haystack,
		menu:     NewMenu(opts.Filters...),
		pager:    NewPager[R](opts.PageSize),
	}
	v.query = NewDebouncer(opts.Debounce, "", func(string) {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.recompute()
	})
	return v
}

// recompute must be called with mu held.
func (v *View[R]) recompute() {
	v.filtered = v.menu.Apply(FilterText(v.source, v.query.Applied(), v.haystack))
	v.pager.SetSource(v.filtered)
}

func (v *View[R]) SetSource(rows []R) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.source = rows
	v.recompute()
}

// SetQuery records the typed query; it is applied after the debounce delay.
func (v *View[R]) SetQuery(q string) { v.query.Set(q) }

// FlushQuery applies the typed query immediately.
func (v *View[R]) FlushQuery() { v.query.Flush() }

// Query returns the live (typed) query.
func (v *View[R]) Query() string { return v.query.Live() }

func (v *View[R]) SetFilter(key string, value any) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.menu.Set(key, value) {
		return false
	}
	v.recompute()
	return true
}

func (v *View[R]) FilterState() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.menu.State()
}

func (v *View[R]) Filters() []Filter[R] { return v.menu.Filters() }

// ClearFilters resets the menu and the query.
func (v *View[R]) ClearFilters() {
	v.query.Set("")
	v.query.Flush()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.menu.Clear()
	v.recompute()
}

func (v *View[R]) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.SetPage(n)
}

func (v *View[R]) SetPageSize(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pager.SetPageSize(n)
}

// Rows returns the current page of filtered rows.
func (v *View[R]) Rows() []R {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.Items()
}

// Filtered returns every row passing the query and the filter menu.
func (v *View[R]) Filtered() []R {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtered
}

func (v *View[R]) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.Page()
}

func (v *View[R]) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pager.TotalPages()
}

// Close cancels a pending query application.
func (v *View[R]) Close() { v.query.Stop() }

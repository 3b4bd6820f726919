package pagination

// DefaultPageSize is used whenever a caller supplies a non-positive page size.
const DefaultPageSize = 10

// WindowSize is the maximum number of page links exposed in VisiblePages.
const WindowSize = 5

// Page is the derived pagination view for one collection.
type Page struct {
	CurrentPage  int   `json:"current_page"`
	PageSize     int   `json:"page_size"`
	TotalItems   int   `json:"total_items"`
	TotalPages   int   `json:"total_pages"`
	StartItem    int   `json:"start_item"`
	EndItem      int   `json:"end_item"`
	VisiblePages []int `json:"visible_pages"`
}

// Paginate clamps currentPage into range and computes the visible item span and page window.
func Paginate(totalItems, currentPage, pageSize int) Page {
	if totalItems < 0 {
		totalItems = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := TotalPages(totalItems, pageSize)
	page := clamp(currentPage, 1, totalPages)

	p := Page{
		CurrentPage:  page,
		PageSize:     pageSize,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		VisiblePages: window(page, totalPages),
	}
	if totalItems > 0 {
		p.StartItem = (page-1)*pageSize + 1
		p.EndItem = min(page*pageSize, totalItems)
	}
	return p
}

// TotalPages returns max(1, ceil(totalItems/pageSize)).
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Bounds returns half-open slice indexes [lo, hi) for the page's rows.
func (p Page) Bounds() (int, int) {
	if p.TotalItems == 0 {
		return 0, 0
	}
	return p.StartItem - 1, p.EndItem
}

func window(page, totalPages int) []int {
	size := min(WindowSize, totalPages)
	start := page - WindowSize/2
	if start < 1 {
		start = 1
	}
	if start+size-1 > totalPages {
		start = totalPages - size + 1
	}

	pages := make([]int, 0, size)
	for i := 0; i < size; i++ {
		pages = append(pages, start+i)
	}
	return pages
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// State is the caller-owned pagination input.
type State struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewState returns a State on page one.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Page: 1, PageSize: pageSize}
}

// Reset moves back to the first page.
func (s *State) Reset() {
	s.Page = 1
}

// SetPageSize changes the page size and resets to page one.
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	s.PageSize = size
	s.Page = 1
}

// Apply computes the Page for total items and stores the clamped page back.
func (s *State) Apply(totalItems int) Page {
	p := Paginate(totalItems, s.Page, s.PageSize)
	s.Page = p.CurrentPage
	s.PageSize = p.PageSize
	return p
}

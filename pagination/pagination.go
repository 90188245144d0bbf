// Package pagination slices an ordered record set into fixed-size windows.
// It is pure math over (total, size, requested page); the store applies the
// resulting offset/limit.
package pagination

import "strconv"

// PageSize bounds how many records appear per feed page.
const PageSize = 10

// Page describes one window of an ordered record set. Numbers are 1-based.
type Page struct {
	Number     int
	Size       int
	Total      int
	TotalPages int
	Offset     int
	Limit      int
	HasNext    bool
	HasPrev    bool
}

// Paginate computes the window for the requested page. Requests below page 1
// and beyond the last page clamp instead of erroring, so page 2 of 13
// records with size 10 yields exactly 3 records and page 99 yields the last
// page. An empty record set still has one (empty) page.
func Paginate(total, size, requested int) Page {
	if size < 1 {
		size = PageSize
	}
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		Offset:     (number - 1) * size,
		Limit:      size,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}

// ParsePage interprets a raw "page" query parameter. Absent or non-numeric
// input means page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NextPage and PrevPage are template helpers for the pager links.
func (p Page) NextPage() int { return p.Number + 1 }
func (p Page) PrevPage() int { return p.Number - 1 }

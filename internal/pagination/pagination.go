// Package pagination provides utilities around numbered result pages.
package pagination

import "strconv"

// DefaultPageSize is the number of records shown per dashboard page.
const DefaultPageSize = 6

// Ellipsis marks a gap in the sequence returned by [Links].
const Ellipsis = 0

// Page identifies a 1-based page of records.
type Page struct {
	Number int
	Size   int
}

// Parse reads a page number from a query parameter. Missing, malformed, or
// non-positive values resolve to the first page. A non-positive size falls
// back to [DefaultPageSize].
func Parse(raw string, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		n = 1
	}
	return Page{Number: n, Size: size}
}

// Offset is the number of records preceding the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Clamp moves the page into the range 1 through total, keeping it on the
// first page when there are no pages at all.
func (p Page) Clamp(total int) Page {
	p.Number = max(min(p.Number, total), 1)
	return p
}

// TotalPages is the number of pages needed to show count records.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Links returns the page numbers to render in a pagination control for the
// current page out of total. Gaps are represented by [Ellipsis].
func Links(current, total int) []int {
	const maxContiguous = 7
	switch {
	case total <= 0:
		return nil
	case total <= maxContiguous:
		links := make([]int, total)
		for i := range links {
			links[i] = i + 1
		}
		return links
	case current <= 3: //nolint:mnd // leading window
		return []int{1, 2, 3, Ellipsis, total - 1, total}
	case current >= total-2:
		return []int{1, 2, Ellipsis, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
	}
}

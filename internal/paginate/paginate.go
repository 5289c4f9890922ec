// Package paginate splits ordered item lists into pages. Page 1 is the
// unpaginated index and has no /page/1/ route of its own; pages 2..N are
// routed under the listing's page prefix.
package paginate

import "strconv"

// Page is one slice of a paginated listing. Prev and Next are routable URLs,
// empty at the boundaries.
type Page[T any] struct {
	Index int // 1-based
	Items []T
	Total int
	Prev  string
	Next  string
}

// Paginate splits items into pages of pageSize, preserving order. A pageSize
// of 0 yields exactly one page holding every item. baseURL is the listing
// root ("/posts/"); secondary pages live at baseURL + "page/N/".
func Paginate[T any](items []T, pageSize int, baseURL string) []Page[T] {
	if pageSize <= 0 {
		return []Page[T]{{Index: 1, Items: items, Total: 1}}
	}

	total := (len(items) + pageSize - 1) / pageSize
	if total == 0 {
		total = 1
	}

	pages := make([]Page[T], 0, total)
	for i := 0; i < total; i++ {
		start := i * pageSize
		end := min(start+pageSize, len(items))
		pages = append(pages, Page[T]{
			Index: i + 1,
			Items: items[start:end],
			Total: total,
		})
	}

	for i := range pages {
		if i > 0 {
			pages[i].Prev = PageURL(baseURL, i) // previous page's index is i
		}
		if i < total-1 {
			pages[i].Next = PageURL(baseURL, i+2)
		}
	}
	return pages
}

// PageURL returns the route for page n of a listing. Page 1 is the listing
// root itself.
func PageURL(baseURL string, n int) string {
	if n <= 1 {
		return baseURL
	}
	return baseURL + "page/" + strconv.Itoa(n) + "/"
}

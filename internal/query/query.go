// Package query derives the visible page of a list screen from a collection
// snapshot. Everything here is pure.
package query

import (
	"fmt"
	"slices"
	"strings"

	"catalog-admin/internal/model"
	"catalog-admin/internal/statusutil"
)

type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "newest":
		return OrderDesc, nil
	case "asc", "oldest":
		return OrderAsc, nil
	default:
		return "", fmt.Errorf("invalid sort order: %q (want desc|asc)", s)
	}
}

func (o Order) Toggle() Order {
	if o == OrderAsc {
		return OrderDesc
	}
	return OrderAsc
}

const DefaultPageSize = 10

// PageSizes are the sizes a list screen offers.
var PageSizes = []int{5, 10, 25, 50}

// NextPageSize steps through PageSizes; delta is +1 or -1.
func NextPageSize(cur, delta int) int {
	i := slices.Index(PageSizes, cur)
	if i < 0 {
		return DefaultPageSize
	}
	i += delta
	if i < 0 || i >= len(PageSizes) {
		return cur
	}
	return PageSizes[i]
}

// Row is what the pipeline needs from an entity.
type Row interface {
	Key() model.ID
	IsActive() bool
	SearchText() []string
}

type State struct {
	Search   string
	Status   statusutil.Filter
	Order    Order
	PageSize int
	Page     int
}

func DefaultState() State {
	return State{Status: statusutil.FilterAll, Order: OrderDesc, PageSize: DefaultPageSize, Page: 1}
}

type Page[T Row] struct {
	Items      []T
	Total      int
	TotalPages int
	Page       int
	PageSize   int
	// From and To are the 1-based positions of the first and last visible
	// entry within the filtered set; both are 0 when Total is 0.
	From int
	To   int
}

// Run filters by status, then by search text, sorts by numeric id and
// slices out the requested page, clamped into [1, TotalPages].
func Run[T Row](items []T, st State) Page[T] {
	size := st.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	needle := strings.ToLower(strings.TrimSpace(st.Search))

	kept := make([]T, 0, len(items))
	for _, it := range items {
		if !st.Status.Match(it.IsActive()) {
			continue
		}
		if needle != "" && !matches(it, needle) {
			continue
		}
		kept = append(kept, it)
	}

	slices.SortStableFunc(kept, func(a, b T) int {
		x, y := a.Key().Int(), b.Key().Int()
		if st.Order == OrderAsc {
			return cmpInt(x, y)
		}
		return cmpInt(y, x)
	})

	total := len(kept)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page := min(max(st.Page, 1), pages)

	lo := min((page-1)*size, total)
	hi := min(lo+size, total)
	out := Page[T]{
		Items:      kept[lo:hi],
		Total:      total,
		TotalPages: pages,
		Page:       page,
		PageSize:   size,
	}
	if hi > lo {
		out.From, out.To = lo+1, hi
	}
	return out
}

func matches[T Row](it T, needle string) bool {
	for _, s := range it.SearchText() {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

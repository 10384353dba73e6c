package tui

import (
	"context"
	"fmt"
	"strings"

	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
	"catalog-admin/internal/query"
	"catalog-admin/internal/statusutil"
)

// row is one line of the browser list.
type row struct {
	ID     model.ID
	Title  string
	Meta   string
	Active bool
}

type pageInfo struct {
	Total      int
	TotalPages int
	Page       int
	PageSize   int
	From       int
	To         int
}

// source adapts one kind's store to the browser.
type source interface {
	Kind() model.Kind
	Fetch(ctx context.Context) error
	Page(st query.State) ([]row, pageInfo)
	Toggle(ctx context.Context, id model.ID) error
	Delete(ctx context.Context, id model.ID) error
	Detail(id model.ID) (string, bool)
}

type entity interface {
	collection.Entity
	query.Row
}

type storeSource[T entity] struct {
	store  *collection.Store[T]
	row    func(T) row
	detail func(T) string
	// before runs ahead of every fetch (parent categories for subcategories).
	before func(context.Context) error
}

func (s storeSource[T]) Kind() model.Kind { return s.store.Kind() }

func (s storeSource[T]) Fetch(ctx context.Context) error {
	if s.before != nil {
		if err := s.before(ctx); err != nil {
			return err
		}
	}
	return s.store.Fetch(ctx)
}

func (s storeSource[T]) Page(st query.State) ([]row, pageInfo) {
	p := query.Run(s.store.Items(), st)
	rows := make([]row, 0, len(p.Items))
	for _, e := range p.Items {
		rows = append(rows, s.row(e))
	}
	return rows, pageInfo{Total: p.Total, TotalPages: p.TotalPages, Page: p.Page, PageSize: p.PageSize, From: p.From, To: p.To}
}

func (s storeSource[T]) Toggle(ctx context.Context, id model.ID) error {
	_, err := s.store.ToggleStatus(ctx, id)
	return err
}

func (s storeSource[T]) Delete(ctx context.Context, id model.ID) error {
	return s.store.Delete(ctx, id)
}

func (s storeSource[T]) Detail(id model.ID) (string, bool) {
	e, ok := s.store.Get(id)
	if !ok {
		return "", false
	}
	return s.detail(e), true
}

func sourceFor(c *collection.Catalog, kind model.Kind) (source, error) {
	switch kind {
	case model.KindUser:
		return storeSource[model.User]{
			store: c.Users,
			row: func(u model.User) row {
				return row{ID: u.ID, Title: u.Name, Meta: strings.TrimSpace(u.Email + "  " + u.Phone), Active: u.Active}
			},
			detail: userDetail,
		}, nil
	case model.KindCategory:
		return storeSource[model.Category]{
			store: c.Categories,
			row: func(cat model.Category) row {
				return row{ID: cat.ID, Title: cat.Name, Meta: cat.Image, Active: cat.Active}
			},
			detail: categoryDetail,
		}, nil
	case model.KindSubcategory:
		return storeSource[model.Subcategory]{
			store: c.Subcategories,
			row: func(s model.Subcategory) row {
				return row{ID: s.ID, Title: s.Name, Meta: c.CategoryName(s.CategoryID), Active: s.Active}
			},
			detail: func(s model.Subcategory) string { return subcategoryDetail(s, c.CategoryName(s.CategoryID)) },
			before: c.Categories.Fetch,
		}, nil
	default:
		return nil, fmt.Errorf("unknown kind: %q (want user|category|subcategory)", kind)
	}
}

func userDetail(u model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", u.Name)
	fmt.Fprintf(&b, "- **Email:** %s\n", orDash(u.Email))
	fmt.Fprintf(&b, "- **Contact:** %s\n", orDash(u.Phone))
	fmt.Fprintf(&b, "- **Role:** %s\n", orDash(string(u.Role)))
	fmt.Fprintf(&b, "- **Status:** %s\n", statusutil.Label(u.Active))
	if strings.TrimSpace(u.Address) != "" {
		fmt.Fprintf(&b, "- **Address:** %s\n", u.Address)
	}
	if strings.TrimSpace(u.Description) != "" {
		fmt.Fprintf(&b, "\n%s\n", u.Description)
	}
	return b.String()
}

func categoryDetail(c model.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	fmt.Fprintf(&b, "- **Status:** %s\n", statusutil.Label(c.Active))
	fmt.Fprintf(&b, "- **Image:** %s\n", orDash(c.Image))
	if strings.TrimSpace(c.Description) != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Description)
	}
	return b.String()
}

func subcategoryDetail(s model.Subcategory, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	fmt.Fprintf(&b, "- **Category:** %s\n", category)
	fmt.Fprintf(&b, "- **Status:** %s\n", statusutil.Label(s.Active))
	fmt.Fprintf(&b, "- **Image:** %s\n", orDash(s.Image))
	if strings.TrimSpace(s.Description) != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Description)
	}
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

package collection

import "catalog-admin/internal/model"

const UnknownCategory = "Unknown"

// Catalog is the set of stores one console session works with.
type Catalog struct {
	Users         *Store[model.User]
	Categories    *Store[model.Category]
	Subcategories *Store[model.Subcategory]
}

func NewCatalog(deps Deps) *Catalog {
	return &Catalog{
		Users:         New[model.User](UserCodec{}, deps),
		Categories:    New[model.Category](CategoryCodec{}, deps),
		Subcategories: New[model.Subcategory](SubcategoryCodec{}, deps),
	}
}

// CategoryName resolves a subcategory's parent for display.
func (c *Catalog) CategoryName(id model.ID) string {
	if cat, ok := c.Categories.Get(id); ok && cat.Name != "" {
		return cat.Name
	}
	return UnknownCategory
}

package mutate

import (
	"context"

	"catalog-admin/internal/collection"
	"catalog-admin/internal/model"
)

// Controller validates a form and, when it is clean, submits the draft to the
// matching store. Validation failures never reach the network.
type Controller struct {
	Catalog *collection.Catalog
}

func NewController(c *collection.Catalog) *Controller {
	return &Controller{Catalog: c}
}

func (c *Controller) SubmitUser(ctx context.Context, f UserForm) (model.User, error) {
	if errs := ValidateUser(f); !errs.Empty() {
		return model.User{}, &ValidationError{Kind: string(model.KindUser), Fields: errs}
	}
	draft := f.Draft()
	if f.creating() {
		return c.Catalog.Users.Add(ctx, draft)
	}
	return c.Catalog.Users.Update(ctx, draft)
}

func (c *Controller) SubmitCategory(ctx context.Context, f CategoryForm) (model.Category, error) {
	if errs := ValidateCategory(f); !errs.Empty() {
		return model.Category{}, &ValidationError{Kind: string(model.KindCategory), Fields: errs}
	}
	if f.creating() {
		return c.Catalog.Categories.Add(ctx, f.Draft(""))
	}
	cur, ok := c.Catalog.Categories.Get(f.ID)
	if !ok {
		return model.Category{}, &collection.NotFoundError{Kind: model.KindCategory, ID: f.ID}
	}
	return c.Catalog.Categories.Update(ctx, f.Draft(cur.Image))
}

// SubmitSubcategory checks the parent against the loaded categories; with
// none loaded the check is skipped and the server decides.
func (c *Controller) SubmitSubcategory(ctx context.Context, f SubcategoryForm) (model.Subcategory, error) {
	var known func(model.ID) bool
	if c.Catalog.Categories.Loaded() {
		known = func(id model.ID) bool {
			_, ok := c.Catalog.Categories.Get(id)
			return ok
		}
	}
	if errs := ValidateSubcategory(f, known); !errs.Empty() {
		return model.Subcategory{}, &ValidationError{Kind: string(model.KindSubcategory), Fields: errs}
	}
	if f.creating() {
		return c.Catalog.Subcategories.Add(ctx, f.Draft(""))
	}
	cur, ok := c.Catalog.Subcategories.Get(f.ID)
	if !ok {
		return model.Subcategory{}, &collection.NotFoundError{Kind: model.KindSubcategory, ID: f.ID}
	}
	return c.Catalog.Subcategories.Update(ctx, f.Draft(cur.Image))
}

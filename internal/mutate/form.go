// Package mutate validates entity forms and hands valid drafts to the
// collection stores.
package mutate

import (
	"strings"

	"catalog-admin/internal/model"
)

// UserForm is the user editor. An empty ID means create.
type UserForm struct {
	ID              model.ID `form:"-"`
	Name            string   `form:"name" validate:"notblank"`
	Email           string   `form:"email" validate:"notblank,email"`
	Contact         string   `form:"contact" validate:"min_digits=11"`
	Role            string   `form:"role" validate:"omitempty,oneof=admin customer"`
	Active          bool     `form:"active"`
	Address         string   `form:"address"`
	Description     string   `form:"description"`
	Password        string   `form:"password"`
	ConfirmPassword string   `form:"confirmPassword"`
}

func (f UserForm) creating() bool { return !f.ID.Valid() }

// UserFormFrom prefills the editor from an existing user.
func UserFormFrom(u model.User) UserForm {
	return UserForm{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Contact:     u.Phone,
		Role:        string(u.Role),
		Active:      u.Active,
		Address:     u.Address,
		Description: u.Description,
	}
}

func (f UserForm) Draft() model.User {
	role := model.Role(strings.ToLower(strings.TrimSpace(f.Role)))
	if role == "" {
		role = model.RoleCustomer
	}
	return model.User{
		ID:              f.ID,
		Name:            strings.TrimSpace(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Phone:           Digits(f.Contact),
		Role:            role,
		Address:         f.Address,
		Description:     f.Description,
		Active:          f.Active,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}

type CategoryForm struct {
	ID          model.ID          `form:"-"`
	Name        string            `form:"name" validate:"notblank"`
	Description string            `form:"description"`
	Active      bool              `form:"active"`
	Image       *model.Attachment `form:"image"`
}

func (f CategoryForm) creating() bool { return !f.ID.Valid() }

func CategoryFormFrom(c model.Category) CategoryForm {
	return CategoryForm{ID: c.ID, Name: c.Name, Description: c.Description, Active: c.Active}
}

// Draft keeps existing holds the persisted image reference that an edit
// without a new attachment retains.
func (f CategoryForm) Draft(existing string) model.Category {
	return model.Category{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Image:       existing,
		Active:      f.Active,
		NewImage:    f.Image,
	}
}

type SubcategoryForm struct {
	ID          model.ID          `form:"-"`
	Name        string            `form:"name" validate:"notblank"`
	CategoryID  model.ID          `form:"categoryId" validate:"notblank"`
	Description string            `form:"description"`
	Active      bool              `form:"active"`
	Image       *model.Attachment `form:"image"`
}

func (f SubcategoryForm) creating() bool { return !f.ID.Valid() }

func SubcategoryFormFrom(s model.Subcategory) SubcategoryForm {
	return SubcategoryForm{ID: s.ID, Name: s.Name, CategoryID: s.CategoryID, Description: s.Description, Active: s.Active}
}

func (f SubcategoryForm) Draft(existing string) model.Subcategory {
	return model.Subcategory{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		CategoryID:  model.ID(strings.TrimSpace(f.CategoryID.String())),
		Description: f.Description,
		Image:       existing,
		Active:      f.Active,
		NewImage:    f.Image,
	}
}

func ValidateUser(f UserForm) Errors {
	return collect(validate.Struct(f), "User")
}

func ValidateCategory(f CategoryForm) Errors {
	return collect(validate.Struct(f), "Category")
}

// ValidateSubcategory also checks the parent against the categories known at
// submission time; known may be nil to skip that check.
func ValidateSubcategory(f SubcategoryForm, known func(model.ID) bool) Errors {
	errs := collect(validate.Struct(f), "Subcategory")
	if _, bad := errs["categoryId"]; !bad && known != nil && !known(model.ID(strings.TrimSpace(f.CategoryID.String()))) {
		errs["categoryId"] = MsgCategoryUnknown
	}
	return errs
}

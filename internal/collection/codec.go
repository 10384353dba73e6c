package collection

import (
	"strings"

	"catalog-admin/internal/model"
	"catalog-admin/internal/statusutil"
	"catalog-admin/internal/transport"
)

// Entity is what a Store can hold.
type Entity interface {
	Key() model.ID
	IsActive() bool
}

type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpToggle
)

// Policy captures how a kind talks to its endpoints.
type Policy struct {
	// OptimisticUpdate rewrites the local entity before Update's call
	// resolves. ToggleStatus is optimistic for every kind.
	OptimisticUpdate bool
	// OverrideMultipartUpdate sends updates carrying a file as POST with
	// _method=PUT in the form body.
	OverrideMultipartUpdate bool
	// StampUserID adds the session's user id as user_id on create.
	StampUserID bool
}

// Codec is the kind-specific half of a Store: field mapping between raw
// records and entities, and payload construction.
type Codec[T Entity] interface {
	Kind() model.Kind
	Path() string
	Policy() Policy
	// Merge overlays the fields rec carries onto base; server fields win
	// where present. A nil rec only drops base's pending upload data
	// (attachments, passwords).
	Merge(base T, rec model.Record) T
	SetActive(e T, active bool) T
	Payload(e T, op Op) transport.Payload
}

// FollowUp is implemented by codecs that need a best-effort request after a
// successful create.
type FollowUp[T Entity] interface {
	AfterCreate(draft, created T) (transport.Request, bool)
}

// Decode normalizes one raw record.
func Decode[T Entity](c Codec[T], rec model.Record) T {
	var zero T
	return c.Merge(zero, rec)
}

func itemPath(c interface{ Path() string }, id model.ID) string {
	return strings.TrimRight(c.Path(), "/") + "/" + id.String()
}

func textField(k string, v any) transport.Field { return transport.Field{Key: k, Value: v} }

// ---- users ----

type UserCodec struct{}

func (UserCodec) Kind() model.Kind { return model.KindUser }
func (UserCodec) Path() string     { return "/users" }
func (UserCodec) Policy() Policy   { return Policy{} }

func (UserCodec) Merge(u model.User, rec model.Record) model.User {
	u.Password, u.ConfirmPassword = "", ""
	if rec == nil {
		return u
	}
	if id := CanonicalID(rec, model.KindUser, "_id"); id.Valid() {
		u.ID = id
	}
	if has(rec, "name") {
		u.Name = str(rec, "name")
	}
	if has(rec, "email") {
		u.Email = str(rec, "email")
	}
	if has(rec, "phone", "contact") {
		u.Phone = str(rec, "phone", "contact")
	}
	if has(rec, "role") {
		u.Role = model.Role(strings.ToLower(str(rec, "role")))
	}
	if u.Role == "" {
		u.Role = model.RoleCustomer
	}
	if has(rec, "address", "city") {
		u.Address = str(rec, "address", "city")
	}
	if has(rec, "description") {
		u.Description = str(rec, "description")
	}
	if hasStatus(rec) {
		u.Active = Active(rec)
	}
	return u
}

func (UserCodec) SetActive(u model.User, active bool) model.User {
	u.Active = active
	return u
}

// Payload carries every spelling of the user fields the backend accepts.
func (UserCodec) Payload(u model.User, op Op) transport.Payload {
	role := u.Role
	if role == "" {
		role = model.RoleCustomer
	}
	flag := statusutil.Flag(u.Active)
	fields := []transport.Field{
		textField("name", u.Name),
		textField("username", u.Email),
		textField("email", u.Email),
		textField("phone", u.Phone),
		textField("role", string(role)),
		textField("status", statusutil.Label(u.Active)),
		textField("is_active", flag),
		textField("isActive", flag),
		textField("active", flag),
		textField("address", u.Address),
		textField("city", u.Address),
		textField("image", ""),
		textField("description", u.Description),
	}
	if op != OpCreate && u.ID.Valid() {
		fields = append(fields, textField("id", u.ID.String()), textField("user_id", u.ID.String()))
	}
	if op != OpToggle && u.Password != "" {
		fields = append(fields, textField("password", u.Password))
		if op == OpCreate {
			fields = append(fields, textField("password_confirmation", u.ConfirmPassword))
		}
	}
	return transport.JSON(fields...)
}

// AfterCreate deactivates a user drafted as inactive; servers tend to
// register new accounts as active regardless of the submitted status.
func (c UserCodec) AfterCreate(draft, created model.User) (transport.Request, bool) {
	if draft.Active || !created.ID.Valid() {
		return transport.Request{}, false
	}
	off := created
	off.Active = false
	return transport.Request{
		Method:      "PUT",
		Path:        itemPath(c, created.ID),
		Payload:     c.Payload(off, OpToggle),
		DiscardBody: true,
	}, true
}

// ---- categories ----

type CategoryCodec struct{}

func (CategoryCodec) Kind() model.Kind { return model.KindCategory }
func (CategoryCodec) Path() string     { return "/category" }

func (CategoryCodec) Policy() Policy {
	return Policy{OptimisticUpdate: true, StampUserID: true}
}

func (CategoryCodec) Merge(c model.Category, rec model.Record) model.Category {
	c.NewImage = nil
	if rec == nil {
		return c
	}
	if id := CanonicalID(rec, model.KindCategory); id.Valid() {
		c.ID = id
	}
	if has(rec, "name", "category_name") {
		c.Name = str(rec, "name", "category_name")
	}
	if has(rec, "description") {
		c.Description = str(rec, "description")
	}
	if has(rec, "image", "image_url") {
		c.Image = str(rec, "image", "image_url")
	}
	if hasStatus(rec) {
		c.Active = Active(rec)
	}
	return c
}

func (CategoryCodec) SetActive(c model.Category, active bool) model.Category {
	c.Active = active
	return c
}

func (CategoryCodec) Payload(c model.Category, op Op) transport.Payload {
	fields := []transport.Field{
		textField("name", c.Name),
		textField("description", c.Description),
		textField("status", statusutil.Label(c.Active)),
	}
	if op == OpToggle {
		return transport.JSON(fields...)
	}
	return transport.Auto("image", c.NewImage, fields...)
}

// ---- subcategories ----

type SubcategoryCodec struct{}

func (SubcategoryCodec) Kind() model.Kind { return model.KindSubcategory }
func (SubcategoryCodec) Path() string     { return "/subcategory" }

func (SubcategoryCodec) Policy() Policy {
	return Policy{OptimisticUpdate: true, OverrideMultipartUpdate: true}
}

func (SubcategoryCodec) Merge(s model.Subcategory, rec model.Record) model.Subcategory {
	s.NewImage = nil
	if rec == nil {
		return s
	}
	if id := CanonicalID(rec, model.KindSubcategory); id.Valid() {
		s.ID = id
	}
	if has(rec, "name") {
		s.Name = str(rec, "name")
	}
	if has(rec, "categoryId", "category_id") {
		s.CategoryID = model.ID(str(rec, "categoryId", "category_id"))
	} else if cat, ok := rec["category"].(map[string]any); ok {
		if id := CanonicalID(model.Record(cat), model.KindCategory); id.Valid() {
			s.CategoryID = id
		}
	}
	if has(rec, "description") {
		s.Description = str(rec, "description")
	}
	if has(rec, "image", "image_url") {
		s.Image = str(rec, "image", "image_url")
	}
	if hasStatus(rec) {
		s.Active = Active(rec)
	}
	return s
}

func (SubcategoryCodec) SetActive(s model.Subcategory, active bool) model.Subcategory {
	s.Active = active
	return s
}

func (SubcategoryCodec) Payload(s model.Subcategory, op Op) transport.Payload {
	fields := []transport.Field{
		textField("name", s.Name),
		textField("categoryId", s.CategoryID.String()),
		textField("category_id", s.CategoryID.String()),
		textField("status", statusutil.Label(s.Active)),
		textField("description", s.Description),
	}
	if op == OpToggle {
		return transport.JSON(fields...)
	}
	return transport.Auto("image", s.NewImage, fields...)
}

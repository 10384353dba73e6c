package model

import (
	"strconv"
	"strings"
)

type Kind string

const (
	KindUser        Kind = "user"
	KindCategory    Kind = "category"
	KindSubcategory Kind = "subcategory"
)

// Plural is the collection name used by list envelopes ("users", "categories", ...).
func (k Kind) Plural() string {
	switch k {
	case KindCategory:
		return "categories"
	case KindSubcategory:
		return "subcategories"
	case KindUser:
		return "users"
	default:
		return string(k) + "s"
	}
}

// ID is the canonical identifier of an entity. The backend hands out integers
// or strings; both are kept as their decimal/string form. The empty ID means
// the record carried none of the known id fields.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) Valid() bool { return strings.TrimSpace(string(id)) != "" }

// Int returns the numeric value used for ordering; non-numeric ids order as 0.
func (id ID) Int() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Attachment is a binary file pending upload.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
}

type User struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Role        Role   `json:"role,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`

	// Password is only sent on create or when changing it.
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
}

func (u User) Key() ID        { return u.ID }
func (u User) Label() string  { return u.Name }
func (u User) IsActive() bool { return u.Active }

// SearchText is matched by list searches: name plus contact number.
func (u User) SearchText() []string { return []string{u.Name, u.Phone} }

type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Active      bool   `json:"active"`

	// NewImage replaces Image on the next add/update when set.
	NewImage *Attachment `json:"-"`
}

func (c Category) Key() ID              { return c.ID }
func (c Category) Label() string        { return c.Name }
func (c Category) IsActive() bool       { return c.Active }
func (c Category) SearchText() []string { return []string{c.Name} }

type Subcategory struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	CategoryID  ID     `json:"categoryId"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Active      bool   `json:"active"`

	NewImage *Attachment `json:"-"`
}

func (s Subcategory) Key() ID              { return s.ID }
func (s Subcategory) Label() string        { return s.Name }
func (s Subcategory) IsActive() bool       { return s.Active }
func (s Subcategory) SearchText() []string { return []string{s.Name} }

// Record is one raw object as decoded from the backend, before normalization.
type Record map[string]any

// String returns the field as a string, formatting numbers without a fraction
// when they are integral.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// First returns the first key whose value is present and non-empty.
func (r Record) First(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return Stringify(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	case interface{ String() string }:
		return t.String()
	default:
		return ""
	}
}

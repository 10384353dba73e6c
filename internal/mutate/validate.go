package mutate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MsgPasswordTooShort = "Password must be at least 8 characters long."
	MsgPasswordMismatch = "Passwords do not match."
	MsgPhoneTooShort    = "Phone number must be at least 11 characters long."
	MsgImageRequired    = "Image required"
	MsgCategoryRequired = "Category selection required"
	MsgCategoryUnknown  = "Selected category does not exist"
	MsgEmailInvalid     = "Enter a valid email address"
	MsgRoleInvalid      = "Role must be admin or customer"

	minPasswordLen = 8
	minPhoneDigits = 11
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("min_digits", validateMinDigits)
	v.RegisterStructValidation(userRules, UserForm{})
	v.RegisterStructValidation(categoryRules, CategoryForm{})
	v.RegisterStructValidation(subcategoryRules, SubcategoryForm{})
	return v
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateMinDigits counts only the digits of the field.
func validateMinDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(Digits(fl.Field().String())) >= n
}

// Digits strips everything but 0-9.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func userRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(UserForm)
	if f.creating() || f.Password != "" {
		if len(f.Password) < minPasswordLen {
			sl.ReportError(f.Password, "password", "Password", "min", strconv.Itoa(minPasswordLen))
		}
	}
	if f.Password != f.ConfirmPassword {
		sl.ReportError(f.ConfirmPassword, "confirmPassword", "ConfirmPassword", "eqfield", "password")
	}
}

func categoryRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(CategoryForm)
	if f.creating() && f.Image == nil {
		sl.ReportError(f.Image, "image", "Image", "required", "")
	}
}

func subcategoryRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(SubcategoryForm)
	if f.creating() && f.Image == nil {
		sl.ReportError(f.Image, "image", "Image", "required", "")
	}
}

// collect turns validator output into field messages; subject names the
// form in generic messages ("Category name required").
func collect(err error, subject string) Errors {
	out := Errors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe.Tag(), subject)
	}
	return out
}

func message(field, tag, subject string) string {
	switch field {
	case "password":
		return MsgPasswordTooShort
	case "confirmPassword":
		return MsgPasswordMismatch
	case "contact":
		return MsgPhoneTooShort
	case "image":
		return MsgImageRequired
	case "categoryId":
		return MsgCategoryRequired
	case "email":
		if tag == "email" {
			return MsgEmailInvalid
		}
		return "Email required"
	case "role":
		return MsgRoleInvalid
	case "name":
		return subject + " name required"
	}
	return strings.ToUpper(field[:1]) + field[1:] + " is invalid"
}

// Package validate checks entity forms before they are submitted. Struct
// rules come from `validate` tags; cross-field and cross-entity rules are
// coded per entity.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/lojf/parish/internal/services"
)

const (
	phoneTag  = "phone"
	phoneText = "not a valid phone number"

	requiredText = "this field is required"
)

// FieldError is a problem with one field. Field is the API path of the
// field, e.g. "contacts[0].phone".
type FieldError struct {
	Field   string
	Message string
}

// Errors is the error bag of one form, in the order the rules ran.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// First returns the first violated rule.
func (e Errors) First() (FieldError, bool) {
	if len(e) == 0 {
		return FieldError{}, false
	}
	return e[0], true
}

// For returns the errors reported on field.
func (e Errors) For(field string) []FieldError {
	var out []FieldError
	for _, fe := range e {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// Map keys the first message of every field by its path.
func (e Errors) Map() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

func (e *Errors) add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Message: msg})
}

// Validator wraps a configured validator/v10 instance with english messages.
type Validator struct {
	v  *validator.Validate
	tr ut.Translator
}

func New() *Validator {
	v := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	tr, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, tr)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return services.ValidPhone(fl.Field().String())
	})
	registerTranslation(v, tr, phoneTag, phoneText)
	registerTranslation(v, tr, "required", requiredText, true)
	registerTranslation(v, tr, "required_if", requiredText, true)

	return &Validator{v: v, tr: tr}
}

func registerTranslation(v *validator.Validate, tr ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = v.RegisterTranslation(
		tag, tr,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct runs the tag rules of s.
func (v *Validator) Struct(s any) Errors {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Field: "", Message: err.Error()}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out.add(path(fe.Namespace()), fe.Translate(v.tr))
	}
	return out
}

// path drops the root struct name from a validator namespace.
func path(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

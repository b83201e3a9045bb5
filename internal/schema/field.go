// Package schema describes editable entities as lists of field descriptors and
// maps them between their UI shape (typed Go structs) and their API shape
// (JSON documents).
package schema

import "github.com/lojf/parish/internal/settings"

type InputType string

const (
	Text     InputType = "text"
	Select   InputType = "select"
	Checkbox InputType = "checkbox"
	Date     InputType = "date"
	Number   InputType = "number"
	Tel      InputType = "tel"
	Datalist InputType = "datalist"
)

// Ctx is the evaluation context handed to computed attributes. For row fields
// Form points at the row, Parent at the owning entity and Index at the row
// position.
type Ctx[T any] struct {
	Form     *T
	Parent   any
	Index    int
	ReadOnly bool
	Options  *settings.Registry
}

// API controls how a field is stored in the API document. Key may be a dotted
// path ("address.city"), written as nested objects.
type API[T any] struct {
	Key string
	// ToAPI converts the UI value; keep=false omits the key.
	ToAPI   func(v any, ui *T) (out any, keep bool)
	FromAPI func(v any, api map[string]any) any
}

// OptionRef is a live option list such as settings.Ref.
type OptionRef interface {
	Value() []settings.Option
}

type optionSource[T any] struct {
	list []settings.Option
	fn   func(Field[T], Ctx[T]) []settings.Option
	ref  OptionRef
}

type Field[T any] struct {
	Col      string
	Label    string
	Type     InputType
	API      API[T]
	Default  Value[Ctx[T], any]
	Show     Value[Ctx[T], bool]
	Disabled Value[Ctx[T], bool]

	Get func(*T) any
	Set func(*T, any)

	opts optionSource[T]
}

// Bind builds a field over the struct member returned by ptr.
func Bind[T, V any](col, label string, typ InputType, ptr func(*T) *V, conv func(any) V) Field[T] {
	return Field[T]{
		Col:   col,
		Label: label,
		Type:  typ,
		Get:   func(t *T) any { return *ptr(t) },
		Set:   func(t *T, v any) { *ptr(t) = conv(v) },
	}
}

func String[T any](col, label string, ptr func(*T) *string) Field[T] {
	return Bind(col, label, Text, ptr, AsString)
}

func Bool[T any](col, label string, ptr func(*T) *bool) Field[T] {
	return Bind(col, label, Checkbox, ptr, AsBool)
}

func Int[T any](col, label string, ptr func(*T) *int) Field[T] {
	return Bind(col, label, Number, ptr, AsInt)
}

func Float[T any](col, label string, ptr func(*T) *float64) Field[T] {
	return Bind(col, label, Number, ptr, AsFloat)
}

func (f Field[T]) As(typ InputType) Field[T] {
	f.Type = typ
	return f
}

func (f Field[T]) APIKey(key string) Field[T] {
	f.API.Key = key
	return f
}

func (f Field[T]) MapAPI(to func(any, *T) (any, bool), from func(any, map[string]any) any) Field[T] {
	f.API.ToAPI = to
	f.API.FromAPI = from
	return f
}

// UIOnly marks a display field that is never written to the API.
func (f Field[T]) UIOnly() Field[T] {
	f.API.ToAPI = func(any, *T) (any, bool) { return nil, false }
	return f
}

func (f Field[T]) DefaultTo(v any) Field[T] {
	f.Default = Literal[Ctx[T], any](v)
	return f
}

func (f Field[T]) DefaultFunc(fn func(Ctx[T]) any) Field[T] {
	f.Default = Computed(fn)
	return f
}

func (f Field[T]) ShowIf(fn func(Ctx[T]) bool) Field[T] {
	f.Show = Computed(fn)
	return f
}

func (f Field[T]) Hidden() Field[T] {
	f.Show = Literal[Ctx[T], bool](false)
	return f
}

func (f Field[T]) DisableIf(fn func(Ctx[T]) bool) Field[T] {
	f.Disabled = Computed(fn)
	return f
}

func (f Field[T]) Disable() Field[T] {
	f.Disabled = Literal[Ctx[T], bool](true)
	return f
}

func (f Field[T]) OptionList(opts ...settings.Option) Field[T] {
	f.opts = optionSource[T]{list: opts}
	return f
}

func (f Field[T]) OptionsFunc(fn func(Field[T], Ctx[T]) []settings.Option) Field[T] {
	f.opts = optionSource[T]{fn: fn}
	return f
}

func (f Field[T]) OptionsFrom(ref OptionRef) Field[T] {
	f.opts = optionSource[T]{ref: ref}
	return f
}

func (f Field[T]) apiKey() string {
	if f.API.Key != "" {
		return f.API.Key
	}
	return f.Col
}

func (f Field[T]) zero() any {
	switch f.Type {
	case Checkbox:
		return false
	case Number:
		return 0
	default:
		return ""
	}
}

// IsVisible reports whether f is shown; fields are visible unless Show says otherwise.
func IsVisible[T any](f Field[T], ctx Ctx[T]) bool {
	return f.Show.Resolve(ctx, true)
}

// IsDisabled reports whether f is read-only in ctx. A read-only context
// disables every field regardless of its own Disabled attribute.
func IsDisabled[T any](f Field[T], ctx Ctx[T]) bool {
	if ctx.ReadOnly {
		return true
	}
	return f.Disabled.Resolve(ctx, false)
}

// Options resolves the field's option list. An unset source yields an empty list.
func Options[T any](f Field[T], ctx Ctx[T]) []settings.Option {
	var out []settings.Option
	switch {
	case f.opts.fn != nil:
		out = f.opts.fn(f, ctx)
	case f.opts.ref != nil:
		out = f.opts.ref.Value()
	default:
		out = f.opts.list
	}
	if out == nil {
		return []settings.Option{}
	}
	return out
}

// DefaultValue resolves the field default, falling back to the zero value for its type.
func DefaultValue[T any](f Field[T], ctx Ctx[T]) any {
	return f.Default.Resolve(ctx, f.zero())
}

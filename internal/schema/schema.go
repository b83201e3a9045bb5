package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

// Schema is the field list of one entity plus its nested row sets.
type Schema[T any] struct {
	Name   string
	Fields []Field[T]
	Rows   []RowSet[T]
}

// Field looks up a field by column name.
func (s *Schema[T]) Field(col string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Col == col {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Check verifies that columns and API keys are unique and every field is bound.
func (s *Schema[T]) Check() error {
	cols := map[string]bool{}
	keys := map[string]bool{}
	for _, f := range s.Fields {
		if f.Get == nil || f.Set == nil {
			return errors.Errorf("%s: field %q has no accessor", s.Name, f.Col)
		}
		if cols[f.Col] {
			return errors.Errorf("%s: duplicate column %q", s.Name, f.Col)
		}
		cols[f.Col] = true
		if keys[f.apiKey()] {
			return errors.Errorf("%s: duplicate api key %q", s.Name, f.apiKey())
		}
		keys[f.apiKey()] = true
	}
	for _, r := range s.Rows {
		if keys[r.Key()] {
			return errors.Errorf("%s: row key %q clashes with a field", s.Name, r.Key())
		}
		keys[r.Key()] = true
		if err := r.check(); err != nil {
			return errors.Wrap(err, s.Name)
		}
	}
	return nil
}

// New builds an entity with every default applied and row sets seeded.
func (s *Schema[T]) New(ctx Ctx[T]) *T {
	t := new(T)
	ctx.Form = t
	for _, f := range s.Fields {
		f.Set(t, DefaultValue(f, ctx))
	}
	for _, r := range s.Rows {
		r.seed(t, ctx)
	}
	return t
}

// RowSet is a nested array of sub-entities such as contacts or payments.
type RowSet[T any] interface {
	Key() string
	Len(form *T) int
	check() error
	seed(form *T, ctx Ctx[T])
	toAPI(form *T) []any
	fromAPI(raw any, form *T, ctx Ctx[T])
}

type rows[T, R any] struct {
	key  string
	sub  *Schema[R]
	ptr  func(*T) *[]R
	nNew int
}

// Rows declares a row set stored under key; New seeds n default rows.
func Rows[T, R any](key string, sub *Schema[R], ptr func(*T) *[]R, n int) RowSet[T] {
	return &rows[T, R]{key: key, sub: sub, ptr: ptr, nNew: n}
}

func (r *rows[T, R]) Key() string { return r.key }

func (r *rows[T, R]) Len(form *T) int { return len(*r.ptr(form)) }

func (r *rows[T, R]) check() error {
	if r.sub == nil || r.ptr == nil {
		return fmt.Errorf("row set %q is not bound", r.key)
	}
	return r.sub.Check()
}

func (r *rows[T, R]) rowCtx(form *T, ctx Ctx[T], i int) Ctx[R] {
	return Ctx[R]{Parent: form, Index: i, ReadOnly: ctx.ReadOnly, Options: ctx.Options}
}

func (r *rows[T, R]) seed(form *T, ctx Ctx[T]) {
	out := make([]R, 0, r.nNew)
	for i := 0; i < r.nNew; i++ {
		out = append(out, *r.sub.New(r.rowCtx(form, ctx, i)))
	}
	*r.ptr(form) = out
}

func (r *rows[T, R]) toAPI(form *T) []any {
	src := *r.ptr(form)
	out := make([]any, 0, len(src))
	for i := range src {
		out = append(out, r.sub.ToAPI(&src[i]))
	}
	return out
}

func (r *rows[T, R]) fromAPI(raw any, form *T, ctx Ctx[T]) {
	list, _ := raw.([]any)
	out := make([]R, 0, len(list))
	for i, el := range list {
		m, _ := el.(map[string]any)
		out = append(out, *r.sub.ToUI(m, r.rowCtx(form, ctx, i)))
	}
	*r.ptr(form) = out
}

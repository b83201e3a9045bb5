// Package listview narrows and pages in-memory lists. It knows nothing about
// the entities it filters: rows are reached through caller-supplied accessors.
package listview

import (
	"reflect"
	"strings"

	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/settings"
)

type Kind string

const (
	KindText        Kind = "text"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindCheckbox    Kind = "checkbox"
)

// Filter describes one entry of a filter menu.
//
// Matches, when set, replaces the built-in comparison for Kind and receives
// the whole menu state so that filters can depend on each other. Field
// extracts the compared value for the built-ins.
type Filter[R any] struct {
	Key     string
	Label   string
	Kind    Kind
	Options func() []settings.Option
	Default any
	Empty   any
	Field   func(R) any
	Matches func(row R, value any, state map[string]any) bool
}

func (f Filter[R]) emptyValue() any {
	if f.Empty != nil {
		return f.Empty
	}
	if f.Kind == KindMultiSelect {
		return []string{}
	}
	return nil
}

// Menu holds the current value of every filter. It is not safe for
// concurrent use; View serializes access.
type Menu[R any] struct {
	defs  []Filter[R]
	state map[string]any
}

func NewMenu[R any](defs ...Filter[R]) *Menu[R] {
	m := &Menu[R]{defs: defs, state: make(map[string]any, len(defs))}
	for _, d := range defs {
		if d.Default != nil {
			m.state[d.Key] = d.Default
		} else {
			m.state[d.Key] = d.emptyValue()
		}
	}
	return m
}

func (m *Menu[R]) Filters() []Filter[R] { return m.defs }

// Set stores v for key. Unknown keys are ignored and reported as false.
func (m *Menu[R]) Set(key string, v any) bool {
	for _, d := range m.defs {
		if d.Key == key {
			m.state[key] = v
			return true
		}
	}
	return false
}

func (m *Menu[R]) Value(key string) any { return m.state[key] }

// State returns a copy of the current values.
func (m *Menu[R]) State() map[string]any {
	out := make(map[string]any, len(m.state))
	for k, v := range m.state {
		out[k] = v
	}
	return out
}

// Clear resets every filter to its empty value.
func (m *Menu[R]) Clear() {
	for _, d := range m.defs {
		m.state[d.Key] = d.emptyValue()
	}
}

// Apply keeps the rows that pass every filter. Filters holding an empty value
// pass every row.
func (m *Menu[R]) Apply(list []R) []R {
	out := make([]R, 0, len(list))
	for _, row := range list {
		if m.keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (m *Menu[R]) keep(row R) bool {
	for _, d := range m.defs {
		v := m.state[d.Key]
		if isEmpty(d, v) {
			continue
		}
		if d.Matches != nil {
			if !d.Matches(row, v, m.state) {
				return false
			}
			continue
		}
		if d.Field == nil {
			continue
		}
		if !builtin(d.Kind, d.Field(row), v) {
			return false
		}
	}
	return true
}

// isEmpty treats nil, blank strings, empty lists, an unchecked checkbox and
// the filter's own Empty value as unset.
func isEmpty[R any](d Filter[R], v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		if strings.TrimSpace(x) == "" {
			return true
		}
	case bool:
		if d.Kind == KindCheckbox && !x {
			return true
		}
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}
	return d.Empty != nil && reflect.DeepEqual(v, d.Empty)
}

func builtin(kind Kind, field, v any) bool {
	switch kind {
	case KindSelect:
		return schema.AsString(field) == schema.AsString(v)
	case KindMultiSelect:
		got := schema.AsString(field)
		for _, want := range asStrings(v) {
			if want == got {
				return true
			}
		}
		return false
	case KindCheckbox:
		return schema.AsBool(field) == schema.AsBool(v)
	default:
		return strings.Contains(strings.ToLower(schema.AsString(field)), strings.ToLower(strings.TrimSpace(schema.AsString(v))))
	}
}

func asStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, schema.AsString(e))
		}
		return out
	default:
		return []string{schema.AsString(v)}
	}
}

// FilterText keeps rows whose haystack contains every whitespace-separated
// token of query, case-insensitively. A blank query returns list unchanged.
func FilterText[R any](list []R, query string, haystack func(R) string) []R {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 || haystack == nil {
		return list
	}
	out := make([]R, 0, len(list))
	for _, row := range list {
		h := strings.ToLower(haystack(row))
		ok := true
		for _, t := range tokens {
			if !strings.Contains(h, t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row)
		}
	}
	return out
}

package schema

import "strings"

// ToUI maps an API document onto a new entity. Missing or null values take the
// field default, computed afresh for every call.
func (s *Schema[T]) ToUI(api map[string]any, ctx Ctx[T]) *T {
	t := new(T)
	ctx.Form = t
	for _, f := range s.Fields {
		raw, ok := lookup(api, f.apiKey())
		switch {
		case !ok || raw == nil:
			f.Set(t, DefaultValue(f, ctx))
		case f.API.FromAPI != nil:
			f.Set(t, f.API.FromAPI(raw, api))
		default:
			f.Set(t, raw)
		}
	}
	for _, r := range s.Rows {
		raw, _ := lookup(api, r.Key())
		r.fromAPI(raw, t, ctx)
	}
	return t
}

// ToAPI projects ui onto its API document.
func (s *Schema[T]) ToAPI(ui *T) map[string]any {
	out := make(map[string]any, len(s.Fields)+len(s.Rows))
	for _, f := range s.Fields {
		v := f.Get(ui)
		if f.API.ToAPI != nil {
			var keep bool
			if v, keep = f.API.ToAPI(v, ui); !keep {
				continue
			}
		}
		assign(out, f.apiKey(), v)
	}
	for _, r := range s.Rows {
		out[r.Key()] = r.toAPI(ui)
	}
	return out
}

func lookup(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	cur := m
	parts := strings.Split(path, ".")
	for i, p := range parts {
		v, ok := cur[p]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

func assign(m map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

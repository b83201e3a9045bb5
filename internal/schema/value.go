package schema

// Value holds an attribute that is either a literal or computed from an
// evaluation context. The zero Value is unset.
type Value[C, V any] struct {
	lit V
	fn  func(C) V
	set bool
}

func Literal[C, V any](v V) Value[C, V] {
	return Value[C, V]{lit: v, set: true}
}

func Computed[C, V any](fn func(C) V) Value[C, V] {
	return Value[C, V]{fn: fn, set: fn != nil}
}

func (v Value[C, V]) IsSet() bool { return v.set }

// Resolve returns the literal or the computed value, or def when unset.
// Computed values are evaluated on every call.
func (v Value[C, V]) Resolve(ctx C, def V) V {
	switch {
	case !v.set:
		return def
	case v.fn != nil:
		return v.fn(ctx)
	default:
		return v.lit
	}
}

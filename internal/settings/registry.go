package settings

import "sync"

// Registry serves option lists from the live settings document. Swap replaces
// the document; option refs handed out earlier observe the new document on
// their next read.
type Registry struct {
	mu sync.RWMutex
	s  *Settings
}

func NewRegistry(s *Settings) *Registry {
	if s == nil {
		s = Fallback()
	}
	return &Registry{s: s}
}

func (r *Registry) Settings() *Settings {
	if r == nil {
		return Fallback()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.s
}

func (r *Registry) Swap(s *Settings) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.s = s
	r.mu.Unlock()
}

// Ref is a live option list; Value reads the current settings each time.
type Ref struct {
	r    *Registry
	pick func(*Settings) []Option
}

func (ref Ref) Value() []Option {
	if ref.pick == nil {
		return nil
	}
	return ref.pick(ref.r.Settings())
}

func (r *Registry) ref(pick func(*Settings) []Option) Ref {
	return Ref{r: r, pick: pick}
}

func (r *Registry) EventTypes() Ref {
	return r.ref(func(s *Settings) []Option { return s.EventTypes })
}

func (r *Registry) Levels() Ref {
	return r.ref(func(s *Settings) []Option { return s.Levels })
}

func (r *Registry) Relationships() Ref {
	return r.ref(func(s *Settings) []Option { return s.Relationships })
}

func (r *Registry) PaymentMethods() Ref {
	return r.ref(func(s *Settings) []Option { return s.PaymentMethods })
}

func (r *Registry) FeeCodes() Ref {
	return r.ref(func(s *Settings) []Option {
		out := make([]Option, 0, len(s.Fees))
		for _, f := range s.Fees {
			out = append(out, Option{Value: f.Code, Label: f.Label})
		}
		return out
	})
}

func (r *Registry) AgeGroups() Ref {
	return r.ref(func(s *Settings) []Option {
		out := make([]Option, 0, len(s.AgeGroups))
		for _, g := range s.AgeGroups {
			out = append(out, Option{Value: g.Label, Label: g.Label})
		}
		return out
	})
}

func (r *Registry) CurrentYear() int {
	return r.Settings().CurrentYear
}

func (r *Registry) ReadOnly() bool {
	return r.Settings().ReadOnly
}

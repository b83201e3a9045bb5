package validate

import (
	"fmt"
	"strings"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/eligibility"
)

// Family checks the tag rules plus the surname rule: every child's last name
// must match one of the contacts' last names unless the child is flagged as a
// name exception.
func (v *Validator) Family(f *domain.Family) Errors {
	errs := v.Struct(f)
	surnames := map[string]bool{}
	for _, c := range f.Contacts {
		if n := fold(c.LastName); n != "" {
			surnames[n] = true
		}
	}
	for i, ch := range f.Children {
		if ch.IsNameException {
			continue
		}
		if n := fold(ch.LastName); n != "" && !surnames[n] {
			errs.add(fmt.Sprintf("children[%d].lastName", i),
				"last name matches no contact; mark the child as a name exception")
		}
	}
	seen := map[string]bool{}
	for i, ch := range f.Children {
		if ch.ChildID == "" {
			continue
		}
		if seen[ch.ChildID] {
			errs.add(fmt.Sprintf("children[%d].childId", i), "duplicate child id")
		}
		seen[ch.ChildID] = true
	}
	return errs
}

// Event checks the tag rules, the date range and every prerequisite row
// against the other events on file.
func (v *Validator) Event(e *domain.Event, all []*domain.Event) Errors {
	errs := v.Struct(e)
	if e.EndDate != "" && eligibility.NormalizeDate(e.EndDate) < eligibility.NormalizeDate(e.OpenDate) {
		errs.add("endDate", "end date is before the open date")
	}
	if e.MaxAge > 0 && e.MinAge > e.MaxAge {
		errs.add("maxAge", "maximum age is below the minimum age")
	}
	byID := index(all)
	seen := map[string]bool{}
	for i, p := range e.Prerequisites {
		field := fmt.Sprintf("prerequisites[%d].eventId", i)
		if p.EventID == "" {
			continue
		}
		if seen[p.EventID] {
			errs.add(field, "prerequisite selected twice")
			continue
		}
		seen[p.EventID] = true
		if !eligibility.IsValidPrereqSelection(byID[p.EventID], e) {
			errs.add(field, "not a valid prerequisite for this event")
		}
	}
	seenFee := map[string]bool{}
	for i, f := range e.Fees {
		if seenFee[f.Code] {
			errs.add(fmt.Sprintf("fees[%d].code", i), "fee listed twice")
		}
		seenFee[f.Code] = true
	}
	return errs
}

// Registration checks the tag rules, that the event exists, that the family
// holds a registration for every prerequisite event and is not already
// registered for this event.
func (v *Validator) Registration(r *domain.Registration, events []*domain.Event, regs []*domain.Registration) Errors {
	errs := v.Struct(r)
	if r.EventID == "" {
		return errs
	}
	ev := index(events)[r.EventID]
	if ev == nil {
		errs.add("eventId", "unknown event")
		return errs
	}
	if r.FamilyID != "" {
		if missing := eligibility.MissingPrereqs(ev, r.FamilyID, regs); len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for _, id := range missing {
				names = append(names, title(index(events)[id], id))
			}
			errs.add("eventId", "prerequisite not met: "+strings.Join(names, ", "))
		}
		for _, other := range regs {
			if other == nil || other.ID == r.ID || other.Status == domain.StatusCancelled {
				continue
			}
			if other.FamilyID == r.FamilyID && other.EventID == r.EventID {
				errs.add("familyId", "family is already registered for this event")
				break
			}
		}
	}
	if ev.Level == domain.LevelPerChild && eligibility.Quantity(ev, r) == 0 {
		errs.add("children", "select at least one child")
	}
	seen := map[string]bool{}
	for i, c := range r.Children {
		if c.ChildID != "" && seen[c.ChildID] {
			errs.add(fmt.Sprintf("children[%d].childId", i), "child selected twice")
		}
		seen[c.ChildID] = true
	}
	return errs
}

func index(events []*domain.Event) map[string]*domain.Event {
	out := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		if e != nil {
			out[e.ID] = e
		}
	}
	return out
}

func title(e *domain.Event, id string) string {
	if e == nil || e.Title == "" {
		return id
	}
	return e.Title
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

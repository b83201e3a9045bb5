package controller

import (
	"context"
	"strings"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/eligibility"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/settings"
	"github.com/lojf/parish/internal/validate"
)

// Registrations edits registrations. Families and events are read from their
// own controllers at call time; they are not reloaded here.
type Registrations struct {
	*Controller[domain.Registration]
	reg      *settings.Registry
	families *Families
	events   *Events
}

func NewRegistrations(store Store, reg *settings.Registry, v *validate.Validator, families *Families, events *Events, opts Options) *Registrations {
	r := &Registrations{reg: reg, families: families, events: events}
	hooks := domain.RegistrationHooks{
		EventOptions:  events.Choices,
		FamilyOptions: families.Choices,
		ChildOptions:  r.childOptions,
		FamilyName:    r.familyName,
	}
	r.Controller = New(Config[domain.Registration]{
		Name:    "registrations",
		Schema:  domain.NewRegistrationSchema(reg, hooks),
		Store:   store,
		Options: reg,
		ID:      func(x *domain.Registration) string { return x.ID },
		Validate: func(x *domain.Registration, all []*domain.Registration) validate.Errors {
			return v.Registration(x, events.Items(), all)
		},
		Haystack: func(x *domain.Registration) string {
			return strings.Join([]string{x.ID, x.FamilyID, x.FamilyName, x.EventID}, " ")
		},
		Filters: []listview.Filter[*domain.Registration]{
			{Key: "eventId", Label: "Event", Kind: listview.KindSelect, Options: events.Choices,
				Field: func(x *domain.Registration) any { return x.EventID }},
			{Key: "status", Label: "Status", Kind: listview.KindMultiSelect,
				Field: func(x *domain.Registration) any { return x.Status }},
			{Key: "unpaid", Label: "Unpaid only", Kind: listview.KindCheckbox,
				Matches: func(x *domain.Registration, v any, _ map[string]any) bool { return !x.Paid() }},
		},
		PageSize: opts.PageSize,
		Debounce: opts.Debounce,
		Log:      opts.Log,
	})
	return r
}

func (c *Registrations) Families() []*domain.Family { return c.families.Items() }
func (c *Registrations) Events() []*domain.Event    { return c.events.Items() }

func (c *Registrations) familyName(id string) string {
	if f := c.families.Find(id); f != nil {
		return f.DisplayName()
	}
	return ""
}

func (c *Registrations) childOptions(form *domain.Registration) []settings.Option {
	f := c.families.Find(form.FamilyID)
	if f == nil {
		return nil
	}
	out := make([]settings.Option, 0, len(f.Children))
	for _, ch := range f.Children {
		out = append(out, settings.Option{Value: ch.ChildID, Label: strings.TrimSpace(ch.FirstName + " " + ch.LastName)})
	}
	return out
}

// SelectFamily points the open registration at family id. Children that do
// not belong to the family are dropped and payments are recomputed.
func (c *Registrations) SelectFamily(id string) bool {
	fam := c.families.Find(id)
	return c.Edit(func(x *domain.Registration) {
		x.FamilyID = id
		x.FamilyName = ""
		kept := x.Children[:0:0]
		if fam != nil {
			x.FamilyName = fam.DisplayName()
			for _, rc := range x.Children {
				if fam.ChildByID(rc.ChildID) != nil {
					kept = append(kept, rc)
				}
			}
		}
		x.Children = kept
		c.recompute(x, fam)
	})
}

// SelectEvent points the open registration at event id and recomputes
// payments and age groups.
func (c *Registrations) SelectEvent(id string) bool {
	return c.Edit(func(x *domain.Registration) {
		x.EventID = id
		c.recompute(x, c.families.Find(x.FamilyID))
	})
}

// SetChildren replaces the children rows with ids, keeping the status of
// children already listed.
func (c *Registrations) SetChildren(ids ...string) bool {
	return c.Edit(func(x *domain.Registration) {
		prev := map[string]domain.RegChild{}
		for _, rc := range x.Children {
			prev[rc.ChildID] = rc
		}
		rows := make([]domain.RegChild, 0, len(ids))
		for _, id := range ids {
			rc, ok := prev[id]
			if !ok {
				rc = domain.RegChild{ChildID: id, Status: domain.StatusPending}
			}
			rows = append(rows, rc)
		}
		x.Children = rows
		c.recompute(x, c.families.Find(x.FamilyID))
	})
}

// selection returns the family and event ids of the open form.
func (c *Registrations) selection() (familyID, eventID string, ok bool) {
	ok = c.Edit(func(x *domain.Registration) { familyID, eventID = x.FamilyID, x.EventID })
	return
}

// recompute refreshes age groups and payment lines from the selected event
// and family. It runs inside Edit.
func (c *Registrations) recompute(x *domain.Registration, fam *domain.Family) {
	ev := c.events.Find(x.EventID)
	year := c.reg.CurrentYear()
	if ev != nil && ev.Year > 0 {
		year = ev.Year
	}
	groups := c.reg.Settings().AgeGroups
	for i := range x.Children {
		if fam == nil {
			continue
		}
		if ch := fam.ChildByID(x.Children[i].ChildID); ch != nil {
			x.Children[i].AgeGroup = eligibility.AgeGroup(ch.DOB, year, groups)
		}
	}
	if ev == nil {
		x.Payments = nil
		return
	}
	x.Payments = eligibility.PaymentsFor(ev, fam, x)
}

// MissingPrereqs lists the prerequisite events the open registration's
// family has not registered for.
func (c *Registrations) MissingPrereqs() []*domain.Event {
	familyID, eventID, ok := c.selection()
	if !ok {
		return nil
	}
	var out []*domain.Event
	for _, id := range eligibility.MissingPrereqs(c.events.Find(eventID), familyID, c.Items()) {
		if p := c.events.Find(id); p != nil {
			out = append(out, p)
		} else {
			out = append(out, &domain.Event{ID: id})
		}
	}
	return out
}

// EligibleChildren lists the children of the selected family whose age fits
// the selected event.
func (c *Registrations) EligibleChildren() []domain.Child {
	familyID, eventID, ok := c.selection()
	if !ok {
		return nil
	}
	fam := c.families.Find(familyID)
	ev := c.events.Find(eventID)
	if fam == nil || ev == nil {
		return nil
	}
	var out []domain.Child
	for i := range fam.Children {
		if eligibility.ChildEligible(ev, &fam.Children[i]) {
			out = append(out, fam.Children[i])
		}
	}
	return out
}

// Apply upserts doc like Controller.Apply, filling the family name, age
// groups and payment lines from the loaded families and events.
func (c *Registrations) Apply(ctx context.Context, doc map[string]any) (bool, error) {
	return c.Controller.Apply(ctx, doc, func(x *domain.Registration) {
		fam := c.families.Find(x.FamilyID)
		if fam != nil {
			x.FamilyName = fam.DisplayName()
		}
		c.recompute(x, fam)
	})
}

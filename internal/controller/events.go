package controller

import (
	"sort"
	"strconv"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/eligibility"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/settings"
	"github.com/lojf/parish/internal/validate"
)

type Events struct {
	*Controller[domain.Event]
	reg     *settings.Registry
	fees    *schema.Schema[domain.Fee]
	prereqs *schema.Schema[domain.Prereq]
}

func NewEvents(store Store, reg *settings.Registry, v *validate.Validator, opts Options) *Events {
	e := &Events{reg: reg, fees: domain.NewFeeSchema(reg)}
	hooks := domain.EventHooks{
		PrereqOptions: func(form *domain.Event, row int) []settings.Option {
			return eventOptions(e.AvailablePrereqsFor(form, row))
		},
		CanHavePrereqs: eligibility.CanHavePrereqs,
	}
	e.prereqs = domain.NewPrereqSchema(hooks)
	e.Controller = New(Config[domain.Event]{
		Name:     "events",
		Schema:   domain.NewEventSchema(reg, hooks),
		Store:    store,
		Options:  reg,
		ID:       func(ev *domain.Event) string { return ev.ID },
		Validate: func(ev *domain.Event, all []*domain.Event) validate.Errors { return v.Event(ev, all) },
		Haystack: func(ev *domain.Event) string { return ev.ID + " " + ev.Title + " " + ev.EventType },
		Filters: []listview.Filter[*domain.Event]{
			{Key: "eventType", Label: "Type", Kind: listview.KindSelect,
				Options: reg.EventTypes().Value,
				Field:   func(ev *domain.Event) any { return ev.EventType }},
			{Key: "year", Label: "Year", Kind: listview.KindSelect,
				Field: func(ev *domain.Event) any { return strconv.Itoa(ev.Year) }},
		},
		PageSize: opts.PageSize,
		Debounce: opts.Debounce,
		Log:      opts.Log,
	})
	return e
}

func eventOptions(list []*domain.Event) []settings.Option {
	out := make([]settings.Option, 0, len(list))
	for _, ev := range list {
		label := ev.Title
		if label == "" {
			label = ev.ID
		}
		out = append(out, settings.Option{Value: ev.ID, Label: label})
	}
	return out
}

// SetEventType changes the type of the open event. Prerequisites are dropped
// when the new type cannot have any.
func (c *Events) SetEventType(t string) bool {
	return c.Edit(func(ev *domain.Event) {
		ev.EventType = t
		if !eligibility.CanHavePrereqs(t) {
			ev.Prerequisites = nil
		}
	})
}

// AddFee appends a fee line priced from the settings catalog.
func (c *Events) AddFee(code string) bool {
	return c.Edit(func(ev *domain.Event) {
		row := c.fees.ToUI(map[string]any{"code": code}, schema.Ctx[domain.Fee]{Parent: ev, Index: len(ev.Fees), Options: c.reg})
		ev.Fees = append(ev.Fees, *row)
	})
}

func (c *Events) RemoveFee(i int) bool {
	ok := false
	c.Edit(func(ev *domain.Event) { ok = removeAt(&ev.Fees, i) })
	return ok
}

// AddPrereq appends an empty prerequisite row when the event type allows it.
func (c *Events) AddPrereq() bool {
	ok := false
	c.Edit(func(ev *domain.Event) {
		if !eligibility.CanHavePrereqs(ev.EventType) {
			return
		}
		row := c.prereqs.New(schema.Ctx[domain.Prereq]{Parent: ev, Index: len(ev.Prerequisites), Options: c.reg})
		ev.Prerequisites = append(ev.Prerequisites, *row)
		ok = true
	})
	return ok
}

// SetPrereq selects eventID in prerequisite row i. Events that are not
// available for the row are refused.
func (c *Events) SetPrereq(i int, eventID string) bool {
	all := c.Items()
	ok := false
	c.Edit(func(ev *domain.Event) {
		if i < 0 || i >= len(ev.Prerequisites) {
			return
		}
		for _, cand := range eligibility.FilterAvailablePrereqEvents(all, ev, i) {
			if cand.ID == eventID {
				ev.Prerequisites[i].EventID = eventID
				ok = true
				return
			}
		}
	})
	return ok
}

func (c *Events) RemovePrereq(i int) bool {
	ok := false
	c.Edit(func(ev *domain.Event) { ok = removeAt(&ev.Prerequisites, i) })
	return ok
}

// AvailablePrereqs lists the events selectable in row i of the open form.
func (c *Events) AvailablePrereqs(i int) []*domain.Event {
	var out []*domain.Event
	all := c.Items()
	c.Edit(func(ev *domain.Event) { out = eligibility.FilterAvailablePrereqEvents(all, ev, i) })
	return out
}

// AvailablePrereqsFor is AvailablePrereqs for an arbitrary form.
func (c *Events) AvailablePrereqsFor(form *domain.Event, i int) []*domain.Event {
	return eligibility.FilterAvailablePrereqEvents(c.Items(), form, i)
}

// ByType lists loaded events of type t ordered by open date.
func (c *Events) ByType(t string) []*domain.Event {
	var out []*domain.Event
	for _, ev := range c.Items() {
		if t == "" || ev.EventType == t {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return eligibility.NormalizeDate(out[i].OpenDate) < eligibility.NormalizeDate(out[j].OpenDate)
	})
	return out
}

// Choices lists the loaded events as select options.
func (c *Events) Choices() []settings.Option { return eventOptions(c.Items()) }

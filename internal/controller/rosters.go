package controller

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/roster"
	"github.com/lojf/parish/internal/settings"
)

// Rosters shows the registrations of one event as roster rows. It reads the
// other controllers' loaded lists; call Refresh after reloading them.
type Rosters struct {
	regs *Registrations
	view *listview.View[roster.Row]

	mu    sync.Mutex
	event *domain.Event
}

func NewRosters(regs *Registrations, reg *settings.Registry, opts Options) *Rosters {
	return &Rosters{
		regs: regs,
		view: listview.NewView(listview.ViewOptions[roster.Row]{
			Filters: []listview.Filter[roster.Row]{
				{Key: "status", Label: "Status", Kind: listview.KindSelect,
					Field: func(r roster.Row) any { return r.Status }},
				{Key: "ageGroup", Label: "Age group", Kind: listview.KindSelect,
					Options: reg.AgeGroups().Value,
					Field:   func(r roster.Row) any { return r.AgeGroup }},
				{Key: "unpaid", Label: "Unpaid only", Kind: listview.KindCheckbox,
					Matches: func(r roster.Row, _ any, _ map[string]any) bool { return !r.Paid }},
			},
			Haystack: roster.Haystack,
			PageSize: opts.PageSize,
			Debounce: opts.Debounce,
		}),
	}
}

// Open builds the roster of eventID.
func (c *Rosters) Open(eventID string) error {
	ev := c.regs.events.Find(eventID)
	if ev == nil {
		return errors.Errorf("event %s not loaded", eventID)
	}
	c.mu.Lock()
	c.event = ev
	c.mu.Unlock()
	c.Refresh()
	return nil
}

// Refresh rebuilds the rows of the open event from the loaded lists.
func (c *Rosters) Refresh() {
	c.mu.Lock()
	ev := c.event
	c.mu.Unlock()
	c.view.SetSource(roster.Build(ev, c.regs.Families(), c.regs.Items()))
}

func (c *Rosters) Event() *domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.event
}

func (c *Rosters) View() *listview.View[roster.Row] { return c.view }

// WriteCSV exports every row passing the current filters, across all pages.
func (c *Rosters) WriteCSV(w io.Writer) error {
	return roster.WriteCSV(w, c.view.Filtered())
}

package controller

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/services"
	"github.com/lojf/parish/internal/settings"
	"github.com/lojf/parish/internal/validate"
)

// Options tunes the list view of a controller.
type Options struct {
	PageSize int
	Debounce time.Duration
	Log      *logrus.Entry
}

type Families struct {
	*Controller[domain.Family]
	reg      *settings.Registry
	contacts *schema.Schema[domain.Contact]
	children *schema.Schema[domain.Child]
	notes    *schema.Schema[domain.Note]
}

func NewFamilies(store Store, reg *settings.Registry, v *validate.Validator, opts Options) *Families {
	return &Families{
		Controller: New(Config[domain.Family]{
			Name:     "families",
			Schema:   domain.NewFamilySchema(reg),
			Store:    store,
			Options:  reg,
			ID:       func(f *domain.Family) string { return f.ID },
			Validate: func(f *domain.Family, _ []*domain.Family) validate.Errors { return v.Family(f) },
			Haystack: familyHaystack,
			Filters: []listview.Filter[*domain.Family]{
				{Key: "parishMember", Label: "Parish member", Kind: listview.KindCheckbox,
					Field: func(f *domain.Family) any { return f.ParishMember }},
				{Key: "city", Label: "City", Kind: listview.KindText,
					Field: func(f *domain.Family) any { return f.Address.City }},
			},
			PageSize: opts.PageSize,
			Debounce: opts.Debounce,
			Log:      opts.Log,
		}),
		reg:      reg,
		contacts: domain.NewContactSchema(reg),
		children: domain.NewChildSchema(),
		notes:    domain.NewNoteSchema(),
	}
}

func familyHaystack(f *domain.Family) string {
	parts := []string{f.ID, f.ParishNumber, f.Address.City}
	for _, c := range f.Contacts {
		parts = append(parts, c.LastName, c.FirstName, c.Email, c.Phone, services.DigitsOnly(c.Phone))
	}
	for _, ch := range f.Children {
		parts = append(parts, ch.LastName, ch.FirstName, ch.SaintName)
	}
	return strings.Join(parts, " ")
}

// AddContact appends a contact row with its defaults.
func (c *Families) AddContact() bool {
	return c.Edit(func(f *domain.Family) {
		row := c.contacts.New(schema.Ctx[domain.Contact]{Parent: f, Index: len(f.Contacts), Options: c.reg})
		f.Contacts = append(f.Contacts, *row)
	})
}

// AddChild appends a child row; its last name defaults to the first
// contact's.
func (c *Families) AddChild() bool {
	return c.Edit(func(f *domain.Family) {
		row := c.children.New(schema.Ctx[domain.Child]{Parent: f, Index: len(f.Children), Options: c.reg})
		f.Children = append(f.Children, *row)
	})
}

// AddNote appends a timestamped note.
func (c *Families) AddNote(text, by string) bool {
	return c.Edit(func(f *domain.Family) {
		row := c.notes.New(schema.Ctx[domain.Note]{Parent: f, Index: len(f.Notes), Options: c.reg})
		row.Note = text
		row.UpdatedBy = by
		f.Notes = append(f.Notes, *row)
	})
}

func (c *Families) RemoveContact(i int) bool {
	ok := false
	c.Edit(func(f *domain.Family) { ok = removeAt(&f.Contacts, i) })
	return ok
}

func (c *Families) RemoveChild(i int) bool {
	ok := false
	c.Edit(func(f *domain.Family) { ok = removeAt(&f.Children, i) })
	return ok
}

func removeAt[R any](rows *[]R, i int) bool {
	if i < 0 || i >= len(*rows) {
		return false
	}
	*rows = append((*rows)[:i:i], (*rows)[i+1:]...)
	return true
}

// Choices lists the loaded families as select options, value = id.
func (c *Families) Choices() []settings.Option {
	items := c.Items()
	out := make([]settings.Option, 0, len(items))
	for _, f := range items {
		out = append(out, settings.Option{Value: f.ID, Label: f.DisplayName()})
	}
	return out
}

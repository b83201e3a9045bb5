package domain

import (
	"strings"
	"time"

	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/services"
	"github.com/lojf/parish/internal/settings"
)

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type Contact struct {
	LastName     string `json:"lastName" validate:"required"`
	FirstName    string `json:"firstName" validate:"required"`
	Middle       string `json:"middle"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone" validate:"required,phone"`
	Email        string `json:"email" validate:"omitempty,email"`
	IsEmergency  bool   `json:"isEmergency"`
}

type Child struct {
	ChildID         string `json:"childId" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	FirstName       string `json:"firstName" validate:"required"`
	SaintName       string `json:"saintName"`
	DOB             string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Allergies       string `json:"allergies"`
	IsNameException bool   `json:"isNameException"`
	ExceptionNotes  string `json:"exceptionNotes"`
}

type Note struct {
	Timestamp string `json:"timestamp"`
	Note      string `json:"note"`
	UpdatedBy string `json:"updatedBy"`
}

type Family struct {
	ID           string    `json:"id" validate:"required"`
	ParishMember bool      `json:"parishMember"`
	ParishNumber string    `json:"parishNumber" validate:"required_if=ParishMember true"`
	Address      Address   `json:"address"`
	Contacts     []Contact `json:"contacts" validate:"min=1,dive"`
	Children     []Child   `json:"children" validate:"dive"`
	Notes        []Note    `json:"notes"`
}

// DisplayName is "Last, First" of the first contact.
func (f *Family) DisplayName() string {
	if len(f.Contacts) == 0 {
		return f.ID
	}
	c := f.Contacts[0]
	return strings.TrimSpace(c.LastName + ", " + c.FirstName)
}

// ChildByID returns the child row with id, or nil.
func (f *Family) ChildByID(id string) *Child {
	for i := range f.Children {
		if f.Children[i].ChildID == id {
			return &f.Children[i]
		}
	}
	return nil
}

func NewContactSchema(reg *settings.Registry) *schema.Schema[Contact] {
	return &schema.Schema[Contact]{
		Name: "contact",
		Fields: []schema.Field[Contact]{
			schema.String("lastName", "Last name", func(c *Contact) *string { return &c.LastName }),
			schema.String("firstName", "First name", func(c *Contact) *string { return &c.FirstName }),
			schema.String("middle", "Middle", func(c *Contact) *string { return &c.Middle }),
			schema.String("relationship", "Relationship", func(c *Contact) *string { return &c.Relationship }).
				As(schema.Select).
				OptionsFrom(reg.Relationships()),
			schema.String("phone", "Phone", func(c *Contact) *string { return &c.Phone }).
				As(schema.Tel).
				MapAPI(func(v any, _ *Contact) (any, bool) {
					return services.NormPhone(schema.AsString(v)), true
				}, nil),
			schema.String("email", "Email", func(c *Contact) *string { return &c.Email }).
				MapAPI(func(v any, _ *Contact) (any, bool) {
					e, _ := services.NormEmail(schema.AsString(v))
					return e, true
				}, nil),
			schema.Bool("isEmergency", "Emergency contact", func(c *Contact) *bool { return &c.IsEmergency }),
		},
	}
}

func NewChildSchema() *schema.Schema[Child] {
	return &schema.Schema[Child]{
		Name: "child",
		Fields: []schema.Field[Child]{
			schema.String("childId", "Child ID", func(c *Child) *string { return &c.ChildID }).
				DefaultFunc(func(schema.Ctx[Child]) any { return NewChildID() }).
				Disable(),
			schema.String("lastName", "Last name", func(c *Child) *string { return &c.LastName }).
				DefaultFunc(func(ctx schema.Ctx[Child]) any {
					// new children take the first contact's last name
					if f, ok := ctx.Parent.(*Family); ok && len(f.Contacts) > 0 {
						return f.Contacts[0].LastName
					}
					return ""
				}),
			schema.String("firstName", "First name", func(c *Child) *string { return &c.FirstName }),
			schema.String("saintName", "Saint name", func(c *Child) *string { return &c.SaintName }),
			schema.String("dob", "Date of birth", func(c *Child) *string { return &c.DOB }).As(schema.Date),
			schema.String("allergies", "Allergies", func(c *Child) *string { return &c.Allergies }),
			schema.Bool("isNameException", "Different last name", func(c *Child) *bool { return &c.IsNameException }).
				APIKey("is_name_exception"),
			schema.String("exceptionNotes", "Exception notes", func(c *Child) *string { return &c.ExceptionNotes }).
				ShowIf(func(ctx schema.Ctx[Child]) bool { return ctx.Form.IsNameException }),
		},
	}
}

func NewNoteSchema() *schema.Schema[Note] {
	return &schema.Schema[Note]{
		Name: "note",
		Fields: []schema.Field[Note]{
			schema.String("timestamp", "Time", func(n *Note) *string { return &n.Timestamp }).
				Disable().
				DefaultFunc(func(schema.Ctx[Note]) any { return time.Now().UTC().Format(time.RFC3339) }),
			schema.String("note", "Note", func(n *Note) *string { return &n.Note }),
			schema.String("updatedBy", "By", func(n *Note) *string { return &n.UpdatedBy }).Disable(),
		},
	}
}

// NewFamilySchema builds the family field list. New families get one empty
// contact row and a fresh id.
func NewFamilySchema(reg *settings.Registry) *schema.Schema[Family] {
	return &schema.Schema[Family]{
		Name: "family",
		Fields: []schema.Field[Family]{
			schema.String("id", "Family ID", func(f *Family) *string { return &f.ID }).
				DefaultFunc(func(schema.Ctx[Family]) any { return NewFamilyID() }).
				Disable(),
			schema.Bool("parishMember", "Parish member", func(f *Family) *bool { return &f.ParishMember }),
			schema.String("parishNumber", "Parish number", func(f *Family) *string { return &f.ParishNumber }).
				ShowIf(func(ctx schema.Ctx[Family]) bool { return ctx.Form.ParishMember }),
			schema.String("address.street", "Street", func(f *Family) *string { return &f.Address.Street }),
			schema.String("address.city", "City", func(f *Family) *string { return &f.Address.City }),
			schema.String("address.state", "State", func(f *Family) *string { return &f.Address.State }).
				DefaultTo("CA"),
			schema.String("address.zip", "Zip", func(f *Family) *string { return &f.Address.Zip }),
		},
		Rows: []schema.RowSet[Family]{
			schema.Rows("contacts", NewContactSchema(reg), func(f *Family) *[]Contact { return &f.Contacts }, 1),
			schema.Rows("children", NewChildSchema(), func(f *Family) *[]Child { return &f.Children }, 0),
			schema.Rows("notes", NewNoteSchema(), func(f *Family) *[]Note { return &f.Notes }, 0),
		},
	}
}

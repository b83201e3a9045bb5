package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/parish/internal/domain"
)

func nguyenFamily() *domain.Family {
	return &domain.Family{
		ID: "F:0001-0001-0001",
		Contacts: []domain.Contact{
			{LastName: "Nguyen", FirstName: "Binh", Phone: "(408) 555-0100"},
		},
		Children: []domain.Child{
			{ChildID: "C:0001-0001-0001", LastName: "Nguyen", FirstName: "An"},
		},
	}
}

func TestFamilyNameException(t *testing.T) {
	v := New()
	f := nguyenFamily()
	assert.Empty(t, v.Family(f))

	f.Children[0].LastName = "Smith"
	errs := v.Family(f)
	first, ok := errs.First()
	require.True(t, ok)
	assert.Equal(t, "children[0].lastName", first.Field)

	f.Children[0].IsNameException = true
	assert.Empty(t, v.Family(f))
}

func TestFamilySurnameMatchIgnoresCase(t *testing.T) {
	f := nguyenFamily()
	f.Children[0].LastName = " nguyen "
	assert.Empty(t, New().Family(f))
}

func TestFamilyTagRules(t *testing.T) {
	v := New()
	f := nguyenFamily()
	f.Contacts[0].FirstName = ""
	f.Contacts[0].Phone = "12"
	f.Contacts[0].Email = "not-an-email"
	f.ParishMember = true

	m := v.Family(f).Map()
	assert.Equal(t, "this field is required", m["contacts[0].firstName"])
	assert.Equal(t, "not a valid phone number", m["contacts[0].phone"])
	assert.Contains(t, m, "contacts[0].email")
	assert.Equal(t, "this field is required", m["parishNumber"])

	f = nguyenFamily()
	f.Contacts = nil
	f.Children = nil
	errs := v.Family(f)
	require.Len(t, errs, 1)
	assert.Equal(t, "contacts", errs[0].Field)
}

func TestFamilyDuplicateChild(t *testing.T) {
	f := nguyenFamily()
	f.Children = append(f.Children, f.Children[0])
	assert.Len(t, New().Family(f).For("children[1].childId"), 1)
}

func events() (adm, reg *domain.Event) {
	adm = &domain.Event{ID: "E:ADM", EventType: domain.TypeAdmin, Title: "Admission 2025", Year: 2025,
		Level: domain.LevelPerFamily, OpenDate: "2025-06-01"}
	reg = &domain.Event{ID: "E:REG", EventType: domain.TypeRegistration, Title: "Catechism 2025", Year: 2025,
		Level: domain.LevelPerChild, OpenDate: "2025-08-01",
		Prerequisites: []domain.Prereq{{EventID: "E:ADM"}}}
	return
}

func TestEventRules(t *testing.T) {
	v := New()
	adm, reg := events()
	all := []*domain.Event{adm, reg}
	assert.Empty(t, v.Event(reg, all))

	bad := *reg
	bad.Prerequisites = []domain.Prereq{{EventID: "E:REG"}, {EventID: "E:ADM"}, {EventID: "E:ADM"}}
	bad.EndDate = "2025-07-01"
	m := New().Event(&bad, all).Map()
	assert.Equal(t, "not a valid prerequisite for this event", m["prerequisites[0].eventId"])
	assert.NotContains(t, m, "prerequisites[1].eventId")
	assert.Equal(t, "prerequisite selected twice", m["prerequisites[2].eventId"])
	assert.Contains(t, m, "endDate")
}

func TestRegistrationPrereqNotMet(t *testing.T) {
	v := New()
	adm, reg := events()
	all := []*domain.Event{adm, reg}
	r := &domain.Registration{
		EventID:  reg.ID,
		FamilyID: "F:0001-0001-0001",
		Status:   domain.StatusPending,
		Children: []domain.RegChild{{ChildID: "C:0001-0001-0001"}},
	}

	first, ok := v.Registration(r, all, nil).First()
	require.True(t, ok)
	assert.Equal(t, "eventId", first.Field)
	assert.Equal(t, "prerequisite not met: Admission 2025", first.Message)

	onFile := []*domain.Registration{{ID: "R:1", EventID: adm.ID, FamilyID: r.FamilyID, Status: domain.StatusConfirmed}}
	assert.Empty(t, v.Registration(r, all, onFile))
}

func TestRegistrationDuplicatesAndChildren(t *testing.T) {
	v := New()
	adm, reg := events()
	all := []*domain.Event{adm, reg}
	regs := []*domain.Registration{
		{ID: "R:1", EventID: adm.ID, FamilyID: "F:1", Status: domain.StatusConfirmed},
		{ID: "R:2", EventID: reg.ID, FamilyID: "F:1", Status: domain.StatusPending},
	}
	r := &domain.Registration{EventID: reg.ID, FamilyID: "F:1", Status: domain.StatusPending}
	m := v.Registration(r, all, regs).Map()
	assert.Equal(t, "family is already registered for this event", m["familyId"])
	assert.Equal(t, "select at least one child", m["children"])

	// editing the existing registration is not a duplicate
	r.ID = "R:2"
	r.Children = []domain.RegChild{{ChildID: "C:1"}, {ChildID: "C:1"}}
	m = v.Registration(r, all, regs).Map()
	assert.NotContains(t, m, "familyId")
	assert.Contains(t, m, "children[1].childId")

	r.EventID = "E:NOPE"
	assert.Equal(t, "unknown event", v.Registration(r, all, regs).Map()["eventId"])
}

package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/parish/internal/diff"
	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/settings"
	"github.com/lojf/parish/internal/validate"
)

// memStore is an in-memory Store that round-trips documents through JSON
// like the real backend does.
type memStore struct {
	mu     sync.Mutex
	prefix string
	seq    int
	docs   []map[string]any
	calls  []string
	bodies []map[string]any
	fail   error
}

func newMemStore(prefix string, docs ...map[string]any) *memStore {
	s := &memStore{prefix: prefix}
	for _, d := range docs {
		s.docs = append(s.docs, clone(d))
	}
	return s
}

func clone(m map[string]any) map[string]any {
	b, _ := json.Marshal(m)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return out
}

func (s *memStore) enter(call string, body map[string]any) error {
	s.calls = append(s.calls, call)
	if body != nil {
		s.bodies = append(s.bodies, clone(body))
	}
	return s.fail
}

func (s *memStore) List(context.Context) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("LIST", nil); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, clone(d))
	}
	return out, nil
}

func (s *memStore) find(id string) int {
	for i, d := range s.docs {
		if d["id"] == id {
			return i
		}
	}
	return -1
}

func (s *memStore) Get(_ context.Context, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GET "+id, nil); err != nil {
		return nil, err
	}
	if i := s.find(id); i >= 0 {
		return clone(s.docs[i]), nil
	}
	return nil, errors.New("404")
}

func (s *memStore) Create(_ context.Context, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("POST", doc); err != nil {
		return nil, err
	}
	d := clone(doc)
	if d["id"] == nil || d["id"] == "" {
		s.seq++
		d["id"] = fmt.Sprintf("%s:%d", s.prefix, s.seq)
	}
	s.docs = append(s.docs, d)
	return clone(d), nil
}

func (s *memStore) Update(_ context.Context, id string, patch map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("PATCH "+id, patch); err != nil {
		return nil, err
	}
	i := s.find(id)
	if i < 0 {
		return nil, errors.New("404")
	}
	merged, err := diff.Merge(s.docs[i], clone(patch))
	if err != nil {
		return nil, err
	}
	s.docs[i] = merged
	return clone(merged), nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DELETE "+id, nil); err != nil {
		return err
	}
	if i := s.find(id); i >= 0 {
		s.docs = append(s.docs[:i], s.docs[i+1:]...)
	}
	return nil
}

func (s *memStore) lastBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[len(s.bodies)-1]
}

func quietLog() *logrus.Entry {
	l, _ := test.NewNullLogger()
	return logrus.NewEntry(l)
}

func fillNguyen(f *domain.Family) {
	f.ID = "F:0001-0001-0001"
	f.Contacts[0].LastName = "Nguyen"
	f.Contacts[0].FirstName = "Binh"
	f.Contacts[0].Phone = "408 555 0100"
}

func TestFamilyCreateThenNameException(t *testing.T) {
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	store := newMemStore("F")
	fams := NewFamilies(store, reg, validate.New(), Options{Log: quietLog()})

	fams.BeginCreate()
	assert.Equal(t, ModeCreate, fams.Mode())
	require.True(t, fams.Edit(fillNguyen))
	require.True(t, fams.AddChild())
	fams.Edit(func(f *domain.Family) { f.Children[0].FirstName = "An" })
	assert.Equal(t, "Nguyen", fams.Form().Children[0].LastName)

	require.NoError(t, fams.Submit(ctx))
	assert.Equal(t, ModeList, fams.Mode())
	st, ok := fams.Status()
	require.True(t, ok)
	assert.Equal(t, KindOK, st.Kind)
	require.Len(t, fams.Items(), 1)

	posted := store.lastBody()
	assert.Equal(t, "F:0001-0001-0001", posted["id"])
	assert.Equal(t, "(408) 555-0100", posted["contacts"].([]any)[0].(map[string]any)["phone"])

	require.NoError(t, fams.BeginEditID(ctx, "F:0001-0001-0001"))
	assert.Equal(t, ModeEdit, fams.Mode())
	assert.False(t, fams.Dirty())

	fams.Edit(func(f *domain.Family) { f.Children[0].LastName = "Smith" })
	err := fams.Submit(ctx)
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "children[0].lastName", verrs[0].Field)
	assert.Equal(t, ModeEdit, fams.Mode(), "form stays open")
	st, _ = fams.Status()
	assert.Equal(t, KindError, st.Kind)

	fams.Edit(func(f *domain.Family) { f.Children[0].IsNameException = true })
	require.NoError(t, fams.Submit(ctx))

	patch := store.lastBody()
	assert.NotContains(t, patch, "id")
	child := patch["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "Smith", child["lastName"])
	assert.Equal(t, true, child["is_name_exception"])
	assert.True(t, fams.Items()[0].Children[0].IsNameException)
}

func TestSubmitWithoutChanges(t *testing.T) {
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	f := &domain.Family{ID: "F:0001-0001-0001", Contacts: []domain.Contact{{LastName: "Tran", FirstName: "Chi", Phone: "(408) 555-0101"}}}
	store := newMemStore("F", domain.NewFamilySchema(reg).ToAPI(f))
	fams := NewFamilies(store, reg, validate.New(), Options{Log: quietLog()})
	require.NoError(t, fams.Load(ctx))

	require.NoError(t, fams.BeginEditID(ctx, f.ID))
	assert.ErrorIs(t, fams.Submit(ctx), ErrNoChanges)
	st, _ := fams.Status()
	assert.Equal(t, Status{Kind: KindWarn, Text: warnText["no_changes"], At: st.At}, st)
	assert.Equal(t, []string{"LIST"}, store.calls)
}

func TestSubmitBlockedWhenReadOnly(t *testing.T) {
	ro := settings.Fallback()
	ro.ReadOnly = true
	reg := settings.NewRegistry(nil)
	fams := NewFamilies(newMemStore("F"), reg, validate.New(), Options{Log: quietLog()})
	fams.BeginCreate()
	fams.Edit(fillNguyen)

	reg.Swap(ro)
	assert.ErrorIs(t, fams.Submit(context.Background()), ErrReadOnly)
	assert.ErrorIs(t, fams.Delete(context.Background(), "F:1"), ErrReadOnly)
	assert.Error(t, fams.Set("address.city", "San Jose"), "fields are disabled")
}

func TestSaveFailureKeepsForm(t *testing.T) {
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	store := newMemStore("F")
	log, hook := test.NewNullLogger()
	fams := NewFamilies(store, reg, validate.New(), Options{Log: logrus.NewEntry(log)})

	fams.BeginCreate()
	fams.Edit(fillNguyen)
	store.fail = errors.New("connection refused")

	err := fams.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, ModeCreate, fams.Mode())
	assert.Equal(t, "Binh", fams.Form().Contacts[0].FirstName)
	st, _ := fams.Status()
	assert.Equal(t, errText["save_failed"], st.Text)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	store.fail = nil
	require.NoError(t, fams.Submit(ctx))
	assert.Len(t, fams.Items(), 1)
}

func TestLoadFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	f := &domain.Family{ID: "F:1", Contacts: []domain.Contact{{LastName: "Tran"}}}
	store := newMemStore("F", domain.NewFamilySchema(reg).ToAPI(f))
	fams := NewFamilies(store, reg, validate.New(), Options{Log: quietLog()})
	require.NoError(t, fams.Load(ctx))

	store.fail = errors.New("timeout")
	require.Error(t, fams.Load(ctx))
	assert.Len(t, fams.Items(), 1)
}

func TestBeginEditFailsSoft(t *testing.T) {
	fams := NewFamilies(newMemStore("F"), settings.NewRegistry(nil), validate.New(), Options{Log: quietLog()})
	assert.False(t, fams.BeginEdit(nil))
	assert.False(t, fams.BeginEdit(map[string]any{"parishMember": true}))
	assert.Equal(t, ModeList, fams.Mode())
	st, ok := fams.Status()
	require.True(t, ok)
	assert.Equal(t, KindWarn, st.Kind)

	assert.Error(t, fams.BeginEditID(context.Background(), "F:404"))
	assert.Nil(t, fams.Form())
}

func TestFamilyRows(t *testing.T) {
	fams := NewFamilies(newMemStore("F"), settings.NewRegistry(nil), validate.New(), Options{Log: quietLog()})
	assert.False(t, fams.AddContact(), "no form open")

	fams.BeginCreate()
	assert.True(t, fams.AddContact())
	assert.True(t, fams.AddNote("called", "tam"))
	assert.Len(t, fams.Form().Contacts, 2)
	assert.NotEmpty(t, fams.Form().Notes[0].Timestamp)

	assert.True(t, fams.RemoveContact(0))
	assert.False(t, fams.RemoveContact(5))
	assert.Len(t, fams.Form().Contacts, 1)
}

func TestDeleteReloads(t *testing.T) {
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	f := &domain.Family{ID: "F:1", Contacts: []domain.Contact{{LastName: "Tran"}}}
	store := newMemStore("F", domain.NewFamilySchema(reg).ToAPI(f))
	fams := NewFamilies(store, reg, validate.New(), Options{Log: quietLog()})
	require.NoError(t, fams.Load(ctx))
	require.NoError(t, fams.BeginEditID(ctx, "F:1"))

	require.NoError(t, fams.Delete(ctx, "F:1"))
	assert.Empty(t, fams.Items())
	assert.Equal(t, ModeList, fams.Mode())
}

// parish builds loaded family and event controllers plus an empty
// registration controller.
func parish(t *testing.T) (*Families, *Events, *Registrations, *memStore) {
	t.Helper()
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	v := validate.New()

	fam := &domain.Family{
		ID:       "F:0001-0001-0001",
		Contacts: []domain.Contact{{LastName: "Nguyen", FirstName: "Binh", Phone: "(408) 555-0100"}},
		Children: []domain.Child{
			{ChildID: "C:1", LastName: "Nguyen", FirstName: "An", DOB: "2016-04-02"},
			{ChildID: "C:2", LastName: "Nguyen", FirstName: "Bao", DOB: "2012-01-15"},
		},
	}
	adm := &domain.Event{ID: "E:ADM", EventType: domain.TypeAdmin, Title: "Admission 2025", Year: 2025,
		Level: domain.LevelPerFamily, OpenDate: "2025-06-01",
		Fees: []domain.Fee{{Code: "SECF", Amount: 25}, {Code: "NPMF", Amount: 50}, {Code: "REGF", Amount: 120}}}
	cat := &domain.Event{ID: "E:REG", EventType: domain.TypeRegistration, Title: "Catechism 2025", Year: 2025,
		Level: domain.LevelPerChild, OpenDate: "2025-08-01",
		Fees:          []domain.Fee{{Code: "REGF", Amount: 120}, {Code: "BOOK", Amount: 35}},
		Prerequisites: []domain.Prereq{{EventID: "E:ADM"}}}

	opts := Options{Log: quietLog()}
	fams := NewFamilies(newMemStore("F", domain.NewFamilySchema(reg).ToAPI(fam)), reg, v, opts)
	evSchema := domain.NewEventSchema(reg, domain.EventHooks{})
	evs := NewEvents(newMemStore("E", evSchema.ToAPI(adm), evSchema.ToAPI(cat)), reg, v, opts)
	store := newMemStore("R")
	regs := NewRegistrations(store, reg, v, fams, evs, opts)

	require.NoError(t, fams.Load(ctx))
	require.NoError(t, evs.Load(ctx))
	require.NoError(t, regs.Load(ctx))
	return fams, evs, regs, store
}

func TestRegistrationPrereqNotMet(t *testing.T) {
	ctx := context.Background()
	_, _, regs, store := parish(t)

	regs.BeginCreate()
	require.True(t, regs.SelectFamily("F:0001-0001-0001"))
	require.True(t, regs.SelectEvent("E:REG"))
	require.True(t, regs.SetChildren("C:1"))

	form := regs.Form()
	assert.Equal(t, "Nguyen, Binh", form.FamilyName)
	assert.Equal(t, "Elementary", form.Children[0].AgeGroup)
	assert.Equal(t, []domain.Payment{
		{Code: "REGF", UnitAmount: 120, Quantity: 1, Amount: 120},
		{Code: "BOOK", UnitAmount: 35, Quantity: 1, Amount: 35},
	}, form.Payments)

	missing := regs.MissingPrereqs()
	require.Len(t, missing, 1)
	assert.Equal(t, "E:ADM", missing[0].ID)

	err := regs.Submit(ctx)
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	first, _ := verrs.First()
	assert.Equal(t, "eventId", first.Field)
	assert.Equal(t, "prerequisite not met: Admission 2025", first.Message)
	assert.Equal(t, []string{"LIST"}, store.calls, "nothing was sent")
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	_, _, regs, store := parish(t)

	regs.BeginCreate()
	regs.SelectFamily("F:0001-0001-0001")
	regs.SelectEvent("E:ADM")
	assert.Equal(t, []domain.Payment{
		{Code: "SECF", UnitAmount: 25, Quantity: 1, Amount: 25},
		{Code: "NPMF", UnitAmount: 50, Quantity: 1, Amount: 50},
	}, regs.Form().Payments)
	regs.Edit(func(r *domain.Registration) { r.Payments[0].Method = "cash"; r.Payments[0].ReceiptNo = "101" })
	require.NoError(t, regs.Submit(ctx))
	assert.NotContains(t, store.lastBody(), "familyName")

	regs.BeginCreate()
	regs.SelectFamily("F:0001-0001-0001")
	regs.SelectEvent("E:REG")
	regs.SetChildren("C:1", "C:2")
	assert.Equal(t, 240.0, regs.Form().Payments[0].Amount)
	assert.Len(t, regs.EligibleChildren(), 2)
	require.NoError(t, regs.Submit(ctx))
	require.Len(t, regs.Items(), 2)
	assert.Equal(t, "Nguyen, Binh", regs.Items()[1].FamilyName)

	regs.BeginCreate()
	regs.SelectFamily("F:0001-0001-0001")
	regs.SelectEvent("E:ADM")
	err := regs.Submit(ctx)
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "family is already registered for this event", verrs.Map()["familyId"])
}

func TestSelectEventPreservesPaymentDetails(t *testing.T) {
	_, _, regs, _ := parish(t)
	regs.BeginCreate()
	regs.SelectFamily("F:0001-0001-0001")
	regs.SelectEvent("E:REG")
	regs.SetChildren("C:1")
	regs.Edit(func(r *domain.Registration) { r.Payments[0].Method = "check"; r.Payments[0].ReceivedBy = "tam" })

	regs.SetChildren("C:1", "C:2")
	p := regs.Form().Payments[0]
	assert.Equal(t, 2, p.Quantity)
	assert.Equal(t, "check", p.Method)
	assert.Equal(t, "tam", p.ReceivedBy)
}

func TestEventPrereqEditing(t *testing.T) {
	_, evs, _, _ := parish(t)

	evs.BeginCreate()
	require.True(t, evs.SetEventType(domain.TypeEvent))
	require.NoError(t, evs.Set("year", 2025))
	require.NoError(t, evs.Set("openDate", "2025-09-01"))
	require.NoError(t, evs.Set("title", "Christmas pageant"))

	require.True(t, evs.AddPrereq())
	avail := evs.AvailablePrereqs(0)
	require.Len(t, avail, 1)
	assert.Equal(t, "E:REG", avail[0].ID)
	assert.False(t, evs.SetPrereq(0, "E:ADM"), "ADM cannot precede EVT")
	assert.True(t, evs.SetPrereq(0, "E:REG"))

	require.True(t, evs.AddFee("BOOK"))
	assert.Equal(t, 35.0, evs.Form().Fees[0].Amount)

	require.True(t, evs.SetEventType(domain.TypeAdmin))
	assert.Empty(t, evs.Form().Prerequisites)
	assert.False(t, evs.AddPrereq())

	evs.SetEventType(domain.TypeEvent)
	evs.AddPrereq()
	evs.SetPrereq(0, "E:REG")
	require.NoError(t, evs.Submit(context.Background()))
	assert.Len(t, evs.Items(), 3)
	assert.Equal(t, []string{"E:ADM", "E:REG", "E:1"}, func() (ids []string) {
		for _, e := range evs.ByType("") {
			ids = append(ids, e.ID)
		}
		return
	}())
}

func TestRosterExport(t *testing.T) {
	ctx := context.Background()
	_, _, regs, _ := parish(t)
	onFile := func(eventID string, children ...string) {
		regs.BeginCreate()
		regs.SelectFamily("F:0001-0001-0001")
		regs.SelectEvent(eventID)
		regs.SetChildren(children...)
		require.NoError(t, regs.Submit(ctx))
	}
	onFile("E:ADM")
	onFile("E:REG", "C:1", "C:2")

	r := NewRosters(regs, settings.NewRegistry(nil), Options{})
	defer r.View().Close()
	require.NoError(t, r.Open("E:REG"))
	assert.Len(t, r.View().Filtered(), 2)
	assert.True(t, r.View().SetFilter("ageGroup", "Middle School"))
	rows := r.View().Filtered()
	require.Len(t, rows, 1)
	assert.Equal(t, "Nguyen, Bao", rows[0].ChildName)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(&buf))
	assert.Contains(t, buf.String(), "Nguyen, Bao")
	assert.NotContains(t, buf.String(), "Nguyen, An")

	assert.Error(t, r.Open("E:NOPE"))
}

func TestApplyUpserts(t *testing.T) {
	ctx := context.Background()
	reg := settings.NewRegistry(nil)
	store := newMemStore("F")
	fams := NewFamilies(store, reg, validate.New(), Options{Log: quietLog()})
	doc := map[string]any{
		"id":       "F:0001-0001-0001",
		"contacts": []any{map[string]any{"lastName": "Tran", "firstName": "Chi", "phone": "(408) 555-0101"}},
	}

	created, err := fams.Apply(ctx, doc)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "POST", store.calls[0])

	created, err = fams.Apply(ctx, doc)
	assert.False(t, created)
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Equal(t, ModeList, fams.Mode())

	_, err = fams.Apply(ctx, map[string]any{"id": "F:0001-0001-0001", "address": map[string]any{"city": "San Jose"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"address": map[string]any{"city": "San Jose"}}, store.lastBody())
	assert.Equal(t, "Tran", fams.Find("F:0001-0001-0001").Contacts[0].LastName)
}

func TestRegistrationApplyComputesPayments(t *testing.T) {
	_, _, regs, store := parish(t)
	created, err := regs.Apply(context.Background(), map[string]any{
		"eventId": "E:ADM", "familyId": "F:0001-0001-0001", "status": domain.StatusPending,
	})
	require.NoError(t, err)
	assert.True(t, created)

	posted := store.lastBody()
	assert.NotContains(t, posted, "familyName")
	require.Len(t, regs.Items(), 1)
	assert.Equal(t, "Nguyen, Binh", regs.Items()[0].FamilyName)
	payments := posted["payments"].([]any)
	require.Len(t, payments, 2)
	assert.Equal(t, "SECF", payments[0].(map[string]any)["code"])
	assert.Equal(t, "NPMF", payments[1].(map[string]any)["code"])
}

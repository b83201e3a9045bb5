package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/parish/internal/settings"
)

type member struct {
	Name  string
	Phone string
}

type household struct {
	ID      string
	Member  bool
	Number  string
	City    string
	Size    int
	Display string
	Members []member
}

var memberSchema = &Schema[member]{
	Name: "member",
	Fields: []Field[member]{
		String("name", "Name", func(m *member) *string { return &m.Name }),
		String("phone", "Phone", func(m *member) *string { return &m.Phone }).As(Tel),
	},
}

func householdSchema(next func() string) *Schema[household] {
	return &Schema[household]{
		Name: "household",
		Fields: []Field[household]{
			String("id", "ID", func(h *household) *string { return &h.ID }).
				DefaultFunc(func(Ctx[household]) any { return next() }),
			Bool("member", "Member", func(h *household) *bool { return &h.Member }).
				APIKey("is_member"),
			String("number", "Number", func(h *household) *string { return &h.Number }).
				ShowIf(func(c Ctx[household]) bool { return c.Form.Member }),
			String("address.city", "City", func(h *household) *string { return &h.City }).
				DefaultTo("San Jose"),
			Int("size", "Size", func(h *household) *int { return &h.Size }).
				MapAPI(
					func(v any, _ *household) (any, bool) { return v, v.(int) > 0 },
					func(v any, _ map[string]any) any { return AsInt(v) },
				),
			String("display", "Display", func(h *household) *string { return &h.Display }).UIOnly(),
		},
		Rows: []RowSet[household]{
			Rows("members", memberSchema, func(h *household) *[]member { return &h.Members }, 1),
		},
	}
}

func counter() func() string {
	n := 0
	return func() string {
		n++
		return "H:" + AsString(n)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	s := householdSchema(counter())
	require.NoError(t, s.Check())

	h := s.New(Ctx[household]{})
	assert.Equal(t, "H:1", h.ID)
	assert.Equal(t, "San Jose", h.City)
	assert.False(t, h.Member)
	assert.Equal(t, 0, h.Size)
	require.Len(t, h.Members, 1)
	assert.Equal(t, member{}, h.Members[0])

	// computed defaults are evaluated per call
	h2 := s.New(Ctx[household]{})
	assert.Equal(t, "H:2", h2.ID)
}

func TestVisibilityAndDisabled(t *testing.T) {
	s := householdSchema(counter())
	f, ok := s.Field("number")
	require.True(t, ok)

	h := &household{}
	assert.False(t, IsVisible(f, Ctx[household]{Form: h}))
	h.Member = true
	assert.True(t, IsVisible(f, Ctx[household]{Form: h}))

	city, _ := s.Field("address.city")
	assert.True(t, IsVisible(city, Ctx[household]{Form: h}))
	assert.False(t, IsDisabled(city, Ctx[household]{Form: h}))
	assert.True(t, IsDisabled(city, Ctx[household]{Form: h, ReadOnly: true}))

	locked := city.Disable()
	assert.True(t, IsDisabled(locked, Ctx[household]{Form: h}))
	assert.False(t, IsVisible(city.Hidden(), Ctx[household]{Form: h}))
}

func TestOptionsSources(t *testing.T) {
	f := String("rel", "Relationship", func(m *member) *string { return &m.Name })
	ctx := Ctx[member]{}
	assert.Equal(t, []settings.Option{}, Options(f, ctx))

	lit := f.OptionList(settings.Option{Value: "a", Label: "A"})
	assert.Equal(t, []settings.Option{{Value: "a", Label: "A"}}, Options(lit, ctx))

	fn := f.OptionsFunc(func(fld Field[member], _ Ctx[member]) []settings.Option {
		return []settings.Option{{Value: fld.Col, Label: fld.Label}}
	})
	assert.Equal(t, []settings.Option{{Value: "rel", Label: "Relationship"}}, Options(fn, ctx))

	reg := settings.NewRegistry(settings.Fallback())
	ref := f.OptionsFrom(reg.Relationships())
	before := Options(ref, ctx)
	assert.NotEmpty(t, before)

	next := *reg.Settings()
	next.Relationships = []settings.Option{{Value: "x", Label: "X"}}
	reg.Swap(&next)
	assert.Equal(t, []settings.Option{{Value: "x", Label: "X"}}, Options(ref, ctx))
}

func TestToAPIAndBack(t *testing.T) {
	s := householdSchema(counter())
	h := s.New(Ctx[household]{})
	h.Member = true
	h.Number = "1234"
	h.Size = 3
	h.Display = "only on screen"
	h.Members = append(h.Members, member{Name: "Ann", Phone: "555"})

	api := s.ToAPI(h)
	assert.Equal(t, true, api["is_member"])
	assert.NotContains(t, api, "member")
	assert.NotContains(t, api, "display")
	assert.Equal(t, map[string]any{"city": "San Jose"}, api["address"])
	assert.Equal(t, 3, api["size"])
	require.Len(t, api["members"], 2)

	back := s.ToUI(api, Ctx[household]{})
	h.Display = ""
	assert.Equal(t, h, back)
}

func TestToAPIOmitsDroppedKeys(t *testing.T) {
	s := householdSchema(counter())
	h := s.New(Ctx[household]{})
	api := s.ToAPI(h)
	assert.NotContains(t, api, "size")
}

func TestToUIDefaultsForMissingValues(t *testing.T) {
	s := householdSchema(counter())
	h := s.ToUI(map[string]any{"is_member": true, "size": float64(4), "number": nil}, Ctx[household]{})
	assert.Equal(t, "H:1", h.ID)
	assert.True(t, h.Member)
	assert.Equal(t, 4, h.Size)
	assert.Equal(t, "", h.Number)
	assert.Equal(t, "San Jose", h.City)
	assert.Empty(t, h.Members)
	assert.NotNil(t, h.Members)
}

func TestRoundTripOfNewEntity(t *testing.T) {
	s := householdSchema(counter())
	h := s.New(Ctx[household]{})
	assert.Equal(t, h, s.ToUI(s.ToAPI(h), Ctx[household]{}))
}

func TestCheckRejectsDuplicates(t *testing.T) {
	s := &Schema[member]{
		Name: "dup",
		Fields: []Field[member]{
			String("name", "Name", func(m *member) *string { return &m.Name }),
			String("name", "Again", func(m *member) *string { return &m.Phone }),
		},
	}
	assert.Error(t, s.Check())

	s.Fields[1] = String("phone", "Phone", func(m *member) *string { return &m.Phone }).APIKey("name")
	assert.Error(t, s.Check())
}

func TestCoercion(t *testing.T) {
	assert.Equal(t, "12", AsString(float64(12)))
	assert.Equal(t, "", AsString(nil))
	assert.Equal(t, 7, AsInt("7"))
	assert.Equal(t, 2, AsInt(float64(2.9)))
	assert.Equal(t, 0, AsInt("x"))
	assert.Equal(t, 1.5, AsFloat("1.5"))
	assert.True(t, AsBool("yes"))
	assert.False(t, AsBool(nil))
}

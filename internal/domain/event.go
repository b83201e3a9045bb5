package domain

import (
	"time"

	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/settings"
)

// Event types form the prerequisite chain ADM -> REG -> EVT.
const (
	TypeAdmin        = "ADM"
	TypeRegistration = "REG"
	TypeEvent        = "EVT"
)

// Fee levels.
const (
	LevelPerFamily = "PF"
	LevelPerChild  = "PC"
)

// Fee codes with special handling on ADM events.
const (
	FeeSecurity      = "SECF"
	FeeNonParishoner = "NPMF"
)

type Fee struct {
	Code   string  `json:"code" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

type Prereq struct {
	EventID string `json:"eventId" validate:"required"`
}

type Event struct {
	ID            string   `json:"id"`
	EventType     string   `json:"eventType" validate:"required,oneof=ADM REG EVT"`
	Title         string   `json:"title" validate:"required"`
	Year          int      `json:"year" validate:"gte=2000,lte=2100"`
	Level         string   `json:"level" validate:"required,oneof=PF PC"`
	OpenDate      string   `json:"openDate" validate:"required,datetime=2006-01-02"`
	EndDate       string   `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	MinAge        int      `json:"minAge" validate:"gte=0"`
	MaxAge        int      `json:"maxAge" validate:"gte=0"`
	Fees          []Fee    `json:"fees" validate:"dive"`
	Prerequisites []Prereq `json:"prerequisites" validate:"dive"`
}

func (e *Event) FeeAmount(code string) (float64, bool) {
	for _, f := range e.Fees {
		if f.Code == code {
			return f.Amount, true
		}
	}
	return 0, false
}

// EventHooks supplies the parts of the event schema that depend on other
// events or on eligibility rules.
type EventHooks struct {
	PrereqOptions  func(form *Event, row int) []settings.Option
	CanHavePrereqs func(eventType string) bool
}

func NewFeeSchema(reg *settings.Registry) *schema.Schema[Fee] {
	return &schema.Schema[Fee]{
		Name: "fee",
		Fields: []schema.Field[Fee]{
			schema.String("code", "Fee", func(f *Fee) *string { return &f.Code }).
				As(schema.Select).
				OptionsFrom(reg.FeeCodes()),
			schema.Float("amount", "Amount", func(f *Fee) *float64 { return &f.Amount }).
				DefaultFunc(func(ctx schema.Ctx[Fee]) any {
					if ctx.Form.Code == "" {
						return 0.0
					}
					return ctx.Options.Settings().FeeAmount(ctx.Form.Code)
				}),
		},
	}
}

func NewPrereqSchema(hooks EventHooks) *schema.Schema[Prereq] {
	return &schema.Schema[Prereq]{
		Name: "prerequisite",
		Fields: []schema.Field[Prereq]{
			schema.String("eventId", "Prerequisite", func(p *Prereq) *string { return &p.EventID }).
				As(schema.Select).
				OptionsFunc(func(_ schema.Field[Prereq], ctx schema.Ctx[Prereq]) []settings.Option {
					ev, ok := ctx.Parent.(*Event)
					if !ok || hooks.PrereqOptions == nil {
						return nil
					}
					return hooks.PrereqOptions(ev, ctx.Index)
				}).
				DisableIf(func(ctx schema.Ctx[Prereq]) bool {
					ev, ok := ctx.Parent.(*Event)
					return ok && hooks.CanHavePrereqs != nil && !hooks.CanHavePrereqs(ev.EventType)
				}),
		},
	}
}

func NewEventSchema(reg *settings.Registry, hooks EventHooks) *schema.Schema[Event] {
	return &schema.Schema[Event]{
		Name: "event",
		Fields: []schema.Field[Event]{
			schema.String("id", "Event ID", func(e *Event) *string { return &e.ID }).
				Disable().
				MapAPI(func(v any, _ *Event) (any, bool) {
					// the server assigns ids on create
					return v, v != ""
				}, nil),
			schema.String("eventType", "Type", func(e *Event) *string { return &e.EventType }).
				As(schema.Select).
				OptionsFrom(reg.EventTypes()).
				DefaultTo(TypeEvent),
			schema.String("title", "Title", func(e *Event) *string { return &e.Title }),
			schema.Int("year", "Year", func(e *Event) *int { return &e.Year }).
				DefaultFunc(func(ctx schema.Ctx[Event]) any { return ctx.Options.CurrentYear() }),
			schema.String("level", "Level", func(e *Event) *string { return &e.Level }).
				As(schema.Select).
				OptionsFrom(reg.Levels()).
				DefaultTo(LevelPerFamily),
			schema.String("openDate", "Opens", func(e *Event) *string { return &e.OpenDate }).
				As(schema.Date).
				DefaultFunc(func(schema.Ctx[Event]) any { return time.Now().Format("2006-01-02") }),
			schema.String("endDate", "Ends", func(e *Event) *string { return &e.EndDate }).As(schema.Date),
			schema.Int("minAge", "Min age", func(e *Event) *int { return &e.MinAge }),
			schema.Int("maxAge", "Max age", func(e *Event) *int { return &e.MaxAge }),
		},
		Rows: []schema.RowSet[Event]{
			schema.Rows("fees", NewFeeSchema(reg), func(e *Event) *[]Fee { return &e.Fees }, 0),
			schema.Rows("prerequisites", NewPrereqSchema(hooks), func(e *Event) *[]Prereq { return &e.Prerequisites }, 0),
		},
	}
}

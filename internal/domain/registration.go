package domain

import (
	"time"

	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/settings"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

type RegChild struct {
	ChildID  string `json:"childId" validate:"required"`
	AgeGroup string `json:"ageGroup"`
	Status   string `json:"status"`
}

type Payment struct {
	Code       string  `json:"code" validate:"required"`
	UnitAmount float64 `json:"unitAmount" validate:"gte=0"`
	Quantity   int     `json:"quantity" validate:"gte=0"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	Method     string  `json:"method"`
	TxnRef     string  `json:"txnRef"`
	ReceiptNo  string  `json:"receiptNo"`
	ReceivedBy string  `json:"receivedBy"`
}

type Registration struct {
	ID           string     `json:"id"`
	EventID      string     `json:"eventId" validate:"required"`
	FamilyID     string     `json:"familyId" validate:"required"`
	FamilyName   string     `json:"familyName"`
	Status       string     `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED"`
	RegisteredAt string     `json:"registeredAt"`
	Children     []RegChild `json:"children" validate:"dive"`
	Payments     []Payment  `json:"payments" validate:"dive"`
	Notes        []Note     `json:"notes"`
}

// Total is the sum of payment amounts.
func (r *Registration) Total() float64 {
	var t float64
	for _, p := range r.Payments {
		t += p.Amount
	}
	return t
}

// Paid reports whether every payment line carries a receipt or transaction reference.
func (r *Registration) Paid() bool {
	if len(r.Payments) == 0 {
		return false
	}
	for _, p := range r.Payments {
		if p.Amount > 0 && p.ReceiptNo == "" && p.TxnRef == "" {
			return false
		}
	}
	return true
}

// RegistrationHooks supplies option lists and lookups owned by other controllers.
type RegistrationHooks struct {
	EventOptions  func() []settings.Option
	FamilyOptions func() []settings.Option
	ChildOptions  func(form *Registration) []settings.Option
	FamilyName    func(familyID string) string
}

func NewRegChildSchema(reg *settings.Registry, hooks RegistrationHooks) *schema.Schema[RegChild] {
	return &schema.Schema[RegChild]{
		Name: "registration child",
		Fields: []schema.Field[RegChild]{
			schema.String("childId", "Child", func(c *RegChild) *string { return &c.ChildID }).
				As(schema.Select).
				OptionsFunc(func(_ schema.Field[RegChild], ctx schema.Ctx[RegChild]) []settings.Option {
					r, ok := ctx.Parent.(*Registration)
					if !ok || hooks.ChildOptions == nil {
						return nil
					}
					return hooks.ChildOptions(r)
				}),
			schema.String("ageGroup", "Age group", func(c *RegChild) *string { return &c.AgeGroup }).
				As(schema.Select).
				OptionsFrom(reg.AgeGroups()).
				Disable(),
			schema.String("status", "Status", func(c *RegChild) *string { return &c.Status }).
				DefaultTo(StatusPending),
		},
	}
}

func NewPaymentSchema(reg *settings.Registry) *schema.Schema[Payment] {
	return &schema.Schema[Payment]{
		Name: "payment",
		Fields: []schema.Field[Payment]{
			schema.String("code", "Fee", func(p *Payment) *string { return &p.Code }).
				As(schema.Select).
				OptionsFrom(reg.FeeCodes()).
				Disable(),
			schema.Float("unitAmount", "Unit", func(p *Payment) *float64 { return &p.UnitAmount }).Disable(),
			schema.Int("quantity", "Qty", func(p *Payment) *int { return &p.Quantity }).Disable(),
			schema.Float("amount", "Amount", func(p *Payment) *float64 { return &p.Amount }).Disable(),
			schema.String("method", "Method", func(p *Payment) *string { return &p.Method }).
				As(schema.Select).
				OptionsFrom(reg.PaymentMethods()),
			schema.String("txnRef", "Txn ref", func(p *Payment) *string { return &p.TxnRef }).
				ShowIf(func(ctx schema.Ctx[Payment]) bool { return ctx.Form.Method != "" && ctx.Form.Method != "cash" }),
			schema.String("receiptNo", "Receipt #", func(p *Payment) *string { return &p.ReceiptNo }),
			schema.String("receivedBy", "Received by", func(p *Payment) *string { return &p.ReceivedBy }),
		},
	}
}

func NewRegistrationSchema(reg *settings.Registry, hooks RegistrationHooks) *schema.Schema[Registration] {
	return &schema.Schema[Registration]{
		Name: "registration",
		Fields: []schema.Field[Registration]{
			schema.String("id", "Registration ID", func(r *Registration) *string { return &r.ID }).
				Disable().
				MapAPI(func(v any, _ *Registration) (any, bool) { return v, v != "" }, nil),
			schema.String("eventId", "Event", func(r *Registration) *string { return &r.EventID }).
				As(schema.Select).
				OptionsFunc(func(schema.Field[Registration], schema.Ctx[Registration]) []settings.Option {
					if hooks.EventOptions == nil {
						return nil
					}
					return hooks.EventOptions()
				}).
				DisableIf(func(ctx schema.Ctx[Registration]) bool { return ctx.Form.ID != "" }),
			schema.String("familyId", "Family", func(r *Registration) *string { return &r.FamilyID }).
				As(schema.Datalist).
				OptionsFunc(func(schema.Field[Registration], schema.Ctx[Registration]) []settings.Option {
					if hooks.FamilyOptions == nil {
						return nil
					}
					return hooks.FamilyOptions()
				}).
				DisableIf(func(ctx schema.Ctx[Registration]) bool { return ctx.Form.ID != "" }),
			schema.String("familyName", "Family name", func(r *Registration) *string { return &r.FamilyName }).
				UIOnly().
				Disable().
				DefaultFunc(func(ctx schema.Ctx[Registration]) any {
					if hooks.FamilyName == nil || ctx.Form.FamilyID == "" {
						return ""
					}
					return hooks.FamilyName(ctx.Form.FamilyID)
				}),
			schema.String("status", "Status", func(r *Registration) *string { return &r.Status }).
				As(schema.Select).
				OptionList(
					settings.Option{Value: StatusPending, Label: "Pending"},
					settings.Option{Value: StatusConfirmed, Label: "Confirmed"},
					settings.Option{Value: StatusCancelled, Label: "Cancelled"},
				).
				DefaultTo(StatusPending),
			schema.String("registeredAt", "Registered", func(r *Registration) *string { return &r.RegisteredAt }).
				As(schema.Date).
				Disable().
				DefaultFunc(func(schema.Ctx[Registration]) any { return time.Now().Format("2006-01-02") }),
		},
		Rows: []schema.RowSet[Registration]{
			schema.Rows("children", NewRegChildSchema(reg, hooks), func(r *Registration) *[]RegChild { return &r.Children }, 0),
			schema.Rows("payments", NewPaymentSchema(reg), func(r *Registration) *[]Payment { return &r.Payments }, 0),
			schema.Rows("notes", NewNoteSchema(), func(r *Registration) *[]Note { return &r.Notes }, 0),
		},
	}
}

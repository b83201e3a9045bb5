package eligibility

import (
	"strings"

	"github.com/lojf/parish/internal/domain"
)

// FeesForEventAndFamily selects the fee lines that apply to fam registering
// for ev. ADM events charge parish members the security fee only and
// everyone else the security and non-parishioner fees. Other event types
// charge their full fee list.
func FeesForEventAndFamily(ev *domain.Event, fam *domain.Family) []domain.Fee {
	if ev == nil {
		return nil
	}
	if ev.EventType != domain.TypeAdmin {
		return append([]domain.Fee(nil), ev.Fees...)
	}
	allowed := map[string]bool{domain.FeeSecurity: true, domain.FeeNonParishoner: true}
	if fam != nil && fam.ParishMember {
		allowed = map[string]bool{domain.FeeSecurity: true}
	}
	var out []domain.Fee
	for _, f := range ev.Fees {
		if allowed[f.Code] {
			out = append(out, f)
		}
	}
	return out
}

// Quantity is 1 for per-family events and the number of selected children for
// per-child events.
func Quantity(ev *domain.Event, reg *domain.Registration) int {
	if ev == nil || ev.Level != domain.LevelPerChild {
		return 1
	}
	if reg == nil {
		return 0
	}
	n := 0
	for _, c := range reg.Children {
		if strings.TrimSpace(c.ChildID) != "" {
			n++
		}
	}
	return n
}

// BuildPayments prices fees at qty. Method, transaction reference, receipt
// number and receiver are carried over from existing by position.
func BuildPayments(existing []domain.Payment, fees []domain.Fee, qty int) []domain.Payment {
	out := make([]domain.Payment, 0, len(fees))
	for i, f := range fees {
		p := domain.Payment{
			Code:       f.Code,
			UnitAmount: f.Amount,
			Quantity:   qty,
			Amount:     f.Amount * float64(qty),
		}
		if i < len(existing) {
			prev := existing[i]
			p.Method = prev.Method
			p.TxnRef = prev.TxnRef
			p.ReceiptNo = prev.ReceiptNo
			p.ReceivedBy = prev.ReceivedBy
		}
		out = append(out, p)
	}
	return out
}

// PaymentsFor recomputes reg's payment lines for its event and family.
func PaymentsFor(ev *domain.Event, fam *domain.Family, reg *domain.Registration) []domain.Payment {
	var existing []domain.Payment
	if reg != nil {
		existing = reg.Payments
	}
	return BuildPayments(existing, FeesForEventAndFamily(ev, fam), Quantity(ev, reg))
}

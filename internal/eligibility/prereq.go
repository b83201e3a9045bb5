// Package eligibility holds the business rules for event prerequisites, fees
// and child age groups. Every function is pure.
package eligibility

import (
	"strings"
	"time"

	"github.com/lojf/parish/internal/domain"
)

var prereqChain = map[string]string{
	domain.TypeRegistration: domain.TypeAdmin,
	domain.TypeEvent:        domain.TypeRegistration,
}

// RequiredPrereqType returns the event type a prerequisite of eventType must
// have, or "" when eventType takes no prerequisites.
func RequiredPrereqType(eventType string) string {
	return prereqChain[eventType]
}

func CanHavePrereqs(eventType string) bool {
	return RequiredPrereqType(eventType) != ""
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
}

// NormalizeDate rewrites s as YYYY-MM-DD when it parses with a known layout;
// otherwise it returns s trimmed.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// IsValidPrereqSelection reports whether candidate may be chosen as a
// prerequisite of form.
func IsValidPrereqSelection(candidate, form *domain.Event) bool {
	if candidate == nil || form == nil {
		return false
	}
	want := RequiredPrereqType(form.EventType)
	if want == "" {
		return false
	}
	if candidate.ID == "" || candidate.ID == form.ID {
		return false
	}
	if candidate.Year != form.Year {
		return false
	}
	if NormalizeDate(candidate.OpenDate) > NormalizeDate(form.OpenDate) {
		return false
	}
	return candidate.EventType == want
}

// FilterAvailablePrereqEvents lists the events selectable in prerequisite row
// rowIndex of form. Events already picked in other rows are excluded; the
// row's own selection stays available.
func FilterAvailablePrereqEvents(all []*domain.Event, form *domain.Event, rowIndex int) []*domain.Event {
	taken := map[string]bool{}
	if form != nil {
		for i, p := range form.Prerequisites {
			if i == rowIndex || p.EventID == "" {
				continue
			}
			taken[p.EventID] = true
		}
	}
	out := make([]*domain.Event, 0, len(all))
	for _, ev := range all {
		if !IsValidPrereqSelection(ev, form) || taken[ev.ID] {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// MissingPrereqs returns the prerequisite event ids of ev for which the family
// has no registration on file. Cancelled registrations do not count.
func MissingPrereqs(ev *domain.Event, familyID string, regs []*domain.Registration) []string {
	if ev == nil {
		return nil
	}
	have := map[string]bool{}
	for _, r := range regs {
		if r == nil || r.FamilyID != familyID || r.Status == domain.StatusCancelled {
			continue
		}
		have[r.EventID] = true
	}
	var missing []string
	for _, p := range ev.Prerequisites {
		if p.EventID != "" && !have[p.EventID] {
			missing = append(missing, p.EventID)
		}
	}
	return missing
}

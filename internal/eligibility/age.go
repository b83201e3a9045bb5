package eligibility

import (
	"time"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/settings"
)

// AgeAt returns the age in whole years on asOf for a YYYY-MM-DD birth date.
func AgeAt(dob string, asOf time.Time) (int, bool) {
	d, err := time.Parse("2006-01-02", NormalizeDate(dob))
	if err != nil {
		return 0, false
	}
	y := asOf.Year() - d.Year()
	anniv := time.Date(asOf.Year(), d.Month(), d.Day(), 0, 0, 0, 0, asOf.Location())
	if asOf.Before(anniv) {
		y--
	}
	if y < 0 {
		y = 0
	}
	return y, true
}

// AgeGroup maps a child's age on December 31 of year onto groups. Unknown
// birth dates and ages outside every group yield "".
func AgeGroup(dob string, year int, groups []settings.AgeGroup) string {
	age, ok := AgeAt(dob, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
	if !ok {
		return ""
	}
	for _, g := range groups {
		if age >= g.MinAge && age <= g.MaxAge {
			return g.Label
		}
	}
	return ""
}

// ChildEligible checks the event's age limits; a zero MaxAge means no upper
// limit and an unknown birth date passes.
func ChildEligible(ev *domain.Event, c *domain.Child) bool {
	if ev == nil || c == nil {
		return false
	}
	if ev.MinAge == 0 && ev.MaxAge == 0 {
		return true
	}
	age, ok := AgeAt(c.DOB, time.Date(ev.Year, time.December, 31, 0, 0, 0, 0, time.UTC))
	if !ok {
		return true
	}
	if age < ev.MinAge {
		return false
	}
	return ev.MaxAge == 0 || age <= ev.MaxAge
}

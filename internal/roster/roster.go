// Package roster flattens the registrations of one event into printable rows.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/services"
)

type Row struct {
	RegistrationID string `json:"registrationId"`
	Status         string `json:"status"`
	RegisteredAt   string `json:"registeredAt"`

	FamilyID   string `json:"familyId"`
	FamilyName string `json:"familyName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`

	ChildID   string `json:"childId,omitempty"`
	ChildName string `json:"childName,omitempty"`
	SaintName string `json:"saintName,omitempty"`
	DOB       string `json:"dob,omitempty"`
	AgeGroup  string `json:"ageGroup,omitempty"`
	Allergies string `json:"allergies,omitempty"`

	Total float64 `json:"total"`
	Paid  bool    `json:"paid"`
}

func statusWeight(s string) int {
	switch s {
	case domain.StatusConfirmed:
		return 0
	case domain.StatusPending:
		return 1
	case domain.StatusCancelled:
		return 2
	default:
		return 3
	}
}

// Build lists the registrations of ev. Per-child events get one row per
// registered child; per-family events one row per registration.
func Build(ev *domain.Event, families []*domain.Family, regs []*domain.Registration) []Row {
	if ev == nil {
		return nil
	}
	byID := make(map[string]*domain.Family, len(families))
	for _, f := range families {
		byID[f.ID] = f
	}

	var rows []Row
	for _, r := range regs {
		if r == nil || r.EventID != ev.ID {
			continue
		}
		base := Row{
			RegistrationID: r.ID,
			Status:         r.Status,
			RegisteredAt:   r.RegisteredAt,
			FamilyID:       r.FamilyID,
			FamilyName:     r.FamilyName,
			Total:          r.Total(),
			Paid:           r.Paid(),
		}
		fam := byID[r.FamilyID]
		if fam != nil {
			base.FamilyName = fam.DisplayName()
			if len(fam.Contacts) > 0 {
				base.Phone = fam.Contacts[0].Phone
				base.Email = fam.Contacts[0].Email
			}
		}
		if ev.Level != domain.LevelPerChild || len(r.Children) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, rc := range r.Children {
			row := base
			row.ChildID = rc.ChildID
			row.AgeGroup = rc.AgeGroup
			if rc.Status != "" && r.Status != domain.StatusCancelled {
				row.Status = rc.Status
			}
			if fam != nil {
				if c := fam.ChildByID(rc.ChildID); c != nil {
					row.ChildName = strings.TrimSpace(c.LastName + ", " + c.FirstName)
					row.SaintName = c.SaintName
					row.DOB = c.DOB
					row.Allergies = c.Allergies
				}
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if wi, wj := statusWeight(rows[i].Status), statusWeight(rows[j].Status); wi != wj {
			return wi < wj
		}
		if rows[i].FamilyName != rows[j].FamilyName {
			return rows[i].FamilyName < rows[j].FamilyName
		}
		return rows[i].ChildName < rows[j].ChildName
	})
	return rows
}

// Haystack is the text searched by the roster's quick filter. Phone digits
// are included so that "4085550100" finds "(408) 555-0100".
func Haystack(r Row) string {
	return strings.Join([]string{
		r.RegistrationID, r.FamilyID, r.FamilyName, r.ChildName, r.SaintName,
		r.Email, r.Phone, services.DigitsOnly(r.Phone), r.AgeGroup,
	}, " ")
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"Registered", "Registration", "Status", "Family", "Phone", "Email",
		"Child", "Saint name", "DOB", "Age group", "Allergies", "Total", "Paid",
	})
	for _, r := range rows {
		paid := "no"
		if r.Paid {
			paid = "yes"
		}
		_ = cw.Write([]string{
			r.RegisteredAt,
			r.RegistrationID,
			r.Status,
			r.FamilyName,
			r.Phone,
			r.Email,
			r.ChildName,
			r.SaintName,
			r.DOB,
			r.AgeGroup,
			r.Allergies,
			fmt.Sprintf("%.2f", r.Total),
			paid,
		})
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the suggested download name for an event's roster.
func Filename(ev *domain.Event) string {
	id := "all"
	if ev != nil && ev.ID != "" {
		id = strings.NewReplacer(":", "-", "/", "-").Replace(ev.ID)
	}
	return fmt.Sprintf("roster-%s.csv", id)
}

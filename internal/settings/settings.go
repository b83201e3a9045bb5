// Package settings holds the application settings document and the option
// registry derived from it. The registry is passed explicitly to schemas and
// controllers; there is no package-level instance.
package settings

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DocumentID is the id of the settings document under /settings.
const DocumentID = "app"

//go:embed fallback.yaml
var fallbackYAML []byte

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type Fee struct {
	Code   string  `json:"code" yaml:"code"`
	Label  string  `json:"label" yaml:"label"`
	Amount float64 `json:"amount" yaml:"amount"`
}

type AgeGroup struct {
	Label  string `json:"label" yaml:"label"`
	MinAge int    `json:"minAge" yaml:"minAge"`
	MaxAge int    `json:"maxAge" yaml:"maxAge"`
}

type Settings struct {
	ID             string     `json:"id" yaml:"id"`
	ParishName     string     `json:"parishName" yaml:"parishName"`
	CurrentYear    int        `json:"currentYear" yaml:"currentYear"`
	ReadOnly       bool       `json:"readOnly" yaml:"readOnly"`
	PageSizes      []int      `json:"pageSizes" yaml:"pageSizes"`
	Fees           []Fee      `json:"fees" yaml:"fees"`
	PaymentMethods []Option   `json:"paymentMethods" yaml:"paymentMethods"`
	Relationships  []Option   `json:"relationships" yaml:"relationships"`
	EventTypes     []Option   `json:"eventTypes" yaml:"eventTypes"`
	Levels         []Option   `json:"levels" yaml:"levels"`
	AgeGroups      []AgeGroup `json:"ageGroups" yaml:"ageGroups"`
}

// Fallback returns the built-in settings document used to seed a fresh backend.
func Fallback() *Settings {
	s, err := Parse(fallbackYAML)
	if err != nil {
		panic(errors.Wrap(err, "settings: embedded fallback"))
	}
	return s
}

// Parse reads a settings document from YAML (JSON is accepted too).
func Parse(b []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "parse settings")
	}
	if s.ID == "" {
		s.ID = DocumentID
	}
	return &s, nil
}

// FromMap converts an API-shaped settings document.
func FromMap(m map[string]any) (*Settings, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "encode settings")
	}
	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "decode settings")
	}
	if s.ID == "" {
		s.ID = DocumentID
	}
	return &s, nil
}

// ToMap returns the API-shaped form of s.
func (s *Settings) ToMap() map[string]any {
	b, _ := json.Marshal(s)
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	return out
}

// FeeAmount returns the catalog amount for code, or 0.
func (s *Settings) FeeAmount(code string) float64 {
	for _, f := range s.Fees {
		if f.Code == code {
			return f.Amount
		}
	}
	return 0
}

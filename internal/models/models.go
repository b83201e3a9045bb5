package models

import "time"

// Collections served by the API.
const (
	Families      = "families"
	Events        = "events"
	Registrations = "registrations"
	Settings      = "settings"
)

// Document is one JSON record of a collection. The document body keeps the
// record's own id under "id".
type Document struct {
	Collection string `gorm:"primaryKey;size:32"`
	ID         string `gorm:"primaryKey;size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Data map[string]any `gorm:"serializer:json;not null"`
}

// Body returns the document data with "id" set.
func (d *Document) Body() map[string]any {
	out := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		out[k] = v
	}
	out["id"] = d.ID
	return out
}

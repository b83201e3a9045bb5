package client

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lojf/parish/internal/settings"
)

type SettingsAPI struct {
	r *Resource
}

func (c *Client) Settings() *SettingsAPI {
	return &SettingsAPI{r: c.Resource("/settings")}
}

// Bootstrap loads the settings document. When the backend has none yet
// (404), fallback is stored and returned. Any other error is returned as is.
func (s *SettingsAPI) Bootstrap(ctx context.Context, fallback *settings.Settings) (*settings.Settings, error) {
	doc, err := s.r.Get(ctx, settings.DocumentID)
	if err == nil {
		return settings.FromMap(doc)
	}
	if !IsNotFound(err) {
		return nil, errors.Wrap(err, "load settings")
	}
	if fallback == nil {
		fallback = settings.Fallback()
	}
	seed := fallback.ToMap()
	seed["id"] = settings.DocumentID
	if _, err := s.r.Create(ctx, seed); err != nil {
		return nil, errors.Wrap(err, "seed settings")
	}
	s.r.log.WithField("id", settings.DocumentID).Info("settings document seeded with defaults")
	return fallback, nil
}

// Save replaces the stored settings document.
func (s *SettingsAPI) Save(ctx context.Context, st *settings.Settings) error {
	_, err := s.r.Replace(ctx, settings.DocumentID, st.ToMap())
	return errors.Wrap(err, "save settings")
}

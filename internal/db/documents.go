package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/lojf/parish/internal/diff"
	"github.com/lojf/parish/internal/models"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
)

// Collection reads and writes the documents of one collection.
type Collection struct {
	name string
	db   func() *gorm.DB
}

// Documents returns the collection name on the package connection.
func Documents(name string) *Collection {
	return &Collection{name: name, db: Conn}
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) q(ctx context.Context) *gorm.DB {
	return c.db().WithContext(ctx).Where("collection = ?", c.name)
}

func (c *Collection) List(ctx context.Context) ([]map[string]any, error) {
	var docs []models.Document
	if err := c.q(ctx).Order("created_at, id").Find(&docs).Error; err != nil {
		return nil, errors.Wrapf(err, "list %s", c.name)
	}
	out := make([]map[string]any, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].Body())
	}
	return out, nil
}

func (c *Collection) find(tx *gorm.DB, id string) (*models.Document, error) {
	var d models.Document
	err := tx.Where("collection = ? AND id = ?", c.name, id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s/%s", c.name, id)
	}
	return &d, nil
}

func (c *Collection) Get(ctx context.Context, id string) (map[string]any, error) {
	d, err := c.find(c.db().WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return d.Body(), nil
}

// Create stores body under id. The "id" key of body is ignored.
func (c *Collection) Create(ctx context.Context, id string, body map[string]any) (map[string]any, error) {
	d := models.Document{Collection: c.name, ID: id, Data: strip(body)}
	err := c.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := c.find(tx, id); err == nil {
			return ErrExists
		} else if err != ErrNotFound {
			return err
		}
		return tx.Create(&d).Error
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s/%s", c.name, id)
	}
	return d.Body(), nil
}

// Replace overwrites the document body.
func (c *Collection) Replace(ctx context.Context, id string, body map[string]any) (map[string]any, error) {
	return c.update(ctx, id, func(map[string]any) (map[string]any, error) { return strip(body), nil })
}

// Patch merges patch into the stored body. Nested objects merge, arrays and
// scalars are replaced and a null removes the key.
func (c *Collection) Patch(ctx context.Context, id string, patch map[string]any) (map[string]any, error) {
	return c.update(ctx, id, func(cur map[string]any) (map[string]any, error) { return diff.Merge(cur, strip(patch)) })
}

func (c *Collection) update(ctx context.Context, id string, fn func(map[string]any) (map[string]any, error)) (map[string]any, error) {
	var out map[string]any
	err := c.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := c.find(tx, id)
		if err != nil {
			return err
		}
		if d.Data, err = fn(d.Data); err != nil {
			return err
		}
		if err := tx.Save(d).Error; err != nil {
			return err
		}
		out = d.Body()
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update %s/%s", c.name, id)
	}
	return out, nil
}

func (c *Collection) Delete(ctx context.Context, id string) error {
	res := c.q(ctx).Where("id = ?", id).Delete(&models.Document{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete %s/%s", c.name, id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func strip(body map[string]any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}

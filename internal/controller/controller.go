// Package controller drives the list/create/edit cycle of each entity
// against the REST backend.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lojf/parish/internal/diff"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/schema"
	"github.com/lojf/parish/internal/settings"
	"github.com/lojf/parish/internal/validate"
)

var (
	ErrReadOnly   = errors.New("read-only mode")
	ErrNoChanges  = errors.New("no changes")
	ErrNotEditing = errors.New("no form open")
)

type Mode string

const (
	ModeList   Mode = "LIST"
	ModeCreate Mode = "CREATE"
	ModeEdit   Mode = "EDIT"
)

// Store is the REST collection a controller works on; *client.Resource
// implements it.
type Store interface {
	List(ctx context.Context) ([]map[string]any, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	Create(ctx context.Context, doc map[string]any) (map[string]any, error)
	Update(ctx context.Context, id string, patch map[string]any) (map[string]any, error)
	Delete(ctx context.Context, id string) error
}

type Config[T any] struct {
	Name    string
	Schema  *schema.Schema[T]
	Store   Store
	Options *settings.Registry
	ID      func(*T) string
	// Validate receives the form and the loaded list.
	Validate func(form *T, list []*T) validate.Errors

	Haystack func(*T) string
	Filters  []listview.Filter[*T]
	PageSize int
	Debounce time.Duration

	Log *logrus.Entry
}

// Controller holds the loaded list and at most one open form. It is safe for
// concurrent use. Two overlapping Loads are not coalesced: the one that
// finishes last wins.
type Controller[T any] struct {
	cfg  Config[T]
	log  *logrus.Entry
	view *listview.View[*T]

	listMu sync.RWMutex
	list   []*T
	raw    []map[string]any

	mu       sync.Mutex
	mode     Mode
	form     *T
	snapshot map[string]any
	errs     validate.Errors
	status   *Status
}

func New[T any](cfg Config[T]) *Controller[T] {
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Controller[T]{
		cfg:  cfg,
		log:  log.WithField("controller", cfg.Name),
		mode: ModeList,
		view: listview.NewView(listview.ViewOptions[*T]{
			Filters:  cfg.Filters,
			Haystack: cfg.Haystack,
			PageSize: cfg.PageSize,
			Debounce: cfg.Debounce,
		}),
	}
}

func (c *Controller[T]) readOnly() bool { return c.cfg.Options.ReadOnly() }

// Ctx is the schema context for the controller's forms.
func (c *Controller[T]) Ctx() schema.Ctx[T] {
	return schema.Ctx[T]{ReadOnly: c.readOnly(), Options: c.cfg.Options}
}

func (c *Controller[T]) Schema() *schema.Schema[T] { return c.cfg.Schema }

// Load replaces the list with the backend's current records. On failure the
// previous list is kept.
func (c *Controller[T]) Load(ctx context.Context) error {
	docs, err := c.cfg.Store.List(ctx)
	if err != nil {
		c.log.WithError(err).Error("load failed")
		c.notify(KindError, "load_failed")
		return errors.Wrapf(err, "load %s", c.cfg.Name)
	}
	sctx := c.Ctx()
	items := make([]*T, 0, len(docs))
	for _, d := range docs {
		items = append(items, c.cfg.Schema.ToUI(d, sctx))
	}
	c.listMu.Lock()
	c.list, c.raw = items, docs
	c.listMu.Unlock()
	c.view.SetSource(items)
	c.log.WithField("count", len(items)).Debug("loaded")
	return nil
}

// Items returns the loaded records in UI shape.
func (c *Controller[T]) Items() []*T {
	c.listMu.RLock()
	defer c.listMu.RUnlock()
	return append([]*T(nil), c.list...)
}

// Records returns the loaded records as the API sent them.
func (c *Controller[T]) Records() []map[string]any {
	c.listMu.RLock()
	defer c.listMu.RUnlock()
	return append([]map[string]any(nil), c.raw...)
}

func (c *Controller[T]) Find(id string) *T {
	c.listMu.RLock()
	defer c.listMu.RUnlock()
	for _, it := range c.list {
		if c.cfg.ID(it) == id {
			return it
		}
	}
	return nil
}

func (c *Controller[T]) record(id string) map[string]any {
	c.listMu.RLock()
	defer c.listMu.RUnlock()
	for _, d := range c.raw {
		if schema.AsString(d["id"]) == id {
			return d
		}
	}
	return nil
}

// View is the filtered and paged list.
func (c *Controller[T]) View() *listview.View[*T] { return c.view }

// BeginCreate opens an empty form built from the schema defaults.
func (c *Controller[T]) BeginCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = c.cfg.Schema.New(c.Ctx())
	c.errs = nil
	c.snapshot = c.cfg.Schema.ToAPI(c.form)
	c.mode = ModeCreate
}

// BeginEdit opens api for editing. A nil record or one without an id leaves
// the controller where it was and sets a warning.
func (c *Controller[T]) BeginEdit(api map[string]any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if api == nil || schema.AsString(api["id"]) == "" {
		c.log.Warn("edit requested for a record without id")
		c.setStatus(KindWarn, "missing_record")
		return false
	}
	c.form = c.cfg.Schema.ToUI(api, c.Ctx())
	c.snapshot = c.cfg.Schema.ToAPI(c.form)
	c.errs = c.validateForm()
	c.mode = ModeEdit
	return true
}

// BeginEditID opens the record with id, fetching it when it is not in the
// loaded list.
func (c *Controller[T]) BeginEditID(ctx context.Context, id string) error {
	doc := c.record(id)
	if doc == nil {
		var err error
		if doc, err = c.cfg.Store.Get(ctx, id); err != nil {
			c.log.WithError(err).WithField("id", id).Warn("record lookup failed")
			c.notify(KindWarn, "missing_record")
			return errors.Wrapf(err, "get %s %s", c.cfg.Name, id)
		}
	}
	if !c.BeginEdit(doc) {
		return errors.Errorf("%s %s has no id", c.cfg.Name, id)
	}
	return nil
}

// Cancel closes the form without saving.
func (c *Controller[T]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeForm()
}

func (c *Controller[T]) closeForm() {
	c.mode = ModeList
	c.form = nil
	c.snapshot = nil
	c.errs = nil
}

func (c *Controller[T]) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Form returns the open form, or nil. Mutate it through Edit.
func (c *Controller[T]) Form() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Edit runs fn on the open form under the controller lock. It reports false
// when no form is open.
func (c *Controller[T]) Edit(fn func(form *T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return false
	}
	fn(c.form)
	return true
}

// Set assigns a top-level field of the open form by column name.
func (c *Controller[T]) Set(col string, v any) error {
	f, ok := c.cfg.Schema.Field(col)
	if !ok {
		return errors.Errorf("%s has no field %q", c.cfg.Name, col)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return ErrNotEditing
	}
	if schema.IsDisabled(f, c.fieldCtx()) {
		return errors.Errorf("field %q is disabled", col)
	}
	f.Set(c.form, v)
	return nil
}

// fieldCtx must be called with mu held.
func (c *Controller[T]) fieldCtx() schema.Ctx[T] {
	ctx := c.Ctx()
	ctx.Form = c.form
	return ctx
}

// Patch is the API change set of the open form since it was opened.
func (c *Controller[T]) Patch() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patch()
}

func (c *Controller[T]) patch() map[string]any {
	if c.form == nil {
		return map[string]any{}
	}
	return diff.Patch(c.cfg.Schema, c.snapshot, c.form)
}

func (c *Controller[T]) Dirty() bool { return len(c.Patch()) > 0 }

func (c *Controller[T]) Errors() validate.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// Validate refreshes the error bag of the open form.
func (c *Controller[T]) Validate() validate.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = c.validateForm()
	return c.errs
}

func (c *Controller[T]) validateForm() validate.Errors {
	if c.cfg.Validate == nil || c.form == nil {
		return nil
	}
	return c.cfg.Validate(c.form, c.Items())
}

// Submit saves the open form. New records are POSTed in full, edited ones
// PATCHed with their change set. On success the list is reloaded and the
// controller returns to LIST; on failure the form stays open.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.readOnly() {
		c.setStatus(KindWarn, "read_only")
		c.mu.Unlock()
		return ErrReadOnly
	}
	if c.form == nil || c.mode == ModeList {
		c.setStatus(KindWarn, "not_editing")
		c.mu.Unlock()
		return ErrNotEditing
	}
	patch := c.patch()
	if len(patch) == 0 {
		c.setStatus(KindWarn, "no_changes")
		c.mu.Unlock()
		return ErrNoChanges
	}
	c.errs = c.validateForm()
	if first, ok := c.errs.First(); ok {
		c.setStatus(KindError, fmt.Sprintf("%s: %s", first.Field, first.Message))
		errs := c.errs
		c.mu.Unlock()
		return errs
	}
	mode := c.mode
	id := c.cfg.ID(c.form)
	body := patch
	if mode == ModeCreate {
		body = c.cfg.Schema.ToAPI(c.form)
	}
	c.mu.Unlock()

	var err error
	if mode == ModeCreate {
		_, err = c.cfg.Store.Create(ctx, body)
	} else {
		_, err = c.cfg.Store.Update(ctx, id, body)
	}
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"mode": mode, "id": id}).Error("save failed")
		c.notify(KindError, "save_failed")
		return errors.Wrapf(err, "save %s", c.cfg.Name)
	}
	c.log.WithFields(logrus.Fields{"mode": mode, "id": id}).Info("saved")

	loadErr := c.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeForm()
	if loadErr != nil {
		return loadErr
	}
	if mode == ModeCreate {
		c.setStatus(KindOK, "created")
	} else {
		c.setStatus(KindOK, "saved")
	}
	return nil
}

// Apply upserts doc. A loaded record with the same id is opened and doc is
// merged over it; otherwise a new record is created from doc. prepare runs on
// the merged form before it is saved. created reports which path was taken.
func (c *Controller[T]) Apply(ctx context.Context, doc map[string]any, prepare ...func(form *T)) (created bool, err error) {
	id := schema.AsString(doc["id"])
	if rec := c.record(id); id != "" && rec != nil {
		if !c.BeginEdit(rec) {
			return false, errors.Errorf("%s %s has no id", c.cfg.Name, id)
		}
	} else {
		c.BeginCreate()
		created = true
	}
	sctx := c.Ctx()
	var mergeErr error
	c.Edit(func(form *T) {
		merged, err := diff.Merge(c.cfg.Schema.ToAPI(form), doc)
		if err != nil {
			mergeErr = err
			return
		}
		next := c.cfg.Schema.ToUI(merged, sctx)
		for _, fn := range prepare {
			fn(next)
		}
		*form = *next
	})
	if mergeErr != nil {
		c.Cancel()
		return created, errors.Wrapf(mergeErr, "apply %s %s", c.cfg.Name, id)
	}
	if err := c.Submit(ctx); err != nil {
		if errors.Is(err, ErrNoChanges) {
			c.Cancel()
		}
		return created, err
	}
	return created, nil
}

// Delete removes the record with id and reloads the list.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	if c.readOnly() {
		c.notify(KindWarn, "read_only")
		return ErrReadOnly
	}
	if err := c.cfg.Store.Delete(ctx, id); err != nil {
		c.log.WithError(err).WithField("id", id).Error("delete failed")
		c.notify(KindError, "delete_failed")
		return errors.Wrapf(err, "delete %s %s", c.cfg.Name, id)
	}
	loadErr := c.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form != nil && c.cfg.ID(c.form) == id {
		c.closeForm()
	}
	if loadErr != nil {
		return loadErr
	}
	c.setStatus(KindOK, "deleted")
	return nil
}

// Status returns the last message, if any.
func (c *Controller[T]) Status() (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return Status{}, false
	}
	return *c.status, true
}

func (c *Controller[T]) ClearStatus() {
	c.mu.Lock()
	c.status = nil
	c.mu.Unlock()
}

// setStatus must be called with mu held.
func (c *Controller[T]) setStatus(kind Kind, key string) {
	s := makeStatus(kind, key)
	c.status = &s
}

func (c *Controller[T]) notify(kind Kind, key string) {
	c.mu.Lock()
	c.setStatus(kind, key)
	c.mu.Unlock()
}

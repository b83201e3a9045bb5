package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lojf/parish/internal/db"
	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/listview"
	"github.com/lojf/parish/internal/models"
	"github.com/lojf/parish/internal/roster"
)

func decode[T any](doc map[string]any) (*T, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeAll[T any](ctx context.Context, collection string) ([]*T, error) {
	docs, err := db.Documents(collection).List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			// one malformed document should not hide the rest of the roster
			logrus.WithError(err).WithFields(logrus.Fields{"collection": collection, "id": d["id"]}).Warn("skipping document")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// rosterRows builds the roster of event id, narrowed by the status and q
// query parameters.
func rosterRows(r *http.Request, id string) (*domain.Event, []roster.Row, error) {
	ctx := r.Context()
	doc, err := db.Documents(models.Events).Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ev, err := decode[domain.Event](doc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decode event")
	}
	fams, err := decodeAll[domain.Family](ctx, models.Families)
	if err != nil {
		return nil, nil, err
	}
	regs, err := decodeAll[domain.Registration](ctx, models.Registrations)
	if err != nil {
		return nil, nil, err
	}

	menu := listview.NewMenu(listview.Filter[roster.Row]{
		Key: "status", Kind: listview.KindSelect,
		Field: func(row roster.Row) any { return row.Status },
	})
	menu.Set("status", strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	rows := listview.FilterText(roster.Build(ev, fams, regs), r.URL.Query().Get("q"), roster.Haystack)
	return ev, menu.Apply(rows), nil
}

// GET /events/{id}/roster
func EventRoster(w http.ResponseWriter, r *http.Request) {
	_, rows, err := rosterRows(r, chi.URLParam(r, "id"))
	if err != nil {
		failed(w, r, err)
		return
	}
	if rows == nil {
		rows = []roster.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// GET /events/{id}/roster.csv
func EventRosterCSV(w http.ResponseWriter, r *http.Request) {
	ev, rows, err := rosterRows(r, chi.URLParam(r, "id"))
	if err != nil {
		failed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+roster.Filename(ev))
	if err := roster.WriteCSV(w, rows); err != nil {
		logrus.WithError(err).Warn("write roster csv")
	}
}

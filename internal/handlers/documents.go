package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lojf/parish/internal/db"
	"github.com/lojf/parish/internal/domain"
	"github.com/lojf/parish/internal/models"
)

// NewID returns a server-assigned id for a document of collection.
func NewID(collection string) string {
	switch collection {
	case models.Families:
		return domain.NewFamilyID()
	case models.Events:
		return "E:" + ulid.Make().String()
	case models.Registrations:
		return "R:" + ulid.Make().String()
	}
	return ulid.Make().String()
}

func failed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, db.ErrExists):
		writeError(w, http.StatusConflict, "already exists")
	default:
		logrus.WithError(err).WithField("path", r.URL.Path).Error("document request failed")
		writeError(w, http.StatusInternalServerError, "db error")
	}
}

// GET /{collection}
func ListDocuments(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := db.Documents(collection).List(r.Context())
		if err != nil {
			failed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /{collection}/{id}
func GetDocument(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := db.Documents(collection).Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			failed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// POST /{collection}; the body's id is used when present.
func CreateDocument(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readObject(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "body must be a JSON object")
			return
		}
		id, _ := body["id"].(string)
		if id == "" {
			id = NewID(collection)
		}
		doc, err := db.Documents(collection).Create(r.Context(), id, body)
		if err != nil {
			failed(w, r, err)
			return
		}
		logrus.WithFields(logrus.Fields{"collection": collection, "id": id}).Info("document created")
		writeJSON(w, http.StatusCreated, doc)
	}
}

// PUT /{collection}/{id}
func ReplaceDocument(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readObject(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "body must be a JSON object")
			return
		}
		doc, err := db.Documents(collection).Replace(r.Context(), chi.URLParam(r, "id"), body)
		if err != nil {
			failed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// PATCH /{collection}/{id}
func PatchDocument(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readObject(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "body must be a JSON object")
			return
		}
		doc, err := db.Documents(collection).Patch(r.Context(), chi.URLParam(r, "id"), body)
		if err != nil {
			failed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// DELETE /{collection}/{id}
func DeleteDocument(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Documents(collection).Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			failed(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

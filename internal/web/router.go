package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lojf/parish/internal/handlers"
	"github.com/lojf/parish/internal/models"
)

type Options struct {
	// PublicURL is the base encoded in registration QR codes. Empty uses the
	// request host.
	PublicURL string
	// Quiet drops the request log line.
	Quiet bool
}

func Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if !opts.Quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/healthz", handlers.Health)

	mountDocuments(r, models.Families)
	mountDocuments(r, models.Settings)
	mountDocuments(r, models.Events, func(er chi.Router) {
		er.Get("/{id}/roster", handlers.EventRoster)
		er.Get("/{id}/roster.csv", handlers.EventRosterCSV)
	})
	mountDocuments(r, models.Registrations, func(rr chi.Router) {
		rr.Get("/{id}/qr.png", handlers.RegistrationQR(opts.PublicURL))
	})

	return r
}

func mountDocuments(r chi.Router, collection string, extra ...func(chi.Router)) {
	r.Route("/"+collection, func(cr chi.Router) {
		cr.Get("/", handlers.ListDocuments(collection))
		cr.Post("/", handlers.CreateDocument(collection))
		cr.Get("/{id}", handlers.GetDocument(collection))
		cr.Put("/{id}", handlers.ReplaceDocument(collection))
		cr.Patch("/{id}", handlers.PatchDocument(collection))
		cr.Delete("/{id}", handlers.DeleteDocument(collection))
		for _, fn := range extra {
			fn(cr)
		}
	})
}

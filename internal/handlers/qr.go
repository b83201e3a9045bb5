package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/lojf/parish/internal/db"
	"github.com/lojf/parish/internal/models"
)

// ReceiptURL is what a registration's QR code encodes. base falls back to
// the request host.
func ReceiptURL(base string, r *http.Request, id string) string {
	if base == "" {
		base = "http://" + r.Host
	}
	return strings.TrimRight(base, "/") + "/registrations/" + id
}

// GET /registrations/{id}/qr.png
func RegistrationQR(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		// ensure the registration exists
		if _, err := db.Documents(models.Registrations).Get(r.Context(), id); err != nil {
			failed(w, r, err)
			return
		}

		png, err := qrcode.Encode(ReceiptURL(publicURL, r, id), qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

package handlers

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lojf/parish/internal/models"
)

func TestNewIDPrefixes(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^F:\d{4}-\d{4}-\d{4}$`), NewID(models.Families))
	assert.Regexp(t, `^E:[0-9A-Z]{26}$`, NewID(models.Events))
	assert.Regexp(t, `^R:[0-9A-Z]{26}$`, NewID(models.Registrations))
	assert.NotEqual(t, NewID(models.Events), NewID(models.Events))
}

func TestReceiptURL(t *testing.T) {
	r := httptest.NewRequest("GET", "/registrations/R:1/qr.png", nil)
	r.Host = "parish.local:8080"
	assert.Equal(t, "http://parish.local:8080/registrations/R:1", ReceiptURL("", r, "R:1"))
	assert.Equal(t, "https://parish.example/registrations/R:1", ReceiptURL("https://parish.example/", r, "R:1"))
}

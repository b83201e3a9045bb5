package services

import (
	"net/mail"
	"strings"
)

// NormEmail reduces a contact email to its lowercased bare address, dropping
// any display name ("Binh <B@x.com>" becomes "b@x.com"). Blank input is
// valid. A malformed address comes back trimmed and lowercased with ok false.
func NormEmail(s string) (addr string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	a, err := mail.ParseAddress(s)
	if err != nil {
		return strings.ToLower(s), false
	}
	return strings.ToLower(a.Address), true
}

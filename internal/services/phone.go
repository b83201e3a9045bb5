package services

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reLetters = regexp.MustCompile(`[A-Za-z]`)
	// Only allow digits, spaces, +, -, ., (, )
	reAllowed = regexp.MustCompile(`^[0-9+\-.\s\(\)]+$`)
	// E.164-ish: + followed by 8..15 digits (no leading 0 after +)
	reE164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
)

// NormPhone normalizes phone numbers to the format stored for contacts.
// Rules: strip spaces/dashes/dots/parens; 10 digits (or 1 + 10 digits) -> (AAA) BBB-CCCC;
// 00.. -> +..; other + numbers stay as +digits. Input that cannot be normalized
// is returned trimmed so nothing the user typed is lost.
func NormPhone(p string) string {
	s := strings.TrimSpace(p)

	if s == "" {
		return ""
	}
	if reLetters.MatchString(s) || !reAllowed.MatchString(s) {
		return s
	}

	// strip separators
	repl := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "\n", "", "\r", "", "\t", "")
	d := repl.Replace(s)

	// 00.. -> +..
	if strings.HasPrefix(d, "00") {
		d = "+" + d[2:]
	}
	if strings.HasPrefix(d, "+1") && len(d) == 12 {
		d = d[2:]
	}
	if strings.HasPrefix(d, "+") {
		if reE164.MatchString(d) {
			return d
		}
		return s
	}
	if len(d) == 11 && strings.HasPrefix(d, "1") {
		d = d[1:]
	}
	if len(d) != 10 {
		return s
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// ValidPhone reports whether p normalizes to a dialable number.
func ValidPhone(p string) bool {
	n := NormPhone(p)
	if reE164.MatchString(n) {
		return true
	}
	return len(DigitsOnly(n)) == 10 && strings.HasPrefix(n, "(")
}

func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneVariants lists the spellings a search for p should match.
func PhoneVariants(p string) []string {
	out := []string{}
	n := NormPhone(p)
	raw := strings.TrimSpace(p)

	if n != "" {
		out = append(out, n)
	}
	if raw != n && raw != "" {
		out = append(out, raw)
	}
	if d := DigitsOnly(n); d != "" {
		out = append(out, d)
		if len(d) == 10 {
			out = append(out, "1"+d, d[:3]+"-"+d[3:6]+"-"+d[6:])
		}
	}
	return out
}

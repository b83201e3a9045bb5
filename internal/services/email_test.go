package services

import "testing"

func TestNormEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"  ", "", true},
		{" Binh.Nguyen@Example.COM ", "binh.nguyen@example.com", true},
		{"Binh Nguyen <B.Nguyen@Example.com>", "b.nguyen@example.com", true},
		{"Not An Address", "not an address", false},
		{"a@", "a@", false},
	}
	for _, c := range cases {
		got, ok := NormEmail(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormEmail(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

package phone

import "testing"

func TestNormalizeDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+91 98765 43210", "9876543210"},
		{"98765-43210", "9876543210"},
		{"9876543210", "9876543210"},
		{"  9876543210  ", "9876543210"},
		{"not a number 123", "123"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeDigits(tc.in); got != tc.want {
			t.Errorf("NormalizeDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

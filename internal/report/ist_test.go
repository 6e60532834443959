package report

import (
	"testing"
	"time"
)

func TestFormatIST(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "utc input", in: time.Unix(1700000000, 0).UTC(), want: "2023-11-15 03:43:20 IST"},
		{name: "crosses midnight", in: time.Date(2024, 2, 28, 20, 0, 0, 0, time.UTC), want: "2024-02-29 01:30:00 IST"},
		{name: "non-utc input zone is ignored", in: time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("X", -7*3600)), want: "2024-01-01 12:30:00 IST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatIST(tt.in); got != tt.want {
				t.Errorf("FormatIST(%v) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestISTFromUTCString(t *testing.T) {
	got, err := ISTFromUTCString("2023-11-14 22:13:20 UTC")
	if err != nil {
		t.Fatalf("ISTFromUTCString() error = %v", err)
	}
	if got != "2023-11-15 03:43:20 IST" {
		t.Errorf("ISTFromUTCString() = %q; want %q", got, "2023-11-15 03:43:20 IST")
	}
}

func TestISTFromUTCString_idempotent(t *testing.T) {
	const in = "2021-06-30 23:59:59 UTC"
	first, err := ISTFromUTCString(in)
	if err != nil {
		t.Fatalf("first conversion: %v", err)
	}
	second, err := ISTFromUTCString(in)
	if err != nil {
		t.Fatalf("second conversion: %v", err)
	}
	if first != second {
		t.Errorf("conversions differ: %q vs %q", first, second)
	}
	if first != "2021-07-01 05:29:59 IST" {
		t.Errorf("conversion = %q; want %q", first, "2021-07-01 05:29:59 IST")
	}
}

func TestISTFromUTCString_invalid(t *testing.T) {
	for _, in := range []string{"", "2023-11-14T22:13:20Z", "2023-11-14 22:13:20 IST"} {
		if _, err := ISTFromUTCString(in); err == nil {
			t.Errorf("ISTFromUTCString(%q) error = nil; want non-nil", in)
		}
	}
}

package money

import "testing"

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"499.50", 49950, false},
		{"100", 10000, false},
		{"0.5", 50, false},
		{"10.00", 1000, false},
		{"-25.25", -2525, false},
		{".99", 99, false},
		{"1.999", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"10.0a", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseMinor(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMinor(%q): unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(49950); got != "499.50" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := FormatMinor(-5); got != "-0.05" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := FormatMinor(0); got != "0.00" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestFeeMinor(t *testing.T) {
	// 0.5% of $400.00
	if got := FeeMinor(40000, 50); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
	// banker's rounding on the half cent: 0.5% of $10.01 = 5.005 cents
	if got := FeeMinor(1001, 50); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := FeeMinor(0, 50); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

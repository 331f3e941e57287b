package solana

import "testing"

func TestToLamports_WholeAndFraction(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0.5", 500000000},
		{"1", 1000000000},
		{"1.", 1000000000},
		{"0.25", 250000000},
		{"2.000000001", 2000000001},
		{"0.000000001", 1},
		{"10.123456789", 10123456789},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := ToLamports(tc.in)
		if err != nil {
			t.Errorf("ToLamports(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ToLamports(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToLamports_TruncatesNotRounds(t *testing.T) {
	// 0.0000000015 SOL is 1.5 lamports; truncation gives 1, rounding would give 2.
	got, err := ToLamports("0.0000000015")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("expected 1 lamport, got %d", got)
	}

	got, err = ToLamports("0.9999999999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 999999999 {
		t.Errorf("expected 999999999 lamports, got %d", got)
	}
}

func TestToLamports_ExactAtFloatBoundaries(t *testing.T) {
	// 0.29 is not representable in binary floating point; float64
	// multiplication yields 289999999.99…, which would truncate wrong.
	got, err := ToLamports("0.29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 290000000 {
		t.Errorf("expected 290000000 lamports, got %d", got)
	}
}

func TestToLamports_Invalid(t *testing.T) {
	for _, in := range []string{"", " ", "-1", "-0.5", "abc", "1.2.3", "1,5", ".", "1e9", "+-1"} {
		if _, err := ToLamports(in); err == nil {
			t.Errorf("ToLamports(%q): expected error, got none", in)
		}
	}
}

func TestToBaseUnits_TokenDecimals(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     uint64
	}{
		{"1.5", 6, 1500000},
		{"0.000001", 6, 1},
		{"2", 0, 2},
		{"2.9", 0, 2}, // fraction truncated entirely for a zero-decimals mint
		{"0.29", 2, 29},
	}
	for _, tc := range cases {
		got, err := ToBaseUnits(tc.in, tc.decimals)
		if err != nil {
			t.Errorf("ToBaseUnits(%q, %d): unexpected error: %v", tc.in, tc.decimals, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ToBaseUnits(%q, %d) = %d, want %d", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func TestFromBaseUnits(t *testing.T) {
	cases := []struct {
		in       uint64
		decimals int
		want     string
	}{
		{1500000, 6, "1.5"},
		{1, 6, "0.000001"},
		{2, 0, "2"},
		{29, 2, "0.29"},
	}
	for _, tc := range cases {
		if got := FromBaseUnits(tc.in, tc.decimals); got != tc.want {
			t.Errorf("FromBaseUnits(%d, %d) = %q, want %q", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func TestFromLamports(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{1, "0.000000001"},
		{500000000, "0.5"},
		{1000000000, "1"},
		{1250000000, "1.25"},
	}
	for _, tc := range cases {
		if got := FromLamports(tc.in); got != tc.want {
			t.Errorf("FromLamports(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

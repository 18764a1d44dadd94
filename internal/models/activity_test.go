package models

import "testing"

func TestParseActivityDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2025-11-15T09:00:00", want: "2025-11-15T09:00:00"},
		{in: "2025-11-15T09:00", want: "2025-11-15T09:00:00"},
		{in: "2025-11-15 09:30:15", want: "2025-11-15T09:30:15"},
		{in: " 2025-11-15T09:00:00 ", want: "2025-11-15T09:00:00"},
		// offsets are dropped, the wall clock is kept
		{in: "2025-11-15T09:00:00+11:00", want: "2025-11-15T09:00:00"},
		{in: "2025-11-14T22:00:00.000Z", want: "2025-11-14T22:00:00"},
		{in: "2025-11-15", want: "2025-11-15T00:00:00"},
	}
	for _, tt := range tests {
		got, err := ParseActivityDate(tt.in)
		if err != nil {
			t.Fatalf("ParseActivityDate(%q): %v", tt.in, err)
		}
		if s := FormatActivityDate(got); s != tt.want {
			t.Fatalf("ParseActivityDate(%q): got=%q want=%q", tt.in, s, tt.want)
		}
	}
}

func TestParseActivityDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "15/11/2025", "2025-13-01T00:00:00"} {
		if _, err := ParseActivityDate(in); err == nil {
			t.Fatalf("ParseActivityDate(%q): expected error", in)
		}
	}
}

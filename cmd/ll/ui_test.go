package main

import "testing"

func TestFormatPence(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "£0.00"},
		{5, "£0.05"},
		{250_000, "£2,500.00"},
		{-123_456_789, "-£1,234,567.89"},
	}
	for _, tc := range tests {
		if got := formatPence(tc.in); got != tc.want {
			t.Fatalf("formatPence(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatBps(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{1_850, "18.5%"},
		{10_000, "100%"},
		{0, "0%"},
	}
	for _, tc := range tests {
		if got := formatBps(tc.in); got != tc.want {
			t.Fatalf("formatBps(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  The Red Lion  ", 20); got != "The Red Lion" {
		t.Fatalf("truncate kept padding: %q", got)
	}
	if got := truncate("The Prince of Wales Feathers", 12); got != "The Princ..." {
		t.Fatalf("truncate = %q", got)
	}
}

func TestPoundsFromArg(t *testing.T) {
	got, err := poundsFromArgOrPrompt([]string{"x", "12.34"}, 1, "Amount")
	if err != nil {
		t.Fatalf("poundsFromArgOrPrompt: %v", err)
	}
	if got != 1234 {
		t.Fatalf("poundsFromArgOrPrompt = %d, want 1234", got)
	}
	if _, err := poundsFromArgOrPrompt([]string{"x", "-1"}, 1, "Amount"); err == nil {
		t.Fatal("negative amount accepted")
	}
}

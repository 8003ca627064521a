package storage

import "testing"

func TestStem(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"My Story! #1", "My_Story_1"},
		{"plain", "plain"},
		{"  spaced   out  ", "spaced_out"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"snake_case kept", "snake_case_kept"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Stem(tc.title); got != tc.want {
			t.Fatalf("Stem(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestStemIsIdempotent(t *testing.T) {
	first := Stem("My Story! #1")
	if second := Stem("My Story! #1"); second != first {
		t.Fatalf("stem not deterministic: %q vs %q", first, second)
	}
	if again := Stem(first); again != first {
		t.Fatalf("stem not idempotent: %q vs %q", again, first)
	}
}

package namekey

import "testing"

func TestNormalizeEquivalence(t *testing.T) {
	want := Normalize("The Beatles")
	if want == "" {
		t.Fatal("expected non-empty key")
	}
	for _, raw := range []string{"the beatles", "Beatles, The", "  The Beatles  ", "THE BEATLES"} {
		if got := Normalize(raw); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeRules(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"...", ""},
		{"Motörhead", "motorhead"},
		{"Beyoncé", "beyonce"},
		{"Sigur Rós", "sigur ros"},
		{"AC/DC", "ac dc"},
		{"Guns N' Roses", "guns n roses"},
		{"Abbey Road (Remastered)", "abbey road"},
		{"Abbey Road [2009 Remaster]", "abbey road"},
		{"Mellon Collie (Deluxe) (2012)", "mellon collie"},
		{"The Wall CD1", "wall"},
		{"The Wall Disc 2", "wall"},
		{"Physical Graffiti disk-1", "physical graffiti"},
		{"Use Your Illusion (Remastered) CD2", "use your illusion"},
		{"  Multiple   Spaces  ", "multiple spaces"},
		{"R.E.M.", "r e m"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeKeepsInteriorBrackets(t *testing.T) {
	// Only trailing disambiguation is stripped; interior brackets just lose
	// their punctuation.
	if got := Normalize("(What's the Story) Morning Glory?"); got != "what s the story morning glory" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	raw := "Im Büro (Live) CD 3"
	first := Normalize(raw)
	for i := 0; i < 100; i++ {
		if got := Normalize(raw); got != first {
			t.Fatalf("iteration %d: %q != %q", i, got, first)
		}
	}
}

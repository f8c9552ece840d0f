package parser

import "testing"

func TestFoldName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"José", "jose"},
		{"  Müller ", "muller"},
		{"O'Brien", "o'brien"},
		{"ÉLODIE", "elodie"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FoldName(c.in); got != c.want {
			t.Fatalf("FoldName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"jon snow", "john snow", 1},
		{"jon snow", "jon stark", 4},
		{"same", "same", 0},
	}
	for _, c := range cases {
		if got := Levenshtein(c.a, c.b); got != c.want {
			t.Fatalf("Levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestIsLikelyURL(t *testing.T) {
	t.Parallel()

	if !IsLikelyURL("https://www.moxfield.com/decks/abc123") {
		t.Fatalf("expected moxfield url to be recognized")
	}
	if !IsLikelyURL("http://archidekt.com/decks/99") {
		t.Fatalf("expected archidekt url to be recognized")
	}
	if IsLikelyURL("Jane Doe") {
		t.Fatalf("plain name should not be a url")
	}
	if IsLikelyURL("moxfield.com/decks/abc") {
		t.Fatalf("scheme-less string should not be a url")
	}
}

func TestLooksLikeDecklist(t *testing.T) {
	t.Parallel()

	deck := "4 Lightning Bolt\n4 Monastery Swiftspear\n20 Mountain"
	if !LooksLikeDecklist(deck) {
		t.Fatalf("expected decklist text to be recognized")
	}
	if LooksLikeDecklist("4 Lightning Bolt") {
		t.Fatalf("single line should not count as a decklist")
	}
	if LooksLikeDecklist("hello\nworld") {
		t.Fatalf("prose should not count as a decklist")
	}
	withX := "2x Island\n3x Brainstorm"
	if !LooksLikeDecklist(withX) {
		t.Fatalf("expected 'Nx card' form to be recognized")
	}
}

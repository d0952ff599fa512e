package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trademark symbol", in: "STAR WARS™: Squadrons", want: "star wars squadrons"},
		{name: "spelled out tm", in: "STAR WARS (tm): Squadrons", want: "star wars squadrons"},
		{name: "registered symbol", in: "Frostpunk®", want: "frostpunk"},
		{name: "ampersand", in: "Hue & Cry", want: "hue and cry"},
		{name: "plus sign", in: "Crypt of the NecroDancer + DLC", want: "crypt of the necrodancer and dlc"},
		{name: "diacritics", in: "Pokémon Café", want: "pokemon cafe"},
		{name: "punctuation runs", in: "S.T.A.L.K.E.R.: Shadow of Chornobyl", want: "s t a l k e r shadow of chornobyl"},
		{name: "hyphens keep words apart", in: "R-Type Final 2", want: "r type final 2"},
		{name: "whitespace collapse", in: "  A \t Short\n\nHike ", want: "a short hike"},
		{name: "digits survive", in: "Wolfenstein 3D", want: "wolfenstein 3d"},
		{name: "empty", in: "", want: ""},
		{name: "symbols only", in: "!!! --- ???", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"STAR WARS™: Squadrons", "Pokémon Café", "Hue & Cry"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical after normalization", a: "STAR WARS™: Squadrons", b: "Star Wars: Squadrons", want: 1},
		{name: "case only", a: "CELESTE", b: "celeste", want: 1},
		{name: "one empty", a: "Celeste", b: "", want: 0},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "single substitution", a: "abcd", b: "abcx", want: 0.75},
		{name: "half overlap", a: "abcd", b: "ab", want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Fatalf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"Control", "Hades"},
		{"The Witness", "Into the Breach"},
		{"", "Inscryption"},
		{"Outer Wilds", "Outer Worlds"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Fatalf("Similarity(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}

func TestSimilarityTypoVariants(t *testing.T) {
	// Longer titles within edit distance 2 must clear the default 0.80 bar.
	tests := []struct {
		a, b string
	}{
		{"Rocket League", "Rocket Leage"},
		{"Shadow Tactics", "Shadow Tactic"},
		{"Alan Wake Remastered", "Alan Wake Remasterd"},
		{"Death Stranding", "Deth Stranding"},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got < 0.8 {
			t.Fatalf("Similarity(%q, %q) = %v, want >= 0.8", tt.a, tt.b, got)
		}
	}
}

func TestMatch(t *testing.T) {
	candidates := []string{"Star Wars: Squadrons", "Star Wars Jedi: Fallen Order", "Squad"}

	got, ok := Match("STAR WARS™: Squadrons", candidates, 0.8)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Candidate != "Star Wars: Squadrons" {
		t.Fatalf("candidate = %q, want %q", got.Candidate, "Star Wars: Squadrons")
	}
	if got.Score != 1 {
		t.Fatalf("score = %v, want 1", got.Score)
	}
}

func TestMatchBelowThreshold(t *testing.T) {
	if _, ok := Match("Celeste", []string{"Hades", "Control"}, 0.8); ok {
		t.Fatal("expected no match below threshold")
	}
}

func TestMatchAtThreshold(t *testing.T) {
	// Score exactly at threshold is accepted; strictly below is not.
	if _, ok := Match("abcd", []string{"abcx"}, 0.75); !ok {
		t.Fatal("expected match at exact threshold")
	}
	if _, ok := Match("abcd", []string{"abcx"}, 0.76); ok {
		t.Fatal("expected no match just above score")
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	if _, ok := Match("Celeste", nil, 0.8); ok {
		t.Fatal("expected no match for empty candidate set")
	}
	if _, ok := Match("", []string{"Celeste"}, 0.8); ok {
		t.Fatal("expected no match for empty query")
	}
	if _, ok := Match("Celeste", []string{"", "  ", "™"}, 0.8); ok {
		t.Fatal("expected no match when all candidates normalize to empty")
	}
}

func TestMatchTieBreaks(t *testing.T) {
	// Both candidates score 0.5 against the query; the shorter one wins.
	got, ok := Match("abcd", []string{"abcdxxxx", "ab"}, 0.4)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Candidate != "ab" {
		t.Fatalf("candidate = %q, want shorter tie-break %q", got.Candidate, "ab")
	}

	// Equal score and length falls back to lexicographic order.
	got, ok = Match("abcd", []string{"abcy", "abcx"}, 0.7)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Candidate != "abcx" {
		t.Fatalf("candidate = %q, want lexicographic tie-break %q", got.Candidate, "abcx")
	}
}

func TestMatchDeterministicAcrossOrderings(t *testing.T) {
	candidates := []string{"abcdxxxx", "ab", "abcy", "abcx"}
	reversed := []string{"abcx", "abcy", "ab", "abcdxxxx"}

	a, okA := Match("abcd", candidates, 0.4)
	b, okB := Match("abcd", reversed, 0.4)
	if !okA || !okB {
		t.Fatal("expected matches in both orderings")
	}
	if a != b {
		t.Fatalf("ordering changed result: %+v vs %+v", a, b)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"gumbo", "gambol", 2},
		{"señor", "senor", 1},
	}
	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Fatalf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

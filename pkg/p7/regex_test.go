package p7

import "testing"

func mustRegex(t *testing.T, pattern string) *Regex {
	t.Helper()
	r, err := CompileRegex(pattern)
	if err != nil {
		t.Fatalf("CompileRegex(%q): %v", pattern, err)
	}
	return r
}

func TestRegexFullMatchIdentifier(t *testing.T) {
	r := mustRegex(t, `[a-zA-Z_][a-zA-Z0-9_]*`)
	cases := map[string]bool{
		"x":       true,
		"foo_bar": true,
		"_1":      true,
		"1x":      false,
		"":        false,
		"foo bar": false,
	}
	for s, want := range cases {
		if got := r.FullMatch(s); got != want {
			t.Errorf("FullMatch(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestRegexPrefixValid(t *testing.T) {
	r := mustRegex(t, `[0-9]+`)
	if !r.PrefixValid("1") {
		t.Fatalf("expected %q to be a valid prefix", "1")
	}
	if !r.PrefixValid("123") {
		t.Fatalf("expected %q to be a valid prefix", "123")
	}
	if r.PrefixValid("1a") {
		t.Fatalf("expected %q to not be a valid prefix", "1a")
	}
	if !r.PrefixValid("") {
		t.Fatalf("expected empty string to be a valid prefix of [0-9]+")
	}
}

func TestRegexOptionalAndStar(t *testing.T) {
	r := mustRegex(t, `-?[0-9]+`)
	if !r.FullMatch("-5") {
		t.Fatalf("expected -5 to match")
	}
	if !r.FullMatch("5") {
		t.Fatalf("expected 5 to match")
	}
	if r.FullMatch("-") {
		t.Fatalf("expected - alone to not match")
	}
	if !r.PrefixValid("-") {
		t.Fatalf("expected - to be a valid prefix (digits may follow)")
	}
}

func TestRegexAlternation(t *testing.T) {
	r := mustRegex(t, `true|false`)
	if !r.FullMatch("true") || !r.FullMatch("false") {
		t.Fatalf("expected both alternatives to match")
	}
	if r.FullMatch("tru") {
		t.Fatalf("did not expect partial alternative to fully match")
	}
	if !r.PrefixValid("tru") {
		t.Fatalf("expected tru to be a valid prefix of true")
	}
	if r.PrefixValid("tx") {
		t.Fatalf("did not expect tx to be a valid prefix")
	}
}

func TestRegexBoundedCount(t *testing.T) {
	r := mustRegex(t, `[0-9]{2,3}`)
	if r.FullMatch("1") {
		t.Fatalf("expected single digit to not satisfy {2,3}")
	}
	if !r.FullMatch("12") || !r.FullMatch("123") {
		t.Fatalf("expected 2 or 3 digits to match")
	}
	if r.FullMatch("1234") {
		t.Fatalf("expected 4 digits to exceed the bound")
	}
}

func TestRegexWhitespaceClass(t *testing.T) {
	r := mustRegex(t, `[ \t\n]+`)
	if !r.FullMatch("  \t\n") {
		t.Fatalf("expected whitespace run to match")
	}
	if r.FullMatch("") {
		t.Fatalf("expected plus to require at least one char")
	}
}

func TestRegexUnboundedCountAcceptsExactlyMin(t *testing.T) {
	r := mustRegex(t, `[0-9]{2,}`)
	if r.FullMatch("1") {
		t.Fatalf("expected single digit to not satisfy {2,}")
	}
	if !r.FullMatch("12") {
		t.Fatalf("expected exactly the minimum count to match {2,}")
	}
	if !r.FullMatch("123456") {
		t.Fatalf("expected a longer run to match {2,}")
	}
}

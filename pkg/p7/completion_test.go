package p7

import "testing"

func TestCompletionsSurfaceLiteralAndPatternCandidates(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"`
	g := mustCompile(t, spec)
	r := NewRecognizer(g)

	comps := r.Completions()
	if len(comps) == 0 {
		t.Fatal("expected at least one completion at the start")
	}

	if err := r.Feed("x"); err != nil {
		t.Fatalf("Feed(x): %v", err)
	}
	if err := r.Feed(":"); err != nil {
		t.Fatalf("Feed(:): %v", err)
	}
	comps = r.Completions()
	found := false
	for _, c := range comps {
		if c == "Fizz" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q among completions after %q, got %v", "Fizz", r.CurrentText(), comps)
	}
}

func TestFilterCompletionsNarrowsVocab(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"`
	g := mustCompile(t, spec)
	r := NewRecognizer(g)
	if err := r.Feed("x"); err != nil {
		t.Fatalf("Feed: %v", err)
	}

	vocab := []string{"", ":", "Fizz", "xyz", " "}
	out := r.FilterCompletions(vocab)

	// "xyz" and "Fizz" are also valid: each extends the identifier pattern
	// with more letters ("xFizz" is an identifier). " " is not: the
	// identifier hasn't ended yet and no whitespace follows it.
	want := map[string]bool{"": true, ":": true, "Fizz": true, "xyz": true}
	for _, tok := range out {
		if !want[tok] {
			t.Errorf("unexpected token %q survived filtering", tok)
		}
	}
	if len(out) != len(want) {
		t.Errorf("FilterCompletions(%v) = %v, want exactly %v", vocab, out, want)
	}
}

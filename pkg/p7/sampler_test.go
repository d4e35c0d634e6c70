package p7

import (
	"math"
	"testing"
)

func TestSamplerMasksInvalidTokens(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"

Value : => Fizz`
	vocab := []string{"x", ":", "9", " "}
	logitFn := func(_ string, vocab []string) []float64 {
		out := make([]float64, len(vocab))
		for i := range out {
			out[i] = 1
		}
		return out
	}
	s, err := NewSampler(spec, vocab, logitFn)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	logits := s.Infer(nil)
	if len(logits) != len(vocab) {
		t.Fatalf("expected %d logits, got %d", len(vocab), len(logits))
	}
	// At the start, only "x" (the identifier's first rune) can extend the
	// derivation; everything else must be masked to -Inf.
	for i, tok := range vocab {
		isInf := math.IsInf(logits[i], -1)
		if tok == "x" && isInf {
			t.Errorf("expected %q to be unmasked at the start", tok)
		}
		if tok != "x" && !isInf {
			t.Errorf("expected %q to be masked at the start", tok)
		}
	}
}

func TestSamplerGreedyDrivesCompleteDerivation(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"

Value : => Fizz`
	vocab := []string{""}
	for _, r := range "x:Fizzabcdefghijklmnopqrstuvwxyz" {
		vocab = append(vocab, string(r))
	}
	target := "x:Fizz"
	logitFn := func(generated string, vocab []string) []float64 {
		out := make([]float64, len(vocab))
		if len(generated) >= len(target) {
			return out
		}
		next := string(target[len(generated)])
		for i, tok := range vocab {
			if tok == next {
				out[i] = 5
			}
		}
		return out
	}
	s := NewSamplerFromGrammar(mustCompile(t, spec), vocab, logitFn)
	result := UntilComplete(s, GenerateOptions{K: 1})
	if !result.IsComplete {
		t.Fatalf("expected complete derivation, got %+v", result)
	}
	if result.Text != target {
		t.Fatalf("expected text %q, got %q", target, result.Text)
	}
	if result.StoppedReason != "complete" {
		t.Fatalf("expected stop reason complete, got %q", result.StoppedReason)
	}
}

func TestTopKIndicesBreaksTiesByLowerIndex(t *testing.T) {
	vals := []float64{5, 5, 5, 1}
	idx := topKIndices(vals, 3)
	want := []int{0, 1, 2}
	for i, w := range want {
		if idx[i] != w {
			t.Fatalf("topKIndices(%v, 3) = %v, want %v", vals, idx, want)
		}
	}
}

func mustCompile(t *testing.T, spec string) *Grammar {
	t.Helper()
	g, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return g
}

package p7

import (
	"bytes"
	"strings"
	"testing"
)

func scriptedLogitFn(target string) LogitFn {
	return func(generated string, vocab []string) []float64 {
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
}

func runeVocab(text string) []string {
	seen := map[string]bool{"": true}
	vocab := []string{""}
	for _, r := range text {
		s := string(r)
		if !seen[s] {
			seen[s] = true
			vocab = append(vocab, s)
		}
	}
	return vocab
}

func TestTokenStreamYieldsTokensInAcceptanceOrder(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"

Value : => Fizz`
	target := "x:Fizz"
	s := NewSamplerFromGrammar(mustCompile(t, spec), runeVocab(target), scriptedLogitFn(target))

	var observed []string
	stream := NewTokenStream(s, GenerateOptions{K: 1, OnToken: func(step int, tok string) {
		if step != len(observed) {
			t.Errorf("OnToken step = %d, want %d", step, len(observed))
		}
		observed = append(observed, tok)
	}})

	if _, ok := stream.Summary(); ok {
		t.Fatal("Summary must not be available before exhaustion")
	}

	var pulled []string
	for {
		tok, ok := stream.Next()
		if !ok {
			break
		}
		pulled = append(pulled, tok)
	}

	if got := strings.Join(pulled, ""); got != target {
		t.Fatalf("stream produced %q, want %q", got, target)
	}
	if strings.Join(observed, "") != strings.Join(pulled, "") {
		t.Fatalf("OnToken saw %v, Next returned %v", observed, pulled)
	}

	result, ok := stream.Summary()
	if !ok {
		t.Fatal("Summary must be available after exhaustion")
	}
	if !result.IsComplete || result.StoppedReason != "complete" {
		t.Fatalf("unexpected summary %+v", result)
	}
	if result.TokensGenerated != len(pulled) {
		t.Fatalf("TokensGenerated = %d, want %d", result.TokensGenerated, len(pulled))
	}

	// Exhausted streams stay exhausted.
	if _, ok := stream.Next(); ok {
		t.Fatal("Next after exhaustion must report ok == false")
	}
}

func TestStreamEventsEmitsTokenRecordsAndDone(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"

Value : => Fizz`
	target := "x:Fizz"
	s := NewSamplerFromGrammar(mustCompile(t, spec), runeVocab(target), scriptedLogitFn(target))

	var buf bytes.Buffer
	result, err := StreamEvents(NewTokenStream(s, GenerateOptions{K: 1}), NewEventWriter(&buf))
	if err != nil {
		t.Fatalf("StreamEvents: %v", err)
	}
	if !result.IsComplete {
		t.Fatalf("expected a complete run, got %+v", result)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(target)+1 {
		t.Fatalf("expected %d records (one per rune plus done), got %d:\n%s", len(target)+1, len(lines), buf.String())
	}
	first := lines[0]
	if !strings.Contains(first, `"type":"token"`) || !strings.Contains(first, `"text":"x"`) || !strings.Contains(first, `"full_text":"x"`) {
		t.Fatalf("unexpected first token record %s", first)
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, `"type":"done"`) || !strings.Contains(last, `"reason":"complete"`) || !strings.Contains(last, `"is_complete":true`) {
		t.Fatalf("unexpected done record %s", last)
	}
}

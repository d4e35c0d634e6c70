package modeltest

import (
	"context"
	"testing"

	"github.com/prop7/p7/pkg/p7"
)

func TestHandleUntilCompleteReproducesTarget(t *testing.T) {
	spec := `Value ::= /[a-zA-Z_][a-zA-Z0-9_]*/ ":" "Fizz"`
	h := NewHandle("abcdefghijklmnopqrstuvwxyzFizz:0123456789", "", "x:Fizz")

	result, err := h.UntilComplete(context.Background(), spec, "", p7.ConstrainedOptions{K: 1})
	if err != nil {
		t.Fatalf("UntilComplete: %v", err)
	}
	if !result.IsComplete {
		t.Fatalf("expected complete derivation, got %+v", result)
	}
	if result.Text != "x:Fizz" {
		t.Fatalf("Text = %q, want %q", result.Text, "x:Fizz")
	}
}

func TestHandleGenerateUnconstrainedReturnsThought(t *testing.T) {
	h := NewHandle("abc", "scripted thought", "")
	out, err := h.GenerateUnconstrained(context.Background(), "anything", p7.UnconstrainedOptions{})
	if err != nil {
		t.Fatalf("GenerateUnconstrained: %v", err)
	}
	if out != "scripted thought" {
		t.Fatalf("GenerateUnconstrained = %q, want %q", out, "scripted thought")
	}
}

package grammarsvc

import (
	"strings"
	"testing"

	"github.com/prop7/p7/pkg/p7"
)

func TestValidateGrammarAcceptsWellFormedSpec(t *testing.T) {
	spec := `Value ::= /[0-9]+/`
	res := ValidateGrammar(spec)
	if !res.Valid {
		t.Fatalf("expected valid, got errors: %v", res.Errors)
	}
	if res.StartNonterminal != "Value" {
		t.Fatalf("StartNonterminal = %q, want %q", res.StartNonterminal, "Value")
	}
}

func TestValidateGrammarRejectsMalformedSpec(t *testing.T) {
	res := ValidateGrammar("this is not a grammar")
	if res.Valid {
		t.Fatal("expected invalid spec to be rejected")
	}
	if len(res.Errors) == 0 {
		t.Fatal("expected at least one error message")
	}
}

func TestCheckPartialCompletable(t *testing.T) {
	spec := `Value ::= /[0-9]+/`
	if ok, reason := CheckPartialCompletable(spec, "12"); !ok {
		t.Fatalf("expected %q to be completable, got reason %q", "12", reason)
	}
	if ok, reason := CheckPartialCompletable(spec, "1a"); ok || reason != "invalid_prefix" {
		t.Fatalf("expected invalid_prefix for %q, got ok=%v reason=%q", "1a", ok, reason)
	}
}

func TestExtractSyntaxHints(t *testing.T) {
	spec := "Value ::= /[0-9]+/\nOther ::= \"x\""
	hints := ExtractSyntaxHints(spec)
	joined := strings.Join(hints, " | ")
	if !strings.Contains(joined, "Value") || !strings.Contains(joined, "Other") {
		t.Fatalf("hints missing expected heads: %v", hints)
	}
}

func TestGetGrammarNameForSpecMatchesBuiltin(t *testing.T) {
	spec, err := p7.GetGrammarSpec("toy")
	if err != nil {
		t.Fatalf("GetGrammarSpec: %v", err)
	}
	if name := GetGrammarNameForSpec(spec); name != "toy" {
		t.Fatalf("GetGrammarNameForSpec = %q, want %q", name, "toy")
	}
	if name := GetGrammarNameForSpec("Value ::= \"z\""); name != "" {
		t.Fatalf("expected no match for an unrelated spec, got %q", name)
	}
}

func TestGetSystemPromptForSpec(t *testing.T) {
	spec, err := p7.GetGrammarSpec("toy")
	if err != nil {
		t.Fatalf("GetGrammarSpec: %v", err)
	}
	prompt := GetSystemPromptForSpec(spec)
	if prompt == "" {
		t.Fatal("expected a non-empty system prompt for a built-in spec")
	}
	if GetSystemPromptForSpec("Value ::= \"z\"") != "" {
		t.Fatal("expected empty system prompt for a non-built-in spec")
	}
}

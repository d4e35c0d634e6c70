// Package grammarsvc exposes grammar validation and prompt-assembly helpers
// suitable for an API layer sitting on top of pkg/p7: validating a
// user-supplied grammar spec, checking whether a partial string is still
// completable, and matching an arbitrary spec against the built-in grammar
// registry so a caller can reuse its system prompt.
package grammarsvc

import (
	"strconv"
	"strings"

	"github.com/prop7/p7/pkg/p7"
)

// ValidationResult reports whether a spec compiled, the accumulated error
// messages if not, and the resolved start nonterminal if so.
type ValidationResult struct {
	Valid            bool
	Errors           []string
	StartNonterminal string
}

// ValidateGrammar compiles spec and reports whether it is well-formed,
// surfacing every accumulated compile error plus a few common-mistake hints
// when compilation fails.
func ValidateGrammar(spec string) ValidationResult {
	g, err := p7.Compile(spec)
	if err != nil {
		errs := []string{err.Error()}
		errs = append(errs, commonMistakeHints(err.Error())...)
		return ValidationResult{Valid: false, Errors: errs}
	}
	return ValidationResult{Valid: true, StartNonterminal: g.StartNonterminal()}
}

func commonMistakeHints(msg string) []string {
	if strings.Contains(msg, "line") {
		return []string{"check syntax around the indicated line number"}
	}
	return []string{
		"common issues:",
		"  - missing '::=' in a production rule",
		"  - unmatched parentheses or quotes",
		"  - an invalid regex pattern",
		"  - typing rules not separated from productions by a blank line",
	}
}

// CheckPartialCompletable reports whether text is a valid, still-completable
// prefix under spec: syntactically acceptable so far, and either already
// complete or with at least one live completion at the frontier.
func CheckPartialCompletable(spec, text string) (bool, string) {
	g, err := p7.Compile(spec)
	if err != nil {
		return false, "invalid_grammar"
	}
	r := p7.NewRecognizer(g)
	if text == "" {
		return true, ""
	}
	if err := r.Feed(text); err != nil {
		return false, "invalid_prefix"
	}
	if !r.IsComplete() && len(r.Completions()) == 0 {
		return false, "not_completable"
	}
	return true, ""
}

// ExtractSyntaxHints builds a short, best-effort description of spec's
// shape: its nonterminal heads (capped, with a "...and N more" tail) and,
// if spec compiles, its resolved start symbol. Used as a fallback when spec
// doesn't match any built-in grammar and so has no curated GrammarInfo.
func ExtractSyntaxHints(spec string) []string {
	var heads []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(spec, "\n") {
		idx := strings.Index(line, "::=")
		if idx < 0 {
			continue
		}
		head := strings.TrimSpace(line[:idx])
		if head != "" && !seen[head] {
			seen[head] = true
			heads = append(heads, head)
		}
	}

	var hints []string
	if len(heads) > 0 {
		const capHeads = 8
		shown := heads
		if len(shown) > capHeads {
			shown = shown[:capHeads]
		}
		hints = append(hints, "nonterminals: "+strings.Join(shown, ", "))
		if len(heads) > capHeads {
			hints = append(hints, "...and "+strconv.Itoa(len(heads)-capHeads)+" more")
		}
	}

	if g, err := p7.Compile(spec); err == nil {
		if start := g.StartNonterminal(); start != "" {
			hints = append(hints, "start symbol: "+start)
		}
	}
	return hints
}

// BuildFallbackSystemPrompt assembles a minimal system prompt for a spec
// that matches none of the built-in grammars, using ExtractSyntaxHints in
// place of a curated GrammarInfo.
func BuildFallbackSystemPrompt(spec string) string {
	var b strings.Builder
	b.WriteString("You are a reasoning assistant that produces well-typed output.\n\n")
	b.WriteString("Use the grammar spec below to guide syntax.\n")
	hints := ExtractSyntaxHints(spec)
	if len(hints) > 0 {
		b.WriteString("\nSyntax:\n")
		for _, h := range hints {
			b.WriteString("  - ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// GetGrammarNameForSpec returns the built-in grammar name whose spec text
// matches spec exactly (modulo leading/trailing whitespace), or "" if none
// does.
func GetGrammarNameForSpec(spec string) string {
	name, _ := matchBuiltin(spec)
	return name
}

// GetSystemPromptForSpec returns the curated system prompt for spec if it
// matches a built-in grammar (with worked examples included), or the empty
// string otherwise — callers typically fall back to
// BuildFallbackSystemPrompt in that case.
func GetSystemPromptForSpec(spec string) string {
	name, info := matchBuiltin(spec)
	if name == "" {
		return ""
	}
	return p7.BuildSystemPrompt(info, "", true)
}

func matchBuiltin(spec string) (string, p7.GrammarInfo) {
	specNorm := strings.TrimSpace(spec)
	for _, name := range p7.ListGrammars() {
		builtinSpec, err := p7.GetGrammarSpec(name)
		if err != nil {
			continue
		}
		if strings.TrimSpace(builtinSpec) != specNorm {
			continue
		}
		info, err := p7.GetGrammarInfo(name)
		if err != nil {
			continue
		}
		return name, info
	}
	return "", p7.GrammarInfo{}
}

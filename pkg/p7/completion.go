package p7

import "strings"

// Completions returns, for every terminal some surviving derivation could
// extend with next, a candidate suffix: the remaining unmatched text of a
// literal already in progress (or the whole literal if it hasn't started),
// and one bounded-length representative example string for a pattern
// terminal, generated by greedily walking its NFA toward an accepting
// state. Results are deduplicated but not ordered; a caller driving a typed
// sampler consumes these through the token filter (FilterCompletions,
// FilterCompletionIndices) rather than directly.
func (r *Recognizer) Completions() []string {
	const maxPatternExample = 24
	last := r.columns[len(r.columns)-1]
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, it := range last.items {
		sym, isTerm := it.atTerminal()
		if !isTerm {
			continue
		}
		switch {
		case sym.Literal != "":
			add(string([]rune(sym.Literal)[it.litProgress:]))
		case sym.Pattern != nil:
			if names, constrained := lookupNames(r.grammar, it); constrained {
				// Only Gamma-bound names can ever satisfy this terminal's
				// lookup rule, so they ARE the completions, not an
				// arbitrary sample from the pattern.
				scanned := ""
				if it.patStates != nil {
					scanned = string(r.buf[it.termStart:])
				}
				for _, nm := range names {
					if strings.HasPrefix(nm, scanned) && sym.Pattern.FullMatch(nm) {
						add(nm[len(scanned):])
					}
				}
				continue
			}
			if it.patStates != nil {
				if ex, ok := sym.Pattern.nfa.exampleFrom(it.patStates, maxPatternExample); ok {
					add(ex)
				}
			} else if ex, ok := sym.Pattern.example(maxPatternExample); ok {
				add(ex)
			}
		}
	}
	return out
}

// DebugCompletions is Completions' diagnostic counterpart: it separates the
// pattern terminals live at the frontier (as Regex.String renders them,
// the source in brackets, e.g. "[[0-9]+]" for the terminal /[0-9]+/)
// from one example each, so a caller inspecting why a grammar accepts or
// rejects a prefix can see both the rule and a concrete witness. Unlike
// Completions it does not include literal-terminal suffixes, which are
// already visible via NextLiterals.
func (r *Recognizer) DebugCompletions() DebugCompletionInfo {
	const maxPatternExample = 24
	last := r.columns[len(r.columns)-1]
	seen := make(map[string]bool)
	var info DebugCompletionInfo
	for _, it := range last.items {
		sym, isTerm := it.atTerminal()
		if !isTerm || sym.Pattern == nil {
			continue
		}
		src := sym.Pattern.String()
		if seen[src] {
			continue
		}
		seen[src] = true
		info.Patterns = append(info.Patterns, src)
		var example string
		if it.patStates != nil {
			example, _ = sym.Pattern.nfa.exampleFrom(it.patStates, maxPatternExample)
		} else {
			example, _ = sym.Pattern.example(maxPatternExample)
		}
		info.Examples = append(info.Examples, example)
	}
	return info
}

// DebugCompletionInfo pairs each live pattern terminal's source text with
// one representative example, index by index.
type DebugCompletionInfo struct {
	Patterns []string
	Examples []string
}

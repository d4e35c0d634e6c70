package p7

// acceptsFirstRune reports whether some surviving derivation's current
// terminal could consume c as its very next rune. It is the cheap,
// single-rune first pass a token filter runs over a vocabulary before
// falling back to the full PrefixValid scan, mirroring the frontier-first
// filtering a character-level Earley recognizer naturally affords.
func (r *Recognizer) acceptsFirstRune(c rune) bool {
	last := r.columns[len(r.columns)-1]
	for _, it := range last.items {
		sym, isTerm := it.atTerminal()
		if !isTerm {
			continue
		}
		switch {
		case sym.Literal != "":
			lit := []rune(sym.Literal)
			if it.litProgress < len(lit) && lit[it.litProgress] == c {
				return true
			}
		case sym.Pattern != nil:
			var states map[int]bool
			if it.patStates != nil {
				states = it.patStates
			} else {
				states = sym.Pattern.nfa.epsilonClosure(map[int]bool{sym.Pattern.nfa.start: true})
			}
			if len(sym.Pattern.nfa.step(states, c)) > 0 {
				return true
			}
		}
	}
	return false
}

// FilterCompletionIndices returns the indices into vocab of every token the
// recognizer could accept whole, in order. The empty string is always
// accepted (feeding it is a no-op and can never fail) regardless of its
// position in vocab.
func (r *Recognizer) FilterCompletionIndices(vocab []string) []int {
	var out []int
	for i, tok := range vocab {
		if tok == "" {
			out = append(out, i)
			continue
		}
		first := []rune(tok)[0]
		if !r.acceptsFirstRune(first) {
			continue
		}
		if r.PrefixValid(tok) {
			out = append(out, i)
		}
	}
	return out
}

// FilterCompletions returns the subset of vocab the recognizer could accept
// whole, preserving vocab's order.
func (r *Recognizer) FilterCompletions(vocab []string) []string {
	idx := r.FilterCompletionIndices(vocab)
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = vocab[v]
	}
	return out
}

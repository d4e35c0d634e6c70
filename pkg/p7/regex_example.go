package p7

// exampleRuneCandidates is the priority order tried when looking for a rune
// that satisfies an NFA transition's predicate, used only to synthesize a
// human-readable example string for a pattern terminal (Completions,
// DebugCompletions). Lower-case letters and digits sort first so examples
// read naturally; the full printable ASCII range is a fallback so classes
// like [A-Z] or [!?.] still produce something.
var exampleRuneCandidates []rune

func init() {
	add := func(lo, hi rune) {
		for r := lo; r <= hi; r++ {
			exampleRuneCandidates = append(exampleRuneCandidates, r)
		}
	}
	add('a', 'z')
	add('0', '9')
	add('A', 'Z')
	exampleRuneCandidates = append(exampleRuneCandidates, ' ', '_', '-', '.', ',')
	add(0x21, 0x7e)
	exampleRuneCandidates = append(exampleRuneCandidates, '\n', '\t')
}

// example greedily walks the NFA toward an accepting state, returning a
// representative string of at most maxLen runes the pattern would accept.
// It is a heuristic, not a search: a pattern whose only accepting paths
// require backtracking past a greedy dead end may return ok == false even
// though the pattern is satisfiable. Callers treat that as "no example
// available" rather than a hard error.
func (n *nfa) example(maxLen int) (string, bool) {
	states := n.epsilonClosure(map[int]bool{n.start: true})
	if states[n.accept] {
		// Only reachable for a nullable pattern; none of the built-in
		// grammars' terminals are nullable (see the Recognizer doc
		// comment), but an example generator should not hang if one
		// somehow is.
		return "", false
	}
	return n.exampleFrom(states, maxLen)
}

// exampleFrom continues a greedy walk toward an accepting state from an
// already-live state set, used to complete a pattern terminal that is
// mid-match (the recognizer's it.patStates). An already-accepting state set
// yields the empty string: the match could legitimately end right here.
func (n *nfa) exampleFrom(states map[int]bool, maxLen int) (string, bool) {
	if states[n.accept] {
		return "", true
	}
	var out []rune
	for i := 0; i < maxLen; i++ {
		r, next, ok := n.exampleStep(states)
		if !ok {
			break
		}
		out = append(out, r)
		states = next
		if states[n.accept] {
			return string(out), true
		}
	}
	return string(out), false
}

func (n *nfa) exampleStep(states map[int]bool) (rune, map[int]bool, bool) {
	for _, r := range exampleRuneCandidates {
		next := n.step(states, r)
		if len(next) > 0 {
			return r, next, true
		}
	}
	return 0, nil, false
}

// example returns a short representative string this pattern matches, or
// ok == false if the greedy walk couldn't find one within maxLen runes.
func (r *Regex) example(maxLen int) (string, bool) {
	return r.nfa.example(maxLen)
}

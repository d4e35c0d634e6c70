package p7

import (
	"strings"

	"github.com/google/uuid"
)

// Recognizer is the engine's frontier: an Earley-style chart recognizer
// that consumes a grammar's text one rune at a time, tracking every
// surviving partial derivation and, for grammars with typing rules, the
// persistent Gamma each derivation carries. Feeding a rune that no
// surviving derivation's terminal can extend, or that causes every
// surviving derivation's typing rules to fail unification, drops that rune
// atomically: the recognizer's visible state (CurrentText, the frontier)
// is unchanged.
//
// Empty alternatives (an alternative with zero symbols) are supported: a
// waiter on a nonterminal that completes with zero width, in either
// discovery order, still gets advanced — see predictItem's nullable
// catch-up pass.
type Recognizer struct {
	grammar   *Grammar
	sessionID string
	buf       []rune
	columns   []*column
}

// NewRecognizer creates a Recognizer for grammar, seeded with its start
// nonterminal's alternatives at the empty frontier.
func NewRecognizer(grammar *Grammar) *Recognizer {
	r := &Recognizer{grammar: grammar, sessionID: uuid.NewString()}
	r.Reset()
	return r
}

// SessionID identifies this recognizer instance for debug-trace
// correlation across concurrent sessions.
func (r *Recognizer) SessionID() string { return r.sessionID }

// Reset returns the recognizer to its initial, empty-buffer frontier.
func (r *Recognizer) Reset() {
	r.buf = nil
	col0 := newColumn()
	prod := r.grammar.Productions[r.grammar.Start]
	for i, alt := range prod.Alts {
		col0.add(item{head: r.grammar.Start, alt: alt, altIndex: i, origin: 0, gamma: EmptyGamma})
	}
	r.columns = []*column{col0}
	closeColumn(r.grammar, r.columns, nil, 0)
	dbgRecognizer(r.sessionID, nil, "reset: start=%s alts=%d", r.grammar.Start, len(prod.Alts))
}

// CurrentText returns the text fed so far.
func (r *Recognizer) CurrentText() string { return string(r.buf) }

// StartNonterminal returns the start symbol of the grammar this recognizer
// was built from.
func (r *Recognizer) StartNonterminal() string { return r.grammar.Start }

// IsComplete reports whether the text fed so far is a complete, well-typed
// derivation of the grammar's start symbol: some item in the last column
// has head == Start, origin == 0, and every symbol of its alternative
// matched.
func (r *Recognizer) IsComplete() bool {
	return len(completeStartItems(r.grammar, r.columns)) > 0
}

func completeStartItems(g *Grammar, columns []*column) []item {
	last := columns[len(columns)-1]
	var out []item
	for _, it := range last.items {
		if it.head == g.Start && it.origin == 0 && it.done() {
			out = append(out, it)
		}
	}
	return out
}

// WellTypedTreeCount returns the number of distinct complete, well-typed
// derivations of the text fed so far (the chart's current ambiguity at
// full completion). It is 0 when the text is not yet complete.
func (r *Recognizer) WellTypedTreeCount() int {
	return len(completeStartItems(r.grammar, r.columns))
}

// ToSexpr serializes one complete derivation as an s-expression. Under
// ambiguity it serializes the lowest-indexed surviving derivation rather
// than reporting the ambiguity; the choice is deterministic for a given
// feed history.
func (r *Recognizer) ToSexpr() (string, error) {
	items := completeStartItems(r.grammar, r.columns)
	if len(items) == 0 {
		return "", newErr(KindIncomplete, len(r.buf), "recognizer has no complete derivation yet")
	}
	return selfSexprOf(items[0]), nil
}

func selfSexprOf(it item) string {
	parts := make([]string, 0, len(it.children)+1)
	parts = append(parts, it.head)
	for _, c := range it.children {
		parts = append(parts, c.sexpr)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Feed attempts to extend the recognizer's frontier by tok, character by
// character. If every character is accepted by some surviving derivation
// (syntactically and, where applicable, by typing), the recognizer's
// frontier advances and Feed returns nil. If any character would leave no
// surviving derivation, Feed rolls the frontier back to exactly its
// pre-call state — nothing is partially consumed — and returns an *Error
// classifying the failure: KindInvalidPrefix if no terminal could extend
// at all, KindTypeError if terminals matched but every resulting
// derivation failed typing-rule unification.
func (r *Recognizer) Feed(tok string) error {
	snap := r.snapshot()
	for _, c := range tok {
		matched, typed := stepColumns(r.grammar, &r.columns, &r.buf, c)
		if !matched {
			r.restore(snap)
			dbgRecognizer(r.sessionID, nil, "feed %q: invalid_prefix at rune %q", tok, c)
			return newErr(KindInvalidPrefix, len(r.buf), "rune %q does not extend any surviving derivation", c)
		}
		if !typed {
			r.restore(snap)
			dbgRecognizer(r.sessionID, nil, "feed %q: type_error at rune %q", tok, c)
			return newErr(KindTypeError, len(r.buf), "rune %q is syntactically valid but no derivation typechecks", c)
		}
	}
	dbgRecognizer(r.sessionID, nil, "fed %q, buffer now %q", tok, string(r.buf))
	return nil
}

// PrefixValid reports whether tok could be fed (wholly) without the
// recognizer's Feed returning an error, without mutating the recognizer.
// It performs the same scan as Feed over a cloned (copy-on-write) chart,
// then discards the result. Used by the token filter to test vocabulary
// entries before committing to one.
func (r *Recognizer) PrefixValid(tok string) bool {
	cols := append([]*column(nil), r.columns...)
	buf := append([]rune(nil), r.buf...)
	for _, c := range tok {
		matched, typed := stepColumns(r.grammar, &cols, &buf, c)
		if !matched || !typed {
			return false
		}
	}
	return true
}

func (r *Recognizer) snapshot() snapshot {
	return snapshot{bufLen: len(r.buf), numColumns: len(r.columns)}
}

func (r *Recognizer) restore(s snapshot) {
	r.buf = r.buf[:s.bufLen]
	r.columns = r.columns[:s.numColumns]
}

// NextLiterals returns every literal terminal string that some item in the
// last column is either about to start or mid-way through matching,
// reporting only the remaining (unmatched) suffix of each. It is a coarse,
// human-facing view of the frontier used by debugging and the demo
// binaries; the token filter uses PrefixValid directly instead.
func (r *Recognizer) NextLiterals() []string {
	last := r.columns[len(r.columns)-1]
	seen := make(map[string]bool)
	var out []string
	for _, it := range last.items {
		sym, isTerm := it.atTerminal()
		if !isTerm || sym.Literal == "" {
			continue
		}
		remaining := string([]rune(sym.Literal)[it.litProgress:])
		if !seen[remaining] {
			seen[remaining] = true
			out = append(out, remaining)
		}
	}
	return out
}

// --- chart stepping --------------------------------------------------

// stepColumns appends c to buf and the resulting column to *cols, in
// place, returning (matched, typed). matched is false if no terminal in
// the last column of *cols could consume c at all (invalid prefix);
// typed is false if terminals matched but the resulting column, after
// typing-rule unification during completion, ended up empty (type error).
// Neither *cols nor *buf is mutated on a false return for matched; on a
// false return for typed, the unproductive column is still appended
// (callers treat both failure modes the same way: discard and report).
func stepColumns(g *Grammar, cols *[]*column, buf *[]rune, c rune) (matched, typed bool) {
	cur := (*cols)[len(*cols)-1]
	posBefore := len(*buf)
	next := newColumn()
	anyMatch := false

	for _, it := range cur.items {
		sym, isTerm := it.atTerminal()
		if !isTerm {
			continue
		}
		switch {
		case sym.Literal != "":
			lit := []rune(sym.Literal)
			if it.litProgress >= len(lit) || lit[it.litProgress] != c {
				continue
			}
			anyMatch = true
			newProgress := it.litProgress + 1
			if newProgress == len(lit) {
				nc := it
				nc.dot++
				nc.litProgress = 0
				nc.children = appendChild(it.children, completedChild{text: sym.Literal, sexpr: sym.Literal})
				next.add(nc)
			} else {
				nc := it
				nc.litProgress = newProgress
				next.add(nc)
			}
		case sym.Pattern != nil:
			var states map[int]bool
			start := posBefore
			if it.patStates != nil {
				states = it.patStates
				start = it.termStart
			} else {
				states = sym.Pattern.nfa.epsilonClosure(map[int]bool{sym.Pattern.nfa.start: true})
			}
			newStates := sym.Pattern.nfa.step(states, c)
			if len(newStates) == 0 {
				continue
			}
			anyMatch = true
			span := string((*buf)[start:posBefore]) + string(c)
			canExtend, canFinish := true, true
			if names, constrained := lookupNames(g, it); constrained {
				// The terminal must spell a Gamma-bound name for its
				// lookup rule to ever fire, so anything that is not a
				// prefix of one is already dead.
				canExtend, canFinish = false, false
				for _, nm := range names {
					if !strings.HasPrefix(nm, span) {
						continue
					}
					if len(nm) > len(span) {
						canExtend = true
					} else {
						canFinish = true
					}
				}
			}
			if canExtend {
				ncCont := it
				ncCont.patStates = newStates
				ncCont.termStart = start
				next.add(ncCont)
			}
			if canFinish && newStates[sym.Pattern.nfa.accept] {
				ncDone := it
				ncDone.dot++
				ncDone.patStates = nil
				ncDone.termStart = 0
				ncDone.children = appendChild(it.children, completedChild{text: span, sexpr: span})
				next.add(ncDone)
			}
		}
	}

	if !anyMatch {
		return false, false
	}

	*buf = append(*buf, c)
	*cols = append(*cols, next)
	closeColumn(g, *cols, *buf, len(*cols)-1)
	return true, columnLive(g, next)
}

// columnLive reports whether col still holds a derivation worth keeping: an
// item that can consume further input (its next symbol is a terminal, in
// progress or not yet started), or a finished derivation of the start
// symbol. Items that are done but not the start — or that wait on a
// nonterminal none of whose predictions survived — are inert leftovers of
// closure, not live derivations; a column holding only those is a typing
// dead end even though every rune scanned.
func columnLive(g *Grammar, col *column) bool {
	for _, it := range col.items {
		if it.done() {
			if it.head == g.Start && it.origin == 0 {
				return true
			}
			continue
		}
		if _, isTerm := it.atTerminal(); isTerm {
			return true
		}
	}
	return false
}

// lookupNames returns the identifier names the pattern terminal at it's dot
// is allowed to spell, with ok reporting whether the terminal is
// lookup-constrained at all: it is when the typing rule matching it's
// alternative resolves this child position through lookup($n), i.e. the
// spelled text must be a name bound in Gamma.
func lookupNames(g *Grammar, it item) ([]string, bool) {
	sym, isTerm := it.atTerminal()
	if !isTerm || sym.Pattern == nil {
		return nil, false
	}
	rule := g.RuleFor(it.head, it.alt)
	if rule == nil || !ruleUsesLookup(rule, it.dot+1) {
		return nil, false
	}
	return it.gamma.Names(), true
}

func appendChild(existing []completedChild, next completedChild) []completedChild {
	out := make([]completedChild, len(existing)+1)
	copy(out, existing)
	out[len(existing)] = next
	return out
}

// closeColumn runs the predict/complete fixpoint over columns[ci] until no
// new item is added. buf is the full fed-text buffer so far, used to
// recover the raw span of a completing nonterminal for bind/lookup
// premises; buf[it.origin:ci] is "" for a zero-width (nullable) completion,
// since origin == ci in that case, and is otherwise the already-scanned
// span.
func closeColumn(g *Grammar, columns []*column, buf []rune, ci int) {
	col := columns[ci]
	for idx := 0; idx < len(col.items); idx++ {
		it := col.items[idx]
		switch {
		case it.done():
			completeItem(g, columns, buf, ci, it)
		case it.atNonterm() != "":
			predictItem(g, col, ci, it)
		}
	}
}

func predictItem(g *Grammar, col *column, ci int, it item) {
	nt := it.atNonterm()
	prod, ok := g.Productions[nt]
	if !ok {
		return
	}
	gamma := gammaAfterChildren(g, it.head, it.alt, it.gamma, it.children)
	for i, alt := range prod.Alts {
		col.add(item{head: nt, alt: alt, altIndex: i, origin: ci, gamma: gamma})
	}

	// An empty alternative of nt is done() the instant it's added above,
	// with origin == ci (zero width). completeItem's own waiter scan only
	// catches waiters that already existed at the moment such an item
	// completes; it can't see `it` if `it` is predicted only later in this
	// same column's closure. Catch that ordering here: if nt already has a
	// zero-width completion in this column (just added above, or found by
	// an earlier waiter), advance `it` past it directly.
	for _, cand := range col.items {
		if cand.head != nt || cand.origin != ci || !cand.done() {
			continue
		}
		synth := fireTypingRule(g, cand.head, cand.alt, cand.altIndex, cand.children, cand.gamma)
		if !synth.ok {
			continue
		}
		if adv, ok := advanceWaiter(g, it, "", synth.typ, selfSexprOf(cand)); ok {
			col.add(adv)
		}
	}
}

// advanceWaiter produces the item that results from waiter's pending
// nonterminal completing with the given span text, synthesized type, and
// self-s-expression: its dot advances past that nonterminal and the
// completion is appended as waiter's next child. Any equate premise of
// waiter's typing rule anchored at that child position fires immediately;
// a premise already unsatisfiable drops the advance (ok == false) rather
// than leaving a derivation alive that can never complete.
func advanceWaiter(g *Grammar, waiter item, text string, typ Type, selfSexpr string) (item, bool) {
	newChildren := appendChild(waiter.children, completedChild{text: text, typ: typ, sexpr: selfSexpr})
	if !premisesHoldAt(g, waiter.head, waiter.alt, waiter.dot+1, typ, newChildren, waiter.gamma) {
		return item{}, false
	}
	return item{
		head:     waiter.head,
		alt:      waiter.alt,
		altIndex: waiter.altIndex,
		dot:      waiter.dot + 1,
		origin:   waiter.origin,
		gamma:    waiter.gamma,
		children: newChildren,
	}, true
}

func completeItem(g *Grammar, columns []*column, buf []rune, ci int, it item) {
	synth := fireTypingRule(g, it.head, it.alt, it.altIndex, it.children, it.gamma)
	if !synth.ok {
		return
	}
	text := string(buf[it.origin:ci])
	selfSexpr := selfSexprOf(it)
	originCol := columns[it.origin]
	destCol := columns[ci]
	for _, waiter := range originCol.items {
		if waiter.atNonterm() != it.head {
			continue
		}
		if adv, ok := advanceWaiter(g, waiter, text, synth.typ, selfSexpr); ok {
			destCol.add(adv)
		}
	}
}
